package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/models"
)

// ConversationRepository defines the interface for pairwise chat sessions
// and their message records.
type ConversationRepository interface {
	SendMessage(ctx context.Context, from, to, content string) (*models.Message, error)
	MarkRead(ctx context.Context, actor, conversationID string) error
	HideSession(ctx context.Context, actor, conversationID string) error
	GetInbox(ctx context.Context, actor string) ([]models.Conversation, error)
	GetHistory(ctx context.Context, conversationID string) ([]models.Message, error)
}

// MongoConversationRepository implements ConversationRepository for MongoDB
type MongoConversationRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoConversationRepository
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

// SendMessage appends a message and folds it into the session document —
// unread counter, last-message fields and soft-hide revival — in one
// transaction. The session is created on first contact.
func (r *MongoConversationRepository) SendMessage(ctx context.Context, from, to, content string) (*models.Message, error) {
	convID := models.ConversationID(from, to)
	now := time.Now()
	msg := &models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		Sender:         from,
		Content:        content,
		CreatedAt:      now,
	}

	err := withTransaction(ctx, r.conversations.Database().Client(), func(sc mongo.SessionContext) error {
		var conv models.Conversation
		err := r.conversations.FindOne(sc, bson.M{"_id": convID}).Decode(&conv)
		if err == mongo.ErrNoDocuments {
			conv = *models.NewConversation(from, to, now)
		} else if err != nil {
			return err
		}

		conv.ApplyMessage(from, to, content, now)

		replaceOptions := options.Replace().SetUpsert(true)
		if _, err := r.conversations.ReplaceOne(sc, bson.M{"_id": convID}, &conv, replaceOptions); err != nil {
			return err
		}
		_, err = r.messages.InsertOne(sc, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead zeroes the actor's unread counter; a no-op when nothing is
// unread. A single-document update, atomic on its own.
func (r *MongoConversationRepository) MarkRead(ctx context.Context, actor, conversationID string) error {
	filter := bson.M{"_id": conversationID, "participants": actor}
	update := bson.M{"$set": bson.M{"unread_counts." + actor: 0}}
	res, err := r.conversations.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// HideSession soft-deletes the session for one participant. The messages
// stay; new traffic between the pair revives the session for both sides.
func (r *MongoConversationRepository) HideSession(ctx context.Context, actor, conversationID string) error {
	filter := bson.M{"_id": conversationID, "participants": actor}
	update := bson.M{"$addToSet": bson.M{"hidden_for": actor}}
	res, err := r.conversations.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// GetInbox lists the actor's visible sessions, most recently active first
func (r *MongoConversationRepository) GetInbox(ctx context.Context, actor string) ([]models.Conversation, error) {
	filter := bson.M{"participants": actor, "hidden_for": bson.M{"$ne": actor}}
	findOptions := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.conversations.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetHistory returns the latest page of a session's messages in ascending
// time order.
func (r *MongoConversationRepository) GetHistory(ctx context.Context, conversationID string) ([]models.Message, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(models.ChatHistoryPageSize)
	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	// Newest page, oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
