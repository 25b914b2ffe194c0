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

// CommentRepository defines the interface for comment data operations.
// Creation and deletion also maintain the parent post's comment counter.
type CommentRepository interface {
	AddComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, comment *models.Comment) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	comments *mongo.Collection
	posts    *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{
		comments: db.Collection("comments"),
		posts:    db.Collection("posts"),
	}
}

// AddComment inserts the comment and bumps the parent's counter in one
// transaction; either both effects commit or neither does.
func (r *MongoCommentRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()

	return withTransaction(ctx, r.comments.Database().Client(), func(sc mongo.SessionContext) error {
		res, err := r.posts.UpdateOne(sc, bson.M{"_id": comment.PostID}, bson.M{"$inc": bson.M{"comment_count": 1}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return apperrors.ErrPostNotFound
		}
		_, err = r.comments.InsertOne(sc, comment)
		return err
	})
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrCommentNotFound
	}

	var comment models.Comment
	err = r.comments.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves a post's comments ordered by creation time
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperrors.ErrPostNotFound
	}

	var comments []models.Comment
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.comments.Find(ctx, bson.M{"post_id": objID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes the comment and decrements the parent's counter in
// one transaction, guarded so the counter can never go negative.
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, comment *models.Comment) error {
	return withTransaction(ctx, r.comments.Database().Client(), func(sc mongo.SessionContext) error {
		res, err := r.comments.DeleteOne(sc, bson.M{"_id": comment.ID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return apperrors.ErrCommentNotFound
		}
		filter := bson.M{"_id": comment.PostID, "comment_count": bson.M{"$gt": 0}}
		_, err = r.posts.UpdateOne(sc, filter, bson.M{"$inc": bson.M{"comment_count": -1}})
		return err
	})
}
