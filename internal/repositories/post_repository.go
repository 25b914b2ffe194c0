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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	// ToggleLike atomically flips an actor's like on a post and returns the
	// resulting membership state and counter.
	ToggleLike(ctx context.Context, postID, actorID string) (liked bool, likeCount int, err error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.LikerIDs == nil {
		post.LikerIDs = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetRecentPosts retrieves the newest posts from MongoDB
func (r *MongoPostRepository) GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// ToggleLike reads the post, flips the actor's membership, and writes the
// counter and the liker set back — all inside one transaction, so
// concurrent toggles on the same post serialize without lost updates.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, postID, actorID string) (bool, int, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return false, 0, apperrors.ErrPostNotFound
	}

	var liked bool
	var likeCount int
	err = withTransaction(ctx, r.collection.Database().Client(), func(sc mongo.SessionContext) error {
		var post models.Post
		if err := r.collection.FindOne(sc, bson.M{"_id": objID}).Decode(&post); err != nil {
			if err == mongo.ErrNoDocuments {
				return apperrors.ErrPostNotFound
			}
			return err
		}

		liked = post.ToggleLike(actorID)
		likeCount = post.LikeCount

		update := bson.M{"$set": bson.M{"like_count": post.LikeCount, "liker_ids": post.LikerIDs}}
		_, err := r.collection.UpdateOne(sc, bson.M{"_id": objID}, update)
		return err
	})
	return liked, likeCount, err
}
