package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrImageNotFound is returned when no image document matches.
var ErrImageNotFound = errors.New("post image not found")

// PostImageRepository defines the interface for post image storage
type PostImageRepository interface {
	CreateImage(ctx context.Context, image *models.PostImage) error
	GetImage(ctx context.Context, postID uint, id string) (*models.PostImage, error)
	GetImagesByPostID(ctx context.Context, postID uint) ([]models.PostImage, error)
	CountImages(ctx context.Context, postID uint) (int64, error)
	DeleteImagesByPostID(ctx context.Context, postID uint) error
	DeleteImagesByUserID(ctx context.Context, userID uint) error
}

// MongoPostImageRepository implements PostImageRepository for MongoDB
type MongoPostImageRepository struct {
	collection *mongo.Collection
}

// NewMongoPostImageRepository creates a new MongoPostImageRepository
func NewMongoPostImageRepository(db *mongo.Database) *MongoPostImageRepository {
	return &MongoPostImageRepository{collection: db.Collection("post_images")}
}

// CreateImage stores an image document
func (r *MongoPostImageRepository) CreateImage(ctx context.Context, image *models.PostImage) error {
	image.ID = primitive.NewObjectID()
	image.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, image)
	return err
}

// GetImage retrieves one image of a post, including its bytes
func (r *MongoPostImageRepository) GetImage(ctx context.Context, postID uint, id string) (*models.PostImage, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrImageNotFound
	}

	var image models.PostImage
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "post_id": postID}).Decode(&image)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

// GetImagesByPostID lists the images of a post without their bytes, oldest first
func (r *MongoPostImageRepository) GetImagesByPostID(ctx context.Context, postID uint) ([]models.PostImage, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"data": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	images := []models.PostImage{}
	if err = cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *MongoPostImageRepository) CountImages(ctx context.Context, postID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"post_id": postID})
}

// DeleteImagesByPostID removes every image of a post
func (r *MongoPostImageRepository) DeleteImagesByPostID(ctx context.Context, postID uint) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID}); err != nil {
		return fmt.Errorf("delete images of post %d: %w", postID, err)
	}
	return nil
}

// DeleteImagesByUserID removes every image a user uploaded
func (r *MongoPostImageRepository) DeleteImagesByUserID(ctx context.Context, userID uint) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete images of user %d: %w", userID, err)
	}
	return nil
}
