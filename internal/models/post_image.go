package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// MaxImageBytes is the largest accepted image attachment.
	MaxImageBytes = 10 << 20
	// MaxImagesPerPost caps attachments on a single post.
	MaxImagesPerPost = 10
)

// AllowedImageTypes are the MIME types accepted as post images.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// PostImage is an image attached to a post, stored in MongoDB.
type PostImage struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID      uint               `json:"post_id" bson:"post_id"`
	UserID      uint               `json:"user_id" bson:"user_id"`
	Filename    string             `json:"filename" bson:"filename"`
	ContentType string             `json:"content_type" bson:"content_type"`
	Size        int64              `json:"size" bson:"size"`
	Data        []byte             `json:"-" bson:"data"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
