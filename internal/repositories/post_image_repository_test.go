package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoPostImageRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := func(mt *mtest.T) string { return mt.DB.Name() + ".post_images" }

	mt.Run("create then get", func(mt *mtest.T) {
		repo := NewMongoPostImageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		image := &models.PostImage{PostID: 3, UserID: 1, Filename: "a.png", ContentType: "image/png", Size: 2, Data: []byte{1, 2}}
		require.NoError(mt, repo.CreateImage(ctx, image))
		assert.False(mt, image.ID.IsZero())
		assert.False(mt, image.CreatedAt.IsZero())

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: image.ID},
			{Key: "post_id", Value: int64(3)},
			{Key: "content_type", Value: "image/png"},
			{Key: "data", Value: []byte{1, 2}},
		}))
		got, err := repo.GetImage(ctx, 3, image.ID.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, image.ID, got.ID)
		assert.Equal(mt, uint(3), got.PostID)
		assert.Equal(mt, []byte{1, 2}, got.Data)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewMongoPostImageRepository(mt.DB)

		_, err := repo.GetImage(ctx, 3, "not-hex")
		assert.ErrorIs(mt, err, ErrImageNotFound)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		_, err = repo.GetImage(ctx, 3, "64b7f0c2a1b2c3d4e5f60718")
		assert.ErrorIs(mt, err, ErrImageNotFound)
	})

	mt.Run("list and count", func(mt *mtest.T) {
		repo := NewMongoPostImageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "post_id", Value: int64(3)}, {Key: "filename", Value: "a.png"}},
			bson.D{{Key: "post_id", Value: int64(3)}, {Key: "filename", Value: "b.png"}},
		))
		images, err := repo.GetImagesByPostID(ctx, 3)
		require.NoError(mt, err)
		require.Len(mt, images, 2)
		assert.Equal(mt, "b.png", images[1].Filename)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}))
		count, err := repo.CountImages(ctx, 3)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), count)
	})

	mt.Run("delete wraps errors", func(mt *mtest.T) {
		repo := NewMongoPostImageRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 2}})
		require.NoError(mt, repo.DeleteImagesByPostID(ctx, 3))

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))
		err := repo.DeleteImagesByUserID(ctx, 1)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "delete images of user 1")
	})
}
