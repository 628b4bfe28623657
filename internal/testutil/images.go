package testutil

import (
	"context"
	"sync"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryImages is an in-memory repositories.PostImageRepository.
type MemoryImages struct {
	mu     sync.Mutex
	images []models.PostImage
}

func (m *MemoryImages) CreateImage(_ context.Context, image *models.PostImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	image.ID = primitive.NewObjectID()
	m.images = append(m.images, *image)
	return nil
}

func (m *MemoryImages) GetImage(_ context.Context, postID uint, id string) (*models.PostImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range m.images {
		if img.PostID == postID && img.ID.Hex() == id {
			found := img
			return &found, nil
		}
	}
	return nil, repositories.ErrImageNotFound
}

func (m *MemoryImages) GetImagesByPostID(_ context.Context, postID uint) ([]models.PostImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PostImage{}
	for _, img := range m.images {
		if img.PostID == postID {
			img.Data = nil
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *MemoryImages) CountImages(ctx context.Context, postID uint) (int64, error) {
	images, _ := m.GetImagesByPostID(ctx, postID)
	return int64(len(images)), nil
}

func (m *MemoryImages) DeleteImagesByPostID(_ context.Context, postID uint) error {
	m.deleteWhere(func(img models.PostImage) bool { return img.PostID == postID })
	return nil
}

func (m *MemoryImages) DeleteImagesByUserID(_ context.Context, userID uint) error {
	m.deleteWhere(func(img models.PostImage) bool { return img.UserID == userID })
	return nil
}

// Len reports how many images are stored.
func (m *MemoryImages) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}

func (m *MemoryImages) deleteWhere(match func(models.PostImage) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.images[:0]
	for _, img := range m.images {
		if !match(img) {
			kept = append(kept, img)
		}
	}
	m.images = kept
}

var _ repositories.PostImageRepository = (*MemoryImages)(nil)
