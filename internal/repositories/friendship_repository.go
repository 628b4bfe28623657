package repositories

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	WithTx(tx *gorm.DB) FriendshipRepository
	CreateFriendship(f *models.Friendship) error
	GetFriendshipByID(id uint) (*models.Friendship, error)
	GetFriendship(userID, friendID uint) (*models.Friendship, error)
	GetFriends(userID uint) ([]models.Profile, error)
	GetIncomingPending(userID uint) ([]models.Friendship, error)
	GetOutgoingPending(userID uint) ([]models.Friendship, error)
	CountFriends(userID uint) (int64, error)
	CountFriendsByUserIDs(userIDs []uint) (map[uint]int64, error)
	UpdateStatus(id uint, status models.FriendshipStatus) error
	TransitionStatus(id uint, from, to models.FriendshipStatus) (bool, error)
	DeleteFriendship(id uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PostgresFriendshipRepository) WithTx(tx *gorm.DB) FriendshipRepository {
	return &PostgresFriendshipRepository{db: tx}
}

// CreateFriendship inserts an edge. A second edge for the same ordered pair
// fails with gorm.ErrDuplicatedKey.
func (r *PostgresFriendshipRepository) CreateFriendship(f *models.Friendship) error {
	return r.db.Create(f).Error
}

// GetFriendshipByID retrieves an edge by ID
func (r *PostgresFriendshipRepository) GetFriendshipByID(id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFriendship retrieves the directed edge userID -> friendID
func (r *PostgresFriendshipRepository) GetFriendship(userID, friendID uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.Where("user_id = ? AND friend_id = ?", userID, friendID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFriends retrieves the profiles reachable over userID's accepted edges
func (r *PostgresFriendshipRepository) GetFriends(userID uint) ([]models.Profile, error) {
	var friends []models.Profile
	err := r.db.
		Joins("JOIN friendships ON friendships.friend_id = profiles.user_id").
		Where("friendships.user_id = ? AND friendships.status = ?", userID, models.FriendshipAccepted).
		Order("profiles.username ASC").
		Find(&friends).Error
	return friends, err
}

// GetIncomingPending retrieves pending requests addressed to userID, newest first
func (r *PostgresFriendshipRepository) GetIncomingPending(userID uint) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := r.db.Where("friend_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// GetOutgoingPending retrieves pending requests sent by userID, newest first
func (r *PostgresFriendshipRepository) GetOutgoingPending(userID uint) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := r.db.Where("user_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// CountFriends counts userID's accepted edges
func (r *PostgresFriendshipRepository) CountFriends(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Friendship{}).
		Where("user_id = ? AND status = ?", userID, models.FriendshipAccepted).
		Count(&count).Error
	return count, err
}

// CountFriendsByUserIDs counts accepted edges for several users at once
func (r *PostgresFriendshipRepository) CountFriendsByUserIDs(userIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID uint
		Count  int64
	}
	err := r.db.Model(&models.Friendship{}).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IN ? AND status = ?", userIDs, models.FriendshipAccepted).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.Count
	}
	return out, nil
}

// UpdateStatus sets the status of an edge
func (r *PostgresFriendshipRepository) UpdateStatus(id uint, status models.FriendshipStatus) error {
	return r.db.Model(&models.Friendship{}).Where("id = ?", id).Update("status", status).Error
}

// TransitionStatus moves an edge from one status to another and reports
// whether the edge was still in the from status.
func (r *PostgresFriendshipRepository) TransitionStatus(id uint, from, to models.FriendshipStatus) (bool, error) {
	result := r.db.Model(&models.Friendship{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteFriendship deletes an edge
func (r *PostgresFriendshipRepository) DeleteFriendship(id uint) error {
	return r.db.Delete(&models.Friendship{}, id).Error
}
