package repositories

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	WithTx(tx *gorm.DB) ProfileRepository
	CreateProfile(profile *models.Profile) error
	GetProfileByUserID(userID uint) (*models.Profile, error)
	GetProfilesByUserIDs(userIDs []uint) (map[uint]models.Profile, error)
	UsernameTaken(username string) (bool, error)
	UpdateProfile(profile *models.Profile) error
	SearchProfiles(pattern string) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PostgresProfileRepository) WithTx(tx *gorm.DB) ProfileRepository {
	return &PostgresProfileRepository{db: tx}
}

func (r *PostgresProfileRepository) CreateProfile(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

func (r *PostgresProfileRepository) GetProfileByUserID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfilesByUserIDs loads the profiles of several users keyed by user ID
func (r *PostgresProfileRepository) GetProfilesByUserIDs(userIDs []uint) (map[uint]models.Profile, error) {
	out := make(map[uint]models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	if err := r.db.Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

// UsernameTaken reports whether a profile already uses username, ignoring case
func (r *PostgresProfileRepository) UsernameTaken(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error
	return count > 0, err
}

func (r *PostgresProfileRepository) UpdateProfile(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

// SearchProfiles returns profiles whose username or bio matches the LIKE
// pattern, compared lower-cased, in id order. pattern must already be
// lower-cased and escaped with '\'.
func (r *PostgresProfileRepository) SearchProfiles(pattern string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(COALESCE(bio, '')) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		Find(&profiles).Error
	return profiles, err
}
