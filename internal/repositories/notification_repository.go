package repositories

import (
	"time"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	CreateNotification(notification *models.Notification) error
	GetOwned(userID, id uint) (*models.Notification, error)
	GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(userID uint) (today, yesterday, thisWeek, older []models.Notification, err error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(id uint, at time.Time) error
	MarkAllAsRead(userID uint, at time.Time) (int64, error)
	DeleteNotification(id uint) error
	DeleteForNotifiable(notifiableType models.NotifiableType, ids ...uint) error
	DeleteForComment(commentID uint) error
	DeleteForPost(postID uint) error
	DeleteForUser(userID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: tx}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetOwned(userID, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *postgresNotificationRepository) GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetGrouped(userID uint) (today, yesterday, thisWeek, older []models.Notification, retErr error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	windows := []struct {
		into  *[]models.Notification
		where string
		args  []interface{}
		limit int
	}{
		{&today, "user_id = ? AND created_at >= ?", []interface{}{userID, todayStart}, -1},
		{&yesterday, "user_id = ? AND created_at >= ? AND created_at < ?", []interface{}{userID, yesterdayStart, todayStart}, -1},
		{&thisWeek, "user_id = ? AND created_at >= ? AND created_at < ?", []interface{}{userID, weekStart, yesterdayStart}, -1},
		{&older, "user_id = ? AND created_at < ?", []interface{}{userID, weekStart}, 50},
	}
	for _, w := range windows {
		if err := r.db.Where(w.where, w.args...).Order("created_at DESC, id DESC").Limit(w.limit).Find(w.into).Error; err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return today, yesterday, thisWeek, older, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND read_at IS NULL", userID).Count(&count).Error
	return count, err
}

// MarkAsRead stamps read_at once; an already-read row is left untouched
func (r *postgresNotificationRepository) MarkAsRead(id uint, at time.Time) error {
	return r.db.Model(&models.Notification{}).Where("id = ? AND read_at IS NULL", id).Update("read_at", at).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(userID uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Notification{}).Where("user_id = ? AND read_at IS NULL", userID).Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteNotification(id uint) error {
	return r.db.Delete(&models.Notification{}, id).Error
}

// DeleteForNotifiable deletes notifications pointing at the given records
func (r *postgresNotificationRepository) DeleteForNotifiable(notifiableType models.NotifiableType, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("notifiable_type = ? AND notifiable_id IN ?", notifiableType, ids).
		Delete(&models.Notification{}).Error
}

// DeleteForComment deletes notifications of a comment and of its replies
func (r *postgresNotificationRepository) DeleteForComment(commentID uint) error {
	thread := r.db.Model(&models.Comment{}).Select("id").
		Where("id = ? OR parent_comment_id = ?", commentID, commentID)
	return r.db.Where("notifiable_type = ? AND notifiable_id IN (?)", models.NotifiableComment, thread).
		Delete(&models.Notification{}).Error
}

// DeleteForPost deletes notifications of every comment, like and reaction on a post
func (r *postgresNotificationRepository) DeleteForPost(postID uint) error {
	return r.deleteForContent(
		r.db.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID),
		r.db.Model(&models.Like{}).Select("id").Where("post_id = ?", postID),
		r.db.Model(&models.Reaction{}).Select("id").Where("post_id = ?", postID),
		nil,
	)
}

// DeleteForUser deletes notifications whose notifiable is removed along with
// the user: their own engagement, engagement on their posts, replies to their
// comments and their friendship edges in both directions.
func (r *postgresNotificationRepository) DeleteForUser(userID uint) error {
	posts := func() *gorm.DB {
		return r.db.Model(&models.Post{}).Select("id").Where("user_id = ?", userID)
	}
	ownComments := r.db.Model(&models.Comment{}).Select("id").Where("user_id = ?", userID)
	return r.deleteForContent(
		r.db.Model(&models.Comment{}).Select("id").
			Where("user_id = ? OR post_id IN (?) OR parent_comment_id IN (?)", userID, posts(), ownComments),
		r.db.Model(&models.Like{}).Select("id").Where("user_id = ? OR post_id IN (?)", userID, posts()),
		r.db.Model(&models.Reaction{}).Select("id").Where("user_id = ? OR post_id IN (?)", userID, posts()),
		r.db.Model(&models.Friendship{}).Select("id").Where("user_id = ? OR friend_id = ?", userID, userID),
	)
}

func (r *postgresNotificationRepository) deleteForContent(comments, likes, reactions, friendships *gorm.DB) error {
	q := r.db.Where("notifiable_type = ? AND notifiable_id IN (?)", models.NotifiableComment, comments).
		Or("notifiable_type = ? AND notifiable_id IN (?)", models.NotifiableLike, likes).
		Or("notifiable_type = ? AND notifiable_id IN (?)", models.NotifiableReaction, reactions)
	if friendships != nil {
		q = q.Or("notifiable_type = ? AND notifiable_id IN (?)", models.NotifiableFriendship, friendships)
	}
	return q.Delete(&models.Notification{}).Error
}
