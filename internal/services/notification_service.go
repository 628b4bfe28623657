package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationsPerPage is the page size of List.
const NotificationsPerPage = 20

// NotifiableLoader fetches the record a notification points at.
type NotifiableLoader func(db *gorm.DB, id uint) (any, error)

func loadRecord[T any](db *gorm.DB, id uint) (any, error) {
	var record T
	if err := db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// notifiableLoaders is keyed by every NotifiableType a notification may carry.
var notifiableLoaders = map[models.NotifiableType]NotifiableLoader{
	models.NotifiableComment:    loadRecord[models.Comment],
	models.NotifiableLike:       loadRecord[models.Like],
	models.NotifiableReaction:   loadRecord[models.Reaction],
	models.NotifiableFriendship: loadRecord[models.Friendship],
}

// GroupedNotifications buckets a user's notifications by age.
type GroupedNotifications struct {
	Today     []models.NotificationView `json:"today"`
	Yesterday []models.NotificationView `json:"yesterday"`
	ThisWeek  []models.NotificationView `json:"this_week"`
	Older     []models.NotificationView `json:"older"`
}

// NotificationService reads and updates a user's notifications.
type NotificationService struct {
	db            *gorm.DB
	notifications repositories.NotificationRepository
	profiles      repositories.ProfileRepository
	loaders       map[models.NotifiableType]NotifiableLoader
	log           *zap.Logger
	now           func() time.Time
}

// NewNotificationService creates a NotificationService
func NewNotificationService(
	db *gorm.DB,
	notifications repositories.NotificationRepository,
	profiles repositories.ProfileRepository,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		db:            db,
		notifications: notifications,
		profiles:      profiles,
		loaders:       notifiableLoaders,
		log:           log,
		now:           time.Now,
	}
}

// List returns a page of the user's notifications newest first, each with
// its notifiable resolved, and the total count.
func (s *NotificationService) List(ctx context.Context, userID uint, page int) ([]models.NotificationView, int64, error) {
	if page < 1 {
		page = 1
	}
	notifications, total, err := s.notifications.GetByUserID(userID, page, NotificationsPerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	views, err := s.resolve(ctx, notifications)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Grouped returns the user's notifications bucketed into today, yesterday,
// the rest of the week and older.
func (s *NotificationService) Grouped(ctx context.Context, userID uint) (*GroupedNotifications, error) {
	today, yesterday, thisWeek, older, err := s.notifications.GetGrouped(userID)
	if err != nil {
		return nil, fmt.Errorf("group notifications: %w", err)
	}

	out := &GroupedNotifications{}
	for _, g := range []struct {
		from []models.Notification
		into *[]models.NotificationView
	}{
		{today, &out.Today},
		{yesterday, &out.Yesterday},
		{thisWeek, &out.ThisWeek},
		{older, &out.Older},
	} {
		views, err := s.resolve(ctx, g.from)
		if err != nil {
			return nil, err
		}
		*g.into = views
	}
	return out, nil
}

// Resolve looks up the notifiable behind n through the loader table.
func (s *NotificationService) Resolve(ctx context.Context, n *models.Notification) (any, error) {
	load, ok := s.loaders[n.NotifiableType]
	if !ok {
		return nil, fmt.Errorf("unknown notifiable type %q", n.NotifiableType)
	}
	record, err := load(s.db.WithContext(ctx), n.NotifiableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return record, err
}

func (s *NotificationService) resolve(ctx context.Context, notifications []models.Notification) ([]models.NotificationView, error) {
	actorIDs := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := s.profiles.GetProfilesByUserIDs(actorIDs)
	if err != nil {
		return nil, fmt.Errorf("load notification actors: %w", err)
	}

	views := make([]models.NotificationView, len(notifications))
	for i := range notifications {
		n := notifications[i]
		views[i] = models.NotificationView{Notification: n, Actor: models.UserCompact{ID: n.ActorID}}
		if actor, ok := actors[n.ActorID]; ok {
			views[i].Actor = actor.ToCompact()
		}
		record, err := s.Resolve(ctx, &n)
		if err != nil {
			s.log.Warn("Failed to resolve notifiable",
				zap.Uint("notification_id", n.ID),
				zap.String("notifiable_type", string(n.NotifiableType)),
				zap.Error(err))
			continue
		}
		views[i].Notifiable = record
	}
	return views, nil
}

// UnreadCount counts the user's unread notifications.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.notifications.GetUnreadCount(userID)
}

// MarkAsRead stamps read_at on one of the user's notifications. A notification
// that is already read keeps its original read_at.
func (s *NotificationService) MarkAsRead(userID, id uint) (*models.Notification, error) {
	n, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead() {
		return n, nil
	}
	at := s.now()
	if err := s.notifications.MarkAsRead(n.ID, at); err != nil {
		return nil, fmt.Errorf("mark notification %d read: %w", n.ID, err)
	}
	return s.owned(userID, id)
}

// MarkAllAsRead marks every unread notification of the user and returns how many changed.
func (s *NotificationService) MarkAllAsRead(userID uint) (int64, error) {
	return s.notifications.MarkAllAsRead(userID, s.now())
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(userID, id uint) error {
	n, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	return s.notifications.DeleteNotification(n.ID)
}

func (s *NotificationService) owned(userID, id uint) (*models.Notification, error) {
	n, err := s.notifications.GetOwned(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Notification not found")
		}
		return nil, err
	}
	return n, nil
}
