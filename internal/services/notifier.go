// Package services holds the application operations the HTTP handlers and
// background jobs call.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/realtime"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event is a qualifying social action that fans out to one recipient.
type Event struct {
	Type        models.NotificationType
	RecipientID uint
	ActorID     uint
	Notifiable  models.Notifiable
	Payload     realtime.Payload
}

func (e Event) selfInflicted() bool {
	return e.ActorID == e.RecipientID
}

func commentEvent(c *models.Comment, post *models.Post) Event {
	return Event{
		Type:        models.NotificationCommentCreated,
		RecipientID: post.UserID,
		ActorID:     c.UserID,
		Notifiable:  models.Notifiable{Type: models.NotifiableComment, ID: c.ID},
		Payload:     realtime.Payload{"type": "comment", "post_id": c.PostID, "user_id": c.UserID},
	}
}

func likeEvent(l *models.Like, post *models.Post) Event {
	return Event{
		Type:        models.NotificationLikeCreated,
		RecipientID: post.UserID,
		ActorID:     l.UserID,
		Notifiable:  models.Notifiable{Type: models.NotifiableLike, ID: l.ID},
		Payload:     realtime.Payload{"type": "like", "post_id": l.PostID, "user_id": l.UserID},
	}
}

func reactionEvent(r *models.Reaction, post *models.Post) Event {
	return Event{
		Type:        models.NotificationReactionCreated,
		RecipientID: post.UserID,
		ActorID:     r.UserID,
		Notifiable:  models.Notifiable{Type: models.NotifiableReaction, ID: r.ID},
		Payload: realtime.Payload{
			"type":          "reaction",
			"post_id":       r.PostID,
			"user_id":       r.UserID,
			"reaction_type": r.ReactionType,
		},
	}
}

func friendRequestEvent(f *models.Friendship) Event {
	return Event{
		Type:        models.NotificationFriendRequestSent,
		RecipientID: f.FriendID,
		ActorID:     f.UserID,
		Notifiable:  models.Notifiable{Type: models.NotifiableFriendship, ID: f.ID},
		Payload:     realtime.Payload{"type": "friend_request", "user_id": f.UserID},
	}
}

func friendAcceptedEvent(f *models.Friendship) Event {
	return Event{
		Type:        models.NotificationFriendRequestAccepted,
		RecipientID: f.UserID,
		ActorID:     f.FriendID,
		Notifiable:  models.Notifiable{Type: models.NotifiableFriendship, ID: f.ID},
		Payload:     realtime.Payload{"type": "friend_request_accepted", "friend_id": f.FriendID},
	}
}

// Notifier persists notifications and pushes them to the recipient's live
// channel. The record is written with the triggering change; the push runs
// after commit and never fails the caller.
type Notifier struct {
	db            *gorm.DB
	notifications repositories.NotificationRepository
	comments      repositories.CommentRepository
	posts         repositories.PostRepository
	broadcaster   realtime.Broadcaster
	log           *zap.Logger
}

// NewNotifier creates a Notifier
func NewNotifier(
	db *gorm.DB,
	notifications repositories.NotificationRepository,
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	broadcaster realtime.Broadcaster,
	log *zap.Logger,
) *Notifier {
	if broadcaster == nil {
		broadcaster = realtime.Nop{}
	}
	return &Notifier{
		db:            db,
		notifications: notifications,
		comments:      comments,
		posts:         posts,
		broadcaster:   broadcaster,
		log:           log,
	}
}

// Record stores the notification for ev using tx. It returns nil, nil when
// the actor is the recipient.
func (n *Notifier) Record(tx *gorm.DB, ev Event) (*models.Notification, error) {
	if ev.selfInflicted() {
		return nil, nil
	}
	notification := &models.Notification{
		UserID:           ev.RecipientID,
		ActorID:          ev.ActorID,
		NotificationType: ev.Type,
		NotifiableType:   ev.Notifiable.Type,
		NotifiableID:     ev.Notifiable.ID,
	}
	if err := n.notifications.WithTx(tx).CreateNotification(notification); err != nil {
		return nil, fmt.Errorf("record %s notification: %w", ev.Type, err)
	}
	return notification, nil
}

// Push delivers ev's payload. Failures are logged and dropped.
func (n *Notifier) Push(ctx context.Context, ev Event) {
	if ev.selfInflicted() {
		return
	}
	if err := n.broadcaster.BroadcastTo(ctx, ev.RecipientID, ev.Payload); err != nil {
		n.log.Warn("Failed to push notification",
			zap.String("type", string(ev.Type)),
			zap.Uint("recipient_id", ev.RecipientID),
			zap.Error(err))
	}
}

// Notify records ev outside any caller transaction, then pushes it.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	notification, err := n.Record(n.db.WithContext(ctx), ev)
	if err != nil {
		return err
	}
	if notification != nil {
		n.Push(ctx, ev)
	}
	return nil
}

// NotifyComment tells a post's author about a new comment. It is the
// comment_notification job handler, so a comment or post deleted since the
// job was queued is skipped.
func (n *Notifier) NotifyComment(ctx context.Context, commentID uint) error {
	comment, err := n.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			n.log.Debug("Comment gone before notification", zap.Uint("comment_id", commentID))
			return nil
		}
		return fmt.Errorf("load comment %d: %w", commentID, err)
	}
	post, err := n.posts.GetPostByID(comment.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load post %d: %w", comment.PostID, err)
	}
	return n.Notify(ctx, commentEvent(comment, post))
}
