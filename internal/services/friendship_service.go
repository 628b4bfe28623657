package services

import (
	"context"
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errFriendshipNotFound  = apperror.NotFound("Friendship not found")
	errDuplicateFriendship = apperror.Invalid("user_id", "can only have one friendship request per user")
	errNotPending          = apperror.Invalid("status", "only pending friendship requests can be accepted")
)

// FriendshipService runs the friendship state machine. Edges are directed;
// an accepted friendship is two accepted edges.
type FriendshipService struct {
	db            *gorm.DB
	friendships   repositories.FriendshipRepository
	users         repositories.UserRepository
	profiles      repositories.ProfileRepository
	notifications repositories.NotificationRepository
	notifier      *Notifier
	log           *zap.Logger
}

// NewFriendshipService creates a FriendshipService
func NewFriendshipService(
	db *gorm.DB,
	friendships repositories.FriendshipRepository,
	users repositories.UserRepository,
	profiles repositories.ProfileRepository,
	notifications repositories.NotificationRepository,
	notifier *Notifier,
	log *zap.Logger,
) *FriendshipService {
	return &FriendshipService{
		db:            db,
		friendships:   friendships,
		users:         users,
		profiles:      profiles,
		notifications: notifications,
		notifier:      notifier,
		log:           log,
	}
}

// Request creates a pending edge from requester to target and notifies the target.
func (s *FriendshipService) Request(ctx context.Context, requesterID, targetID uint) (*models.Friendship, error) {
	if requesterID == targetID {
		return nil, apperror.Invalid("friend_id", "cannot add yourself as a friend")
	}
	if _, err := s.users.GetUserByID(targetID); err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	friendship := &models.Friendship{UserID: requesterID, FriendID: targetID, Status: models.FriendshipPending}
	ev := friendRequestEvent(friendship)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edges := s.friendships.WithTx(tx)

		reverse, err := edges.GetFriendship(targetID, requesterID)
		switch {
		case err == nil && reverse.Status == models.FriendshipBlocked:
			return apperror.Forbidden("You can't send a friendship request to this user")
		case err != nil && !isNotFound(err):
			return err
		}

		if _, err := edges.GetFriendship(requesterID, targetID); err == nil {
			return errDuplicateFriendship
		} else if !isNotFound(err) {
			return err
		}

		if err := edges.CreateFriendship(friendship); err != nil {
			if isDuplicate(err) {
				return errDuplicateFriendship
			}
			return fmt.Errorf("create friendship: %w", err)
		}

		ev = friendRequestEvent(friendship)
		_, err = s.notifier.Record(tx, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Push(ctx, ev)
	return friendship, nil
}

// Accept moves a pending request addressed to actor to accepted, makes sure
// the mirrored accepted edge exists and notifies the requester.
func (s *FriendshipService) Accept(ctx context.Context, actorID, id uint) (*models.Friendship, error) {
	friendship, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if friendship.FriendID != actorID {
		return nil, apperror.Forbidden("You are not allowed to accept this friendship request")
	}
	if friendship.Status != models.FriendshipPending {
		return nil, errNotPending
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edges := s.friendships.WithTx(tx)

		accepted, err := edges.TransitionStatus(friendship.ID, models.FriendshipPending, models.FriendshipAccepted)
		if err != nil {
			return fmt.Errorf("accept friendship: %w", err)
		}
		if !accepted {
			return errNotPending
		}

		reverse, err := edges.GetFriendship(friendship.FriendID, friendship.UserID)
		switch {
		case isNotFound(err):
			mirror := &models.Friendship{
				UserID:   friendship.FriendID,
				FriendID: friendship.UserID,
				Status:   models.FriendshipAccepted,
			}
			if err := edges.CreateFriendship(mirror); err != nil {
				if isDuplicate(err) {
					return apperror.Invalid("status", "friendship was already accepted")
				}
				return fmt.Errorf("create reverse friendship: %w", err)
			}
		case err != nil:
			return err
		case reverse.Status == models.FriendshipBlocked:
			return apperror.Invalid("status", "cannot accept a request from a user you have blocked")
		case reverse.Status == models.FriendshipPending:
			if err := edges.UpdateStatus(reverse.ID, models.FriendshipAccepted); err != nil {
				return fmt.Errorf("promote reverse friendship: %w", err)
			}
		}

		friendship.Status = models.FriendshipAccepted

		_, err = s.notifier.Record(tx, friendAcceptedEvent(friendship))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Push(ctx, friendAcceptedEvent(friendship))
	return friendship, nil
}

// Reject deletes a pending request addressed to actor.
func (s *FriendshipService) Reject(ctx context.Context, actorID, id uint) error {
	friendship, err := s.load(id)
	if err != nil {
		return err
	}
	if friendship.FriendID != actorID {
		return apperror.Forbidden("You are not allowed to reject this friendship request")
	}
	if friendship.Status != models.FriendshipPending {
		return apperror.Invalid("status", "only pending friendship requests can be rejected")
	}
	return s.destroy(ctx, friendship)
}

// Block marks an edge blocked. Either end may block; the mirrored edge is left alone.
func (s *FriendshipService) Block(ctx context.Context, actorID, id uint) (*models.Friendship, error) {
	friendship, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !friendship.Involves(actorID) {
		return nil, apperror.Forbidden("You are not allowed to block this friendship")
	}
	if err := s.friendships.WithTx(s.db.WithContext(ctx)).UpdateStatus(friendship.ID, models.FriendshipBlocked); err != nil {
		return nil, fmt.Errorf("block friendship: %w", err)
	}
	friendship.Status = models.FriendshipBlocked
	return friendship, nil
}

// Remove deletes one of actor's own edges: an unfriend or a cancelled request.
func (s *FriendshipService) Remove(ctx context.Context, actorID, id uint) error {
	friendship, err := s.load(id)
	if err != nil {
		return err
	}
	if friendship.UserID != actorID {
		return errFriendshipNotFound
	}
	return s.destroy(ctx, friendship)
}

// destroy deletes an edge, its notifications and the mirrored accepted edge
// with its notifications, in one transaction.
func (s *FriendshipService) destroy(ctx context.Context, friendship *models.Friendship) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edges := s.friendships.WithTx(tx)
		notifications := s.notifications.WithTx(tx)

		ids := []uint{friendship.ID}
		reverse, err := edges.GetFriendship(friendship.FriendID, friendship.UserID)
		switch {
		case err == nil && reverse.Status == models.FriendshipAccepted:
			ids = append(ids, reverse.ID)
		case err != nil && !isNotFound(err):
			return err
		}

		if err := notifications.DeleteForNotifiable(models.NotifiableFriendship, ids...); err != nil {
			return fmt.Errorf("delete friendship notifications: %w", err)
		}
		for _, id := range ids {
			if err := edges.DeleteFriendship(id); err != nil {
				return fmt.Errorf("delete friendship %d: %w", id, err)
			}
		}
		return nil
	})
}

func (s *FriendshipService) load(id uint) (*models.Friendship, error) {
	friendship, err := s.friendships.GetFriendshipByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, errFriendshipNotFound
		}
		return nil, err
	}
	return friendship, nil
}

// Friends returns the profiles of userID's friends.
func (s *FriendshipService) Friends(userID uint) ([]models.UserCompact, error) {
	profiles, err := s.friendships.GetFriends(userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	out := make([]models.UserCompact, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].ToCompact())
	}
	return out, nil
}

// PendingRequests returns pending requests addressed to userID, each with the requester.
func (s *FriendshipService) PendingRequests(userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendships.GetIncomingPending(userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return s.withCounterpart(requests, func(f models.Friendship) uint { return f.UserID })
}

// SentRequests returns pending requests sent by userID, each with the target.
func (s *FriendshipService) SentRequests(userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.friendships.GetOutgoingPending(userID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	return s.withCounterpart(requests, func(f models.Friendship) uint { return f.FriendID })
}

func (s *FriendshipService) withCounterpart(requests []models.Friendship, other func(models.Friendship) uint) ([]models.FriendRequestView, error) {
	ids := make([]uint, 0, len(requests))
	for _, f := range requests {
		ids = append(ids, other(f))
	}
	profiles, err := s.profiles.GetProfilesByUserIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load request profiles: %w", err)
	}

	views := make([]models.FriendRequestView, 0, len(requests))
	for _, f := range requests {
		view := models.FriendRequestView{Friendship: f, User: models.UserCompact{ID: other(f)}}
		if p, ok := profiles[other(f)]; ok {
			view.User = p.ToCompact()
		}
		views = append(views, view)
	}
	return views, nil
}

// FriendsCount counts userID's friends.
func (s *FriendshipService) FriendsCount(userID uint) (int64, error) {
	return s.friendships.CountFriends(userID)
}
