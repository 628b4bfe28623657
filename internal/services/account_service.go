package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/weabotalk/backend/internal/jobs"
	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/anonto42/weabotalk/backend/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// MaxFailedAttempts locks an account after this many wrong passwords in a row.
	MaxFailedAttempts = 5
	// ResetPasswordWithin is how long a password reset token stays valid.
	ResetPasswordWithin = 6 * time.Hour

	usernameMinLen      = 3
	usernameBaseMaxLen  = 26
	usernameSuffixTries = 5
)

var (
	errInvalidCredentials = apperror.Unauthorized("Invalid email or password")
	errAccountLocked      = apperror.Unauthorized("Your account is locked. Check your email for unlock instructions")
	errUnconfirmed        = apperror.Unauthorized("You have to confirm your email address before continuing")
	errUsernameTaken      = apperror.Invalid("username", "has already been taken")

	usernameStrip = regexp.MustCompile(`[^a-z0-9_]`)
)

// AccountMailer sends the account emails. *mailer.Mailer satisfies it.
type AccountMailer interface {
	SendConfirmation(to, token string) error
	SendResetPassword(to, token string) error
	SendUnlock(to, token string) error
}

// AccountService handles registration, sign-in and profile upkeep.
type AccountService struct {
	db            *gorm.DB
	users         repositories.UserRepository
	profiles      repositories.ProfileRepository
	notifications repositories.NotificationRepository
	images        repositories.PostImageRepository
	queue         jobs.Queue
	mailer        AccountMailer
	validator     StructValidator
	log           *zap.Logger
	now           func() time.Time
	suffix        func() int
}

// NewAccountService creates an AccountService
func NewAccountService(
	db *gorm.DB,
	users repositories.UserRepository,
	profiles repositories.ProfileRepository,
	notifications repositories.NotificationRepository,
	images repositories.PostImageRepository,
	queue jobs.Queue,
	mailer AccountMailer,
	validator StructValidator,
	log *zap.Logger,
) *AccountService {
	return &AccountService{
		db:            db,
		users:         users,
		profiles:      profiles,
		notifications: notifications,
		images:        images,
		queue:         queue,
		mailer:        mailer,
		validator:     validator,
		log:           log,
		now:           time.Now,
		suffix:        func() int { return 1000 + rand.IntN(9000) },
	}
}

// Register creates a user with its profile and queues the confirmation email.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      string(hash),
		ConfirmationToken: uuid.NewString(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		profiles := s.profiles.WithTx(tx)

		if err := users.CreateUser(user); err != nil {
			if isDuplicate(err) {
				return apperror.Invalid("email", "has already been taken")
			}
			return fmt.Errorf("create user: %w", err)
		}

		username, err := s.uniqueUsername(profiles, user.Email)
		if err != nil {
			return err
		}
		profile := &models.Profile{UserID: user.ID, Username: username}
		if err := profiles.CreateProfile(profile); err != nil {
			if isDuplicate(err) {
				return errUsernameTaken
			}
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(ctx, jobs.KindConfirmationMail, user.ID)
	return user, nil
}

// UsernameFromEmail derives the base username from an email's local part.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	name := usernameStrip.ReplaceAllString(local, "")
	for len(name) < usernameMinLen {
		name += "_"
	}
	if len(name) > usernameBaseMaxLen {
		name = name[:usernameBaseMaxLen]
	}
	return name
}

func (s *AccountService) uniqueUsername(profiles repositories.ProfileRepository, email string) (string, error) {
	base := UsernameFromEmail(email)
	candidate := base
	for i := 0; i <= usernameSuffixTries; i++ {
		taken, err := profiles.UsernameTaken(candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, s.suffix())
	}
	return "", apperror.Invalid("username", "could not be generated, please try again")
}

// Confirm marks the email behind token as confirmed.
func (s *AccountService) Confirm(token string) (*models.User, error) {
	user, err := s.users.GetUserByConfirmationToken(token)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Invalid("confirmation_token", "is invalid")
		}
		return nil, err
	}
	now := s.now()
	user.ConfirmedAt = &now
	user.ConfirmationToken = ""
	if err := s.users.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("confirm user %d: %w", user.ID, err)
	}
	return user, nil
}

// Authenticate checks credentials. Wrong passwords count towards a lock;
// the lock mails an unlock link.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if user.Locked() {
		return nil, errAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		user.FailedAttempts++
		locked := user.FailedAttempts >= MaxFailedAttempts
		if locked {
			now := s.now()
			user.LockedAt = &now
			user.UnlockToken = uuid.NewString()
		}
		if err := s.users.UpdateUser(user); err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		if locked {
			s.log.Info("Account locked", zap.Uint("user_id", user.ID))
			s.enqueue(ctx, jobs.KindUnlockMail, user.ID)
			return nil, errAccountLocked
		}
		return nil, errInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, errUnconfirmed
	}
	if user.FailedAttempts != 0 {
		user.FailedAttempts = 0
		if err := s.users.UpdateUser(user); err != nil {
			return nil, fmt.Errorf("reset failed attempts: %w", err)
		}
	}
	return user, nil
}

// Unlock lifts a sign-in lock.
func (s *AccountService) Unlock(token string) error {
	user, err := s.users.GetUserByUnlockToken(token)
	if err != nil {
		if isNotFound(err) {
			return apperror.Invalid("unlock_token", "is invalid")
		}
		return err
	}
	user.LockedAt = nil
	user.FailedAttempts = 0
	user.UnlockToken = ""
	return s.users.UpdateUser(user)
}

// RequestPasswordReset mails a reset link. Unknown emails are ignored so
// the response does not reveal which addresses exist.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	now := s.now()
	user.ResetPasswordToken = uuid.NewString()
	user.ResetPasswordSentAt = &now
	if err := s.users.UpdateUser(user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	s.enqueue(ctx, jobs.KindResetPasswordMail, user.ID)
	return nil
}

// ResetPassword sets a new password with a token younger than ResetPasswordWithin.
func (s *AccountService) ResetPassword(token, password string) error {
	user, err := s.users.GetUserByResetPasswordToken(token)
	if err != nil {
		if isNotFound(err) {
			return apperror.Invalid("reset_password_token", "is invalid")
		}
		return err
	}
	if user.ResetPasswordSentAt == nil || s.now().Sub(*user.ResetPasswordSentAt) > ResetPasswordWithin {
		return apperror.Invalid("reset_password_token", "has expired, please request a new one")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = ""
	user.ResetPasswordSentAt = nil
	return s.users.UpdateUser(user)
}

// Profile returns userID's profile.
func (s *AccountService) Profile(userID uint) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByUserID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies the set fields of req to userID's profile.
func (s *AccountService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		profile.Username = strings.TrimSpace(*req.Username)
	}
	if req.Bio != nil {
		profile.Bio = sanitize.UserContent(*req.Bio)
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.BannerURL != nil {
		profile.BannerURL = strings.TrimSpace(*req.BannerURL)
	}
	if err := s.validator.Validate(profile); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateProfile(profile); err != nil {
		if isDuplicate(err) {
			return nil, errUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// Delete removes a user and everything they own, including notifications
// pointing at content that goes with them.
func (s *AccountService) Delete(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.users.WithTx(tx).GetUserByID(userID); err != nil {
			if isNotFound(err) {
				return apperror.NotFound("User not found")
			}
			return err
		}
		if err := s.notifications.WithTx(tx).DeleteForUser(userID); err != nil {
			return fmt.Errorf("delete user notifications: %w", err)
		}
		return s.users.WithTx(tx).DeleteUser(userID)
	})
	if err != nil {
		return err
	}
	if err := s.images.DeleteImagesByUserID(ctx, userID); err != nil {
		s.log.Error("Failed to delete user images", zap.Uint("user_id", userID), zap.Error(err))
	}
	return nil
}

func (s *AccountService) enqueue(ctx context.Context, kind jobs.Kind, userID uint) {
	if err := s.queue.Enqueue(ctx, jobs.Job{Kind: kind, RecordID: userID}); err != nil {
		s.log.Error("Failed to enqueue account mail",
			zap.String("kind", string(kind)), zap.Uint("user_id", userID), zap.Error(err))
	}
}

// SendConfirmationMail is the confirmation_mail job handler.
func (s *AccountService) SendConfirmationMail(_ context.Context, userID uint) error {
	return s.mail(userID, func(u *models.User) (string, func(string, string) error) {
		return u.ConfirmationToken, s.mailer.SendConfirmation
	})
}

// SendResetPasswordMail is the reset_password_mail job handler.
func (s *AccountService) SendResetPasswordMail(_ context.Context, userID uint) error {
	return s.mail(userID, func(u *models.User) (string, func(string, string) error) {
		return u.ResetPasswordToken, s.mailer.SendResetPassword
	})
}

// SendUnlockMail is the unlock_mail job handler.
func (s *AccountService) SendUnlockMail(_ context.Context, userID uint) error {
	return s.mail(userID, func(u *models.User) (string, func(string, string) error) {
		return u.UnlockToken, s.mailer.SendUnlock
	})
}

// mail sends one account email. A user gone or a token already used since
// the job was queued means there is nothing to send.
func (s *AccountService) mail(userID uint, pick func(*models.User) (string, func(string, string) error)) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	token, send := pick(user)
	if token == "" {
		return nil
	}
	return send(user.Email, token)
}
