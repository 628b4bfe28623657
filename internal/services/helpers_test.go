package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/jobs"
	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/realtime"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/internal/testutil"
	"github.com/anonto42/weabotalk/backend/validators"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type push struct {
	recipientID uint
	payload     realtime.Payload
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	pushes []push
	err    error
}

func (b *recordingBroadcaster) BroadcastTo(_ context.Context, recipientID uint, payload realtime.Payload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushes = append(b.pushes, push{recipientID: recipientID, payload: payload})
	return b.err
}

func (b *recordingBroadcaster) all() []push {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]push(nil), b.pushes...)
}

type recordingQueue struct {
	inline *jobs.InlineQueue
	jobs   []jobs.Job
	err    error
}

func (q *recordingQueue) Enqueue(ctx context.Context, job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	if q.err != nil {
		return q.err
	}
	return q.inline.Enqueue(ctx, job)
}

type sentMail struct {
	kind, to, token string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendConfirmation(to, token string) error {
	m.sent = append(m.sent, sentMail{"confirmation", to, token})
	return nil
}

func (m *fakeMailer) SendResetPassword(to, token string) error {
	m.sent = append(m.sent, sentMail{"reset_password", to, token})
	return nil
}

func (m *fakeMailer) SendUnlock(to, token string) error {
	m.sent = append(m.sent, sentMail{"unlock", to, token})
	return nil
}

type fixture struct {
	db          *gorm.DB
	broadcaster *recordingBroadcaster
	queue       *recordingQueue
	images      *testutil.MemoryImages
	mailer      *fakeMailer

	notifier      *Notifier
	notifications *NotificationService
	friendships   *FriendshipService
	posts         *PostService
	drafts        *DraftService
	search        *SearchService
	comments      *CommentService
	likes         *LikeService
	reactions     *ReactionService
	accounts      *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()
	v := validators.NewValidator()

	userRepo := repositories.NewPostgresUserRepository(db)
	profileRepo := repositories.NewPostgresProfileRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	reactionRepo := repositories.NewPostgresReactionRepository(db)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	f := &fixture{
		db:          db,
		broadcaster: &recordingBroadcaster{},
		images:      &testutil.MemoryImages{},
		mailer:      &fakeMailer{},
	}
	dispatcher := jobs.NewDispatcher(log)
	f.queue = &recordingQueue{inline: jobs.NewInlineQueue(dispatcher)}

	f.notifier = NewNotifier(db, notificationRepo, commentRepo, postRepo, f.broadcaster, log)
	f.notifications = NewNotificationService(db, notificationRepo, profileRepo, log)
	f.friendships = NewFriendshipService(db, friendshipRepo, userRepo, profileRepo, notificationRepo, f.notifier, log)
	f.posts = NewPostService(db, postRepo, f.images, notificationRepo, v, log)
	f.drafts = NewDraftService(postRepo, f.posts)
	f.search = NewSearchService(profileRepo, friendshipRepo)
	f.comments = NewCommentService(db, commentRepo, notificationRepo, profileRepo, f.posts, f.queue, f.notifier, v, log)
	f.likes = NewLikeService(db, likeRepo, notificationRepo, f.posts, f.notifier, log)
	f.reactions = NewReactionService(db, reactionRepo, notificationRepo, f.posts, f.notifier, v, log)
	f.accounts = NewAccountService(db, userRepo, profileRepo, notificationRepo, f.images, f.queue, f.mailer, v, log)

	dispatcher.Handle(jobs.KindCommentNotification, f.notifier.NotifyComment)
	dispatcher.Handle(jobs.KindConfirmationMail, f.accounts.SendConfirmationMail)
	dispatcher.Handle(jobs.KindResetPasswordMail, f.accounts.SendResetPasswordMail)
	dispatcher.Handle(jobs.KindUnlockMail, f.accounts.SendUnlockMail)
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	return testutil.CreateUser(t, f.db, username)
}

func (f *fixture) post(t *testing.T, userID uint, status models.PostStatus) *models.Post {
	return testutil.CreatePost(t, f.db, userID, status)
}

func (f *fixture) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("id").Find(&out).Error)
	return out
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

var errBoom = errors.New("boom")
