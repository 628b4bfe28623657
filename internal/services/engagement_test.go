package services

import (
	"context"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, fan := f.user(t, "author"), f.user(t, "fan")
	post := f.post(t, author.ID, models.PostStatusPublished)

	_, err := f.likes.Like(ctx, fan.ID, post.ID)
	require.NoError(t, err)

	_, err = f.likes.Like(ctx, fan.ID, post.ID)
	require.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, []string{"can like a post only once"}, appErr.Messages())

	count, err := f.likes.Count(fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.notificationsFor(t, author.ID), 1)

	require.NoError(t, f.likes.Unlike(ctx, fan.ID, post.ID))
	liked, err := f.likes.HasLiked(fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, f.notificationsFor(t, author.ID))

	err = f.likes.Unlike(ctx, fan.ID, post.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestReactionsPerType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, fan, other := f.user(t, "author"), f.user(t, "fan"), f.user(t, "other")
	post := f.post(t, author.ID, models.PostStatusPublished)

	_, err := f.reactions.Add(ctx, fan.ID, post.ID, "🔥")
	require.NoError(t, err)
	_, err = f.reactions.Add(ctx, fan.ID, post.ID, "😂")
	require.NoError(t, err, "a different type is allowed")
	_, err = f.reactions.Add(ctx, other.ID, post.ID, "🔥")
	require.NoError(t, err)

	_, err = f.reactions.Add(ctx, fan.ID, post.ID, "🔥")
	assert.True(t, apperror.Is(err, apperror.KindValidation), "same type twice: %v", err)

	_, err = f.reactions.Add(ctx, fan.ID, post.ID, "banana")
	require.True(t, apperror.Is(err, apperror.KindValidation))
	appErr, _ := apperror.As(err)
	assert.Equal(t, "reaction_type", appErr.Fields[0].Field)

	summary, err := f.reactions.Summary(fan.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "🔥", summary[0].ReactionType)
	assert.Equal(t, int64(2), summary[0].Count)
	assert.Equal(t, int64(1), summary[1].Count)

	assert.Len(t, f.notificationsFor(t, author.ID), 3)
}

func TestReactionToggleAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, fan := f.user(t, "author"), f.user(t, "fan")
	post := f.post(t, author.ID, models.PostStatusPublished)

	reaction, added, err := f.reactions.Toggle(ctx, fan.ID, post.ID, "👍")
	require.NoError(t, err)
	assert.True(t, added)
	require.NotNil(t, reaction)

	reaction, added, err = f.reactions.Toggle(ctx, fan.ID, post.ID, "👍")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Nil(t, reaction)
	assert.Empty(t, f.notificationsFor(t, author.ID))

	reaction, err = f.reactions.Add(ctx, fan.ID, post.ID, "👍")
	require.NoError(t, err)

	err = f.reactions.Remove(ctx, author.ID, reaction.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	require.NoError(t, f.reactions.Remove(ctx, fan.ID, reaction.ID))
	assert.Equal(t, int64(0), f.count(t, &models.Reaction{}, "post_id = ?", post.ID))
	assert.Empty(t, f.notificationsFor(t, author.ID))
}

func TestCommentReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, fan := f.user(t, "author"), f.user(t, "fan")
	post := f.post(t, author.ID, models.PostStatusPublished)
	otherPost := f.post(t, author.ID, models.PostStatusPublished)

	root, err := f.comments.Create(ctx, fan.ID, post.ID, "First!", nil)
	require.NoError(t, err)
	assert.False(t, root.IsReply())

	reply, err := f.comments.Create(ctx, author.ID, post.ID, "Thanks", &root.ID)
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	_, err = f.comments.Create(ctx, fan.ID, post.ID, "nested", &reply.ID)
	assert.True(t, apperror.Is(err, apperror.KindValidation), "reply to reply: %v", err)

	_, err = f.comments.Create(ctx, fan.ID, otherPost.ID, "elsewhere", &root.ID)
	assert.True(t, apperror.Is(err, apperror.KindValidation), "parent on another post: %v", err)

	missing := uint(9999)
	_, err = f.comments.Create(ctx, fan.ID, post.ID, "ghost", &missing)
	assert.True(t, apperror.Is(err, apperror.KindValidation), "missing parent: %v", err)

	_, err = f.comments.Create(ctx, fan.ID, post.ID, "   ", nil)
	assert.True(t, apperror.Is(err, apperror.KindValidation), "blank: %v", err)

	second, err := f.comments.Create(ctx, author.ID, post.ID, "Second root", nil)
	require.NoError(t, err)

	threads, err := f.comments.ForPost(fan.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, root.ID, threads[0].ID)
	assert.Equal(t, "fan", threads[0].Author.Username)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
	assert.Equal(t, "author", threads[0].Replies[0].Author.Username)
	assert.Equal(t, second.ID, threads[1].ID)
	assert.NotNil(t, threads[1].Replies)
	assert.Empty(t, threads[1].Replies)

	// Only the fan's root comment notifies; the author's own comments don't.
	assert.Len(t, f.notificationsFor(t, author.ID), 1)
}

func TestCommentOnHiddenDraft(t *testing.T) {
	f := newFixture(t)
	author, fan := f.user(t, "author"), f.user(t, "fan")
	draft := f.post(t, author.ID, models.PostStatusDraft)

	_, err := f.comments.Create(context.Background(), fan.ID, draft.ID, "hello", nil)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteCommentTakesReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, fan := f.user(t, "author"), f.user(t, "fan")
	post := f.post(t, author.ID, models.PostStatusPublished)

	root, err := f.comments.Create(ctx, fan.ID, post.ID, "First!", nil)
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, author.ID, post.ID, "Thanks", &root.ID)
	require.NoError(t, err)

	err = f.comments.Delete(ctx, author.ID, root.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	require.NoError(t, f.comments.Delete(ctx, fan.ID, root.ID))
	assert.Equal(t, int64(0), f.count(t, &models.Comment{}, "post_id = ?", post.ID))
	assert.Empty(t, f.notificationsFor(t, author.ID))

	err = f.comments.Delete(ctx, fan.ID, root.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
