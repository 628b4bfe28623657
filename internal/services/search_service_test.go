package services

import (
	"context"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usernames(profiles []models.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Username)
	}
	return out
}

func TestRank(t *testing.T) {
	profiles := []models.Profile{
		{Username: "joanna"},
		{Username: "bio_only", Bio: "friends with ann"},
		{Username: "annette"},
		{Username: "ANN"},
		{Username: "annabel"},
	}
	assert.Equal(t, []string{"ANN", "annette", "annabel", "joanna", "bio_only"}, usernames(Rank(profiles, "ann")))
}

func TestSearchOrdersByBucket(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"joanna", "bob", "annette", "ann"} {
		f.user(t, name)
	}

	got, err := f.search.Search("  ANN ")
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "annette", "joanna"}, usernames(got))
}

func TestSearchBlankQuery(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ann")

	got, err := f.search.Search("   ")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchEscapesWildcards(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a_b")
	f.user(t, "axb")

	got, err := f.search.Search("a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, usernames(got))

	got, err = f.search.Search("%")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchCapsAfterRanking(t *testing.T) {
	f := newFixture(t)
	// Earlier ids only match on bio; the exact match is created last.
	for i := 0; i < SearchLimit+2; i++ {
		u := f.user(t, "user"+string(rune('a'+i)))
		require.NoError(t, f.db.Model(&models.Profile{}).Where("user_id = ?", u.ID).Update("bio", "zed fan").Error)
	}
	f.user(t, "zed")

	got, err := f.search.Search("zed")
	require.NoError(t, err)
	require.Len(t, got, SearchLimit)
	assert.Equal(t, "zed", got[0].Username)
}

func TestSearchWithDetails(t *testing.T) {
	f := newFixture(t)
	ann, bob := f.user(t, "ann"), f.user(t, "bob")
	require.NoError(t, f.db.Model(&models.Profile{}).Where("user_id = ?", bob.ID).Update("bio", "knows ann").Error)

	fr, err := f.friendships.Request(context.Background(), bob.ID, ann.ID)
	require.NoError(t, err)
	_, err = f.friendships.Accept(context.Background(), ann.ID, fr.ID)
	require.NoError(t, err)

	got, err := f.search.SearchWithDetails("ann")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ProfileResult{ID: ann.ID, Username: "ann", Bio: "No bio yet", FriendsCount: 1}, got[0])
	assert.Equal(t, ProfileResult{ID: bob.ID, Username: "bob", Bio: "knows ann", FriendsCount: 1}, got[1])
}

func TestSearchMatchesBioWithAmpersand(t *testing.T) {
	f := newFixture(t)
	bob := f.user(t, "bob")
	f.user(t, "carl")

	bio := "rock & roll forever"
	_, err := f.accounts.UpdateProfile(bob.ID, models.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)

	got, err := f.search.Search("Rock & Roll")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, usernames(got))

	got, err = f.search.Search("it's")
	require.NoError(t, err)
	assert.Empty(t, got)
}
