package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
)

// SearchLimit caps the ranked result set.
const SearchLimit = 20

const noBio = "No bio yet"

// ProfileResult is a profile search hit with display details.
type ProfileResult struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	FriendsCount int64  `json:"friends_count"`
}

// SearchService finds profiles by username or bio.
type SearchService struct {
	profiles    repositories.ProfileRepository
	friendships repositories.FriendshipRepository
}

// NewSearchService creates a SearchService
func NewSearchService(profiles repositories.ProfileRepository, friendships repositories.FriendshipRepository) *SearchService {
	return &SearchService{profiles: profiles, friendships: friendships}
}

// Search returns up to SearchLimit profiles matching query, most relevant
// first. A blank query matches nothing.
func (s *SearchService) Search(query string) ([]models.Profile, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Profile{}, nil
	}

	matches, err := s.profiles.SearchProfiles("%" + escapeLike(q) + "%")
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	ranked := Rank(matches, q)
	if len(ranked) > SearchLimit {
		ranked = ranked[:SearchLimit]
	}
	return ranked, nil
}

// SearchWithDetails is Search with bio placeholder and friend counts filled in.
func (s *SearchService) SearchWithDetails(query string) ([]ProfileResult, error) {
	profiles, err := s.Search(query)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	counts, err := s.friendships.CountFriendsByUserIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("count friends: %w", err)
	}

	results := make([]ProfileResult, 0, len(profiles))
	for _, p := range profiles {
		bio := p.Bio
		if strings.TrimSpace(bio) == "" {
			bio = noBio
		}
		results = append(results, ProfileResult{
			ID:           p.UserID,
			Username:     p.Username,
			Bio:          bio,
			AvatarURL:    p.AvatarURL,
			FriendsCount: counts[p.UserID],
		})
	}
	return results, nil
}

// Rank orders profiles by relevance to the lower-cased query: exact
// username, username prefix, username substring, then bio only. Order within
// a bucket is kept.
func Rank(profiles []models.Profile, query string) []models.Profile {
	ranked := make([]models.Profile, len(profiles))
	copy(ranked, profiles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return bucket(ranked[i].Username, query) < bucket(ranked[j].Username, query)
	})
	return ranked
}

func bucket(username, query string) int {
	name := strings.ToLower(username)
	switch {
	case name == query:
		return 0
	case strings.HasPrefix(name, query):
		return 1
	case strings.Contains(name, query):
		return 2
	default:
		return 3
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
