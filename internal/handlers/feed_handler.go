package handlers

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	posts    *services.PostService
	likes    *services.LikeService
	profiles repositories.ProfileRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService, likes *services.LikeService, profiles repositories.ProfileRepository) *FeedHandler {
	return &FeedHandler{posts: posts, likes: likes, profiles: profiles}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.Post
	Author     models.UserCompact `json:"author"`
	LikesCount int64              `json:"likes_count"`
	IsLiked    bool               `json:"is_liked"`
}

// GetFeed returns a page of published posts, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	page := pageParam(c)

	posts, total, err := h.posts.Feed(page)
	if err != nil {
		return err
	}

	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
	}
	authors, err := h.profiles.GetProfilesByUserIDs(authorIDs)
	if err != nil {
		return err
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = EnrichedPost{Post: p, Author: models.UserCompact{ID: p.UserID}}
		if author, ok := authors[p.UserID]; ok {
			enriched[i].Author = author.ToCompact()
		}
		if enriched[i].LikesCount, err = h.likes.Count(currentUserID, p.ID); err != nil {
			return err
		}
		if enriched[i].IsLiked, err = h.likes.HasLiked(currentUserID, p.ID); err != nil {
			return err
		}
	}

	return paginated(c, "posts", enriched, page, services.PostsPerPage, total)
}
