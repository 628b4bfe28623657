package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts and their images
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // ?user_id= lists one user's posts
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)

	g.POST("/posts/:id/images", h.UploadImage)
	g.GET("/posts/:id/images", h.GetImages)
	g.GET("/posts/:id/images/:image_id", h.GetImage)
}

// CreatePost publishes a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(userID, models.PostFields{Title: req.Title, Content: req.Content})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"post": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.Get(userID, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"post": post})
}

// GetPosts lists a user's posts, the caller's own when user_id is absent
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	authorID := userID
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user_id")
		}
		authorID = uint(id)
	}

	posts, err := h.posts.ByUser(userID, authorID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

// UpdatePost edits one of the caller's drafts
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post, err := h.posts.Update(userID, id, models.PostFields{Title: req.Title, Content: req.Content})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"post": post})
}

// DeletePost deletes one of the caller's posts
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.posts.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage attaches the multipart "image" file to one of the caller's posts
func (h *PostHandler) UploadImage(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing image file")
	}
	if file.Size > models.MaxImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image must be smaller than 10MB")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read image file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, models.MaxImageBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read image file")
	}

	image, err := h.posts.AttachImage(c.Request().Context(), userID, id, file.Filename, data)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"image": image})
}

// GetImages lists a post's images without their bytes
func (h *PostHandler) GetImages(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	images, err := h.posts.Images(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"images": images})
}

// GetImage streams one image's bytes
func (h *PostHandler) GetImage(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	image, err := h.posts.Image(c.Request().Context(), userID, id, c.Param("image_id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	return c.Blob(http.StatusOK, image.ContentType, image.Data)
}
