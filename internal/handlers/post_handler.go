package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/middleware"
	"github.com/moyustudio/teamup-board/backend/internal/models"
	"github.com/moyustudio/teamup-board/backend/internal/repositories"
)

// MaxPostPageSize bounds a single board read.
const MaxPostPageSize = 50

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers public post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
}

// RegisterProtectedPostRoutes registers post routes that require authentication
func (h *PostHandler) RegisterProtectedPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost publishes a teammate-wanted post under the caller's account,
// snapshotting the author's current profile into the document.
func (h *PostHandler) CreatePost(c echo.Context) error {
	handle := c.Get(middleware.HandleContextKey).(string)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByHandle(handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	post := &models.Post{
		Author: models.AuthorSnapshot{
			Handle:      user.Handle,
			DisplayName: user.DisplayName,
			Avatar:      user.Avatar,
			Gender:      user.Gender,
			LookingFor:  user.LookingFor,
			ContactQQ:   user.ContactQQ,
			ContactWX:   user.ContactWX,
		},
		Content: truncate(req.Content, models.MaxPostTextLength),
		Tagline: truncate(req.Tagline, models.MaxPostTextLength),
		Images:  req.Images,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "post": post})
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "post": post})
}

// GetPosts lists the most recent posts
func (h *PostHandler) GetPosts(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > MaxPostPageSize {
		limit = MaxPostPageSize
	}

	posts, err := h.postRepository.GetRecentPosts(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "posts": posts})
}

// DeletePost deletes a post. Only its author or a privileged actor may.
func (h *PostHandler) DeletePost(c echo.Context) error {
	handle := c.Get(middleware.HandleContextKey).(string)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return err
	}

	if post.Author.Handle != handle {
		user, err := h.userRepository.GetUserByHandle(handle)
		if err != nil || !user.IsAdmin {
			return apperrors.ErrNotAllowed
		}
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// truncate bounds free-form text the way the board always has: extra input
// is cut, not rejected.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
