package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/middleware"
	"github.com/moyustudio/teamup-board/backend/internal/models"
	"github.com/moyustudio/teamup-board/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		userRepository:    userRepo,
	}
}

// RegisterCommentRoutes registers public comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetComments)
}

// RegisterProtectedCommentRoutes registers comment routes that require authentication
func (h *CommentHandler) RegisterProtectedCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.DELETE("/posts/:post_id/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post; the parent's counter moves
// in the same transaction.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	handle := c.Get(middleware.HandleContextKey).(string)

	postID, err := primitive.ObjectIDFromHex(c.Param("post_id"))
	if err != nil {
		return apperrors.ErrPostNotFound
	}

	var req models.CreateCommentRequest
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

	comment := &models.Comment{
		PostID: postID,
		Author: models.AuthorSnapshot{
			Handle:      user.Handle,
			DisplayName: user.DisplayName,
			Avatar:      user.Avatar,
		},
		Content: req.Content,
	}

	if err := h.commentRepository.AddComment(c.Request().Context(), comment); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "comment": comment})
}

// GetComments retrieves a post's comments ordered by creation time
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "comments": comments})
}

// DeleteComment deletes a comment. Only its author or a privileged actor
// may; the parent's counter moves in the same transaction.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	handle := c.Get(middleware.HandleContextKey).(string)

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if comment.Author.Handle != handle {
		user, err := h.userRepository.GetUserByHandle(handle)
		if err != nil || !user.IsAdmin {
			return apperrors.ErrNotAllowed
		}
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), comment); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
