package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moyustudio/teamup-board/backend/internal/middleware"
	"github.com/moyustudio/teamup-board/backend/internal/repositories"
)

// LikeHandler handles the like toggle on posts
type LikeHandler struct {
	postRepository repositories.PostRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo repositories.PostRepository) *LikeHandler {
	return &LikeHandler{postRepository: postRepo}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike flips the caller's like on a post. Anonymous callers are keyed
// by network address. The same call made twice flips the state twice, so
// clients must not retry blindly without knowing the prior outcome.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	actorID := c.Get(middleware.ActorContextKey).(string)

	liked, likeCount, err := h.postRepository.ToggleLike(c.Request().Context(), c.Param("id"), actorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "liked": liked, "like_count": likeCount})
}
