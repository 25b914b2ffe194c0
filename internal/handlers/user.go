package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/middleware"
	"github.com/moyustudio/teamup-board/backend/internal/models"
	"github.com/moyustudio/teamup-board/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to account profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers public profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:handle", h.GetProfile)
}

// RegisterProfileRoutes registers profile routes that require authentication
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.PUT("/users/:handle/profile", h.UpdateProfile)
	g.DELETE("/users/:handle", h.DeleteUser)
}

// GetProfile returns a public account profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByHandle(c.Param("handle"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// UpdateProfile edits the caller's own profile. Accounts can only edit
// themselves.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	requestor := c.Get(middleware.HandleContextKey).(string)
	handle := c.Param("handle")
	if requestor != handle {
		return apperrors.ErrNotAllowed
	}

	var req models.UpdateProfileRequest
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

	if req.Nickname != "" {
		user.DisplayName = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.LookingFor != "" {
		user.LookingFor = req.LookingFor
	}
	if req.ContactQQ != "" {
		user.ContactQQ = req.ContactQQ
	}
	if req.ContactWX != "" {
		user.ContactWX = req.ContactWX
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// DeleteUser removes an account. Privileged actors only.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	requestor, err := h.userRepository.GetUserByHandle(c.Get(middleware.HandleContextKey).(string))
	if err != nil {
		return apperrors.ErrNotAllowed
	}
	if !requestor.IsAdmin {
		return apperrors.ErrNotAllowed
	}

	if err := h.userRepository.DeleteUser(c.Param("handle")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
