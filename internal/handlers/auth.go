package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/models"
	"github.com/moyustudio/teamup-board/backend/internal/repositories"
)

// MinHandleLength is the minimum handle length for regular accounts. The
// reserved admin handle is exempt.
const MinHandleLength = 8

// AuthHandler handles registration and login
type AuthHandler struct {
	userRepository repositories.UserRepository
	jwtSecret      string
	now            func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository) *AuthHandler {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey"
	}
	return &AuthHandler{
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
		now:            time.Now,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// Register creates a new account. The admin role is fixed here, at
// creation time, never derived later.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if len(req.Handle) < MinHandleLength && req.Handle != models.ReservedAdminHandle {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("handle must be at least %d characters", MinHandleLength))
	}

	if _, err := h.userRepository.GetUserByHandle(req.Handle); err == nil {
		return apperrors.ErrHandleTaken
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Handle:         req.Handle,
		PasswordDigest: string(digest),
		DisplayName:    req.Nickname,
		Avatar:         req.Avatar,
		IsAdmin:        req.Handle == models.ReservedAdminHandle,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrHandleTaken
		}
		return err
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": user, "token": token})
}

// Login authenticates an account, driving the brute-force lockout machine.
// The whole attempt runs through one row-locked transaction and the
// failure bookkeeping persists even when the attempt is rejected.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var account models.User
	err := h.userRepository.UpdateUserLocked(req.Handle, func(u *models.User) error {
		now := h.now()
		if u.LockedAt(now) {
			// No counter mutation and no password comparison while locked.
			return apperrors.ErrAccountLocked
		}
		u.ClearExpiredLock(now)

		if bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(req.Password)) != nil {
			if u.RecordLoginFailure(now) {
				return apperrors.ErrAccountLocked
			}
			return fmt.Errorf("%w (%d attempts remaining)", apperrors.ErrInvalidCredentials, u.RemainingAttempts())
		}

		u.ResetLoginFailures()
		account = *u
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the handle exists.
			return apperrors.ErrInvalidCredentials
		}
		return err
	}

	token, err := h.generateJWT(&account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": account, "token": token})
}

// generateJWT generates a JWT token for a given account
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		Handle: user.Handle,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(h.now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(h.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
