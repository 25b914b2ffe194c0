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

// MaxMessageLength is the cut-off applied to message bodies.
const MaxMessageLength = 1000

// ChatHandler handles direct messaging between accounts
type ChatHandler struct {
	conversationRepository repositories.ConversationRepository
	userRepository         repositories.UserRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(conversationRepo repositories.ConversationRepository, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{
		conversationRepository: conversationRepo,
		userRepository:         userRepo,
	}
}

// RegisterChatRoutes registers chat routes; all of them require authentication
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/chat/messages", h.SendMessage)
	g.GET("/chat/inbox", h.GetInbox)
	g.GET("/chat/history", h.GetHistory)
	g.POST("/chat/conversations/:id/read", h.MarkRead)
	g.DELETE("/chat/conversations/:id", h.HideSession)
}

// SendMessage delivers a direct message, creating the session on first
// contact and reviving it for both sides if either had hidden it.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	from := c.Get(middleware.HandleContextKey).(string)

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.To == from {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot message yourself")
	}

	if _, err := h.userRepository.GetUserByHandle(req.To); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	msg, err := h.conversationRepository.SendMessage(c.Request().Context(), from, req.To, truncate(req.Content, MaxMessageLength))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":         true,
		"message":         msg,
		"conversation_id": models.ConversationID(from, req.To),
	})
}

// GetInbox lists the caller's visible sessions with unread counts, most
// recently active first, annotated with the counterpart's current profile.
func (h *ChatHandler) GetInbox(c echo.Context) error {
	actor := c.Get(middleware.HandleContextKey).(string)

	conversations, err := h.conversationRepository.GetInbox(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	entries := make([]models.InboxEntry, 0, len(conversations))
	for _, conv := range conversations {
		counterpart := conv.Counterpart(actor)
		entry := models.InboxEntry{
			ID:          conv.ID,
			With:        counterpart,
			DisplayName: counterpart,
			LastMessage: conv.LastMessage,
			LastSender:  conv.LastSender,
			Unread:      conv.UnreadCounts[actor],
			UpdatedAt:   conv.UpdatedAt,
		}
		if user, err := h.userRepository.GetUserByHandle(counterpart); err == nil {
			entry.DisplayName = user.DisplayName
			entry.Avatar = user.Avatar
		}
		entries = append(entries, entry)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "inbox": entries})
}

// GetHistory returns the message history with another account, oldest first
func (h *ChatHandler) GetHistory(c echo.Context) error {
	actor := c.Get(middleware.HandleContextKey).(string)
	with := c.QueryParam("with")
	if with == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'with' is required")
	}

	messages, err := h.conversationRepository.GetHistory(c.Request().Context(), models.ConversationID(actor, with))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "messages": messages})
}

// MarkRead clears the caller's unread counter on a conversation
func (h *ChatHandler) MarkRead(c echo.Context) error {
	actor := c.Get(middleware.HandleContextKey).(string)

	if err := h.conversationRepository.MarkRead(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// HideSession soft-deletes a conversation for the caller only
func (h *ChatHandler) HideSession(c echo.Context) error {
	actor := c.Get(middleware.HandleContextKey).(string)

	if err := h.conversationRepository.HideSession(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
