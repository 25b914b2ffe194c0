package apperrors

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Business errors surfaced to clients. Anything outside this taxonomy
// renders as a generic 500.
var (
	ErrInvalidPayload       = errors.New("invalid request payload")
	ErrHandleTaken          = errors.New("handle already registered")
	ErrInvalidCredentials   = errors.New("invalid handle or password")
	ErrAccountLocked        = errors.New("account locked, try again later")
	ErrNotAllowed           = errors.New("not allowed")
	ErrUserNotFound         = errors.New("user not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrStoreUnavailable     = errors.New("backing store unavailable")
)

var statusOf = map[error]int{
	ErrInvalidPayload:       http.StatusBadRequest,
	ErrHandleTaken:          http.StatusBadRequest,
	ErrInvalidCredentials:   http.StatusBadRequest,
	ErrAccountLocked:        http.StatusForbidden,
	ErrNotAllowed:           http.StatusForbidden,
	ErrUserNotFound:         http.StatusNotFound,
	ErrPostNotFound:         http.StatusNotFound,
	ErrCommentNotFound:      http.StatusNotFound,
	ErrConversationNotFound: http.StatusNotFound,
	ErrStoreUnavailable:     http.StatusInternalServerError,
}

// Status maps a business error to its HTTP status, or 0 when the error is
// not part of the taxonomy. Wrapped errors match through errors.Is.
func Status(err error) int {
	for sentinel, code := range statusOf {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return 0
}

// HTTPErrorHandler renders every error as the flat {"error": "..."}
// payload the board's clients expect.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else if s := Status(err); s != 0 {
		code = s
		msg = err.Error()
	} else {
		log.Printf("unexpected error: %v", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
