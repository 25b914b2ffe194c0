package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceHeader carries the request trace id.
const TraceHeader = "X-Trace-ID"

// Trace tags every request with a trace id, minting one when the client did
// not send its own, and echoes it back on the response.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}
			c.Set("traceID", traceID)
			c.Response().Header().Set(TraceHeader, traceID)
			return next(c)
		}
	}
}
