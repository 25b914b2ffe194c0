package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/router"
	"github.com/moyustudio/teamup-board/backend/pkg/config"
	"github.com/moyustudio/teamup-board/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo)

	// Validator and error rendering
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
