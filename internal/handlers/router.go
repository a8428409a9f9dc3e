package handlers

import (
	"labstock/internal/app"
	"labstock/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewEquipmentHandler(*app, api).Register()
	NewReportHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()

	return nil
}
