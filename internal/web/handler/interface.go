package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
)

// Service is the interface for a REST handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) error
}
