// Package logs serves the recent in-memory log lines.
package logs

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler"
)

const (
	// Path returns the recent log lines.
	Path = handler.APIPath + "/logs"

	// QueryLines limits the number of lines returned.
	QueryLines = "n"
	// DefaultLines is returned when QueryLines is absent.
	DefaultLines = 100
)

// Service serves the log routes.
type Service struct {
	handler.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Response holds the log lines, oldest first.
type Response struct {
	Lines []string `json:"lines"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) error {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACSFatalLogMsg)
		return nil
	}

	app.Get(Path, s.Lines)
	app.Delete(Path, s.Clear)

	return nil
}

// Lines returns the last n lines of the buffer attached by logger.Init.
func (s *Service) Lines(c fiber.Ctx) error {
	n := DefaultLines

	if q := c.Query(QueryLines); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid line count")
		}

		n = v
	}

	return c.JSON(Response{Lines: logger.Recent().Lines(n)})
}

// Clear empties the buffer.
func (s *Service) Clear(c fiber.Ctx) error {
	logger.Recent().Reset()

	return c.SendStatus(fiber.StatusNoContent)
}
