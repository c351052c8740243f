// Package connection provides the REST handlers managing the database session.
package connection

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/schema"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler"
)

const (
	// Path is the base path of the connection routes.
	Path = handler.APIPath + "/connection"

	// RouteTest tests connection parameters without touching the session.
	RouteTest = Path + "/test"
	// RouteConnect replaces the live session.
	RouteConnect = Path + "/connect"
	// RouteDisconnect closes the live session.
	RouteDisconnect = Path + "/disconnect"
	// RouteSchema creates missing tables.
	RouteSchema = Path + "/schema"
)

// Service serves the connection routes.
type Service struct {
	handler.Service
	cfg      *config.Config
	sessions *session.Manager
}

// Handler is the exported instance.
var Handler = Service{}

// TestResponse is the result of a connection test.
type TestResponse struct {
	Message string `json:"message"`
}

// SchemaResponse lists the tables created by RouteSchema.
type SchemaResponse struct {
	Created []string `json:"created"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) error {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACSFatalLogMsg)
		return nil
	}

	s.cfg = cfg
	s.sessions = sessions

	app.Get(Path, s.Status)
	app.Post(RouteTest, s.Test)
	app.Post(RouteConnect, s.Connect)
	app.Post(RouteDisconnect, s.Disconnect)
	app.Post(RouteSchema, s.Schema)

	return nil
}

// Status reports the live session.
func (s *Service) Status(c fiber.Ctx) error {
	return c.JSON(s.sessions.Status())
}

// Test opens a throwaway session with the configured parameters, overridden
// by the fields present in the body.
func (s *Service) Test(c fiber.Ctx) error {
	db, err := s.database(c)
	if err != nil {
		return err
	}

	msg, err := s.sessions.TestConnection(c.Context(), db)
	if err != nil {
		return err
	}

	return c.JSON(TestResponse{Message: msg})
}

// Connect replaces the live session. The configuration file is not changed.
func (s *Service) Connect(c fiber.Ctx) error {
	db, err := s.database(c)
	if err != nil {
		return err
	}

	if err = s.sessions.Connect(c.Context(), db); err != nil {
		return err
	}

	return c.JSON(s.sessions.Status())
}

// Disconnect closes the live session.
func (s *Service) Disconnect(c fiber.Ctx) error {
	if err := s.sessions.Disconnect(); err != nil {
		return err
	}

	return c.JSON(s.sessions.Status())
}

// Schema creates the missing FreeRADIUS tables.
func (s *Service) Schema(c fiber.Ctx) error {
	sess, ok := s.sessions.Current()
	if !ok {
		return session.ErrNotConnected
	}

	created, err := schema.Ensure(c.Context(), sess)
	if err != nil {
		return err
	}

	return c.JSON(SchemaResponse{Created: created})
}

func (s *Service) database(c fiber.Ctx) (config.Database, error) {
	cfg := *s.cfg

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&cfg.Database); err != nil {
			return cfg.Database, handler.BadRequest(err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return cfg.Database, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return cfg.Database, nil
}
