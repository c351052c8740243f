// Package daemon wires the session manager and the REST service.
package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/dsn"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	sessions   *session.Manager
	webService *web.Service
}

// Start serves the REST API until SIGINT or SIGTERM, then closes the session.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	if cerr := d.sessions.Disconnect(); cerr != nil {
		log.Warn().Err(cerr).Msg("closing database session failed")
	}

	return err
}

// Sessions returns the session manager used by the REST service.
func (d *Daemon) Sessions() *session.Manager {
	return d.sessions
}

// New creates a new Daemon. With database.autoconnect set the session is
// opened right away; a failed connect is logged and the service starts
// disconnected.
func New(ctx context.Context, cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	sessions := session.NewManager()

	if cfg.Database.Autoconnect {
		if err := sessions.Connect(ctx, cfg.Database); err != nil {
			log.Warn().Err(err).Str("target", dsn.Describe(cfg.Database)).
				Msg("autoconnect failed, starting disconnected")
		}
	}

	return &Daemon{
		cfg:        cfg,
		sessions:   sessions,
		webService: web.New(cfg, sessions),
	}
}
