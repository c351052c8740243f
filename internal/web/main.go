// Package web serves the JSON REST API over the record access layer.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	accesslog "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger/adapter/fiber"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler/bulk"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler/connection"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler/group"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler/logs"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler/user"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/middleware/apikey"
)

const (
	// HealthPath answers 200 while serving and 503 during shutdown.
	HealthPath = "/health"
	// MetricsPath exposes the prometheus registry.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so the health check returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service with every handler registered.
func New(cfg *config.Config, sessions *session.Manager) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if sessions == nil {
		panic("session manager cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "GoRADIUS-Admin",
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.Webserver.ShutDownTime == 0,
	}
	service.alive.Store(true)

	app.Use(accesslog.New(accesslog.Config{
		Config: cfg.Log,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == HealthPath
		},
	}))
	app.Use(apikey.New(apikey.Config{Hash: cfg.Webserver.APIKeyHash, Next: apikey.Public}))

	app.Get(HealthPath, func(c fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	handlers := []handler.Service{
		&user.Handler,
		&group.Handler,
		&bulk.Handler,
		&connection.Handler,
		&logs.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, cfg, sessions); err != nil {
			log.Fatal().Err(err).Msg("handler init failed")
		}
	}

	return service
}
