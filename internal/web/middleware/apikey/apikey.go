package apikey

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// Header carries the API key.
const Header = "X-API-Key"

// Config of the middleware.
type Config struct {
	// Next skips the check when it returns true.
	Next func(c fiber.Ctx) bool

	// Hash is the argon2id hash of the key. An empty hash disables the check.
	Hash string
}

// New creates the middleware. Requests without a matching key get 401.
func New(cfg Config) fiber.Handler {
	if cfg.Hash == "" {
		log.Warn().Msg("no API key hash configured, REST API is unauthenticated")

		return func(c fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(Header))
		if key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+Header+" header")
		}

		match, err := argon2id.ComparePasswordAndHash(key, cfg.Hash)
		if err != nil {
			log.Error().Err(err).Msg("api key hash check failed")

			return fiber.NewError(fiber.StatusInternalServerError, "invalid API key hash configured")
		}

		if !match {
			log.Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("rejected API key")

			return fiber.NewError(fiber.StatusUnauthorized, "invalid API key")
		}

		return c.Next()
	}
}

// Hash returns the argon2id hash of key with the default parameters, for
// the webserver.api_key_hash setting.
func Hash(key string) (string, error) {
	return argon2id.CreateHash(key, argon2id.DefaultParams)
}

// Public skips the check for the health probe.
func Public(c fiber.Ctx) bool {
	return c.Path() == "/health"
}
