package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []radius.FieldError `json:"fields,omitempty"`
}

var statusByError = []struct {
	err    error
	status int
}{
	{radius.ErrUserExists, fiber.StatusConflict},
	{radius.ErrGroupExists, fiber.StatusConflict},
	{radius.ErrAttributeExists, fiber.StatusConflict},
	{radius.ErrUserNotFound, fiber.StatusNotFound},
	{radius.ErrGroupNotFound, fiber.StatusNotFound},
	{radius.ErrAttributeNotFound, fiber.StatusNotFound},
	{radius.ErrSystemGroup, fiber.StatusForbidden},
	{radius.ErrCredentialAttribute, fiber.StatusForbidden},
	{radius.ErrInvalidKind, fiber.StatusBadRequest},
	{radius.ErrEmptyPassword, fiber.StatusBadRequest},
	{session.ErrNotConnected, fiber.StatusServiceUnavailable},
	{session.ErrTableMissing, fiber.StatusFailedDependency},
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	var (
		verr  *radius.ValidationError
		dberr *session.Error
		ferr  *fiber.Error
	)

	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest
	case errors.As(err, &ferr):
		return ferr.Code
	}

	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}

	if errors.As(err, &dberr) {
		return fiber.StatusBadGateway
	}

	return fiber.StatusInternalServerError
}

// ErrorHandler renders errors returned by handlers as ErrorResponse.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := Status(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *radius.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("request failed")
	}

	return c.Status(code).JSON(resp)
}

// BadRequest wraps a body decoding error.
func BadRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, ErrBadRequestBody+": "+err.Error())
}
