// Package user provides the REST handlers for RADIUS users and their attributes.
package user

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	usercontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/user"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.APIPath + "/users"

	// ParamUsername is the route parameter holding the username.
	ParamUsername = "username"

	// RouteUser addresses a single user.
	RouteUser = Path + "/:" + ParamUsername
	// RoutePassword replaces the password.
	RoutePassword = RouteUser + "/password"
	// RouteBlock adds the block marker.
	RouteBlock = RouteUser + "/block"
	// RouteUnblock removes the block marker.
	RouteUnblock = RouteUser + "/unblock"
	// RouteGroup replaces the group membership.
	RouteGroup = RouteUser + "/group"
	// RouteAttributes lists, adds and updates attributes.
	RouteAttributes = RouteUser + "/attributes"
	// RouteAttributeDelete deletes one attribute.
	RouteAttributeDelete = RouteAttributes + "/delete"
)

// Service serves the user routes.
type Service struct {
	handler.Service
	users *usercontroller.Service
}

// Handler is the exported instance.
var Handler = Service{}

// CreateRequest is the body of a user creation.
type CreateRequest struct {
	radius.User
	Extra []radius.Attribute `json:"extra,omitempty"`
}

// Detail is a user with its attributes.
type Detail struct {
	Username string             `json:"username"`
	Check    []radius.Attribute `json:"check"`
	Reply    []radius.Attribute `json:"reply"`
}

// PasswordRequest is the body of a password change.
type PasswordRequest struct {
	Password string `json:"password"`
}

// GroupRequest is the body of a group change.
type GroupRequest struct {
	Group string `json:"group"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) error {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACSFatalLogMsg)
		return nil
	}

	s.users = usercontroller.New(sessions)

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
	app.Get(RouteUser, s.Get)
	app.Delete(RouteUser, s.Delete)
	app.Put(RoutePassword, s.SetPassword)
	app.Post(RouteBlock, s.Block)
	app.Post(RouteUnblock, s.Unblock)
	app.Put(RouteGroup, s.SetGroup)
	app.Get(RouteAttributes, s.Get)
	app.Post(RouteAttributes, s.AddAttribute)
	app.Put(RouteAttributes, s.UpdateAttribute)
	app.Post(RouteAttributeDelete, s.DeleteAttribute)

	return nil
}

// List returns every user.
func (s *Service) List(c fiber.Ctx) error {
	users, err := s.users.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(users)
}

// Create adds a user. Fields left out of the body keep the defaults of a new user.
func (s *Service) Create(c fiber.Ctx) error {
	req := CreateRequest{User: radius.NewUser("", "")}
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	if req.Group == "" {
		req.Group = radius.DefaultGroup
	}

	if err := s.users.Create(c.Context(), req.User, req.Extra); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"username": req.Username})
}

// Get returns the user's attributes.
func (s *Service) Get(c fiber.Ctx) error {
	username := c.Params(ParamUsername)

	ok, err := s.users.Exists(c.Context(), username)
	if err != nil {
		return err
	}

	if !ok {
		return radius.ErrUserNotFound
	}

	check, reply, err := s.users.Attributes(c.Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(Detail{Username: username, Check: check, Reply: reply})
}

// Delete removes the user.
func (s *Service) Delete(c fiber.Ctx) error {
	if err := s.users.Delete(c.Context(), c.Params(ParamUsername)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetPassword replaces the password.
func (s *Service) SetPassword(c fiber.Ctx) error {
	var req PasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.users.SetPassword(c.Context(), c.Params(ParamUsername), req.Password); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Block adds the block marker.
func (s *Service) Block(c fiber.Ctx) error {
	return s.setBlocked(c, true)
}

// Unblock removes the block marker.
func (s *Service) Unblock(c fiber.Ctx) error {
	return s.setBlocked(c, false)
}

func (s *Service) setBlocked(c fiber.Ctx, blocked bool) error {
	if err := s.users.SetBlocked(c.Context(), c.Params(ParamUsername), blocked); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetGroup replaces the group membership.
func (s *Service) SetGroup(c fiber.Ctx) error {
	var req GroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.users.SetGroup(c.Context(), c.Params(ParamUsername), req.Group); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddAttribute adds a check or reply attribute.
func (s *Service) AddAttribute(c fiber.Ctx) error {
	var req handler.AttributeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.users.AddAttribute(c.Context(), c.Params(ParamUsername), req.Kind, req.Attribute); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusCreated)
}

// UpdateAttribute replaces an attribute.
func (s *Service) UpdateAttribute(c fiber.Ctx) error {
	var req handler.UpdateAttributeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.users.UpdateAttribute(c.Context(), c.Params(ParamUsername), req.Kind, req.Old, req.New); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAttribute removes an attribute.
func (s *Service) DeleteAttribute(c fiber.Ctx) error {
	var req handler.AttributeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.users.DeleteAttribute(c.Context(), c.Params(ParamUsername), req.Kind, req.Attribute); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
