// Package group provides the REST handlers for RADIUS groups.
package group

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	groupcontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/group"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler"
)

const (
	// Path is the base path for group management.
	Path = handler.APIPath + "/groups"

	// ParamName is the route parameter holding the group name.
	ParamName = "name"

	// RouteGroup addresses a single group.
	RouteGroup = Path + "/:" + ParamName
	// RouteMembers lists the members.
	RouteMembers = RouteGroup + "/members"
	// RouteAttributes lists, adds and updates attributes.
	RouteAttributes = RouteGroup + "/attributes"
	// RouteAttributeDelete deletes one attribute.
	RouteAttributeDelete = RouteAttributes + "/delete"
)

// Service serves the group routes.
type Service struct {
	handler.Service
	groups *groupcontroller.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Detail is a group with its members and attributes.
type Detail struct {
	Name    string             `json:"name"`
	Members []string           `json:"members"`
	Check   []radius.Attribute `json:"check"`
	Reply   []radius.Attribute `json:"reply"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) error {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACSFatalLogMsg)
		return nil
	}

	s.groups = groupcontroller.New(sessions)

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
	app.Get(RouteGroup, s.Get)
	app.Delete(RouteGroup, s.Delete)
	app.Get(RouteMembers, s.Members)
	app.Get(RouteAttributes, s.Get)
	app.Post(RouteAttributes, s.AddAttribute)
	app.Put(RouteAttributes, s.UpdateAttribute)
	app.Post(RouteAttributeDelete, s.DeleteAttribute)

	return nil
}

// List returns every group.
func (s *Service) List(c fiber.Ctx) error {
	groups, err := s.groups.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(groups)
}

// Create adds a group. A missing default_priority means the default.
func (s *Service) Create(c fiber.Ctx) error {
	g := radius.NewGroup("")
	if err := c.Bind().JSON(&g); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.groups.Create(c.Context(), g); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// Get returns the group's members and attributes.
func (s *Service) Get(c fiber.Ctx) error {
	name := c.Params(ParamName)

	ok, err := s.groups.Exists(c.Context(), name)
	if err != nil {
		return err
	}

	if !ok {
		return radius.ErrGroupNotFound
	}

	members, err := s.groups.Members(c.Context(), name)
	if err != nil {
		return err
	}

	check, reply, err := s.groups.Attributes(c.Context(), name)
	if err != nil {
		return err
	}

	return c.JSON(Detail{Name: name, Members: members, Check: check, Reply: reply})
}

// Members returns the usernames in the group.
func (s *Service) Members(c fiber.Ctx) error {
	members, err := s.groups.Members(c.Context(), c.Params(ParamName))
	if err != nil {
		return err
	}

	return c.JSON(members)
}

// Delete removes the group. Members are left without a group.
func (s *Service) Delete(c fiber.Ctx) error {
	if err := s.groups.Delete(c.Context(), c.Params(ParamName)); err != nil {
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

	if err := s.groups.AddAttribute(c.Context(), c.Params(ParamName), req.Kind, req.Attribute); err != nil {
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

	if err := s.groups.UpdateAttribute(c.Context(), c.Params(ParamName), req.Kind, req.Old, req.New); err != nil {
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

	if err := s.groups.DeleteAttribute(c.Context(), c.Params(ParamName), req.Kind, req.Attribute); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
