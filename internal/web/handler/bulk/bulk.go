// Package bulk provides the REST handlers for batch user operations and CSV
// import and export.
package bulk

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	bulkops "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/bulk"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	usercontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/user"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/handler"
)

const (
	// Path is the base path of the batch routes.
	Path = handler.APIPath + "/bulk"

	// RouteUsers creates users from manual text.
	RouteUsers = Path + "/users"
	// RouteGenerate creates numbered users.
	RouteGenerate = Path + "/generate"
	// RouteBlock blocks a list of users.
	RouteBlock = Path + "/block"
	// RouteUnblock unblocks a list of users.
	RouteUnblock = Path + "/unblock"
	// RouteDelete deletes a list of users.
	RouteDelete = Path + "/delete"
	// RoutePassword sets the passwords of a list of users.
	RoutePassword = Path + "/password"

	// CSVPath is the CSV import and export route.
	CSVPath = handler.APIPath + "/csv"

	// QueryHeader marks the first CSV row as a header.
	QueryHeader = "header"
	// QueryGroup is the group for CSV rows without one.
	QueryGroup = "group"

	// ExportFilename is the attachment name of the export.
	ExportFilename = "radius_users.csv"
)

// Service serves the batch routes.
type Service struct {
	handler.Service
	users *usercontroller.Service
}

// Handler is the exported instance.
var Handler = Service{}

// ManualRequest holds one user per line, username[,Attr=Value,...].
type ManualRequest struct {
	Text     string `json:"text"`
	Template string `json:"template"`
	Group    string `json:"group"`
}

// GenerateRequest creates Count users named Prefix001 and so on.
type GenerateRequest struct {
	Prefix   string `json:"prefix"`
	Count    int    `json:"count"`
	Template string `json:"template"`
	Group    string `json:"group"`
}

// Credential is a created username and its password.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateResponse reports a batch creation. Credentials lists the users that
// were added.
type CreateResponse struct {
	bulkops.Result
	Credentials []Credential `json:"credentials"`
}

// ActionRequest names the users of a batch action.
type ActionRequest struct {
	Usernames []string `json:"usernames"`
	// Template is used by RoutePassword only.
	Template string `json:"template,omitempty"`
}

// PasswordResponse reports the passwords that were set.
type PasswordResponse struct {
	bulkops.Summary
	Passwords map[string]string `json:"passwords"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) error {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACSFatalLogMsg)
		return nil
	}

	s.users = usercontroller.New(sessions)

	app.Post(RouteUsers, s.Manual)
	app.Post(RouteGenerate, s.Generate)
	app.Post(RouteBlock, s.Block)
	app.Post(RouteUnblock, s.Unblock)
	app.Post(RouteDelete, s.Delete)
	app.Post(RoutePassword, s.SetPassword)
	app.Post(CSVPath, s.Import)
	app.Get(CSVPath, s.Export)

	return nil
}

// Manual creates the users listed in the body text. Lines that cannot be
// parsed are reported with the creation errors.
func (s *Service) Manual(c fiber.Ctx) error {
	var req ManualRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	items, errs := bulkops.ParseManual(req.Text, req.Template, req.Group)

	resp := s.create(c, items)
	resp.Errors = append(errs, resp.Errors...)

	return c.JSON(resp)
}

// Generate creates numbered users.
func (s *Service) Generate(c fiber.Ctx) error {
	var req GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.BadRequest(err)
	}

	items, err := bulkops.Generate(req.Prefix, req.Count, req.Template, req.Group)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(s.create(c, items))
}

func (s *Service) create(c fiber.Ctx, items []bulkops.Item) CreateResponse {
	res := bulkops.Create(c.Context(), s.users, items)
	resp := CreateResponse{Result: res, Credentials: make([]Credential, 0, len(res.Created))}

	for _, it := range res.Created {
		resp.Credentials = append(resp.Credentials, Credential{Username: it.User.Username, Password: it.User.Password})
	}

	return resp
}

// Block blocks the listed users.
func (s *Service) Block(c fiber.Ctx) error {
	req, err := actionRequest(c)
	if err != nil {
		return err
	}

	return c.JSON(bulkops.Block(c.Context(), s.users, req.Usernames))
}

// Unblock unblocks the listed users.
func (s *Service) Unblock(c fiber.Ctx) error {
	req, err := actionRequest(c)
	if err != nil {
		return err
	}

	return c.JSON(bulkops.Unblock(c.Context(), s.users, req.Usernames))
}

// Delete deletes the listed users.
func (s *Service) Delete(c fiber.Ctx) error {
	req, err := actionRequest(c)
	if err != nil {
		return err
	}

	return c.JSON(bulkops.Delete(c.Context(), s.users, req.Usernames))
}

// SetPassword sets the listed users' passwords from the template.
func (s *Service) SetPassword(c fiber.Ctx) error {
	req, err := actionRequest(c)
	if err != nil {
		return err
	}

	sum, set := bulkops.SetPassword(c.Context(), s.users, req.Usernames, req.Template)

	return c.JSON(PasswordResponse{Summary: sum, Passwords: set})
}

func actionRequest(c fiber.Ctx) (ActionRequest, error) {
	var req ActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return req, handler.BadRequest(err)
	}

	return req, nil
}

// Import creates the users of the CSV body.
func (s *Service) Import(c fiber.Ctx) error {
	hasHeader, _ := strconv.ParseBool(c.Query(QueryHeader))

	opts := bulkops.ImportOptions{
		HasHeader:    hasHeader,
		DefaultGroup: c.Query(QueryGroup),
	}

	res, err := bulkops.Import(c.Context(), s.users, bytes.NewReader(c.Body()), opts)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(res)
}

// Export writes every user with its plaintext password as CSV.
func (s *Service) Export(c fiber.Ctx) error {
	var buf bytes.Buffer

	if _, err := bulkops.Export(c.Context(), s.users, &buf); err != nil {
		return err
	}

	c.Attachment(ExportFilename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")

	return c.Send(buf.Bytes())
}
