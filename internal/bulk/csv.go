package bulk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

// Header is the first row written by Export.
var Header = []string{"Username", "Password", "Group", "Expiration"}

// ImportOptions controls ParseCSV.
type ImportOptions struct {
	// HasHeader skips the first row.
	HasHeader bool
	// DefaultGroup is used for rows without a group column.
	DefaultGroup string
}

// ParseCSV reads rows of username,password[,group[,expiration]]. Rows missing
// a username or password are reported as "row N: ..." with N counted from the
// first record of input, header included. Malformed rows such as a bare quote
// are reported the same way and skipped; only read errors abort.
func ParseCSV(r io.Reader, opts ImportOptions) ([]Item, []string, error) {
	group := opts.DefaultGroup
	if group == "" {
		group = radius.DefaultGroup
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		items []Item
		errs  = []string{}
		row   int
	)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var perr *csv.ParseError
		if err != nil && !errors.As(err, &perr) {
			return nil, nil, fmt.Errorf("reading csv: %w", err)
		}

		row++

		if row == 1 && opts.HasHeader {
			continue
		}

		if perr != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", row, perr.Err))
			continue
		}

		if len(rec) < 2 {
			errs = append(errs, fmt.Sprintf("row %d: not enough fields", row))
			continue
		}

		username, password := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if username == "" || password == "" {
			errs = append(errs, fmt.Sprintf("row %d: username or password missing", row))
			continue
		}

		u := radius.NewUser(username, password)
		u.Group = group

		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			u.Group = strings.TrimSpace(rec[2])
		}

		if len(rec) > 3 {
			u.Expiration = strings.TrimSpace(rec[3])
		}

		items = append(items, Item{User: u})
	}

	return items, errs, nil
}

// Import parses r and creates every well-formed row through c. Rejected rows
// and failed creations are both reported in Result.Errors.
func Import(ctx context.Context, c Creator, r io.Reader, opts ImportOptions) (Result, error) {
	items, errs, err := ParseCSV(r, opts)
	if err != nil {
		return Result{Errors: []string{}}, err
	}

	res := Create(ctx, c, items)
	res.Errors = append(errs, res.Errors...)

	log.Info().Int("rows", len(items)+len(errs)).Int("added", res.Added).Msg("csv import finished")

	return res, nil
}

// Exporter returns every user with password, group and expiration.
type Exporter interface {
	Credentials(ctx context.Context) ([]radius.User, error)
}

// Export writes Header and one row per user to w and returns the number of
// users written. The output holds plaintext passwords.
func Export(ctx context.Context, e Exporter, w io.Writer) (int, error) {
	users, err := e.Credentials(ctx)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)

	if err = cw.Write(Header); err != nil {
		return 0, err
	}

	for _, u := range users {
		if err = cw.Write([]string{u.Username, u.Password, u.Group, u.Expiration}); err != nil {
			return 0, err
		}
	}

	cw.Flush()

	if err = cw.Error(); err != nil {
		return 0, err
	}

	log.Warn().Int("users", len(users)).Msg("exported plaintext credentials")

	return len(users), nil
}
