// Package bulk runs batches of user operations. A batch is a loop over the
// single-user calls: items committed before a failure stay committed.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/passgen"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

const (
	// NumPlaceholder in a password template is replaced by the item number.
	NumPlaceholder = "{num}"
	// RandomPlaceholder in a password template is replaced by a random password.
	RandomPlaceholder = "{random}"
	// DefaultTemplate is the password template used when none is given.
	DefaultTemplate = "Pass{num}"
	// DefaultPrefix is the username prefix of generated users.
	DefaultPrefix = "user"
	// MaxGenerate bounds Generate.
	MaxGenerate = 10000
)

// ErrCount is returned by Generate for counts outside 1..MaxGenerate.
var ErrCount = fmt.Errorf("count must be between 1 and %d", MaxGenerate)

// Item is one user to create with its extra attributes.
type Item struct {
	User  radius.User        `json:"user"`
	Extra []radius.Attribute `json:"extra,omitempty"`
}

// Result reports a bulk creation.
type Result struct {
	Added  int      `json:"added"`
	Errors []string `json:"errors"`
	// Created holds the items that were added, passwords included.
	Created []Item `json:"-"`
}

// Summary reports a bulk action over existing users.
type Summary struct {
	Done   int      `json:"done"`
	Errors []string `json:"errors"`
}

// Creator creates a single user.
type Creator interface {
	Create(ctx context.Context, u radius.User, extra []radius.Attribute) error
}

// Create calls c.Create for every item and collects failures as
// "<username>: <message>".
func Create(ctx context.Context, c Creator, items []Item) Result {
	res := Result{Errors: []string{}}

	for _, it := range items {
		if err := c.Create(ctx, it.User, it.Extra); err != nil {
			res.Errors = append(res.Errors, it.User.Username+": "+err.Error())
			continue
		}

		res.Added++
		res.Created = append(res.Created, it)
	}

	log.Info().Int("added", res.Added).Int("failed", len(res.Errors)).Msg("bulk create finished")

	return res
}

// ParseManual parses one user per line in the form
// username[,Attr=Value,...]. Blank lines and lines starting with '#' are
// skipped. Passwords come from template with the 1-based line number; extra
// attributes become reply attributes with the '=' operator.
func ParseManual(text, template, group string) ([]Item, []string) {
	if group == "" {
		group = radius.DefaultGroup
	}

	if template == "" {
		template = DefaultTemplate
	}

	var (
		items []Item
		errs  = []string{}
	)

	for i, line := range strings.Split(text, "\n") {
		n := i + 1
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")

		username := strings.TrimSpace(parts[0])
		if username == "" {
			continue
		}

		password, err := expand(template, n, true)
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", n, err))
			continue
		}

		u := radius.NewUser(username, password)
		u.Group = group

		extra, err := parseExtra(parts[1:])
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", n, err))
			continue
		}

		items = append(items, Item{User: u, Extra: extra})
	}

	return items, errs
}

func parseExtra(fields []string) ([]radius.Attribute, error) {
	var extra []radius.Attribute

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		name, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("attribute %q is not Name=Value", f)
		}

		extra = append(extra, radius.Attribute{
			Name:     strings.TrimSpace(name),
			Operator: radius.OpAssign,
			Value:    strings.TrimSpace(value),
			Kind:     radius.KindReply,
		})
	}

	return extra, nil
}

// Generate returns count users named prefix001, prefix002 and so on.
func Generate(prefix string, count int, template, group string) ([]Item, error) {
	if count < 1 || count > MaxGenerate {
		return nil, ErrCount
	}

	if prefix == "" {
		prefix = DefaultPrefix
	}

	if template == "" {
		template = DefaultTemplate
	}

	if group == "" {
		group = radius.DefaultGroup
	}

	items := make([]Item, 0, count)

	for i := 1; i <= count; i++ {
		password, err := expand(template, i, true)
		if err != nil {
			return nil, err
		}

		u := radius.NewUser(fmt.Sprintf("%s%03d", prefix, i), password)
		u.Group = group

		items = append(items, Item{User: u})
	}

	return items, nil
}

// expand fills a password template. Without a placeholder the number is
// appended when appendNum is set.
func expand(template string, n int, appendNum bool) (string, error) {
	num := strconv.Itoa(n)
	hasNum := strings.Contains(template, NumPlaceholder)
	hasRandom := strings.Contains(template, RandomPlaceholder)

	out := strings.ReplaceAll(template, NumPlaceholder, num)

	for strings.Contains(out, RandomPlaceholder) {
		p, err := passgen.New()
		if err != nil {
			return "", err
		}

		out = strings.Replace(out, RandomPlaceholder, p, 1)
	}

	if !hasNum && !hasRandom && appendNum {
		out += num
	}

	return out, nil
}

// Blocker changes the block marker of a user.
type Blocker interface {
	SetBlocked(ctx context.Context, username string, blocked bool) error
}

// Deleter removes a user.
type Deleter interface {
	Delete(ctx context.Context, username string) error
}

// PasswordSetter replaces a user's password.
type PasswordSetter interface {
	SetPassword(ctx context.Context, username, password string) error
}

// Block blocks every user in usernames.
func Block(ctx context.Context, b Blocker, usernames []string) Summary {
	return each(usernames, "block", func(u string) error {
		return b.SetBlocked(ctx, u, true)
	})
}

// Unblock removes the block marker of every user in usernames.
func Unblock(ctx context.Context, b Blocker, usernames []string) Summary {
	return each(usernames, "unblock", func(u string) error {
		return b.SetBlocked(ctx, u, false)
	})
}

// Delete removes every user in usernames.
func Delete(ctx context.Context, d Deleter, usernames []string) Summary {
	return each(usernames, "delete", func(u string) error {
		return d.Delete(ctx, u)
	})
}

// SetPassword sets the password of every user in usernames from template.
// {num} is the 1-based position in usernames and {random} a fresh random
// password; a template without placeholders is used as is. The passwords
// set are returned by username.
func SetPassword(ctx context.Context, p PasswordSetter, usernames []string, template string) (Summary, map[string]string) {
	if template == "" {
		template = RandomPlaceholder
	}

	set := make(map[string]string, len(usernames))
	pos := make(map[string]int, len(usernames))

	for i, u := range usernames {
		if _, ok := pos[u]; !ok {
			pos[u] = i + 1
		}
	}

	sum := each(usernames, "set password", func(u string) error {
		password, err := expand(template, pos[u], false)
		if err != nil {
			return err
		}

		if err = p.SetPassword(ctx, u, password); err != nil {
			return err
		}

		set[u] = password

		return nil
	})

	return sum, set
}

var errEmptyUsername = errors.New("empty username")

func each(usernames []string, action string, fn func(string) error) Summary {
	sum := Summary{Errors: []string{}}

	for _, u := range usernames {
		u = strings.TrimSpace(u)

		err := errEmptyUsername
		if u != "" {
			err = fn(u)
		}

		if err != nil {
			sum.Errors = append(sum.Errors, u+": "+err.Error())
			continue
		}

		sum.Done++
	}

	log.Info().Str("action", action).Int("done", sum.Done).Int("failed", len(sum.Errors)).Msg("bulk action finished")

	return sum
}
