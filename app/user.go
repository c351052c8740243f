package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/bulk"
	usercontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/user"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/passgen"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

var errPasswordFlags = errors.New("use either --password or --random")

type userFlags struct {
	password        string
	random          bool
	group           string
	expiration      string
	simultaneousUse int
	sessionTimeout  int
	idleTimeout     int
	check           []string
	reply           []string
}

var newUser userFlags

func init() { //nolint: gochecknoinits
	f := userAddCmd.Flags()
	f.StringVarP(&newUser.password, "password", "p", "", "password")
	f.BoolVar(&newUser.random, "random", false, "generate a random password")
	f.StringVarP(&newUser.group, "group", "g", radius.DefaultGroup, "group")
	f.StringVar(&newUser.expiration, "expiration", "", `expiration, e.g. "01 Jan 2030"`)
	f.IntVar(&newUser.simultaneousUse, "simultaneous-use", 1, "concurrent sessions, written when > 1")
	f.IntVar(&newUser.sessionTimeout, "session-timeout", radius.DefaultSessionTimeout, "session timeout in seconds")
	f.IntVar(&newUser.idleTimeout, "idle-timeout", radius.DefaultIdleTimeout, "idle timeout in seconds")
	f.StringArrayVar(&newUser.check, "check", nil, `extra check attribute "Name<op>Value", repeatable`)
	f.StringArrayVar(&newUser.reply, "reply", nil, `extra reply attribute "Name<op>Value", repeatable`)

	userPasswdCmd.Flags().StringVarP(&newUser.password, "password", "p", "", "new password")
	userPasswdCmd.Flags().BoolVar(&newUser.random, "random", false, "generate a random password")

	userCmd.AddCommand(
		userListCmd, userAddCmd, userPasswdCmd, userBlockCmd, userUnblockCmd, userDeleteCmd,
		userGroupCmd, userAttrsCmd, userAttrAddCmd, userAttrDelCmd, userAttrSetCmd,
	)
	rootCmd.AddCommand(userCmd)
}

// resolvePassword applies --password and --random.
func (f userFlags) resolvePassword() (string, error) {
	switch {
	case f.random && f.password != "":
		return "", errPasswordFlags
	case f.random:
		return passgen.New()
	case f.password == "":
		return "", radius.ErrEmptyPassword
	default:
		return f.password, nil
	}
}

func parseAttributes(kind radius.Kind, args []string) ([]radius.Attribute, error) {
	out := make([]radius.Attribute, 0, len(args))

	for _, arg := range args {
		a, err := radius.ParseAttribute(arg)
		if err != nil {
			return nil, err
		}

		a.Kind = kind
		out = append(out, a)
	}

	return out, nil
}

// withUsers runs fn with a user service on a fresh session.
func withUsers(cmd *cobra.Command, fn func(svc *usercontroller.Service) error) error {
	return withSession(cmd, func(m *session.Manager) error {
		return fn(usercontroller.New(m))
	})
}

var (
	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage RADIUS users",
	}

	userListCmd = &cobra.Command{
		Use:   "list",
		Short: "List users with group, status and last login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				users, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}

				return printUsers(users)
			})
		},
	}

	userAddCmd = &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := newUser.resolvePassword()
			if err != nil {
				return err
			}

			u := radius.NewUser(args[0], password)
			u.Group = newUser.group
			u.Expiration = newUser.expiration
			u.SimultaneousUse = newUser.simultaneousUse
			u.SessionTimeout = newUser.sessionTimeout
			u.IdleTimeout = newUser.idleTimeout

			check, err := parseAttributes(radius.KindCheck, newUser.check)
			if err != nil {
				return err
			}

			reply, err := parseAttributes(radius.KindReply, newUser.reply)
			if err != nil {
				return err
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				if err := svc.Create(cmd.Context(), u, append(check, reply...)); err != nil {
					return err
				}

				if newUser.random {
					printKV([][2]string{{"username", u.Username}, {"password", u.Password}})
				}

				return nil
			})
		},
	}

	userPasswdCmd = &cobra.Command{
		Use:   "passwd USERNAME",
		Short: "Replace a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := newUser.resolvePassword()
			if err != nil {
				return err
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				if err := svc.SetPassword(cmd.Context(), args[0], password); err != nil {
					return err
				}

				if newUser.random {
					printKV([][2]string{{"username", args[0]}, {"password", password}})
				}

				return nil
			})
		},
	}

	userBlockCmd = &cobra.Command{
		Use:   "block USERNAME...",
		Short: "Block users with Login-Time := Never",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return printSummary(bulk.Block(cmd.Context(), svc, args))
			})
		},
	}

	userUnblockCmd = &cobra.Command{
		Use:   "unblock USERNAME...",
		Short: "Remove the block marker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return printSummary(bulk.Unblock(cmd.Context(), svc, args))
			})
		},
	}

	userDeleteCmd = &cobra.Command{
		Use:   "delete USERNAME...",
		Short: "Delete users with their attributes, memberships and accounting rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return printSummary(bulk.Delete(cmd.Context(), svc, args))
			})
		},
	}

	userGroupCmd = &cobra.Command{
		Use:   "group USERNAME GROUP",
		Short: "Move a user to another group",
		Args:  cobra.ExactArgs(2), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return svc.SetGroup(cmd.Context(), args[0], args[1])
			})
		},
	}

	userAttrsCmd = &cobra.Command{
		Use:   "attrs USERNAME",
		Short: "Show a user's check and reply attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				ok, err := svc.Exists(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if !ok {
					return radius.ErrUserNotFound
				}

				check, reply, err := svc.Attributes(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return printAttributes(check, reply)
			})
		},
	}

	userAttrAddCmd = &cobra.Command{
		Use:     "attr-add USERNAME check|reply Name<op>Value",
		Short:   "Add an attribute",
		Example: `  radius-admin user attr-add alice reply "Framed-IP-Address=10.0.0.5"`,
		Args:    cobra.ExactArgs(3), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, a, err := kindAndAttribute(args[1], args[2])
			if err != nil {
				return err
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return svc.AddAttribute(cmd.Context(), args[0], kind, a)
			})
		},
	}

	userAttrDelCmd = &cobra.Command{
		Use:   "attr-del USERNAME check|reply Name<op>Value",
		Short: "Delete an attribute",
		Args:  cobra.ExactArgs(3), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, a, err := kindAndAttribute(args[1], args[2])
			if err != nil {
				return err
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return svc.DeleteAttribute(cmd.Context(), args[0], kind, a)
			})
		},
	}

	userAttrSetCmd = &cobra.Command{
		Use:   "attr-set USERNAME check|reply OLD NEW",
		Short: "Replace an attribute in one transaction",
		Args:  cobra.ExactArgs(4), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, old, err := kindAndAttribute(args[1], args[2])
			if err != nil {
				return err
			}

			updated, err := radius.ParseAttribute(args[3])
			if err != nil {
				return err
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return svc.UpdateAttribute(cmd.Context(), args[0], kind, old, updated)
			})
		},
	}
)

func kindAndAttribute(kindArg, arg string) (radius.Kind, radius.Attribute, error) {
	kind, err := radius.ParseKind(kindArg)
	if err != nil {
		return "", radius.Attribute{}, err
	}

	a, err := radius.ParseAttribute(arg)
	if err != nil {
		return "", radius.Attribute{}, fmt.Errorf("%s attribute: %w", kind, err)
	}

	return kind, a, nil
}
