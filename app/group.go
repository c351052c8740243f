package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	groupcontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/group"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

var (
	groupPriority int
	groupForce    bool
)

func init() { //nolint: gochecknoinits
	groupAddCmd.Flags().IntVar(&groupPriority, "priority", radius.DefaultPriority, "default membership priority (1-99)")
	groupDeleteCmd.Flags().BoolVarP(&groupForce, "force", "f", false, "delete even when the group has members")

	groupCmd.AddCommand(
		groupListCmd, groupAddCmd, groupDeleteCmd, groupMembersCmd,
		groupAttrsCmd, groupAttrAddCmd, groupAttrDelCmd, groupAttrSetCmd,
	)
	rootCmd.AddCommand(groupCmd)
}

func withGroups(cmd *cobra.Command, fn func(svc *groupcontroller.Service) error) error {
	return withSession(cmd, func(m *session.Manager) error {
		return fn(groupcontroller.New(m))
	})
}

var (
	groupCmd = &cobra.Command{
		Use:   "group",
		Short: "Manage RADIUS groups",
	}

	groupListCmd = &cobra.Command{
		Use:   "list",
		Short: "List groups with member counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				groups, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}

				return printGroups(groups)
			})
		},
	}

	groupAddCmd = &cobra.Command{
		Use:   "add NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				return svc.Create(cmd.Context(), radius.Group{Name: args[0], DefaultPriority: groupPriority})
			})
		},
	}

	groupDeleteCmd = &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a group, its attributes and memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				members, err := svc.Members(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if len(members) > 0 {
					if !groupForce {
						return fmt.Errorf("group %q has %d members, use --force to delete it", args[0], len(members))
					}

					_, _ = fmt.Fprintf(os.Stderr, "warning: %d members of %q are left without a group\n",
						len(members), args[0])
				}

				return svc.Delete(cmd.Context(), args[0])
			})
		},
	}

	groupMembersCmd = &cobra.Command{
		Use:   "members NAME",
		Short: "List the users in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				members, err := svc.Members(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return output(members, func() {
					rows := make([][]string, 0, len(members))
					for _, m := range members {
						rows = append(rows, []string{m})
					}

					printTable([]string{"USERNAME"}, rows)
				})
			})
		},
	}

	groupAttrsCmd = &cobra.Command{
		Use:   "attrs NAME",
		Short: "Show a group's check and reply attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				check, reply, err := svc.Attributes(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return printAttributes(check, reply)
			})
		},
	}

	groupAttrAddCmd = &cobra.Command{
		Use:     "attr-add NAME check|reply Name<op>Value",
		Short:   "Add a group attribute",
		Example: `  radius-admin group attr-add staff reply "Session-Timeout:=7200"`,
		Args:    cobra.ExactArgs(3), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, a, err := kindAndAttribute(args[1], args[2])
			if err != nil {
				return err
			}

			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				return svc.AddAttribute(cmd.Context(), args[0], kind, a)
			})
		},
	}

	groupAttrDelCmd = &cobra.Command{
		Use:   "attr-del NAME check|reply Name<op>Value",
		Short: "Delete a group attribute",
		Args:  cobra.ExactArgs(3), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, a, err := kindAndAttribute(args[1], args[2])
			if err != nil {
				return err
			}

			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				return svc.DeleteAttribute(cmd.Context(), args[0], kind, a)
			})
		},
	}

	groupAttrSetCmd = &cobra.Command{
		Use:   "attr-set NAME check|reply OLD NEW",
		Short: "Replace a group attribute in one transaction",
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

			return withGroups(cmd, func(svc *groupcontroller.Service) error {
				return svc.UpdateAttribute(cmd.Context(), args[0], kind, old, updated)
			})
		},
	}
)
