package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/schema"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
)

func init() { //nolint: gochecknoinits
	dbCmd.AddCommand(dbTestCmd, dbInitCmd, dbStatusCmd)
	rootCmd.AddCommand(dbCmd)
}

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Test, inspect and initialize the database",
	}

	dbTestCmd = &cobra.Command{
		Use:   "test",
		Short: "Test the configured connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := session.NewManager().TestConnection(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(stdout, msg)

			return err
		},
	}

	dbInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the missing FreeRADIUS tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(m *session.Manager) error {
				s, _ := m.Current()

				created, err := schema.Ensure(cmd.Context(), s)
				if err != nil {
					return err
				}

				return output(map[string][]string{"created": created}, func() {
					if len(created) == 0 {
						_, _ = fmt.Fprintln(stdout, "all tables present")
						return
					}

					_, _ = fmt.Fprintln(stdout, "created:", strings.Join(created, ", "))
				})
			})
		},
	}

	dbStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Connect and report missing tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(m *session.Manager) error {
				st := m.Status()

				return output(st, func() {
					missing := "-"
					if len(st.Missing) > 0 {
						missing = strings.Join(st.Missing, ", ")
					}

					printKV([][2]string{
						{"connected", fmt.Sprint(st.Connected)},
						{"driver", st.Driver},
						{"target", st.Target},
						{"missing tables", missing},
					})
				})
			})
		},
	}
)
