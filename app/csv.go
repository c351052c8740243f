package app

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/bulk"
	usercontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/user"
)

var csvImport bulk.ImportOptions

func init() { //nolint: gochecknoinits
	csvImportCmd.Flags().BoolVar(&csvImport.HasHeader, "header", false, "skip the first row")
	csvImportCmd.Flags().StringVarP(&csvImport.DefaultGroup, "group", "g", "", "group for rows without one")

	csvCmd.AddCommand(csvImportCmd, csvExportCmd)
	rootCmd.AddCommand(csvCmd)
}

var (
	csvCmd = &cobra.Command{
		Use:   "csv",
		Short: "Import and export users as CSV",
	}

	csvImportCmd = &cobra.Command{
		Use:   "import FILE",
		Short: "Create users from username,password[,group[,expiration]] rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin

			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				r = f
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				res, err := bulk.Import(cmd.Context(), svc, r, csvImport)
				if err != nil {
					return err
				}

				return printResult(res)
			})
		},
	}

	csvExportCmd = &cobra.Command{
		Use:   "export FILE",
		Short: "Write all users with their cleartext passwords",
		Long: `Write username, password, group and expiration of every user as CSV.
The output contains plaintext passwords; protect it accordingly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintln(os.Stderr, "warning: the export contains plaintext passwords")

			var w io.Writer = stdout

			if args[0] != "-" {
				f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint: mnd
				if err != nil {
					return err
				}
				defer f.Close()

				w = f
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				n, err := bulk.Export(cmd.Context(), svc, w)
				if err != nil {
					return err
				}

				if args[0] != "-" {
					printKV([][2]string{{"exported", strconv.Itoa(n)}, {"file", args[0]}})
				}

				return nil
			})
		},
	}
)
