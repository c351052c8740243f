package app

import (
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/bulk"
	usercontroller "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/user"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

var bulkFlags struct {
	file     string
	template string
	group    string
	prefix   string
	count    int
}

func init() { //nolint: gochecknoinits
	bulkAddCmd.Flags().StringVarP(&bulkFlags.file, "file", "f", "-", "file with one username[,Attr=Value...] per line, - for stdin")
	bulkAddCmd.Flags().StringVarP(&bulkFlags.template, "template", "t", bulk.DefaultTemplate,
		"password template, {num} is the line number and {random} a random password")
	bulkAddCmd.Flags().StringVarP(&bulkFlags.group, "group", "g", radius.DefaultGroup, "group")

	bulkGenerateCmd.Flags().StringVar(&bulkFlags.prefix, "prefix", bulk.DefaultPrefix, "username prefix")
	bulkGenerateCmd.Flags().IntVarP(&bulkFlags.count, "count", "n", 10, "number of users") //nolint: mnd
	bulkGenerateCmd.Flags().StringVarP(&bulkFlags.template, "template", "t", bulk.DefaultTemplate, "password template")
	bulkGenerateCmd.Flags().StringVarP(&bulkFlags.group, "group", "g", radius.DefaultGroup, "group")

	bulkPasswdCmd.Flags().StringVarP(&bulkFlags.template, "template", "t", bulk.RandomPlaceholder, "password template")

	bulkCmd.AddCommand(bulkAddCmd, bulkGenerateCmd, bulkPasswdCmd)
	rootCmd.AddCommand(bulkCmd)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(path)
}

var (
	bulkCmd = &cobra.Command{
		Use:   "bulk",
		Short: "Create users in batches and reset passwords",
	}

	bulkAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Create the users listed in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readInput(bulkFlags.file)
			if err != nil {
				return err
			}

			items, errs := bulk.ParseManual(string(text), bulkFlags.template, bulkFlags.group)

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				res := bulk.Create(cmd.Context(), svc, items)
				res.Errors = append(errs, res.Errors...)

				return printResult(res)
			})
		},
	}

	bulkGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Create numbered users such as user001, user002",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := bulk.Generate(bulkFlags.prefix, bulkFlags.count, bulkFlags.template, bulkFlags.group)
			if err != nil {
				return err
			}

			return withUsers(cmd, func(svc *usercontroller.Service) error {
				return printResult(bulk.Create(cmd.Context(), svc, items))
			})
		},
	}

	bulkPasswdCmd = &cobra.Command{
		Use:   "passwd USERNAME...",
		Short: "Reset the passwords of several users",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *usercontroller.Service) error {
				sum, passwords := bulk.SetPassword(cmd.Context(), svc, args, bulkFlags.template)

				if !jsonOutput && len(passwords) > 0 {
					names := make([]string, 0, len(passwords))
					for name := range passwords {
						names = append(names, name)
					}

					sort.Strings(names)

					rows := make([][]string, 0, len(names))
					for _, name := range names {
						rows = append(rows, []string{name, passwords[name]})
					}

					printTable([]string{"USERNAME", "PASSWORD"}, rows)
				}

				if jsonOutput {
					return printJSON(map[string]any{"summary": sum, "passwords": passwords})
				}

				return printSummary(sum)
			})
		},
	}
)
