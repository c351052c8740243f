package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
)

var (
	showSecrets bool
	forceInit   bool
)

func init() { //nolint: gochecknoinits
	configShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the database password and API key hash")
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := config.Dump(cfg, showSecrets)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(stdout, s)

			return err
		},
	}

	configInitCmd = &cobra.Command{
		Use:         "init",
		Short:       "Write a configuration file with the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !forceInit {
				return fmt.Errorf("%s exists, use --force to overwrite it", configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(stdout, "wrote", configPath)

			return err
		},
	}
)
