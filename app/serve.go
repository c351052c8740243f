package app

import (
	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port, overrides webserver.port")

	rootCmd.AddCommand(serveCmd)
}

var (
	servePort int

	serveCmd = &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve the JSON REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if servePort > 0 {
				cfg.Webserver.Port = servePort
			}

			if err := config.Validate(cfg); err != nil {
				return err
			}

			d := daemon.New(cmd.Context(), &cfg)

			return d.Start()
		},
	}
)
