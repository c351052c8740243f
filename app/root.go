// Package app implements the command line interface.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger"
)

var (
	configPath string // Path to the configuration file
	jsonOutput bool

	cfg config.Config
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "radius-admin",
	Short: "radius-admin manages FreeRADIUS users and groups stored in SQL",
	Long: `radius-admin manages the users, groups and attributes of a FreeRADIUS
SQL database (radcheck, radreply, radusergroup, radacct, radgroupcheck,
radgroupreply). It works from the command line or serves a JSON REST API.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			return nil
		}

		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}

		if cfg.Log.File.Combined == "" {
			cfg.Log.File.Combined = cfg.Application.LogFile
		}

		return logger.Init(cfg.Log)
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running
// database call.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// connect opens a session for the configured database. The caller closes it
// with Disconnect.
func connect(cmd *cobra.Command) (*session.Manager, error) {
	m := session.NewManager()
	if err := m.Connect(cmd.Context(), cfg.Database); err != nil {
		return nil, err
	}

	return m, nil
}

// withSession runs fn with a connected manager and disconnects afterwards.
func withSession(cmd *cobra.Command, fn func(m *session.Manager) error) error {
	m, err := connect(cmd)
	if err != nil {
		return err
	}

	defer func() {
		_ = m.Disconnect()
	}()

	return fn(m)
}
