package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/middleware/apikey"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(hashKeyCmd)
}

var hashKeyCmd = &cobra.Command{
	Use:         "hash-key KEY",
	Short:       "Print the argon2id hash of an API key for webserver.api_key_hash",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(_ *cobra.Command, args []string) error {
		hash, err := apikey.Hash(args[0])
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(stdout, hash)

		return err
	},
}
