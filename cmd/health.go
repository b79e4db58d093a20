package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the backend is reachable",
	Long:  `Probes the backend /health endpoint and exits with status 1 unless it answers 200 OK within ten seconds.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(false)
		exitOnError(err)

		client := newBackendClient(cfg)
		if !client.Health(cmd.Context()) {
			exitOnError(errors.Errorf("backend %s is not healthy", client.BaseURL()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backend %s is healthy\n", client.BaseURL())
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
