package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bedrock-relay/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a bedrock-relay configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the bot token and backend settings and writes them to the config file (.relay.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
