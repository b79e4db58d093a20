package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bedrock-relay/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bedrock-relay",
	Short: "Telegram bot relaying chats to a Bedrock chat backend",
	Long: `bedrock-relay connects a Telegram bot to a Bedrock chat backend. Each
message is submitted to the backend once and the assistant's reply is
fetched by polling the conversation on a back-off schedule, while the chat
shows a typing indicator.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
