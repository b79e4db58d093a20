package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bedrock-relay/internal/backend"
	"github.com/ziadkadry99/bedrock-relay/internal/progress"
)

var askUser int64

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message to the backend and print the reply",
	Long: `Relays a single message the same way the bot does and prints the
assistant's reply. The conversation is derived from --user, so repeated
calls with the same id continue the same conversation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		client := newBackendClient(cfg)
		coordinator := newCoordinator(cfg, client, log, nil)

		indicator := progress.NewTerminalIndicator(cmd.ErrOrStderr(), "waiting for the assistant")
		signaler := progress.NewSignaler(indicator,
			progress.WithInterval(200*time.Millisecond),
			progress.WithLogger(log),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		text := strings.Join(args, " ")
		var reply string
		err = signaler.During(ctx, askUser, func(ctx context.Context) error {
			var relayErr error
			reply, relayErr = coordinator.SubmitAndWait(ctx, text, askUser)
			return relayErr
		})
		indicator.Finish()
		if err != nil {
			return errors.Wrapf(err, "no reply (%s)", backend.Kind(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	askCmd.Flags().Int64Var(&askUser, "user", 0, "user id the conversation is derived from")
	rootCmd.AddCommand(askCmd)
}
