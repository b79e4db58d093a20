package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/bedrock-relay/internal/bots"
	"github.com/ziadkadry99/bedrock-relay/internal/metrics"
	"github.com/ziadkadry99/bedrock-relay/internal/progress"
	"github.com/ziadkadry99/bedrock-relay/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	Long: `Starts the Telegram bot in long-polling mode together with the operations
server (/healthz, /readyz, /metrics). SIGINT or SIGTERM stops polling and
waits for in-flight chats to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		m := metrics.New()

		client := newBackendClient(cfg)
		coordinator := newCoordinator(cfg, client, log, m)

		tg, err := bots.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.MaxConcurrency, log)
		if err != nil {
			return err
		}
		signaler := progress.NewSignaler(tg, progress.WithLogger(log), progress.WithMetrics(m))
		processor := bots.NewProcessor(tg, coordinator, signaler, bots.WithLogger(log), bots.WithMetrics(m))

		allowed, err := cfg.AuthorizedUserIDs()
		if err != nil {
			return err
		}
		gateway := bots.NewGateway(tg, processor, client, allowed, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		healthy := client.Health(ctx)
		m.SetBackendHealthy(healthy)
		if !healthy {
			log.Warn().Str("url", client.BaseURL()).Msg("backend is not reachable yet")
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer stop()
			return tg.Run(gctx, gateway)
		})
		if cfg.Ops.Listen != "" {
			srv := server.New(server.Config{
				Listen:      cfg.Ops.Listen,
				CORSOrigins: cfg.Ops.CORSOrigins,
			}, client, m, log)
			g.Go(func() error { return srv.Run(gctx) })
		}

		log.Info().
			Str("version", Version).
			Str("backend", client.BaseURL()).
			Str("model", cfg.Backend.Model).
			Int("authorized_users", len(allowed)).
			Msg("bedrock-relay starting")

		if err := g.Wait(); err != nil {
			return errors.Wrap(err, "bot stopped")
		}
		log.Info().Msg("bedrock-relay stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
