package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deusflow/adtrends/internal/app"
	"github.com/deusflow/adtrends/internal/config"
	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/mail"
	"github.com/deusflow/adtrends/internal/telegram"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "adtrends",
		Short:         "Weekly advertising and media trend digest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newRunCmd(&debug),
		newCollectCmd(&debug),
		newReportCmd(&debug),
		newSendCmd(&debug),
	)
	return root
}

func newRunCmd(debug *bool) *cobra.Command {
	var noEmail bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, build the report and deliver it",
		Long: `Run the whole pipeline: collect feeds and papers, build today's
report, then deliver it by email and Telegram.

Examples:
  adtrends run              # collect + report + delivery
  adtrends run --no-email   # keep the report on disk only
  adtrends run --debug      # verbose logs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *debug, !noEmail, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx, noEmail)
			})
		},
	}
	cmd.Flags().BoolVar(&noEmail, "no-email", false, "Skip report delivery")
	return cmd
}

func newCollectCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Collect feeds and papers into today's snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *debug, false, func(ctx context.Context, a *app.App) error {
				c, err := a.Collect(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("✅ articles: %d, papers: %d\n", len(c.Articles), len(c.Papers))
				return nil
			})
		},
	}
}

func newReportCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Build today's report from the saved snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *debug, false, func(ctx context.Context, a *app.App) error {
				path, err := a.Report(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Report Created: %s\n", path)
				return nil
			})
		},
	}
}

func newSendCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "send [report-path]",
		Short: "Deliver a report (today's by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return withApp(cmd.Context(), *debug, true, func(ctx context.Context, a *app.App) error {
				if a.Deliver(ctx, path) == 0 {
					return errors.New("report was not delivered")
				}
				return nil
			})
		},
	}
}

// withApp loads configuration, builds the App and runs fn with a context
// cancelled on SIGINT/SIGTERM.
func withApp(parent context.Context, debug, deliver bool, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return err
	}
	if debug {
		cfg.Debug = true
	}
	logger.Init(cfg.Debug, cfg.LogFormat)
	log := logger.L()

	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load sources")
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MonitoringPort > 0 {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	a, err := app.New(ctx, cfg, sources)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise")
		return err
	}
	defer a.Close()

	if deliver {
		addDeliverers(a, cfg)
	}

	if err := fn(ctx, a); err != nil {
		log.Error().Err(err).Msg("❌ failed")
		return err
	}
	return nil
}

func addDeliverers(a *app.App, cfg *config.Config) {
	log := logger.L()

	a.AddDeliverer("email", mail.New(mail.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.EmailSender,
		Password: cfg.SMTPPassword,
		To:       cfg.EmailTo,
	}))

	if cfg.TelegramEnabled() {
		n, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("telegram disabled")
			return
		}
		a.AddDeliverer("telegram", n)
	}
}
