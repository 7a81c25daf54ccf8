package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/tgvault/internal/archive"
	"github.com/nextlevelbuilder/tgvault/internal/batch"
	"github.com/nextlevelbuilder/tgvault/internal/bus"
	"github.com/nextlevelbuilder/tgvault/internal/channels"
	"github.com/nextlevelbuilder/tgvault/internal/channels/telegram"
	"github.com/nextlevelbuilder/tgvault/internal/config"
	"github.com/nextlevelbuilder/tgvault/internal/mediagroup"
	"github.com/nextlevelbuilder/tgvault/internal/retention"
	"github.com/nextlevelbuilder/tgvault/internal/telemetry"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the archiver (ingest, download, reply)",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if !cfg.Channels.Telegram.Enabled || cfg.Channels.Telegram.Token == "" {
		slog.Error("no telegram bot token configured",
			"hint", "run 'tgvault onboard' or set TGVAULT_TELEGRAM_TOKEN")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	store, err := archive.NewStore(cfg.Database)
	if err != nil {
		slog.Error("failed to open archive store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	msgBus := bus.New(cfg.Consumer.QueueCapacity)

	tgChannel, err := telegram.New(cfg.Channels.Telegram, cfg.Downloads, msgBus)
	if err != nil {
		slog.Error("failed to create telegram channel", "error", err)
		os.Exit(1)
	}

	channelMgr := channels.NewManager(msgBus)
	channelMgr.RegisterChannel(tgChannel)

	if err := os.MkdirAll(cfg.DownloadDir(), 0o755); err != nil {
		slog.Error("failed to create downloads directory", "dir", cfg.DownloadDir(), "error", err)
		os.Exit(1)
	}

	groups := mediagroup.New(
		mediagroup.WithStaleAge(cfg.Consumer.GroupStaleAge()),
		mediagroup.WithCompleteSize(cfg.Consumer.GroupCompleteSize),
		mediagroup.WithCompleteFunc(func(groupID string, items []mediagroup.Item) {
			slog.Info("media group assembled", "group_id", groupID, "items", len(items))
		}),
	)

	scheduler := batch.NewScheduler(
		msgBus,
		telegram.NewFetcher(tgChannel),
		archive.NewRecorder(store),
		groups,
		cfg.Consumer.QuietPeriod(),
	)

	if err := channelMgr.StartAll(ctx); err != nil {
		slog.Error("failed to start channels", "error", err)
		os.Exit(1)
	}

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(runCtx)
	})

	g.Go(func() error {
		groups.Run(runCtx, cfg.Consumer.GroupSweepInterval())
		return nil
	})

	if cfg.Downloads.RetentionCron != "" {
		sweeper, err := retention.New(cfg.DownloadDir(), cfg.Downloads.RetentionCron, cfg.Downloads.RetentionDays)
		if err != nil {
			slog.Error("invalid retention config", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			sweeper.Run(runCtx)
			return nil
		})
	}

	slog.Info("tgvault started",
		"version", Version,
		"queue_capacity", cfg.Consumer.QueueCapacity,
		"quiet_period", cfg.Consumer.QuietPeriod(),
		"downloads", cfg.DownloadDir(),
		"database", cfg.Database.Driver,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("graceful shutdown initiated", "signal", sig)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	channelMgr.StopAll(stopCtx)

	cancel()
	g.Wait()

	// In-flight fetch tasks see the cancelled context and abort; wait for
	// their goroutines to exit before closing the bus. Nothing is flushed
	// on shutdown.
	scheduler.WaitIdle()
	msgBus.Close()

	slog.Info("tgvault stopped")
}
