package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"OskoFlow/internal/collector"
	"OskoFlow/internal/config"
	"OskoFlow/internal/desk"
	"OskoFlow/internal/logging"
	"OskoFlow/internal/notifier"
	"OskoFlow/internal/random"
	"OskoFlow/internal/recorder"
	"OskoFlow/internal/scheduler"
	"OskoFlow/internal/strategy"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("oskoflow exited")
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "oskoflow",
		Short:        "Options recommendation bot for Telegram",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			return runBot(cfg)
		},
	}
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "path to the YAML config file")
	root.AddCommand(newScanCmd(&cfgPath))
	return root
}

func newScanCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one refresh and print the cards to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dm := buildDesk(cfg, recorder.NewNoopRecorder())
			set, err := dm.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			out := cmd.OutOrStdout()
			if set.Len() == 0 {
				fmt.Fprintln(out, notifier.PlainText(notifier.FormatEmpty()))
				return nil
			}
			now := time.Now().In(cfg.Location())
			fmt.Fprintln(out, notifier.PlainText(notifier.FormatDailyHeader(set.Len(), now)))
			for i, rec := range set.Items {
				fmt.Fprintln(out)
				fmt.Fprintln(out, notifier.PlainText(notifier.FormatCard(rec, i+1, set.Len(), now)))
				fmt.Fprintln(out, notifier.Separator)
			}
			return nil
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildDesk wires providers, the synthetic fallback and the strategy engine.
func buildDesk(cfg *config.Config, rec recorder.Recorder) *desk.Manager {
	var rng random.Source = random.New()
	if cfg.Desk.Seed != 0 {
		rng = random.NewSeeded(cfg.Desk.Seed)
	}
	guard := collector.GuardOptions{
		Timeout:    cfg.Providers.Timeout,
		RatePerSec: cfg.Providers.RatePerSec,
		Burst:      cfg.Providers.Burst,
	}

	var primary collector.QuoteProvider
	if key := cfg.Providers.AlphaVantage.APIKey; key != "" {
		primary = collector.Guard(collector.NewAlphaVantageProvider(cfg.Providers.AlphaVantage.BaseURL, key, cfg.Proxy, cfg.Providers.Timeout), guard)
	} else {
		log.Warn().Msg("ALPHA_VANTAGE_KEY not set, primary provider disabled")
	}
	secondary := collector.Guard(collector.NewYahooProvider(cfg.Providers.Yahoo.BaseURL, cfg.Proxy, cfg.Providers.Timeout), guard)

	src := collector.NewSource(primary, secondary, collector.NewSyntheticGenerator(rng), rec)
	engine := strategy.NewEngine(rng, cfg.Location())
	return desk.NewManager(src, engine, rng, rec, desk.Options{
		Watchlist:     cfg.Desk.Watchlist,
		MaxCandidates: cfg.Desk.MaxCandidates,
		Target:        cfg.Desk.Target,
		Pacing:        cfg.Desk.CandidateDelay,
	})
}

func runBot(cfg *config.Config) error {
	log.Info().Msg("OskoFlow starting...")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		pr := recorder.NewPrometheusRecorder()
		rec = pr
		mux := http.NewServeMux()
		mux.Handle("/metrics", pr.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}
	defer rec.Close()

	dm := buildDesk(cfg, rec)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, dm, tn, scheduler.Options{
		Location:     cfg.Location(),
		AdminIDs:     cfg.Telegram.AdminIDs,
		Channel:      cfg.Telegram.ChatID,
		MessageDelay: cfg.Desk.MessageDelay,
	})
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.AutoPostCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	go sched.RefreshNow()

	log.Info().Msg("OskoFlow is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	if metricsSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
	log.Info().Msg("OskoFlow stopped")
	return nil
}
