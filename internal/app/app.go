package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"savetrack/internal/alerting"
	"savetrack/internal/config"
	"savetrack/internal/fetcher"
	"savetrack/internal/httpapi"
	"savetrack/internal/metrics"
	"savetrack/internal/service"
	"savetrack/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer

	// newFetcher is swapped in tests to avoid network access.
	newFetcher func() (fetcher.PriceFetcher, error)
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	a := &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
	a.newFetcher = a.defaultFetcher
	return a
}

func (a *App) defaultFetcher() (fetcher.PriceFetcher, error) {
	return fetcher.New(a.Config.Provider, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// newService opens the store and builds the orchestrator. withPrices controls whether a
// price provider is constructed.
func (a *App) newService(ctx context.Context, withPrices bool, recorder *metrics.Recorder) (*service.Service, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	var prices fetcher.PriceFetcher
	if withPrices {
		prices, err = a.newFetcher()
		if err != nil {
			closeStore()
			return nil, nil, err
		}
	}

	svc := service.New(prices, store, store, service.Options{
		Window:   a.Config.Strategy.Window,
		Notifier: a.newNotifier(),
		Alerts:   store,
		Cooldown: a.Config.Alerting.Cooldown,
		Metrics:  recorder,
	}, a.Logger)
	return svc, closeStore, nil
}

func (a *App) defaultFrom() time.Time {
	from, err := time.Parse(dateLayout, a.Config.Strategy.DefaultFrom)
	if err != nil {
		return time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return from
}

// Serve runs the JSON API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := ossignal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.New()
	svc, closeStore, err := a.newService(ctx, true, recorder)
	if err != nil {
		return err
	}
	defer closeStore()

	refreshDone, err := a.startWatchlist(ctx, svc)
	if err != nil {
		return err
	}

	srv := httpapi.New(svc, recorder, httpapi.Options{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		DefaultFrom:     a.defaultFrom(),
	}, a.Logger)

	a.Logger.Info().Str("addr", a.Config.Server.Addr).Msg("starting api server")
	err = srv.Run(ctx)

	// The store closes on return, so the refresh loop has to finish first.
	cancel()
	if refreshDone != nil {
		<-refreshDone
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("api server terminated with error")
		return err
	}

	a.Logger.Info().Msg("api server stopped")
	return nil
}

const dateLayout = "2006-01-02"

// StrategyOptions configure the strategy command.
type StrategyOptions struct {
	Ticker string
	From   *time.Time
	To     *time.Time
	Last   int
}

// SignalsOptions configure the signals listing.
type SignalsOptions struct {
	Ticker string
	Limit  int
}

// TransactionOptions describe one manual ledger entry.
type TransactionOptions struct {
	Kind     string
	Category string
	Amount   string
	Note     string
	Date     *time.Time
}

// ExportOptions hold parameters for exporting stored data.
type ExportOptions struct {
	Ticker    string
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

func (o ExportOptions) validate() error {
	if o.CSVPath == "" && o.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}
