package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"savetrack/internal/scheduler"
	"savetrack/internal/service"
)

type strategyRunner interface {
	RunStrategy(ctx context.Context, req service.StrategyRequest) (service.StrategyResult, error)
}

// startWatchlist recomputes the configured tickers in the background until ctx ends.
// The returned channel closes once the refresh loop has exited; it is nil when no
// watchlist is configured.
func (a *App) startWatchlist(ctx context.Context, svc strategyRunner) (<-chan struct{}, error) {
	tickers := a.Config.Strategy.Watchlist
	if len(tickers) == 0 {
		return nil, nil
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:     a.Config.Strategy.RefreshInterval,
		AlignToStart: true,
		StartupDelay: a.Config.Strategy.StartupDelay,
		RunOnStart:   true,
	}, a.Logger)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sched.Run(ctx, a.refreshTick(svc)); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("watchlist refresh stopped")
		}
	}()
	a.Logger.Info().Strs("tickers", tickers).Dur("interval", a.Config.Strategy.RefreshInterval).Msg("watchlist refresh enabled")
	return done, nil
}

func (a *App) refreshTick(svc strategyRunner) scheduler.TickFunc {
	return func(ctx context.Context, at time.Time) error {
		var errs []error
		for _, ticker := range a.Config.Strategy.Watchlist {
			result, err := svc.RunStrategy(ctx, service.StrategyRequest{
				Ticker: ticker,
				Start:  a.defaultFrom(),
				End:    at,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
				continue
			}
			a.Logger.Debug().Str("ticker", result.Ticker).Int("rows", len(result.Computed)).Msg("watchlist ticker refreshed")
		}
		return errors.Join(errs...)
	}
}
