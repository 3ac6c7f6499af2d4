package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savetrack/internal/alerting"
	"savetrack/internal/signal"
)

// SimulateAlert 用给定的收盘价与均线值模拟一次信号翻转告警。
func (a *App) SimulateAlert(ctx context.Context, ticker string, close, average decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	current := signal.Classify(close, average)
	previous := signal.Bullish
	if current == signal.Bullish {
		previous = signal.Bearish
	}

	return notifier.Notify(ctx, alerting.Notification{
		Ticker:   strings.ToUpper(ticker),
		Date:     time.Now().UTC().Truncate(24 * time.Hour),
		Close:    close,
		Average:  average,
		Window:   a.Config.Strategy.Window,
		Previous: previous,
		Current:  current,
		RunID:    "simulated-" + uuid.NewString()[:8],
	})
}
