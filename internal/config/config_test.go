package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "data/savings.db" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Strategy.Window != 200 {
		t.Fatalf("window default should be 200, got %d", cfg.Strategy.Window)
	}
	if cfg.Provider.RequestTimeout.Seconds() != 15 {
		t.Fatalf("request timeout not decoded: %s", cfg.Provider.RequestTimeout)
	}
	if cfg.Alerting.Cooldown.Hours() != 12 || cfg.Strategy.StartupDelay != 0 {
		t.Fatalf("unexpected alerting/refresh defaults: %s %s", cfg.Alerting.Cooldown, cfg.Strategy.StartupDelay)
	}
	if cfg.App.Name != "test" || cfg.App.Environment != "development" {
		t.Fatalf("unexpected app metadata: %+v", cfg.App)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SAVETRACK_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("SAVETRACK_STRATEGY_WINDOW", "50")

	cfg, err := Load(writeConfig(t, "provider:\n  name: stooq\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Fatalf("env override ignored: %s", cfg.Database.Path)
	}
	if cfg.Strategy.Window != 50 {
		t.Fatalf("env override ignored: %d", cfg.Strategy.Window)
	}
	if cfg.Provider.Name != "stooq" {
		t.Fatalf("file value ignored: %s", cfg.Provider.Name)
	}
}

func TestValidate(t *testing.T) {
	if _, err := Load(writeConfig(t, "database:\n  driver: postgres\n")); err == nil {
		t.Fatal("postgres without dsn should fail validation")
	}
	if _, err := Load(writeConfig(t, "provider:\n  name: bloomberg\n")); err == nil {
		t.Fatal("unknown provider should fail validation")
	}
	if _, err := Load(writeConfig(t, "alerting:\n  telegram:\n    enabled: true\n")); err == nil {
		t.Fatal("telegram without token should fail validation")
	}
}

func TestValidateEmptyDriverMeansSQLite(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "data/savings.db"},
		Provider: ProviderConfig{Name: "csv"},
		Strategy: StrategyConfig{Window: 200},
		Export:   ExportConfig{MaxDataPoints: 10},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should be accepted as sqlite: %v", err)
	}

	cfg.Database.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty driver still needs database.path")
	}

	cfg.Database.Path = "data/savings.db"
	cfg.Alerting.Cooldown = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative cooldown should fail validation")
	}
}

func TestResolveOverrides(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 10}, Strategy: StrategyConfig{ShowLast: 5}}
	if cfg.ResolveMaxPoints(0) != 10 || cfg.ResolveMaxPoints(3) != 3 {
		t.Fatal("ResolveMaxPoints mismatch")
	}
	if cfg.ResolveShowLast(0) != 5 || cfg.ResolveShowLast(7) != 7 {
		t.Fatal("ResolveShowLast mismatch")
	}
}

func TestLoadWatchlist(t *testing.T) {
	cfg, err := Load(writeConfig(t, "strategy:\n  watchlist: [AAPL, MSFT]\n  refresh_interval: 6h\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Strategy.Watchlist) != 2 || cfg.Strategy.Watchlist[1] != "MSFT" {
		t.Fatalf("watchlist not decoded: %v", cfg.Strategy.Watchlist)
	}
	if cfg.Strategy.RefreshInterval.Hours() != 6 {
		t.Fatalf("refresh interval not decoded: %s", cfg.Strategy.RefreshInterval)
	}

	t.Setenv("SAVETRACK_STRATEGY_WATCHLIST", "SPY,QQQ,VTI")
	cfg, err = Load(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Strategy.Watchlist) != 3 {
		t.Fatalf("env watchlist not split: %v", cfg.Strategy.Watchlist)
	}
}
