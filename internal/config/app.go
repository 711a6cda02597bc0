package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type GameDefaults struct {
	Rows      int `env:"DEFAULT_ROWS" envDefault:"10"`
	Cols      int `env:"DEFAULT_COLS" envDefault:"10"`
	MineCount int `env:"DEFAULT_MINES" envDefault:"10"`
}

func (d GameDefaults) Params() mines.GameParams {
	return mines.GameParams{Rows: d.Rows, Cols: d.Cols, MineCount: d.MineCount}
}

type App struct {
	Addr         string        `env:"APP_ADDR" envDefault:":8080"`
	BasePath     string        `env:"APP_BASE_PATH"`
	Development  bool          `env:"DEVELOPMENT"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	CorsOrigins  []string      `env:"CORS_ORIGINS" envSeparator:","`
	MaxCells     int           `env:"MAX_CELLS" envDefault:"10000"`

	Defaults GameDefaults
	Database Database
	JWT      JWTKeys
	Cookies  CookieSettings
}

func Load() (*App, error) {
	cfg, err := env.ParseAs[App]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxCells <= 0 {
		return nil, fmt.Errorf("MAX_CELLS must be positive, got %d", cfg.MaxCells)
	}
	if err := cfg.Defaults.Params().ValidateWithin(cfg.MaxCells); err != nil {
		return nil, fmt.Errorf("invalid default game: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return &cfg, nil
}

// Level is the effective log level: debug in development, LOG_LEVEL otherwise.
func (c App) Level() slog.Level {
	if c.Development {
		return slog.LevelDebug
	}
	return c.LogLevel
}
