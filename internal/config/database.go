package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is optional: without DATABASE_URL or POSTGRES_DB records and
// players are disabled.
type Database struct {
	URL          string `env:"DATABASE_URL"`
	Username     string `env:"POSTGRES_USER"`
	Password     string `env:"POSTGRES_PASSWORD"`
	PasswordFile string `env:"POSTGRES_PASSWORD_FILE,file"`
	Host         string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         uint16 `env:"POSTGRES_PORT" envDefault:"5432"`
	DBName       string `env:"POSTGRES_DB"`
	SSLMode      string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

func (c Database) Enabled() bool {
	return c.URL != "" || c.DBName != ""
}

func (c Database) password() string {
	if c.Password != "" {
		return c.Password
	}
	return strings.TrimSpace(c.PasswordFile)
}

func (c Database) ConnURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.password()),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

func (c Database) PgxpoolConfig() (*pgxpool.Config, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("no DATABASE_URL or POSTGRES_DB env variable set")
	}
	return pgxpool.ParseConfig(c.ConnURL())
}
