package bookden

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// Config carries everything the server needs at startup. It is built once in
// main and handed to the pieces that need it; nothing reads the environment
// after LoadConfig returns.
type Config struct {
	DBHost     string `env:"BOOKDEN_DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"BOOKDEN_DB_PORT" envDefault:"3306"`
	DBUser     string `env:"BOOKDEN_DB_USER" envDefault:"bookden"`
	DBPassword string `env:"BOOKDEN_DB_PASSWORD" envDefault:"bookden"`
	DBName     string `env:"BOOKDEN_DB_NAME" envDefault:"bookden"`

	Port string `env:"BOOKDEN_PORT" envDefault:"3000"`

	TokenSecret    string        `env:"BOOKDEN_TOKEN_SECRET" envDefault:"bookden-dev-secret"`
	TokenAlgorithm string        `env:"BOOKDEN_TOKEN_ALGORITHM" envDefault:"HS256"`
	TokenLifetime  time.Duration `env:"BOOKDEN_TOKEN_LIFETIME" envDefault:"1h"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TokenLifetime <= 0 {
		return Config{}, fmt.Errorf("BOOKDEN_TOKEN_LIFETIME must be positive, got %s", cfg.TokenLifetime)
	}
	return cfg, nil
}

// DSN builds the MySQL connection string.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.DBPort
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.DBName = c.DBName
	mc.ParseTime = true
	// migration files contain several statements each
	mc.MultiStatements = true
	return mc.FormatDSN()
}
