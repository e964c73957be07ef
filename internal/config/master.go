package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment key, e.g. APPSERVER_COORDINATOR_PORT
const EnvPrefix = "APPSERVER"

// LoadEnv exports the variables of <environment>.env into the process environment.
// Variables already set win. An empty environment loads ./.env when present.
func LoadEnv(environment string) error {
	if environment == "" {
		if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return godotenv.Load(".env")
	}

	if err := godotenv.Load(environment + ".env"); err != nil {
		return fmt.Errorf("error loading %s.env file: %w", environment, err)
	}
	return nil
}

// New builds a config struct from APPSERVER_* variables, applying struct defaults
func New[T any]() (*T, error) {
	var conf T
	if err := envconfig.Process(EnvPrefix, &conf); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &conf, nil
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// RedisConfig locates the redis tool store
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}
