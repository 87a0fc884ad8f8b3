package config

import (
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimizer struct {
		// RequestTimeout bounds a single synchronous optimization request.
		RequestTimeout time.Duration `env:"OPT_REQUEST_TIMEOUT" envDefault:"60s"`
		// MaxStops rejects oversized routes before any population work.
		MaxStops       int     `env:"OPT_MAX_STOPS" envDefault:"500"`
		PopulationSize int     `env:"OPT_POPULATION_SIZE" envDefault:"50"`
		Generations    int     `env:"OPT_GENERATIONS" envDefault:"100"`
		MutationRate   float64 `env:"OPT_MUTATION_RATE" envDefault:"0.1"`
		CrossoverRate  float64 `env:"OPT_CROSSOVER_RATE" envDefault:"0.8"`
		TournamentSize int     `env:"OPT_TOURNAMENT_SIZE" envDefault:"3"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

// GetEnv returns the value of the environment variable or the default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt returns the value of the environment variable as int or the default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// GetEnvAsBool returns the value of the environment variable as bool or the default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
