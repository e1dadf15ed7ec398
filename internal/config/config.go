package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultServerAddress   = ":3000"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	GRPCAddress     string        `env:"GRPC_ADDRESS"`
	LogLevel        string        `env:"LOG_LEVEL"`
	LogFile         string        `env:"LOG_FILE"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	ConfigFile      string        `env:"CONFIG"`
}

// fileConfig is the layout of the JSON config file.
type fileConfig struct {
	ServerAddress   *string  `json:"server_address"`
	DatabaseURL     *string  `json:"database_url"`
	GRPCAddress     *string  `json:"grpc_address"`
	LogLevel        *string  `json:"log_level"`
	LogFile         *string  `json:"log_file"`
	CORSOrigins     []string `json:"cors_origins"`
	ShutdownTimeout *string  `json:"shutdown_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress:   defaultServerAddress,
		LogLevel:        defaultLogLevel,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// NewConfig reads the process configuration from command line arguments, a
// JSON file, a .env file and the environment.
func NewConfig() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse builds a Config from args. Values are applied in order: defaults,
// JSON file, explicitly set flags, environment. A .env file in the working
// directory is loaded first and never overrides real environment variables.
func Parse(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	flags := defaultConfig()
	var corsFlag string

	fset := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fset.StringVar(&flags.ServerAddress, "a", flags.ServerAddress, "HTTP server address (e.g. localhost:3000)")
	fset.StringVar(&flags.DatabaseURL, "d", flags.DatabaseURL, "Store connection string: postgres://, redis://, sqlite://path, file://path or memory://")
	fset.StringVar(&flags.GRPCAddress, "g", flags.GRPCAddress, "gRPC server address, disabled when empty")
	fset.StringVar(&flags.LogLevel, "l", flags.LogLevel, "Log level (debug, info, warn, error)")
	fset.StringVar(&flags.LogFile, "log-file", flags.LogFile, "Also write logs to this rotated file")
	fset.StringVar(&corsFlag, "cors", strings.Join(flags.CORSOrigins, ","), "Comma separated list of allowed CORS origins")
	fset.DurationVar(&flags.ShutdownTimeout, "shutdown-timeout", flags.ShutdownTimeout, "Graceful shutdown timeout")
	fset.StringVar(&flags.ConfigFile, "c", "", "Path to JSON config file")
	fset.StringVar(&flags.ConfigFile, "config", "", "Path to JSON config file")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	configFile := flags.ConfigFile
	if envFile, ok := os.LookupEnv("CONFIG"); ok && envFile != "" {
		configFile = envFile
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.ServerAddress = flags.ServerAddress
		case "d":
			cfg.DatabaseURL = flags.DatabaseURL
		case "g":
			cfg.GRPCAddress = flags.GRPCAddress
		case "l":
			cfg.LogLevel = flags.LogLevel
		case "log-file":
			cfg.LogFile = flags.LogFile
		case "cors":
			cfg.CORSOrigins = splitList(corsFlag)
		case "shutdown-timeout":
			cfg.ShutdownTimeout = flags.ShutdownTimeout
		case "c", "config":
			cfg.ConfigFile = flags.ConfigFile
		}
	})

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, cfg.validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.ConfigFile = path
	if fc.ServerAddress != nil {
		c.ServerAddress = *fc.ServerAddress
	}
	if fc.DatabaseURL != nil {
		c.DatabaseURL = *fc.DatabaseURL
	}
	if fc.GRPCAddress != nil {
		c.GRPCAddress = *fc.GRPCAddress
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogFile != nil {
		c.LogFile = *fc.LogFile
	}
	if fc.CORSOrigins != nil {
		c.CORSOrigins = fc.CORSOrigins
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		c.ShutdownTimeout = d
	}

	return nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return errors.New("server address must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
