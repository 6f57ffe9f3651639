// Package config handles loading and parsing application configuration.
//
// The only required value is the datastore connection string
// (DATASTORE_URI). Everything else has a default. Sources, later ones
// winning:
//  1. A YAML file, if one is named by CONFIG_PATH or --config
//  2. A .env file in the working directory, if present
//  3. Environment variables
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
}

// Storage selects and addresses the datastore.
type Storage struct {
	// URI is the datastore connection string, e.g.
	// "mongodb://localhost:27017" or "sqlite://students.db".
	URI string `yaml:"uri" env:"DATASTORE_URI" env-required:"true"`

	// Database is the MongoDB database name. Ignored by sqlite.
	Database string `yaml:"database" env:"DATASTORE_DB" env-default:"studentManage"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`

	// AllowedOrigins is the CORS allow-list; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// ErrMissingDatastoreURI is returned when no connection string is set.
var ErrMissingDatastoreURI = errors.New("config: DATASTORE_URI is not set")

// Load reads configuration from the YAML file at path (optional, may be
// "") and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	// cleanenv accepts a variable that is set but empty; the datastore
	// uri must be non-empty.
	if cfg.Storage.URI == "" {
		return nil, ErrMissingDatastoreURI
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to panic/fatal on failure. If this function returns,
// the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to an optional configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}

	return cfg
}
