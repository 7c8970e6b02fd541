// Package config loads pipeline settings from an optional YAML file with
// environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config is every knob the CLI and service expose.
type Config struct {
	SourceDir string `yaml:"sourceDir"`
	Recursive bool   `yaml:"recursive"`

	Table  string `yaml:"table"`
	Output string `yaml:"output"`

	MaxDepth   int     `yaml:"maxDepth"`
	MaxSamples int     `yaml:"maxSamples"`
	Tolerance  float64 `yaml:"tolerance"`
	Workers    int     `yaml:"workers"`
	BatchSize  int     `yaml:"batchSize"`

	HTTPAddr string `yaml:"httpAddr"`
	LogLevel string `yaml:"logLevel"`
}

// Default returns the settings used when nothing else is specified.
func Default() Config {
	return Config{
		Recursive:  true,
		Table:      "processed_data",
		Output:     "output.csv",
		MaxDepth:   10,
		MaxSamples: 1000,
		Tolerance:  0.8,
		Workers:    4,
		BatchSize:  100,
		HTTPAddr:   ":8080",
		LogLevel:   "info",
	}
}

// Load builds the effective config: defaults, then the YAML file at path
// (skipped when path is empty), then SIEGE_INGEST_* environment variables.
// A .env file in the working directory is honored the same way the rest of
// the environment is.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.SourceDir = getEnv("SIEGE_INGEST_DIR", c.SourceDir)
	c.Table = getEnv("SIEGE_INGEST_TABLE", c.Table)
	c.Output = getEnv("SIEGE_INGEST_OUTPUT", c.Output)
	c.HTTPAddr = getEnv("SIEGE_INGEST_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("SIEGE_INGEST_LOG", c.LogLevel)

	var err error
	if c.Recursive, err = getEnvBool("SIEGE_INGEST_RECURSIVE", c.Recursive); err != nil {
		return err
	}
	if c.MaxDepth, err = getEnvInt("SIEGE_INGEST_MAX_DEPTH", c.MaxDepth); err != nil {
		return err
	}
	if c.MaxSamples, err = getEnvInt("SIEGE_INGEST_MAX_SAMPLES", c.MaxSamples); err != nil {
		return err
	}
	if c.Workers, err = getEnvInt("SIEGE_INGEST_WORKERS", c.Workers); err != nil {
		return err
	}
	if c.BatchSize, err = getEnvInt("SIEGE_INGEST_BATCH_SIZE", c.BatchSize); err != nil {
		return err
	}
	if c.Tolerance, err = getEnvFloat("SIEGE_INGEST_TOLERANCE", c.Tolerance); err != nil {
		return err
	}
	if c.Tolerance < 0 || c.Tolerance > 1 {
		return fmt.Errorf("tolerance %v outside [0,1]", c.Tolerance)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
