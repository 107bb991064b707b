// Package config loads baldigest settings from a YAML file, the environment
// and an optional .env file, falling back to an embedded default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigYAML is used when no config file is found.
const DefaultConfigYAML = `
digest:
  target_day: 5
  max_months: 6
summarize:
  enabled: false
  model: gemini-2.5-flash
  api_key: ""
  timeout: 60s
server:
  port: "8080"
  max_upload_mb: 32
`

const envPrefix = "BALDIGEST"

type Config struct {
	TargetDayDefault int
	MaxMonthsDefault int

	SummarizeEnabled bool
	Model            string
	APIKey           string
	SummarizeTimeout time.Duration

	Port        string
	MaxUploadMB int64
}

// Init wires viper to cfgFile, or to .baldigest.yaml in the working or home
// directory, and to the environment. A .env file is loaded first when present.
func Init(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	viper.SetConfigType("yaml")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".baldigest")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := viper.ReadConfig(bytes.NewBufferString(DefaultConfigYAML)); err != nil {
			return fmt.Errorf("failed to load embedded configuration: %w", err)
		}
	}
	return nil
}

// Load reads the current viper state into a Config.
func Load() Config {
	cfg := Config{
		TargetDayDefault: viper.GetInt("digest.target_day"),
		MaxMonthsDefault: viper.GetInt("digest.max_months"),
		SummarizeEnabled: viper.GetBool("summarize.enabled"),
		Model:            viper.GetString("summarize.model"),
		APIKey:           viper.GetString("summarize.api_key"),
		SummarizeTimeout: viper.GetDuration("summarize.timeout"),
		Port:             viper.GetString("server.port"),
		MaxUploadMB:      viper.GetInt64("server.max_upload_mb"),
	}

	if !ValidTargetDay(cfg.TargetDayDefault) {
		cfg.TargetDayDefault = 5
	}
	if cfg.MaxMonthsDefault < 1 {
		cfg.MaxMonthsDefault = 6
	}
	if cfg.MaxUploadMB < 1 {
		cfg.MaxUploadMB = 32
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg
}

// ValidTargetDay reports whether day can be a day of some month.
func ValidTargetDay(day int) bool {
	return day >= 1 && day <= 31
}

// TargetDay returns day, or the configured default when day is out of range.
func (c Config) TargetDay(day int) int {
	if !ValidTargetDay(day) {
		return c.TargetDayDefault
	}
	return day
}

// ParseTargetDay is TargetDay for raw form or query input. Blank and
// non-numeric values give the default.
func (c Config) ParseTargetDay(raw string) int {
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return c.TargetDayDefault
	}
	return c.TargetDay(day)
}

// MaxMonths returns n, or the configured default when n is not positive.
func (c Config) MaxMonths(n int) int {
	if n < 1 {
		return c.MaxMonthsDefault
	}
	return n
}

// ParseMaxMonths is MaxMonths for raw form or query input.
func (c Config) ParseMaxMonths(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return c.MaxMonthsDefault
	}
	return c.MaxMonths(n)
}
