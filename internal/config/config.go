// Package config holds the viper-backed application settings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lepinkainen/mensa/internal/location"
)

// OverwriteFiles controls whether existing output and image files are replaced.
var OverwriteFiles bool

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// EnvPrefix is prepended to environment variable names, e.g. MENSA_HTTP_TIMEOUT.
const EnvPrefix = "MENSA"

// Settings is a snapshot of the configuration.
type Settings struct {
	BaseURL        string
	DefaultMensen  []string
	HTTPTimeout    time.Duration
	UserAgent      string
	BrowserTimeout time.Duration
	ImageDir       string
	ImageMaxWidth  int
	ImageRate      int
	DatasetteURL   string
	DatasetteToken string
	LogLevel       string
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("mensa.baseurl", location.DefaultBaseURL)
	viper.SetDefault("mensa.default", []string{"forum", "academica"})

	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.useragent", "mensa/1.0 (+https://github.com/lepinkainen/mensa)")
	viper.SetDefault("browser.timeout", "45s")

	viper.SetDefault("images.dir", "./images")
	viper.SetDefault("images.maxwidth", 320)
	viper.SetDefault("images.rate", 4)

	viper.SetDefault("datasette.url", "")
	viper.SetDefault("datasette.token", "")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("overwrite", false)
}

// InitConfig loads .env, the environment and the optional config file.
// A missing config file is not an error; the defaults apply.
func InitConfig(configFile string) error {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			OverwriteFiles = viper.GetBool("overwrite")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	OverwriteFiles = viper.GetBool("overwrite")
	return nil
}

// Get returns the current settings.
func Get() Settings {
	return Settings{
		BaseURL:        viper.GetString("mensa.baseurl"),
		DefaultMensen:  viper.GetStringSlice("mensa.default"),
		HTTPTimeout:    duration("http.timeout", 30*time.Second),
		UserAgent:      viper.GetString("http.useragent"),
		BrowserTimeout: duration("browser.timeout", 45*time.Second),
		ImageDir:       viper.GetString("images.dir"),
		ImageMaxWidth:  viper.GetInt("images.maxwidth"),
		ImageRate:      viper.GetInt("images.rate"),
		DatasetteURL:   viper.GetString("datasette.url"),
		DatasetteToken: viper.GetString("datasette.token"),
		LogLevel:       viper.GetString("log.level"),
	}
}

// SlogLevel maps the configured level name to a slog level.
func (s Settings) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "error", err)
		return fallback
	}
	return d
}
