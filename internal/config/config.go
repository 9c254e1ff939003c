package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/canilaba/internal/weather"
)

type AppConfig struct {
	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`
	// BotUsername is matched in group chats, e.g. "@canilababot".
	BotUsername string `envconfig:"BOT_USERNAME" default:"@canilababot"`

	Port        string        `envconfig:"PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// Timezone is used for "now", "today" and the notification schedule.
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Manila"`

	// Coordinates used when a user has not set a location.
	DefaultLatitude  float64 `envconfig:"DEFAULT_LATITUDE" default:"14.5786"`
	DefaultLongitude float64 `envconfig:"DEFAULT_LONGITUDE" default:"121.1222"`

	OpenMeteoURL     string `envconfig:"OPEN_METEO_URL" default:"https://api.open-meteo.com/v1/forecast"`
	GeocodingURL     string `envconfig:"GEOCODING_URL" default:"https://geocoding-api.open-meteo.com/v1/search"`
	ForecastTimezone string `envconfig:"FORECAST_TIMEZONE" default:"auto"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"user_config.sqlite"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// NotifyAt is the local HH:MM the laundry-day notifications go out.
	NotifyAt      string `envconfig:"NOTIFY_AT" default:"06:00"`
	NotifyRetries int    `envconfig:"NOTIFY_RETRIES" default:"3"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Location is Timezone resolved by Load.
	Location *time.Location `ignored:"true"`
}

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	c.Location = loc

	if _, err := time.Parse("15:04", c.NotifyAt); err != nil {
		return fmt.Errorf("invalid NOTIFY_AT %q: want HH:MM", c.NotifyAt)
	}

	c.StoreDriver = strings.ToLower(c.StoreDriver)
	switch c.StoreDriver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want sqlite or memory", c.StoreDriver)
	}

	if c.NotifyRetries < 0 {
		return fmt.Errorf("NOTIFY_RETRIES must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// DefaultCoordinates returns the fallback location.
func (c *AppConfig) DefaultCoordinates() weather.Coordinates {
	return weather.Coordinates{Longitude: c.DefaultLongitude, Latitude: c.DefaultLatitude}
}
