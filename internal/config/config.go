package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the countdown service
type Config struct {
	// Timetable service
	DevID          string
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration

	// Departure selection
	StopID         int
	DirectionID    int
	RouteType      int
	MaxResults     int
	SelectEarliest bool

	// Fetch cadence
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	CycleTimeout  time.Duration

	// Display
	DisplayDriver  string
	DisplayWidth   int
	DisplayHeight  int
	DisplayPNGPath string
	FontSize       float64

	// Status server
	StatusEnabled bool
	StatusAddr    string

	// Fetch-cycle log
	DatabasePath      string
	RetentionDuration time.Duration

	// problems found while parsing, reported by Validate
	errs []error
}

// LoadDotEnv loads .env and then .env.local, which overrides it for local
// development. Missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	cfg := &Config{}

	// Timetable service
	cfg.DevID = getEnv("PTV_DEV_ID", "")
	cfg.APIKey = getEnv("PTV_API_KEY", "")
	cfg.BaseURL = getEnv("PTV_BASE_URL", "http://timetableapi.ptv.vic.gov.au")
	cfg.RequestTimeout = cfg.getEnvSeconds("REQUEST_TIMEOUT", 10)

	// Departure selection
	cfg.StopID = cfg.getEnvInt("STOP_ID", -1)
	cfg.DirectionID = cfg.getEnvInt("DIRECTION_ID", -1)
	cfg.RouteType = cfg.getEnvInt("ROUTE_TYPE", 0)
	cfg.MaxResults = cfg.getEnvInt("MAX_RESULTS", 5)
	cfg.SelectEarliest = cfg.getEnvBool("SELECT_EARLIEST", false)

	// Fetch cadence
	cfg.PollInterval = cfg.getEnvSeconds("POLL_INTERVAL", 30)
	cfg.RetryAttempts = cfg.getEnvInt("RETRY_ATTEMPTS", 3)
	cfg.RetryDelay = cfg.getEnvSeconds("RETRY_DELAY", 5)
	cfg.CycleTimeout = cfg.getEnvSeconds("CYCLE_TIMEOUT", 120)

	// Display
	cfg.DisplayDriver = getEnv("DISPLAY_DRIVER", "terminal")
	cfg.DisplayWidth = cfg.getEnvInt("DISPLAY_WIDTH", 250)
	cfg.DisplayHeight = cfg.getEnvInt("DISPLAY_HEIGHT", 122)
	cfg.DisplayPNGPath = getEnv("DISPLAY_PNG_PATH", "./countdown.png")
	cfg.FontSize = float64(cfg.getEnvInt("FONT_SIZE", 70))

	// Status server
	cfg.StatusEnabled = cfg.getEnvBool("STATUS_ENABLED", true)
	cfg.StatusAddr = getEnv("STATUS_ADDR", ":8081")

	// Fetch-cycle log
	cfg.DatabasePath = getEnv("SQLITE_DATABASE", "")
	cfg.RetentionDuration = time.Duration(cfg.getEnvInt("RETENTION_HOURS", 24)) * time.Hour

	return cfg
}

// ValidateCredentials reports problems with the timetable service settings
func (c *Config) ValidateCredentials() error {
	var errs []error
	if c.DevID == "" {
		errs = append(errs, errors.New("PTV_DEV_ID is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("PTV_API_KEY is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Validate reports every missing or malformed value needed to run the countdown
func (c *Config) Validate() error {
	errs := append([]error{}, c.errs...)
	if err := c.ValidateCredentials(); err != nil {
		errs = append(errs, err)
	}

	if c.StopID < 0 {
		errs = append(errs, errors.New("STOP_ID is required"))
	}
	if c.DirectionID < 0 {
		errs = append(errs, errors.New("DIRECTION_ID is required"))
	}
	if c.RouteType < 0 || c.RouteType > 4 {
		errs = append(errs, fmt.Errorf("ROUTE_TYPE must be between 0 and 4, got %d", c.RouteType))
	}
	if c.MaxResults < 1 {
		errs = append(errs, errors.New("MAX_RESULTS must be at least 1"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL must be positive"))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, errors.New("RETRY_ATTEMPTS must be at least 1"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("RETRY_DELAY must not be negative"))
	}
	if c.CycleTimeout <= 0 {
		errs = append(errs, errors.New("CYCLE_TIMEOUT must be positive"))
	}

	switch c.DisplayDriver {
	case "terminal", "png":
	default:
		errs = append(errs, fmt.Errorf("DISPLAY_DRIVER must be terminal or png, got %q", c.DisplayDriver))
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		errs = append(errs, errors.New("DISPLAY_WIDTH and DISPLAY_HEIGHT must be positive"))
	}
	if c.FontSize <= 0 {
		errs = append(errs, errors.New("FONT_SIZE must be positive"))
	}
	if c.DatabasePath != "" && c.RetentionDuration < time.Hour {
		errs = append(errs, errors.New("RETENTION_HOURS must be at least 1"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return intValue
}

func (c *Config) getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(c.getEnvInt(key, defaultSeconds)) * time.Second
}

func (c *Config) getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return boolValue
}
