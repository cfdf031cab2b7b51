package config

import (
	"reflect"
	"strings"

	"schedule-sync/core/calendar"
	"schedule-sync/core/logger"
	"schedule-sync/core/mailer"
	"schedule-sync/core/sheets"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sheets holds configuration for the tabular store.
	Sheets sheets.Config `mapstructure:"sheets"`
	// Calendar holds configuration for the event provider.
	Calendar calendar.Config `mapstructure:"calendar"`
	// Mail holds configuration for the notification provider.
	Mail mailer.Config `mapstructure:"mail"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Sync holds tuning knobs for the sync executor.
	Sync SyncConfig `mapstructure:"sync"`
}

// SyncConfig holds tuning knobs for retries and provider pacing.
type SyncConfig struct {
	// MaxRetries is the number of attempts for transient provider errors.
	MaxRetries int `mapstructure:"max_retries" default:"4"`
	// PacingMillis is the minimum delay between provider-mutating calls.
	PacingMillis int `mapstructure:"pacing_millis" default:"300"`
	// BackoffInitialMillis is the initial retry backoff interval.
	BackoffInitialMillis int `mapstructure:"backoff_initial_millis" default:"500"`
	// DefaultTimezone is used for tables that don't configure one.
	DefaultTimezone string `mapstructure:"default_timezone" default:"UTC"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SHEETS_SPREADSHEET_ID -> sheets.spreadsheet_id)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
