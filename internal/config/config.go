package config

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Geocoding providers
	IndiaPostBaseURL string        `mapstructure:"INDIA_POST_BASE_URL"`
	NominatimBaseURL string        `mapstructure:"NOMINATIM_BASE_URL"`
	GeocodeCountry   string        `mapstructure:"GEOCODE_COUNTRY"`
	GeocodeUserAgent string        `mapstructure:"GEOCODE_USER_AGENT"`
	GeocodeTimeout   time.Duration `mapstructure:"GEOCODE_TIMEOUT"`
	NominatimRPS     float64       `mapstructure:"NOMINATIM_RPS"`

	DistanceCacheTTL  time.Duration `mapstructure:"DISTANCE_CACHE_TTL"`
	PincodeCacheTTL   time.Duration `mapstructure:"PINCODE_CACHE_TTL"`
	PincodeCacheSize  int           `mapstructure:"PINCODE_CACHE_SIZE"`
	PostalCodePattern string        `mapstructure:"POSTAL_CODE_PATTERN"`
	BatchConcurrency  int           `mapstructure:"BATCH_CONCURRENCY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CLIENT_ORIGIN", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("INDIA_POST_BASE_URL", "https://api.postalpincode.in")
	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_COUNTRY", "India")
	v.SetDefault("GEOCODE_USER_AGENT", "FranchiseCRM/1.0")
	v.SetDefault("GEOCODE_TIMEOUT", 4*time.Second)
	v.SetDefault("NOMINATIM_RPS", 1.0)
	v.SetDefault("DISTANCE_CACHE_TTL", 24*time.Hour)
	v.SetDefault("PINCODE_CACHE_TTL", 7*24*time.Hour)
	v.SetDefault("PINCODE_CACHE_SIZE", 10000)
	v.SetDefault("POSTAL_CODE_PATTERN", `^\d{6}$`)
	v.SetDefault("BATCH_CONCURRENCY", 5)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName(".env") // Name of config file (without extension)
	v.SetConfigType("env")

	v.AutomaticEnv() // Read in environment variables that match

	err := v.ReadInConfig()
	if err != nil {
		// A missing .env is fine, the environment alone is enough.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("No .env file found.")
		} else {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort == "" {
		errs = append(errs, errors.New("config: SERVER_PORT cannot be empty"))
	}
	if c.GeocodeTimeout <= 0 {
		errs = append(errs, errors.New("config: GEOCODE_TIMEOUT must be positive"))
	}
	if c.NominatimRPS <= 0 {
		errs = append(errs, errors.New("config: NOMINATIM_RPS must be positive"))
	}
	if c.DistanceCacheTTL <= 0 {
		errs = append(errs, errors.New("config: DISTANCE_CACHE_TTL must be positive"))
	}
	if c.PincodeCacheTTL <= 0 || c.PincodeCacheSize < 1 {
		errs = append(errs, errors.New("config: PINCODE_CACHE_TTL and PINCODE_CACHE_SIZE must be positive"))
	}
	if c.BatchConcurrency < 1 {
		errs = append(errs, errors.New("config: BATCH_CONCURRENCY must be at least 1"))
	}
	if _, err := regexp.Compile(c.PostalCodePattern); err != nil {
		errs = append(errs, fmt.Errorf("config: POSTAL_CODE_PATTERN: %w", err))
	}
	return errors.Join(errs...)
}
