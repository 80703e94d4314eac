package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything resolved once at process start. The backend origin
// is injected from here and never read ambiently elsewhere.
type Config struct {
	Env         string
	APIURL      string
	HTTPTimeout time.Duration
	DataDir     string // overrides the XDG data dir when set
	Log         LogConfig
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:         v.GetString("ENV"),
		APIURL:      v.GetString("API_URL"),
		HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),
		DataDir:     v.GetString("DATA_DIR"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("API_URL", "http://localhost:8000/api/v1")
	v.SetDefault("HTTP_TIMEOUT", 15*time.Second)
	v.SetDefault("DATA_DIR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}
