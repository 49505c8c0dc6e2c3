package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL" required:"true"`
	InternalToken   string `envconfig:"INTERNAL_TOKEN" required:"true"`
	CORSAllowOrigin string `envconfig:"CORS_ALLOW_ORIGIN" default:"*"`

	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Company lines printed on offer and invoice PDFs.
	CompanyName    string `envconfig:"COMPANY_NAME" default:"Handwerksbetrieb Muster GmbH"`
	CompanyAddress string `envconfig:"COMPANY_ADDRESS" default:"Musterstraße 1, 80331 München"`

	LogDebug  bool `envconfig:"LOG_DEBUG" default:"false"`
	LogPretty bool `envconfig:"LOG_PRETTY" default:"false"`
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load() (Config, error) {
	if err := exportDotenv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// exportDotenv mirrors a local .env file into the process environment so
// envconfig picks it up; a missing file is not an error and existing
// variables win.
func exportDotenv(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	for key, value := range v.AllSettings() {
		name := strings.ToUpper(key)
		if os.Getenv(name) != "" {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
