package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SpoonacularPlaceholderKey is the value shipped in example env files. It is
// treated the same as an unset key.
const SpoonacularPlaceholderKey = "your_spoonacular_api_key_here"

// Config holds the application configuration.
type Config struct {
	EnvVars       EnvVars        `json:"env"`
	CategoryRules *CategoryRules `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	DatabaseUrl        string   `env:"DATABASE_URL"`
	JwtSecretKey       string   `env:"JWT_SECRET_KEY"`
	SpoonacularAPIKey  string   `env:"SPOONACULAR_API_KEY" optional:"true"`
	SpoonacularBaseURL string   `env:"SPOONACULAR_BASE_URL" envDefault:"https://api.spoonacular.com" optional:"true"`
	TheMealDBBaseURL   string   `env:"THEMEALDB_BASE_URL" envDefault:"https://www.themealdb.com/api/json/v1/1" optional:"true"`
	RedisURL           string   `env:"REDIS_URL" optional:"true"`
	FrontendURLs       []string `env:"FRONTEND_URL" envSeparator:"," envDefault:"http://localhost:5173" optional:"true"`
	CategoryRulesPath  string   `env:"CATEGORY_RULES_PATH" optional:"true"`
}

// LoadDotEnv loads variables from the given files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// SpoonacularConfigured reports whether a usable Spoonacular credential is set.
func (c *Config) SpoonacularConfigured() bool {
	key := strings.TrimSpace(c.EnvVars.SpoonacularAPIKey)
	return key != "" && key != SpoonacularPlaceholderKey
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if field.IsZero() {
			return fmt.Errorf("$%s must be set", fieldType.Tag.Get("env"))
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}
