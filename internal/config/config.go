package config

import (
	"fmt"
	"os"
	"reflect"
	"sync"
)

var cfg *Config
var once sync.Once

// Config is the configuration for the application
type Config struct {
	Server
	PostgreSQL
	Gateway
	Process
}

// Process is the configuration for the pending-transaction sweep
type Process struct {
	SweepInterval string `env:"SWEEP_INTERVAL_MINUTES" envDefault:"10"`
	SweepMinAge   string `env:"SWEEP_MIN_AGE_MINUTES" envDefault:"5"`
}

// Server is the configuration for the server
type Server struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr returns the address for the server
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

// Gateway is the configuration for the mobile-money gateway
type Gateway struct {
	Mode           string `env:"GATEWAY_MODE" envDefault:"sandbox"`
	SandboxBaseURL string `env:"GATEWAY_SANDBOX_URL" envDefault:"https://api.sandbox.pawapay.io"`
	LiveBaseURL    string `env:"GATEWAY_LIVE_URL" envDefault:"https://api.pawapay.io"`
	SandboxToken   string `env:"GATEWAY_SANDBOX_TOKEN" envDefault:""`
	LiveToken      string `env:"GATEWAY_LIVE_TOKEN" envDefault:""`
	TimeoutSeconds string `env:"GATEWAY_TIMEOUT_SECONDS" envDefault:"15"`
	MaxAttempts    string `env:"GATEWAY_MAX_ATTEMPTS" envDefault:"3"`
	Description    string `env:"GATEWAY_STATEMENT_DESCRIPTION" envDefault:"LendStackPay"`
}

// BaseURL returns the gateway base url for the configured mode
func (g Gateway) BaseURL() string {
	if g.Mode == "live" {
		return g.LiveBaseURL
	}
	return g.SandboxBaseURL
}

// Token returns the bearer token for the configured mode
func (g Gateway) Token() string {
	if g.Mode == "live" {
		return g.LiveToken
	}
	return g.SandboxToken
}

// PostgreSQL is the configuration for the database
type PostgreSQL struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	Database        string `env:"DB_DATABASE" envDefault:"lendstack_service"`
	Username        string `env:"DB_USERNAME" envDefault:"lendstack_service"`
	Password        string `env:"DB_PASSWORD" envDefault:"lendstack_service"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts string `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
}

// DSN returns the DSN for the database
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// Load loads the configuration from environment variables
func Load() *Config {
	once.Do(func() {
		cfg = &Config{}
		cfgType := reflect.TypeOf(*cfg)
		cfgValue := reflect.ValueOf(cfg).Elem()

		for i := 0; i < cfgType.NumField(); i++ {
			field := cfgType.Field(i)
			fieldValue := cfgValue.Field(i)
			for j := 0; j < field.Type.NumField(); j++ {
				subField := field.Type.Field(j)
				envVar := subField.Tag.Get("env")
				envDefault := subField.Tag.Get("envDefault")
				value := getEnv(envVar, envDefault)

				fieldValue.Field(j).SetString(value)
			}
		}
	})

	return cfg
}

// getEnv retrieves the value of the environment variable named by the key or returns the defaultValue if not set
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}
