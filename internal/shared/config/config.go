// Package config loads config.yaml for the campus-ride service.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Auth      AuthConfig      `yaml:"auth"`
	Booking   BookingConfig   `yaml:"booking"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"max_conns"`
}

// RabbitMQConfig configures the change-signal broker. When Enabled is false
// change signals stay in process.
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	// EmailPattern restricts sign-up to institutional addresses. Empty allows any address.
	EmailPattern string `yaml:"email_pattern"`
}

type BookingConfig struct {
	// AllowOverbooking keeps creating bookings once a ride has no seats left.
	AllowOverbooking bool `yaml:"allow_overbooking"`
}

type DiscoveryConfig struct {
	// Timezone is used to read ride dates and times, e.g. "Asia/Kolkata".
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "campusride",
			Password: "campusride",
			Database: "campusride",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     "5672",
			User:     "guest",
			Password: "guest",
			Exchange: "campus_topic",
			Queue:    "campus_changes",
		},
		Auth: AuthConfig{
			TokenTTL:     24 * time.Hour,
			EmailPattern: `(?i)@(sies(\w+)?\.sies\.edu\.in|sies\.edu\.in)$`,
		},
		Discovery: DiscoveryConfig{
			Timezone: "Local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" || c.Database.Database == "" {
		return fmt.Errorf("database.host and database.database are required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Auth.EmailPattern != "" {
		if _, err := regexp.Compile(c.Auth.EmailPattern); err != nil {
			return fmt.Errorf("auth.email_pattern: %w", err)
		}
	}
	if _, err := c.Discovery.Location(); err != nil {
		return fmt.Errorf("discovery.timezone: %w", err)
	}
	if c.RabbitMQ.Enabled && (c.RabbitMQ.Exchange == "" || c.RabbitMQ.Queue == "") {
		return fmt.Errorf("rabbitmq.exchange and rabbitmq.queue are required when rabbitmq is enabled")
	}
	return nil
}

// LoadConfig reads filename, expands ${VAR} and ${VAR:-default} references
// from the environment, and overlays the result on DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR:-default} with the value of VAR when it is set,
// otherwise with default.
func ExpandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v, ok := os.LookupEnv(m[1]); ok {
			return v
		}
		return m[2]
	})
}

func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (r RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(r.User, r.Password),
		Host:   r.Host + ":" + r.Port,
		Path:   "/",
	}
	return u.String()
}

func (d DiscoveryConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(d.Timezone)
}
