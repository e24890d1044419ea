package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// JWTSecret signs tokens; Load replaces it from the file or env
var JWTSecret = []byte(getEnv("JWT_SECRET", "food_delivery_super_secret_2024"))

// Config holds all configuration for the delivery server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Events    EventsConfig    `yaml:"events"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	Mode      string `yaml:"mode"`
	UploadDir string `yaml:"upload_dir"`
}

// DatabaseConfig selects the gorm dialect. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig also carries the default admin created on first start.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	AdminName     string `yaml:"admin_name"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

type DeliveryConfig struct {
	Fee int64 `yaml:"fee"`
}

// EventsConfig picks at most one broker; kafka wins when both are set.
type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	AMQPURL      string   `yaml:"amqp_url"`
	AMQPExchange string   `yaml:"amqp_exchange"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			Mode:      "debug",
			UploadDir: "uploads",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "food_delivery.db",
		},
		Auth: AuthConfig{
			JWTSecret:     "food_delivery_super_secret_2024",
			AdminName:     "Administrator",
			AdminEmail:    "admin@deliveryfood.local",
			AdminPassword: "admin123",
		},
		Delivery: DeliveryConfig{Fee: 5000},
		Events: EventsConfig{
			KafkaTopic:   "order.events",
			AMQPExchange: "order_events",
		},
		Telemetry: TelemetryConfig{ServiceName: "deliveryfood"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file on top of the defaults and then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	JWTSecret = []byte(cfg.Auth.JWTSecret)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)
	c.Server.UploadDir = getEnv("UPLOAD_DIR", c.Server.UploadDir)
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Events.AMQPURL = getEnv("AMQP_URL", c.Events.AMQPURL)
	c.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Events.KafkaBrokers = strings.Split(brokers, ",")
	}
	if fee := os.Getenv("DELIVERY_FEE"); fee != "" {
		v, err := strconv.ParseInt(fee, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DELIVERY_FEE: %w", err)
		}
		c.Delivery.Fee = v
	}
	return nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.Delivery.Fee < 0 {
		errs = append(errs, errors.New("delivery fee must not be negative"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
