// Package config loads daemon settings from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sterilizer/internal/gpio"
	"github.com/sweeney/sterilizer/internal/logic"
)

// Config represents the daemon configuration
type Config struct {
	GPIO    GPIOConfig    `yaml:"gpio"`
	Loop    LoopConfig    `yaml:"loop"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	NATS    NATSConfig    `yaml:"nats"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Store   StoreConfig   `yaml:"store"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// GPIOConfig contains the chip and line offsets
type GPIOConfig struct {
	Chip           string    `yaml:"chip" env:"GPIO_CHIP" env-default:"gpiochip0"`
	Pins           gpio.Pins `yaml:"pins"`
	RelayActiveLow bool      `yaml:"relayActiveLow" env:"RELAY_ACTIVE_LOW" env-default:"false"`
}

// LoopConfig contains control loop timing
type LoopConfig struct {
	Poll      time.Duration `yaml:"poll" env:"POLL_INTERVAL" env-default:"10ms"`
	Heartbeat time.Duration `yaml:"heartbeat" env:"HEARTBEAT_INTERVAL" env-default:"15m"`
}

// MQTTConfig contains telemetry broker settings. An empty broker disables MQTT.
// WSBroker "=broker" derives ws://host:9001 from Broker; "off" disables the live UI.
type MQTTConfig struct {
	Broker   string `yaml:"broker" env:"MQTT_BROKER"`
	ClientID string `yaml:"clientId" env:"MQTT_CLIENT_ID" env-default:"sterilizer"`
	WSBroker string `yaml:"wsBroker" env:"MQTT_WS_BROKER" env-default:"=broker"`
}

// NATSConfig contains the temperature feed settings
type NATSConfig struct {
	URL     string        `yaml:"url" env:"NATS_URL" env-default:"nats://127.0.0.1:4222"`
	Subject string        `yaml:"subject" env:"NATS_SUBJECT" env-default:"sterilizer.sensor.temperature.current"`
	MaxAge  time.Duration `yaml:"maxAge" env:"NATS_MAX_AGE" env-default:"30s"`
}

// SensorConfig contains sensor fault handling
type SensorConfig struct {
	MaxFaults int `yaml:"maxFaults" env:"SENSOR_MAX_FAULTS" env-default:"300"`
}

// StoreConfig selects the setpoint store: empty or ":memory:" for memory,
// a .db/.sqlite path for SQLite, anything else for a YAML file.
type StoreConfig struct {
	Path string `yaml:"path" env:"STORE_PATH" env-default:"/var/lib/sterilizer/setpoints.db"`
}

// HTTPConfig contains the status server settings
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR" env-default:":80"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `yaml:"logFormat" env:"LOG_FORMAT" env-default:"console"`
	Level  string `yaml:"logLevel" env:"LOG_LEVEL" env-default:"info"`
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path reads the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GPIO.Chip == "" {
		return fmt.Errorf("gpio chip is required")
	}

	pins := map[string]int{
		"plus":   c.GPIO.Pins.Plus,
		"minus":  c.GPIO.Pins.Minus,
		"select": c.GPIO.Pins.Select,
		"start":  c.GPIO.Pins.Start,
		"heat":   c.GPIO.Pins.Heat,
		"vent":   c.GPIO.Pins.Vent,
		"buzzer": c.GPIO.Pins.Buzzer,
	}
	seen := make(map[int]string)
	for _, name := range []string{"plus", "minus", "select", "start", "heat", "vent", "buzzer"} {
		offset := pins[name]
		if offset < 0 {
			return fmt.Errorf("gpio %s: offset must be >= 0, got %d", name, offset)
		}
		if other, ok := seen[offset]; ok {
			return fmt.Errorf("gpio %s: offset %d already used by %s", name, offset, other)
		}
		seen[offset] = name
	}

	// Samples must be closer together than the debounce delay
	if c.Loop.Poll <= 0 || c.Loop.Poll >= logic.DefaultDebounceDelay {
		return fmt.Errorf("poll interval must be between 0 and %v, got %v", logic.DefaultDebounceDelay, c.Loop.Poll)
	}
	if c.Loop.Heartbeat < 0 {
		return fmt.Errorf("heartbeat interval must not be negative")
	}

	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		return fmt.Errorf("mqtt client id is required when a broker is set")
	}

	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats subject is required when a url is set")
	}
	if c.NATS.MaxAge <= 0 {
		return fmt.Errorf("nats max age must be positive")
	}

	if c.Sensor.MaxFaults < 1 {
		return fmt.Errorf("sensor max faults must be at least 1")
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http address is required")
	}

	// Validate log format
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", c.Logging.Format)
	}

	// Validate log level
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("log level must be one of: debug, info, warn, error, got: %s", c.Logging.Level)
	}

	return nil
}

// InitLogger points the global zerolog logger at out using the configured
// format and level, and returns it.
func (c *Config) InitLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil || c.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.Logging.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return log.Logger
}
