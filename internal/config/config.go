package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config file path.
const EnvPath = "HOSTILE_CONFIG"

// DefaultPath is used when EnvPath is not set.
const DefaultPath = "config/agentsim.yaml"

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("invalid config")

// Config holds the whole simulation scenario.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Simulation Simulation `yaml:"simulation"`
	Navigation Navigation `yaml:"navigation"`

	Obstacles []Obstacle     `yaml:"obstacles"`
	Players   []PlayerConfig `yaml:"players"`
	Agents    []AgentConfig  `yaml:"agents"`

	Database  DatabaseConfig `yaml:"database"`
	Telemetry Telemetry      `yaml:"telemetry"`
	Stream    Stream         `yaml:"stream"`
}

// Simulation holds tick loop settings.
type Simulation struct {
	TickRate     int           `yaml:"tick_rate"`     // fixed steps per second
	TimeScale    float64       `yaml:"time_scale"`    // 0 starts paused
	Workers      int           `yaml:"workers"`       // >1 ticks agents in parallel
	RemovalDelay float64       `yaml:"removal_delay"` // seconds a corpse stays
	Duration     time.Duration `yaml:"duration"`      // 0 runs until signal
	Seed         uint64        `yaml:"seed"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Telemetry configures the event recorder.
type Telemetry struct {
	BufferSize    int           `yaml:"buffer_size"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Stream configures the websocket event stream.
type Stream struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`
	Path      string `yaml:"path"`
	SendQueue int    `yaml:"send_queue"` // per-client outbox capacity
}

// Default returns a runnable arena scenario.
func Default() Config {
	return Config{
		LogLevel: "info",
		Simulation: Simulation{
			TickRate:     30,
			TimeScale:    1,
			Workers:      1,
			RemovalDelay: 5,
			Seed:         1,
		},
		Navigation: DefaultNavigation(),
		Obstacles:  DefaultObstacles(),
		Players:    []PlayerConfig{DefaultPlayer()},
		Agents:     DefaultAgents(),
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "hostile",
			Password: "hostile",
			DBName:   "hostile",
			SSLMode:  "disable",
		},
		Telemetry: Telemetry{
			BufferSize:    4096,
			BatchSize:     256,
			FlushInterval: time.Second,
		},
		Stream: Stream{
			Address:   "127.0.0.1:8089",
			Path:      "/events",
			SendQueue: 256,
		},
	}
}

// Path returns the config path from the environment or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads config from a YAML file over Default and validates it.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over cfg. Lists present in data replace the defaults.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// SlogLevel converts LogLevel to slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}
