package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BotToken is the Telegram bot API token. Required.
	BotToken string `json:"-" envconfig:"BOT_TOKEN"`

	// APIEndpoint is the Telegram Bot API URL format, taking the token and the method.
	APIEndpoint string `json:"api_endpoint" envconfig:"API_ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`

	// RecordsFile is where the players' best results are kept.
	RecordsFile string `json:"records_file" envconfig:"RECORDS_FILE" default:"records.json"`

	LogLevel string `json:"log_level" envconfig:"LOG_LEVEL" default:"info"`

	// Partitions is the number of lanes updates are spread over. A player's
	// updates always land on the same lane.
	Partitions int `json:"partitions" envconfig:"PARTITIONS" default:"8"`

	// Telegram HTTP settings. The client timeout is PollTimeout + ReadTimeout so
	// long polls are not cut short.
	PollTimeout    time.Duration `json:"poll_timeout" envconfig:"POLL_TIMEOUT" default:"10s"`
	ConnectTimeout time.Duration `json:"connect_timeout" envconfig:"CONNECT_TIMEOUT" default:"10s"`
	ReadTimeout    time.Duration `json:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`

	// RestartDelay is the pause after a failed poll or send.
	RestartDelay time.Duration `json:"restart_delay" envconfig:"RESTART_DELAY" default:"5s"`
	SendRetries  int           `json:"send_retries" envconfig:"SEND_RETRIES" default:"3"`
	SendRate     float64       `json:"send_rate" envconfig:"SEND_RATE" default:"25"`
	SendBurst    int           `json:"send_burst" envconfig:"SEND_BURST" default:"5"`

	// SessionTTL expires idle games. Zero keeps them until finished.
	SessionTTL time.Duration `json:"session_ttl" envconfig:"SESSION_TTL" default:"0s"`

	// KafkaBrokers enables publishing game events when set.
	KafkaBrokers []string `json:"kafka_brokers" envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `json:"kafka_topic" envconfig:"KAFKA_TOPIC" default:"codemaster-events"`

	// MetricsPort serves Prometheus metrics on /metrics. Zero disables it.
	MetricsPort int `json:"metrics_port" envconfig:"METRICS_PORT" default:"0"`
}

// Load reads the optional env files, then the environment. Variables already
// set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN is not set (see .env)")
	}
	if cfg.Partitions < 1 {
		return fmt.Errorf("PARTITIONS must be positive, got %d", cfg.Partitions)
	}
	if cfg.SendRetries < 0 {
		return fmt.Errorf("SEND_RETRIES must not be negative, got %d", cfg.SendRetries)
	}
	if cfg.PollTimeout < 0 || cfg.ReadTimeout < 0 || cfg.ConnectTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// String renders the config without the token.
func (cfg *Config) String() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "{}"
	}
	return string(data)
}
