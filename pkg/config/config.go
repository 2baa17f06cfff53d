package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"forwarder-bot/pkg/forward"

	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAgreeEmoji   = "230782152164245505"
	defaultAdminID      = snowflake.ID(859472531974520832)
	defaultRecencyDays  = int(forward.DefaultRecencyWindow / (24 * time.Hour))
	defaultDatabasePath = "channel_id.db"
)

var ErrMissingToken = errors.New("no bot token in the environment")

// Config is the bot configuration. Values come from the defaults, then the
// optional YAML file named by FORWARDER_CONFIG, then the environment.
type Config struct {
	Token       string `yaml:"-"`
	SentryDSN   string `yaml:"-"`
	Environment string `yaml:"environment"`

	AgreeEmoji        string       `yaml:"agree_emoji"`
	Threshold         int          `yaml:"threshold"`
	RecencyDays       int          `yaml:"recency_days"`
	AdminID           snowflake.ID `yaml:"admin_id"`
	WebhookName       string       `yaml:"webhook_name"`
	MaxAttachmentSize int          `yaml:"max_attachment_size"`

	DatabasePath string `yaml:"database_path"`
	DatabaseURL  string `yaml:"database_url"`

	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		AgreeEmoji:        defaultAgreeEmoji,
		Threshold:         forward.DefaultThreshold,
		RecencyDays:       defaultRecencyDays,
		AdminID:           defaultAdminID,
		WebhookName:       forward.DefaultWebhookName,
		MaxAttachmentSize: forward.DefaultMaxAttachmentSize,
		DatabasePath:      defaultDatabasePath,
		LogLevel:          "info",
	}
}

// Load reads .env (if present), the config file and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path := os.Getenv("FORWARDER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.parseYAML(data); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) parseYAML(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	c.Token = getenv("FORWARDER_BOT_TOKEN")
	if c.Token == "" {
		c.Token = getenv("TOKEN")
	}
	c.SentryDSN = getenv("SENTRY_DSN")
	setString(&c.Environment, getenv("FORWARDER_ENVIRONMENT"))
	setString(&c.AgreeEmoji, getenv("FORWARDER_AGREE_EMOJI"))
	setString(&c.WebhookName, getenv("FORWARDER_WEBHOOK_NAME"))
	setString(&c.DatabasePath, getenv("FORWARDER_DATABASE_PATH"))
	setString(&c.DatabaseURL, getenv("DATABASE_URL"))
	setString(&c.LogLevel, getenv("FORWARDER_LOG_LEVEL"))

	for key, dst := range map[string]*int{
		"FORWARDER_THRESHOLD":           &c.Threshold,
		"FORWARDER_RECENCY_DAYS":        &c.RecencyDays,
		"FORWARDER_MAX_ATTACHMENT_SIZE": &c.MaxAttachmentSize,
	} {
		value := getenv(key)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = n
	}
	if value := getenv("FORWARDER_ADMIN_ID"); value != "" {
		id, err := snowflake.Parse(value)
		if err != nil {
			return fmt.Errorf("parse FORWARDER_ADMIN_ID: %w", err)
		}
		c.AdminID = id
	}
	return nil
}

func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.AgreeEmoji == "" {
		return errors.New("agree emoji must be set")
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1, got %d", c.Threshold)
	}
	if c.RecencyDays < 1 {
		return fmt.Errorf("recency window must be at least 1 day, got %d", c.RecencyDays)
	}
	if c.MaxAttachmentSize < 1 {
		return fmt.Errorf("max attachment size must be at least 1 byte, got %d", c.MaxAttachmentSize)
	}
	return nil
}

func (c Config) RecencyWindow() time.Duration {
	return time.Duration(c.RecencyDays) * 24 * time.Hour
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
