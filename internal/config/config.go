// Package config loads settings in three layers: built-in defaults, an
// optional YAML file, then environment variables (a .env file is honoured).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const EnvConfigPath = "EATZONE_CONFIG"

type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Logger      LoggerConfig      `yaml:"logger"`
	Redis       RedisConfig       `yaml:"redis"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Checkout    CheckoutConfig    `yaml:"checkout"`
	Negotiation NegotiationConfig `yaml:"negotiation"`
	Orders      OrdersConfig      `yaml:"orders"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	Level      string `yaml:"level"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// RedisConfig leaves Addr empty to run without the catalog cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RabbitMQConfig leaves URL empty to keep order events in-process.
type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type CheckoutConfig struct {
	Ticks        int           `yaml:"ticks"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

type NegotiationConfig struct {
	ReplyDelay      time.Duration `yaml:"reply_delay"`
	TimeoutDelay    time.Duration `yaml:"timeout_delay"`
	AutoReplyDelay  time.Duration `yaml:"auto_reply_delay"`
	AffirmativeRate float64       `yaml:"affirmative_rate"`
	Keywords        []string      `yaml:"keywords"`
}

type OrdersConfig struct {
	NodeID int64 `yaml:"node_id"`
}

func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  5 << 20,
		},
		Logger: LoggerConfig{
			Mode:     "development",
			Level:    "info",
			Filename: "logs/eatzone.log",
		},
		Redis: RedisConfig{
			CacheTTL: 10 * time.Second,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "order.exchange",
		},
		Checkout: CheckoutConfig{
			Ticks:        60,
			TickInterval: time.Second,
		},
		Negotiation: NegotiationConfig{
			ReplyDelay:      2 * time.Second,
			TimeoutDelay:    5 * time.Second,
			AutoReplyDelay:  time.Second,
			AffirmativeRate: 0.7,
			Keywords:        []string{"tersedia", "ready", "ada"},
		},
		Orders: OrdersConfig{
			NodeID: 1,
		},
	}
}

// Load builds the configuration. path may be empty, in which case the
// EATZONE_CONFIG environment variable is consulted; a missing file is not an error.
func Load(path string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Logger.Mode, "LOG_MODE")
	setString(&c.Logger.Level, "LOG_LEVEL")
	setString(&c.Logger.Filename, "LOG_FILE")
	if v, ok := lookup("LOG_FILE_ENABLE"); ok {
		c.Logger.FileEnable = cast.ToBool(v)
	}
	setString(&c.Redis.Addr, "REDIS_ADDR")
	if v, ok := lookup("REDIS_DB"); ok {
		c.Redis.DB = cast.ToInt(v)
	}
	setDuration(&c.Redis.CacheTTL, "REDIS_CACHE_TTL")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.RabbitMQ.Exchange, "RABBITMQ_EXCHANGE")
	if v, ok := lookup("CHECKOUT_TICKS"); ok {
		c.Checkout.Ticks = cast.ToInt(v)
	}
	setDuration(&c.Checkout.TickInterval, "CHECKOUT_TICK_INTERVAL")
	setDuration(&c.Negotiation.ReplyDelay, "NEGOTIATION_REPLY_DELAY")
	setDuration(&c.Negotiation.TimeoutDelay, "NEGOTIATION_TIMEOUT_DELAY")
	setDuration(&c.Negotiation.AutoReplyDelay, "NEGOTIATION_AUTO_REPLY_DELAY")
	if v, ok := lookup("NEGOTIATION_AFFIRMATIVE_RATE"); ok {
		c.Negotiation.AffirmativeRate = cast.ToFloat64(v)
	}
	if v, ok := lookup("NEGOTIATION_KEYWORDS"); ok {
		c.Negotiation.Keywords = splitList(v)
	}
	if v, ok := lookup("ORDER_NODE_ID"); ok {
		c.Orders.NodeID = cast.ToInt64(v)
	}
}

func (c *AppConfig) Validate() error {
	switch {
	case c.Checkout.Ticks <= 0:
		return errors.New("config: checkout.ticks must be positive")
	case c.Checkout.TickInterval <= 0:
		return errors.New("config: checkout.tick_interval must be positive")
	case c.Negotiation.ReplyDelay >= c.Negotiation.TimeoutDelay:
		return errors.New("config: negotiation.reply_delay must be shorter than timeout_delay")
	case c.Negotiation.AffirmativeRate < 0 || c.Negotiation.AffirmativeRate > 1:
		return errors.New("config: negotiation.affirmative_rate must be within [0,1]")
	case len(c.Negotiation.Keywords) == 0:
		return errors.New("config: negotiation.keywords must not be empty")
	case c.Orders.NodeID < 0 || c.Orders.NodeID > 1023:
		return errors.New("config: orders.node_id must be within [0,1023]")
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := cast.ToDurationE(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
