// Package config loads scraper settings from YAML, struct-tag defaults, and environment
// overrides, and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// Environment variables read by LoadWithEnv.
const (
	EnvCacheTTL       = "CACHE_TTL_SECONDS"
	EnvNationality    = "OWG_NATIONALITY"
	EnvDataDir        = "OWG_DATA_DIR"
	EnvStorageBackend = "OWG_STORAGE_BACKEND"
	EnvS3Bucket       = "OWG_S3_BUCKET"
	EnvRedisAddr      = "OWG_REDIS_ADDR"
	EnvPushgateway    = "OWG_PUSHGATEWAY_URL"
)

var validate = validator.New()

type Config struct {
	Source  Source  `yaml:"source"`
	Extract Extract `yaml:"extract"`
	Capture Capture `yaml:"capture"`
	Cache   Cache   `yaml:"cache"`
	Storage Storage `yaml:"storage"`
	Notify  Notify  `yaml:"notify"`
	Metrics Metrics `yaml:"metrics"`
	Log     Log     `yaml:"log"`
}

// Source describes the schedule page and how it is rendered.
type Source struct {
	URL               string        `yaml:"url" default:"https://www.olympics.com/en/milano-cortina-2026/schedule" validate:"required,url"`
	DayAPI            string        `yaml:"day_api" default:"https://www.olympics.com/wmr-owg2026/schedules/api/ENG/schedule/lite/day/%s" validate:"required,contains=%s"`
	UserAgent         string        `yaml:"user_agent" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" default:"60s" validate:"gt=0"`
	Timezone          string        `yaml:"timezone" default:"Europe/Rome" validate:"required"`
	Headless          bool          `yaml:"headless" default:"true"`
}

type Extract struct {
	WindowSize int `yaml:"window_size" default:"1500" validate:"gt=0"`
	MaxTeams   int `yaml:"max_teams" default:"8" validate:"gt=0"`
}

// Capture controls the athlete feed. An empty Nationality disables it.
type Capture struct {
	Nationality string        `yaml:"nationality" validate:"omitempty,alpha,len=3"`
	Word        string        `yaml:"word"`
	Watch       []string      `yaml:"watch"`
	MaxClicks   int           `yaml:"max_clicks" default:"40" validate:"gte=0"`
	MaxHandles  int           `yaml:"max_handles" default:"600" validate:"gt=0"`
	ClickWait   time.Duration `yaml:"click_wait" default:"600ms" validate:"gte=0"`
	SettleWait  time.Duration `yaml:"settle_wait" default:"1200ms" validate:"gte=0"`
}

type Cache struct {
	TTLSeconds int `yaml:"ttl_seconds" validate:"gte=0"`
}

// TTL returns the cache TTL; zero disables the cache.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type Storage struct {
	Backend   string   `yaml:"backend" default:"file" validate:"oneof=file s3 redis gist"`
	DataDir   string   `yaml:"data_dir" default:"~/.local/share/owg-schedule" validate:"required"`
	MirrorDir string   `yaml:"mirror_dir"`
	Mirrors   []string `yaml:"mirrors" validate:"dive,oneof=s3 redis gist"`
	S3        S3       `yaml:"s3"`
	Redis     Redis    `yaml:"redis"`
	Gist      Gist     `yaml:"gist"`
}

type S3 struct {
	Bucket  string `yaml:"bucket"`
	Region  string `yaml:"region"`
	Prefix  string `yaml:"prefix" default:"owg-schedule"`
	Profile string `yaml:"profile"`
}

type Redis struct {
	Addr     string `yaml:"addr" default:"localhost:6379" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" default:"owg"`
}

// Gist names an existing GitHub Gist. The token comes from GITHUB_TOKEN.
type Gist struct {
	ID string `yaml:"id"`
}

type Notify struct {
	Type  string `yaml:"type" default:"none" validate:"oneof=none dryrun twitter telegram kafka"`
	Kafka Kafka  `yaml:"kafka"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic" default:"owg-schedule-updates"`
}

type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
	Job            string `yaml:"job" default:"owg-schedule" validate:"required"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	c.finish()
	return &c
}

// Load reads and parses a YAML configuration file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvCacheTTL); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvCacheTTL, err)
		}
		if ttl < 0 {
			ttl = 0
		}
		c.Cache.TTLSeconds = ttl
	}
	if v := os.Getenv(EnvNationality); v != "" {
		c.Capture.Nationality = v
		c.Capture.Word = ""
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv(EnvStorageBackend); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(EnvS3Bucket); v != "" {
		c.Storage.S3.Bucket = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv(EnvPushgateway); v != "" {
		c.Metrics.PushgatewayURL = v
	}
	c.finish()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.finish()
	return &c, nil
}

// finish normalises the nationality and derives its display word from the NOC table.
func (c *Config) finish() {
	c.Capture.Nationality = strings.ToUpper(strings.TrimSpace(c.Capture.Nationality))
	if c.Capture.Word == "" && c.Capture.Nationality != "" {
		c.Capture.Word = schedule.DefaultCodes().Country(c.Capture.Nationality)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Source.Timezone); err != nil {
		return fmt.Errorf("source.timezone: %w", err)
	}
	if c.uses("s3") && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required when s3 storage is used")
	}
	if c.uses("gist") && c.Storage.Gist.ID == "" {
		return fmt.Errorf("storage.gist.id is required when gist storage is used")
	}
	if c.Notify.Type == "kafka" && len(c.Notify.Kafka.Brokers) == 0 {
		return fmt.Errorf("notify.kafka.brokers cannot be empty")
	}
	return nil
}

// uses reports whether backend is the primary store or one of the mirrors.
func (c *Config) uses(backend string) bool {
	if c.Storage.Backend == backend {
		return true
	}
	for _, m := range c.Storage.Mirrors {
		if m == backend {
			return true
		}
	}
	return false
}

// Location returns the source timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Source.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
