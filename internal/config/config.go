// Package config loads service configuration from an optional YAML file
// with environment variable overrides for deployment-specific endpoints.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// TemporalConfig locates the Temporal cluster.
type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// ServicesConfig locates the external capabilities.
type ServicesConfig struct {
	GenerationURL     string        `mapstructure:"generation_url"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	SearchURL         string        `mapstructure:"search_url"`
	SearchTimeout     time.Duration `mapstructure:"search_timeout"`
	SearchRPS         float64       `mapstructure:"search_rps"`
}

// RedisConfig configures the optional search result cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DatabaseConfig configures the optional run-record store.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// WorkflowConfig tunes the orchestration core.
type WorkflowConfig struct {
	MaxConcurrentSections int           `mapstructure:"max_concurrent_sections"`
	SectionTimeout        time.Duration `mapstructure:"section_timeout"`
	StageTimeout          time.Duration `mapstructure:"stage_timeout"`
}

// OutputConfig configures the document write sink.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Config is the full service configuration.
type Config struct {
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Services   ServicesConfig `mapstructure:"services"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Database   DatabaseConfig `mapstructure:"database"`
	Workflow   WorkflowConfig `mapstructure:"workflow"`
	Output     OutputConfig   `mapstructure:"output"`
	PromptFile string         `mapstructure:"prompt_file"`
	AdminPort  int            `mapstructure:"admin_port"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("temporal.host_port", "temporal:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "draftwright")
	v.SetDefault("services.generation_url", "http://llm-service:8000")
	v.SetDefault("services.generation_timeout", 2*time.Minute)
	v.SetDefault("services.search_url", "http://search-service:8090")
	v.SetDefault("services.search_timeout", 20*time.Second)
	v.SetDefault("services.search_rps", 4.0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.cache_ttl", 15*time.Minute)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "")
	v.SetDefault("workflow.max_concurrent_sections", 5)
	v.SetDefault("workflow.section_timeout", 5*time.Minute)
	v.SetDefault("workflow.stage_timeout", 5*time.Minute)
	v.SetDefault("output.dir", "out")
	v.SetDefault("prompt_file", "")
	v.SetDefault("admin_port", 8081)
}

// Load reads CONFIG_PATH (optional) and applies env overrides. A missing
// config file falls back to defaults; a malformed one is an error.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyEnvOverrides(&c)

	if c.Workflow.MaxConcurrentSections < 1 {
		c.Workflow.MaxConcurrentSections = 1
	}
	return &c, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("TEMPORAL_HOST_PORT"); v != "" {
		c.Temporal.HostPort = v
	}
	if v := os.Getenv("TEMPORAL_NAMESPACE"); v != "" {
		c.Temporal.Namespace = v
	}
	if v := os.Getenv("TEMPORAL_TASK_QUEUE"); v != "" {
		c.Temporal.TaskQueue = v
	}
	if v := os.Getenv("GENERATION_SERVICE_URL"); v != "" {
		c.Services.GenerationURL = v
	}
	if v := os.Getenv("SEARCH_SERVICE_URL"); v != "" {
		c.Services.SearchURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
		c.Database.Enabled = true
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("PROMPT_FILE"); v != "" {
		c.PromptFile = v
	}
	if v := os.Getenv("ADMIN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.AdminPort = p
		}
	}
}
