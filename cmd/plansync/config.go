package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fwojciec/plansync"
	"github.com/fwojciec/plansync/harvest"
	planshttp "github.com/fwojciec/plansync/http"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a sync run.
type Config struct {
	PageSize       int           `yaml:"page_size"`
	Timeout        time.Duration `yaml:"timeout"`
	Workers        int           `yaml:"workers"`
	ReportInterval time.Duration `yaml:"report_interval"`
	Rate           float64       `yaml:"rate"`
	CollectFirst   bool          `yaml:"collect_first"`
	UserAgent      string        `yaml:"user_agent"`
	Index          string        `yaml:"index"`
	Bucket         string        `yaml:"bucket"`
}

// DefaultConfig returns a Config with the defaults of a plain run.
func DefaultConfig() Config {
	return Config{
		PageSize:       plansync.DefaultPageSize,
		Timeout:        planshttp.DefaultTimeout,
		Workers:        1,
		ReportInterval: harvest.DefaultReportInterval,
		UserAgent:      planshttp.DefaultUserAgent,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	PageSize       int     `yaml:"page_size"`
	Timeout        string  `yaml:"timeout"`
	Workers        int     `yaml:"workers"`
	ReportInterval string  `yaml:"report_interval"`
	Rate           float64 `yaml:"rate"`
	CollectFirst   bool    `yaml:"collect_first"`
	UserAgent      string  `yaml:"user_agent"`
	Index          string  `yaml:"index"`
	Bucket         string  `yaml:"bucket"`
}

// LoadConfigFile loads configuration from a YAML file over the defaults.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, plansync.Errorf(plansync.EPRECONDITION, "read config file: %v", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, plansync.Errorf(plansync.EINVALID, "parse config file %s: %v", path, err)
	}

	cfg := DefaultConfig()
	if yc.PageSize != 0 {
		cfg.PageSize = yc.PageSize
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, plansync.Errorf(plansync.EINVALID, "parse timeout: %v", err)
		}
		cfg.Timeout = d
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.ReportInterval != "" {
		d, err := time.ParseDuration(yc.ReportInterval)
		if err != nil {
			return Config{}, plansync.Errorf(plansync.EINVALID, "parse report_interval: %v", err)
		}
		cfg.ReportInterval = d
	}
	if yc.Rate != 0 {
		cfg.Rate = yc.Rate
	}
	cfg.CollectFirst = yc.CollectFirst
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	cfg.Index = yc.Index
	cfg.Bucket = yc.Bucket

	return cfg, nil
}

// LoadFromEnv overrides c from PLANSYNC_ environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PLANSYNC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return plansync.Errorf(plansync.EINVALID, "parse PLANSYNC_WORKERS: %v", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("PLANSYNC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return plansync.Errorf(plansync.EINVALID, "parse PLANSYNC_TIMEOUT: %v", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("PLANSYNC_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return plansync.Errorf(plansync.EINVALID, "parse PLANSYNC_RATE: %v", err)
		}
		c.Rate = f
	}
	if v := os.Getenv("PLANSYNC_INDEX"); v != "" {
		c.Index = v
	}
	if v := os.Getenv("PLANSYNC_BUCKET"); v != "" {
		c.Bucket = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return plansync.Errorf(plansync.EINVALID, "config: page_size must be positive")
	}
	if c.Timeout <= 0 {
		return plansync.Errorf(plansync.EINVALID, "config: timeout must be positive")
	}
	if c.Workers <= 0 {
		return plansync.Errorf(plansync.EINVALID, "config: workers must be positive")
	}
	if c.ReportInterval <= 0 {
		return plansync.Errorf(plansync.EINVALID, "config: report_interval must be positive")
	}
	if c.Rate < 0 {
		return plansync.Errorf(plansync.EINVALID, "config: rate must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.PageSize != 0 {
		c.PageSize = override.PageSize
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.ReportInterval != 0 {
		c.ReportInterval = override.ReportInterval
	}
	if override.Rate != 0 {
		c.Rate = override.Rate
	}
	if override.CollectFirst {
		c.CollectFirst = true
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Index != "" {
		c.Index = override.Index
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	return c
}

func (c Config) String() string {
	return fmt.Sprintf("page_size=%d timeout=%s workers=%d report_interval=%s rate=%g collect_first=%t",
		c.PageSize, c.Timeout, c.Workers, c.ReportInterval, c.Rate, c.CollectFirst)
}
