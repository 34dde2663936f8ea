// Package config loads the service configuration from a yaml file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type MongoConfig struct {
	Host       string `yaml:"host"`
	DBName     string `yaml:"dbname"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"authSource"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"authToken"`
}

type CrawlerConfig struct {
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	Concurrency  int           `yaml:"concurrency"`
	Interval     time.Duration `yaml:"interval"`
	// Loop enables the internal timer that runs a cycle every
	// Interval. Off by default: runs are normally triggered
	// externally over POST /crawl, and only one scheduling mode
	// should be active at a time.
	Loop bool `yaml:"loop"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Mongo   MongoConfig   `yaml:"mongo"`
	Server  ServerConfig  `yaml:"server"`
	Crawler CrawlerConfig `yaml:"crawler"`
	Log     LogConfig     `yaml:"log"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Crawler.FetchTimeout <= 0 {
		c.Crawler.FetchTimeout = 15 * time.Second
	}
	if c.Crawler.Concurrency <= 0 {
		c.Crawler.Concurrency = 5
	}
	if c.Crawler.Interval <= 0 {
		c.Crawler.Interval = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
