package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin mode: debug|release|test
}

type MongoConfig struct {
	Host       string `yaml:"host"`
	DBName     string `yaml:"dbname"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"authSource"`
}

// RedisConfig is optional; an empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// NarrativeConfig configures summary generation. No APIKey means generation is off.
type NarrativeConfig struct {
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

type ImportConfig struct {
	MaxUploadMB   int64         `yaml:"maxUploadMB"`
	StaleAfter    time.Duration `yaml:"staleAfter"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // development|production
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Import    ImportConfig    `yaml:"import"`
	Log       LogConfig       `yaml:"log"`
}

// LoadConfig reads the yaml file at path, then applies environment overrides
// (an optional .env next to the process is loaded first) and defaults.
// An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("MONGO_HOST")); v != "" {
		c.Mongo.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		c.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		c.Narrative.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		c.Log.Mode = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mongo.Host == "" {
		c.Mongo.Host = "localhost:27017"
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "tool_catalog"
	}
	if c.Mongo.AuthSource == "" {
		c.Mongo.AuthSource = "admin"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 10 * time.Minute
	}
	if c.Narrative.Model == "" {
		c.Narrative.Model = "gemini-2.0-flash"
	}
	if c.Narrative.Workers <= 0 {
		c.Narrative.Workers = 4
	}
	if c.Narrative.Timeout <= 0 {
		c.Narrative.Timeout = 30 * time.Second
	}
	if c.Import.MaxUploadMB <= 0 {
		c.Import.MaxUploadMB = 20
	}
	if c.Import.StaleAfter <= 0 {
		c.Import.StaleAfter = 30 * time.Minute
	}
	if c.Import.SweepInterval <= 0 {
		c.Import.SweepInterval = 5 * time.Minute
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "development"
	}
}
