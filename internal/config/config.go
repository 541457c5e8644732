package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		URL string `yaml:"url"` // empty: geocoder cache stays in memory
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Geocoder struct {
		BaseURL      string `yaml:"base_url"`
		CacheTTLDays int    `yaml:"cache_ttl_days"`
	} `yaml:"geocoder"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	Search struct {
		BaseURL           string `yaml:"base_url"` // empty: in-memory index
		JobsIndex         string `yaml:"jobs_index"`
		TradespeopleIndex string `yaml:"tradespeople_index"`
		ReindexEveryHours int    `yaml:"reindex_every_hours"`
	} `yaml:"search"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or falls back to environment variables when
// DATABASE_URL is set (test and container deployments).
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Admin.Email = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("FIRST_ADMIN_PASSWORD")
	cfg.Geocoder.BaseURL = os.Getenv("GEOCODER_URL")
	cfg.Search.BaseURL = os.Getenv("SEARCH_URL")

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "noreply@tradematch.test"

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Geocoder.BaseURL == "" {
		cfg.Geocoder.BaseURL = "https://api.postcodes.io"
	}
	if cfg.Geocoder.CacheTTLDays <= 0 {
		cfg.Geocoder.CacheTTLDays = 30
	}
	if cfg.Search.JobsIndex == "" {
		cfg.Search.JobsIndex = "jobs"
	}
	if cfg.Search.TradespeopleIndex == "" {
		cfg.Search.TradespeopleIndex = "tradespeople"
	}
	if cfg.Search.ReindexEveryHours <= 0 {
		cfg.Search.ReindexEveryHours = 6
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
