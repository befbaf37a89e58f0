package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPostalEndpoint is the public India Post pincode lookup API.
const DefaultPostalEndpoint = "https://api.postalpincode.in/pincode/"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postal     PostalConfig     `yaml:"postal"`
	Database   DatabaseConfig   `yaml:"database"`
	OCR        OCRConfig        `yaml:"ocr"`
	Translate  TranslateConfig  `yaml:"translate"`
	NER        NERConfig        `yaml:"ner"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Import     ImportConfig     `yaml:"import"`
}

// WorkerPoolConfig holds the configuration for the scan worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	MaxUploadBytes  int64   `yaml:"max_upload_bytes"`
}

// CacheTTL returns the response cache lifetime.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// PostalConfig describes the upstream pincode lookup API.
type PostalConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
	HTTPProxy      string        `yaml:"http_proxy"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// OCRConfig selects the text detection engine.
type OCRConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "" to disable scans
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Annotate bool   `yaml:"annotate"`
}

// TranslateConfig configures machine translation of recognised text.
type TranslateConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Target  string `yaml:"target"`
	// Mode is "always" or "auto"; auto only translates text carrying non-Latin script.
	Mode string `yaml:"mode"`
}

// NERConfig selects the named-entity recognition provider.
type NERConfig struct {
	Provider        string `yaml:"provider"` // "gemini", "anthropic" or "" to disable
	Model           string `yaml:"model"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
}

// ImportConfig controls loading postal codes from a CSV export.
type ImportConfig struct {
	CSVPath  string `yaml:"csv_path"`
	Schedule string `yaml:"schedule"` // 5-field cron expression; empty runs only at startup
	Timezone string `yaml:"timezone"`
}

// LoadEnv reads an optional .env file into the process environment. Variables
// that are already set win over the file.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("could not load .env: %v", err)
		}
	}
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied and environment
// overrides honoured. It is used when no config file exists.
func Default() *Config {
	var cfg Config
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func applyEnv(cfg *Config) {
	envOverride(&cfg.Database.DSN, "DATABASE_DSN")
	envOverride(&cfg.Postal.Endpoint, "POSTAL_ENDPOINT")
	envOverride(&cfg.OCR.APIKey, "GEMINI_API_KEY")
	envOverride(&cfg.NER.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&cfg.NER.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.Translate.APIKey, "GOOGLE_TRANSLATE_API_KEY")
	envOverride(&cfg.Push.PublicKey, "VAPID_PUBLIC_KEY")
	envOverride(&cfg.Push.PrivateKey, "VAPID_PRIVATE_KEY")
	envOverrideInt(&cfg.Server.Port, "PORT")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}

	if cfg.Postal.Endpoint == "" {
		cfg.Postal.Endpoint = DefaultPostalEndpoint
	}
	if cfg.Postal.TimeoutSeconds <= 0 {
		cfg.Postal.TimeoutSeconds = 10
	}
	cfg.Postal.Timeout = time.Duration(cfg.Postal.TimeoutSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "postal_db.db"
	}

	// Providers are matched in lower case everywhere.
	cfg.OCR.Provider = strings.ToLower(strings.TrimSpace(cfg.OCR.Provider))
	cfg.NER.Provider = strings.ToLower(strings.TrimSpace(cfg.NER.Provider))

	if cfg.OCR.Provider == "gemini" && cfg.OCR.Model == "" {
		cfg.OCR.Model = "gemini-1.5-flash"
	}

	if cfg.Translate.Target == "" {
		cfg.Translate.Target = "en"
	}
	if cfg.Translate.Mode == "" {
		cfg.Translate.Mode = "always"
	}

	if cfg.NER.Model == "" {
		switch cfg.NER.Provider {
		case "gemini":
			cfg.NER.Model = "gemini-1.5-flash"
		case "anthropic":
			cfg.NER.Model = "claude-3-5-haiku-latest"
		}
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Import.Timezone == "" {
		cfg.Import.Timezone = "Asia/Kolkata"
	}
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, v, err)
		return
	}
	*target = n
}
