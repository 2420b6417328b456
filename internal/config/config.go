package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"equipbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Redis      RedisConfig      `yaml:"redis"`
	Booking    BookingConfig    `yaml:"booking"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Sync       SyncConfig       `yaml:"sync"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// IsProduction reports whether cookies must be marked Secure.
func (a AppConfig) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(a.Environment)) {
	case "production", "prod", "staging":
		return true
	}
	return false
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
}

type AuthConfig struct {
	Password      string             `yaml:"password"`
	SessionSecret string             `yaml:"session_secret"`
	SessionTTL    time.Duration      `yaml:"session_ttl"`
	CookieName    string             `yaml:"cookie_name"`
	LoginLimit    APIRateLimitConfig `yaml:"login_rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type StoreConfig struct {
	Driver string       `yaml:"driver"` // cms | sqlite
	CMS    CMSConfig    `yaml:"cms"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type CMSConfig struct {
	ProjectID  string        `yaml:"project_id"`
	Dataset    string        `yaml:"dataset"`
	APIVersion string        `yaml:"api_version"`
	Token      string        `yaml:"token"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BookingConfig struct {
	SerializeWrites *bool         `yaml:"serialize_writes"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
}

// Serialized reports whether create/update take the per-equipment lock.
func (b BookingConfig) Serialized() bool {
	return b.SerializeWrites == nil || *b.SerializeWrites
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	UsageSpreadSheetID    string `yaml:"usage_spreadsheet_id"`
	UsageSheetName        string `yaml:"usage_sheet_name"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Debug    bool   `yaml:"debug"`
}

type SyncConfig struct {
	Schedule     string `yaml:"schedule"`
	MonthsBefore int    `yaml:"months_before"`
	MonthsAfter  int    `yaml:"months_after"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Auth.Password == "" {
		return errors.New("auth.password is required")
	}
	if len(c.Auth.SessionSecret) < 16 {
		return errors.New("auth.session_secret must be at least 16 characters")
	}

	switch c.Store.Driver {
	case "cms":
		if c.Store.CMS.BaseURL == "" && c.Store.CMS.ProjectID == "" {
			return errors.New("store.cms.project_id or store.cms.base_url is required")
		}
		if c.Store.CMS.Dataset == "" {
			return errors.New("store.cms.dataset is required")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "equipbook"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = models.DefaultSessionTTL
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = models.DefaultSessionCookie
	}
	if c.Auth.LoginLimit.RPS == 0 {
		c.Auth.LoginLimit.RPS = 0.2
	}
	if c.Auth.LoginLimit.Burst == 0 {
		c.Auth.LoginLimit.Burst = 5
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "cms"
	}
	if c.Store.CMS.APIVersion == "" {
		c.Store.CMS.APIVersion = "2024-01-01"
	}
	if c.Store.CMS.Timeout == 0 {
		c.Store.CMS.Timeout = models.DefaultStoreTimeout
	}
	if c.Booking.LockTTL == 0 {
		c.Booking.LockTTL = models.DefaultLockTTL
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Google.UsageSheetName == "" {
		c.Google.UsageSheetName = "Usage"
	}
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = "@every 30m"
	}
	if c.Sync.MonthsBefore == 0 {
		c.Sync.MonthsBefore = models.DefaultSyncMonthsBefore
	}
	if c.Sync.MonthsAfter == 0 {
		c.Sync.MonthsAfter = models.DefaultSyncMonthsAfter
	}
}
