package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Env     string `yaml:"env"`
		BaseURL string `yaml:"base_url"` // Публичный адрес сервиса, для ссылок в письмах
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres, sqlite
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Redis struct {
		URL      string `yaml:"url"`       // пусто - кэш статистики отключен
		StatsTTL int    `yaml:"stats_ttl"` // секунды
	} `yaml:"redis"`

	JWT struct {
		Secret         string `yaml:"secret"`
		TTL            int    `yaml:"ttl"`              // минуты, сессия администратора
		ActionTokenTTL int    `yaml:"action_token_ttl"` // минуты, токены формы и действий
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		TemplatesDir string `yaml:"templates_dir"`
	} `yaml:"email"`

	Storage struct {
		Type       string `yaml:"type"`        // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		AccountID  string `yaml:"account_id"`  // For R2
		PublicRead bool   `yaml:"public_read"` // Make files public
	} `yaml:"storage"`

	Upload struct {
		ResumeMaxSize int64 `yaml:"resume_max_size"` // bytes
		PhotoMaxSize  int64 `yaml:"photo_max_size"`  // bytes
		ThumbnailSize int   `yaml:"thumbnail_size"`  // px, квадрат
		ImageQuality  int   `yaml:"image_quality"`   // JPEG quality (1-100)
		// CleanupInterval - минуты между проходами очистки осиротевших файлов, 0 - по умолчанию, <0 - отключено
		CleanupInterval int `yaml:"cleanup_interval"`
	} `yaml:"upload"`

	Site SiteConfig `yaml:"site"`

	Notifications NotificationsConfig `yaml:"notifications"`

	Directory struct {
		PerPage       int `yaml:"per_page"`
		FeaturedCount int `yaml:"featured_count"`
	} `yaml:"directory"`

	Form struct {
		Fields map[string]FormFieldOverride `yaml:"fields"`
	} `yaml:"form"`

	Industries []IndustrySeed `yaml:"industries"`

	FirstAdmin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"first_admin"`
}

// SiteConfig - оформление писем и встраиваемых блоков
type SiteConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	HeaderImage string `yaml:"header_image"`
	FooterText  string `yaml:"footer_text"`
	AccentColor string `yaml:"accent_color"`
	AdminEmail  string `yaml:"admin_email"`
}

type NotificationTemplate struct {
	Template string `yaml:"template"`
	Subject  string `yaml:"subject"`
}

type NotificationsConfig struct {
	Enabled          *bool                           `yaml:"enabled"`
	ApplicantEnabled *bool                           `yaml:"applicant_enabled"`
	Templates        map[string]NotificationTemplate `yaml:"templates"`
}

// IsEnabled - глобальный флаг уведомлений (по умолчанию включен)
func (n NotificationsConfig) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// IsApplicantEnabled - флаг писем, адресованных соискателю
func (n NotificationsConfig) IsApplicantEnabled() bool {
	return n.ApplicantEnabled == nil || *n.ApplicantEnabled
}

type IndustrySeed struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DefaultPerPage       = 12
	DefaultFeaturedCount = 6
	MaxFeaturedCount     = 50
)

// Load читает config.yaml (если есть), применяет переменные окружения и значения по умолчанию.
// Возвращенный Config не меняется после старта.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("Config file %s not found, using environment only", configPath)
		cfg = &Config{}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile разбирает YAML без env и defaults
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUsername = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
}

// ApplyDefaults заполняет пустые значения; используется и в тестах
func ApplyDefaults(cfg *Config) {
	applyDefaults(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = EnvDevelopment
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}

	if cfg.Redis.StatsTTL == 0 {
		cfg.Redis.StatsTTL = 300
	}

	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.JWT.ActionTokenTTL == 0 {
		cfg.JWT.ActionTokenTTL = 12 * 60
	}

	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = cfg.Site.Name
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./uploads"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = "/files"
	}

	if cfg.Upload.ResumeMaxSize == 0 {
		cfg.Upload.ResumeMaxSize = 5 * 1024 * 1024 // 5MB
	}
	if cfg.Upload.PhotoMaxSize == 0 {
		cfg.Upload.PhotoMaxSize = 2 * 1024 * 1024 // 2MB
	}
	if cfg.Upload.ThumbnailSize == 0 {
		cfg.Upload.ThumbnailSize = 300
	}
	if cfg.Upload.ImageQuality == 0 {
		cfg.Upload.ImageQuality = 85
	}
	if cfg.Upload.CleanupInterval == 0 {
		cfg.Upload.CleanupInterval = 60
	}

	if cfg.Site.Name == "" {
		cfg.Site.Name = "GreenJobs"
	}
	if cfg.Site.URL == "" {
		cfg.Site.URL = cfg.Server.BaseURL
	}
	if cfg.Site.AccentColor == "" {
		cfg.Site.AccentColor = "#2e7d32"
	}
	if cfg.Site.FooterText == "" {
		cfg.Site.FooterText = fmt.Sprintf("© %d %s", time.Now().Year(), cfg.Site.Name)
	}

	if cfg.Directory.PerPage <= 0 {
		cfg.Directory.PerPage = DefaultPerPage
	}
	if cfg.Directory.FeaturedCount <= 0 {
		cfg.Directory.FeaturedCount = DefaultFeaturedCount
	}
	if cfg.Directory.FeaturedCount > MaxFeaturedCount {
		cfg.Directory.FeaturedCount = MaxFeaturedCount
	}

	if len(cfg.Industries) == 0 {
		cfg.Industries = DefaultIndustries()
	}
}

// Validate проверяет то, без чего сервис не стартует
func (c *Config) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	if c.Server.Env == EnvProduction && c.JWT.Secret == "" {
		return errors.New("jwt secret is required in production")
	}
	for name := range c.Form.Fields {
		if _, ok := defaultFieldIndex[name]; !ok {
			return fmt.Errorf("unknown form field %q in config", name)
		}
	}
	return nil
}

// IsDevelopment - подробные ошибки и текстовые логи
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == EnvDevelopment
}

func (c *Config) StatsTTL() time.Duration {
	return time.Duration(c.Redis.StatsTTL) * time.Second
}

// DefaultIndustries - отрасли, которые создаются, если в конфиге нет своих
func DefaultIndustries() []IndustrySeed {
	return []IndustrySeed{
		{Slug: "renewable-energy", Name: "Renewable Energy"},
		{Slug: "climate-science", Name: "Climate Science"},
		{Slug: "sustainable-agriculture", Name: "Sustainable Agriculture"},
		{Slug: "conservation", Name: "Conservation"},
		{Slug: "green-building", Name: "Green Building"},
		{Slug: "clean-transportation", Name: "Clean Transportation"},
		{Slug: "environmental-policy", Name: "Environmental Policy"},
		{Slug: "circular-economy", Name: "Circular Economy"},
	}
}
