package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string        `env:"LISTEN_ADDR"`
	Port           string        `env:"PORT" envDefault:"8080"`
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"bitacora.db"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"bitacora-dev-secret"`
	TokenSecret    string        `env:"TOKEN_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"72h"`
	GinMode        string        `env:"GIN_MODE" envDefault:"release"`
	UploadDir      string        `env:"UPLOAD_DIR" envDefault:"web/media"`
	UploadURLPath  string        `env:"UPLOAD_URL_PATH" envDefault:"/media"`
	SiteBaseURL    string        `env:"SITE_BASE_URL" envDefault:"http://localhost:8080"`
	TimeZone       string        `env:"TIME_ZONE" envDefault:"UTC"`

	SMTP  SMTPConfig
	Log   LogConfig
	Admin AdminSite
	Sweep SweepConfig

	SuperRootUserName string `env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword string `env:"SUPER_ROOT_PASSWORD"`
	SuperRootEmail    string `env:"SUPER_ROOT_EMAIL"`
}

// SMTPConfig describes the outbound mail transport. An empty Host selects the
// logging mailer.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@localhost"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Encoding string `env:"LOG_ENCODING" envDefault:"json"`
}

// AdminSite holds the branding strings of the admin console.
type AdminSite struct {
	Header     string `env:"ADMIN_SITE_HEADER" envDefault:"Administración del Blog"`
	IndexTitle string `env:"ADMIN_INDEX_TITLE" envDefault:"Panel de Control"`
	SiteTitle  string `env:"ADMIN_SITE_TITLE" envDefault:"Blog"`
}

// SweepConfig enables the periodic removal of accounts that never confirmed
// their email. Empty Spec disables it.
type SweepConfig struct {
	Spec   string        `env:"PENDING_SWEEP_SPEC"`
	MaxAge time.Duration `env:"PENDING_MAX_AGE" envDefault:"168h"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = "sqlite"
	}
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	c.DatabaseDSN = strings.TrimSpace(c.DatabaseDSN)

	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	if c.SessionSecret == "" {
		c.SessionSecret = "bitacora-dev-secret"
	}

	// sin secreto propio, los tokens se firman con el de la sesión
	c.TokenSecret = strings.TrimSpace(c.TokenSecret)
	if c.TokenSecret == "" {
		c.TokenSecret = c.SessionSecret
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 72 * time.Hour
	}

	c.UploadDir = strings.TrimSpace(c.UploadDir)
	c.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.UploadURLPath), "/")
	c.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.SiteBaseURL), "/")
	c.TimeZone = strings.TrimSpace(c.TimeZone)

	c.SMTP.Host = strings.TrimSpace(c.SMTP.Host)
	c.SMTP.From = strings.TrimSpace(c.SMTP.From)

	c.Sweep.Spec = strings.TrimSpace(c.Sweep.Spec)

	c.SuperRootUserName = strings.TrimSpace(c.SuperRootUserName)
	c.SuperRootPassword = strings.TrimSpace(c.SuperRootPassword)
	c.SuperRootEmail = strings.TrimSpace(c.SuperRootEmail)
}

// Location resolves TimeZone, falling back to UTC when it is unknown.
func (c AppConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
