package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultGraphAPIBase    = "https://graph.facebook.com/v17.0"
	DefaultPGHost          = "127.0.0.1"
	DefaultPGPort          = 5432
	DefaultPGUser          = "postgres"
	DefaultPGDatabase      = "deepsift"
	DefaultPGSSLMode       = "disable"
	DefaultImageBucket     = "image-uploads"
	DefaultVideoBucket     = "video-uploads"
	DefaultDocumentBucket  = "text-uploads"
	DefaultVideoTimeoutSec = 120
	DefaultImageTimeoutSec = 60
	DefaultTextTimeoutSec  = 30
	DefaultMaxUploadBytes  = 100 * 1024 * 1024
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Postgres  PostgresConfig  `toml:"postgres"`
	WhatsApp  WhatsAppConfig  `toml:"whatsapp" validate:"required"`
	Storage   StorageConfig   `toml:"storage" validate:"required"`
	Detectors DetectorsConfig `toml:"detectors" validate:"required"`
	Reconcile ReconcileConfig `toml:"reconcile"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr           string `toml:"addr"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

type WhatsAppConfig struct {
	VerifyToken   string `toml:"verify_token" validate:"required"`
	AccessToken   string `toml:"access_token" validate:"required"`
	PhoneNumberID string `toml:"phone_number_id" validate:"required"`
	GraphAPIBase  string `toml:"graph_api_base"`
}

type StorageConfig struct {
	SupabaseURL    string `toml:"supabase_url" validate:"required,url"`
	ServiceKey     string `toml:"service_key" validate:"required"`
	ImageBucket    string `toml:"image_bucket"`
	VideoBucket    string `toml:"video_bucket"`
	DocumentBucket string `toml:"document_bucket"`
}

type DetectorsConfig struct {
	VideoURL        string `toml:"video_url" validate:"required,url"`
	VideoAPIKey     string `toml:"video_api_key"`
	VideoTimeoutSec int    `toml:"video_timeout_seconds"`
	ImageURL        string `toml:"image_url" validate:"required,url"`
	ImageTimeoutSec int    `toml:"image_timeout_seconds"`
	TextURL         string `toml:"text_url" validate:"required,url"`
	TextTimeoutSec  int    `toml:"text_timeout_seconds"`
}

type ReconcileConfig struct {
	Enabled         bool   `toml:"enabled"`
	Schedule        string `toml:"schedule"`
	StalePendingMin int    `toml:"stale_pending_minutes"`
}

// Load reads the TOML config at path (DefaultConfigPath when empty),
// applies defaults, then overlays secret values from the environment so a
// .env file can carry credentials the same way the config file does.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:           DefaultHTTPAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		WhatsApp: WhatsAppConfig{
			GraphAPIBase: DefaultGraphAPIBase,
		},
		Storage: StorageConfig{
			ImageBucket:    DefaultImageBucket,
			VideoBucket:    DefaultVideoBucket,
			DocumentBucket: DefaultDocumentBucket,
		},
		Detectors: DetectorsConfig{
			VideoTimeoutSec: DefaultVideoTimeoutSec,
			ImageTimeoutSec: DefaultImageTimeoutSec,
			TextTimeoutSec:  DefaultTextTimeoutSec,
		},
		Reconcile: ReconcileConfig{
			Enabled:         true,
			Schedule:        "@every 10m",
			StalePendingMin: 30,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	overlayEnv(&cfg)
	return cfg, nil
}

// Validate checks that every field required to serve traffic is present.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

func overlayEnv(cfg *Config) {
	setIfPresent(&cfg.WhatsApp.VerifyToken, "VERIFY_TOKEN")
	setIfPresent(&cfg.WhatsApp.AccessToken, "WHATSAPP_ACCESS_TOKEN")
	setIfPresent(&cfg.WhatsApp.PhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setIfPresent(&cfg.Storage.SupabaseURL, "SUPABASE_URL")
	setIfPresent(&cfg.Storage.ServiceKey, "SUPABASE_SERVICE_KEY")
	setIfPresent(&cfg.Detectors.VideoURL, "MODAL_VIDEO_API_URL")
	setIfPresent(&cfg.Detectors.VideoAPIKey, "MODAL_API_KEY")
	setIfPresent(&cfg.Detectors.ImageURL, "MODAL_IMAGE_API_URL")
	setIfPresent(&cfg.Detectors.TextURL, "MODAL_TEXT_API_URL")
	setIfPresent(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setIfPresent(&cfg.Postgres.Password, "PGPASSWORD")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
