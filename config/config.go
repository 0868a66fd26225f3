package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SinkCloudinary = "cloudinary"
	SinkS3         = "s3"
)

type (
	Config struct {
		HTTP       HTTP
		Log        Log
		PG         PG
		Sink       Sink
		Cloudinary Cloudinary
		S3         S3
		Kafka      Kafka
		WhatsApp   WhatsApp
		Cache      Cache
		Album      Album
		Upload     Upload
		Gallery    Gallery
	}

	HTTP struct {
		Port            string        `env:"HTTP_PORT" envDefault:"8080"`
		UsePreforkMode  bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"3s"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"2"`
		URL     string `env:"PG_URL,required,notEmpty"`
	}

	Sink struct {
		Kind   string `env:"IMAGE_SINK" envDefault:"cloudinary"`
		Folder string `env:"IMAGE_SINK_FOLDER" envDefault:"sebelasdpib2"`
	}

	Cloudinary struct {
		URL string `env:"CLOUDINARY_URL"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		Region         string        `env:"S3_REGION" envDefault:"auto"`
		AccessKey      string        `env:"S3_ACCESS_KEY"`
		SecretKey      string        `env:"S3_SECRET_KEY"`
		Bucket         string        `env:"S3_BUCKET"`
		PublicBaseURL  string        `env:"S3_PUBLIC_BASE_URL"`
		UsePathStyle   bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	// Kafka is optional: without brokers no upload notifications are published.
	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"photo.uploaded"`
	}

	WhatsApp struct {
		SessionDialect  string        `env:"WA_SESSION_DIALECT" envDefault:"sqlite"`
		SessionDSN      string        `env:"WA_SESSION_DSN" envDefault:"file:session.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"`
		ReconnectDelay  time.Duration `env:"WA_RECONNECT_DELAY" envDefault:"10s"`
		Workers         int           `env:"WA_EVENT_WORKERS" envDefault:"4"`
		ShutdownTimeout time.Duration `env:"WA_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Cache struct {
		MaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"200"`
		TTL        time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	}

	Album struct {
		WindowSeconds int64 `env:"ALBUM_WINDOW_SECONDS" envDefault:"45"`
	}

	Upload struct {
		DownloadTimeout time.Duration `env:"UPLOAD_DOWNLOAD_TIMEOUT" envDefault:"60s"`
		UploadTimeout   time.Duration `env:"UPLOAD_SINK_TIMEOUT" envDefault:"60s"`
		InsertTimeout   time.Duration `env:"UPLOAD_INSERT_TIMEOUT" envDefault:"15s"`
		TempDir         string        `env:"UPLOAD_TEMP_DIR"`
		MaxWidth        int           `env:"UPLOAD_MAX_WIDTH" envDefault:"1920"`
		MaxHeight       int           `env:"UPLOAD_MAX_HEIGHT" envDefault:"1080"`
		JPEGQuality     int           `env:"UPLOAD_JPEG_QUALITY" envDefault:"85"`
		Caption         string        `env:"UPLOAD_CAPTION" envDefault:"Diupload lewat bot WhatsApp"`
	}

	Gallery struct {
		URL        string `env:"GALLERY_URL" envDefault:"https://sebelasdpib2smeksa.netlify.app/#galeri"`
		WebsiteURL string `env:"WEBSITE_URL" envDefault:"https://sebelasdpib2smeksa.netlify.app"`
		BotName    string `env:"BOT_NAME" envDefault:"Bot WhatsApp Kelas 11 DPIB 2 SMKN 1 Kota Kediri"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Sink.Kind {
	case SinkCloudinary:
		if c.Cloudinary.URL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required for image sink %q", c.Sink.Kind)
		}
	case SinkS3:
		if c.S3.Bucket == "" || c.S3.PublicBaseURL == "" {
			return fmt.Errorf("S3_BUCKET and S3_PUBLIC_BASE_URL are required for image sink %q", c.Sink.Kind)
		}
	default:
		return fmt.Errorf("unknown IMAGE_SINK %q", c.Sink.Kind)
	}

	if c.Cache.MaxEntries <= 0 || c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES and CACHE_TTL must be positive")
	}
	if c.Album.WindowSeconds < 0 {
		return fmt.Errorf("ALBUM_WINDOW_SECONDS must not be negative")
	}

	return nil
}
