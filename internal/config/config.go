package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":3333"`
	PublicURL  string `env:"PUBLIC_URL" envDefault:"http://localhost:3333"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"/data/ecoleta.db"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"/data/uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	GeoEnabled  bool          `env:"GEO_ENABLED" envDefault:"true"`
	GeoBaseURL  string        `env:"GEO_BASE_URL" envDefault:"https://servicodados.ibge.gov.br/api/v1/localidades"`
	GeoCacheTTL time.Duration `env:"GEO_CACHE_TTL" envDefault:"24h"`
	GeoValidate bool          `env:"GEO_VALIDATE" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return cfg, nil
}
