package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// DataDir holds local fallback state: cover blobs and the cached
	// remote session.
	DataDir    string
	DBPath     string
	ServerPort string

	// CloudBaseURL and CloudAPIKey configure the remote sync service.
	// When either is absent the build has no cloud integration and the
	// local backends are selected for every concern.
	CloudBaseURL string
	CloudAPIKey  string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DataDir:      getEnv("DATA_DIR", "data"),
		DBPath:       getEnv("DB_PATH", filepath.Join("data", "gameshelf.db")),
		ServerPort:   getEnv("SERVER_PORT", "8090"),
		CloudBaseURL: getEnv("CLOUD_BASE_URL", ""),
		CloudAPIKey:  getEnv("CLOUD_API_KEY", ""),
	}

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Bool("cloud_configured", cfg.CloudConfigured()).
		Msg("configuration loaded")

	return cfg, nil
}

// CloudConfigured reports whether the remote service integration is part
// of this build. It is decided once at startup and never re-checked.
func (c *Config) CloudConfigured() bool {
	return c.CloudBaseURL != "" && c.CloudAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
