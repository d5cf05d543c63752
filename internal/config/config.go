package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DataDir       string
	EntityRoot    string
	GroupRoot     string
	FirmRoot      string
	UniversalRoot string
	// Content gateway
	ContentAPIURL string
	ContentAPIKey string
	RedisURL      string
	CacheTTL      time.Duration
	// Search
	MeiliURL       string
	MeiliMasterKey string
	// Publish
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// Sync
	SyncURL    string
	SyncAPIKey string
	// Export
	ChromePath string
	LogLevel   string
}

func Load() Config {
	return Config{
		DataDir:       getenv("LOCALFILE_DATA_DIR", "./data"),
		EntityRoot:    getenv("LOCALFILE_ENTITY_ROOT", "./content/entity"),
		GroupRoot:     getenv("LOCALFILE_GROUP_ROOT", "./content/group"),
		FirmRoot:      getenv("LOCALFILE_FIRM_ROOT", "./content/library"),
		UniversalRoot: getenv("LOCALFILE_UNIVERSAL_ROOT", "./content/references"),

		ContentAPIURL: getenv("LOCALFILE_CONTENT_API_URL", ""),
		ContentAPIKey: getenv("LOCALFILE_CONTENT_API_KEY", ""),
		// Redis - empty disables the cache, gateway degrades to API+disk
		RedisURL: getenv("REDIS_URL", ""),
		CacheTTL: time.Duration(getenvInt("LOCALFILE_CACHE_TTL_SECONDS", 3600)) * time.Second,

		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "localfile-deliverables"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),

		SyncURL:    getenv("LOCALFILE_SYNC_URL", ""),
		SyncAPIKey: getenv("LOCALFILE_SYNC_API_KEY", ""),

		ChromePath: getenv("LOCALFILE_CHROME_PATH", ""),
		LogLevel:   getenv("LOCALFILE_LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
