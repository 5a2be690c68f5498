package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	LogLevel  string
	LogFormat string

	// Origins allowed to receive the OAuth popup postMessage and to call the API.
	FrontendOrigins []string

	MLRedirectURI string
	MLTokenURL    string

	StalePagePolicy string

	SnapshotDir  string
	S3Bucket     string
	S3Region     string
	SnapshotToS3 bool

	// Bootstrap account created on first start when no super admin exists.
	SuperAdminEmail    string
	SuperAdminPassword string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "dropux"),
		DBPath:     getEnv("DB_PATH", "dropux.db"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		FrontendOrigins: splitList(getEnv("FRONTEND_ORIGINS", "http://localhost:3000,https://app.dropux.co")),

		MLRedirectURI: getEnv("ML_REDIRECT_URI", "http://localhost:8080/api/ml/callback"),
		MLTokenURL:    getEnv("ML_TOKEN_URL", "https://api.mercadolibre.com/oauth/token"),

		StalePagePolicy: getEnv("STALE_PAGE_POLICY", "keep"),

		SnapshotDir:  getEnv("SNAPSHOT_DIR", "./snapshots"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Region:     getEnv("S3_REGION", ""),
		SnapshotToS3: getEnvBool("SNAPSHOT_TO_S3", false),

		SuperAdminEmail:    getEnv("SUPERADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
