package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	MongoURI    string
	DBName      string
	LocalDBPath string

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AppBaseURL   string

	GoogleBooksURL    string
	GoogleBooksAPIKey string
	GoogleBooksRPS    float64

	JWTSecret     string
	ResetTokenKey []byte // 32 bytes for AES-256; base64 in env
	MaxUploadMB   int64
	AuthRateLimit float64 // requests per second per IP on /api/auth
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP. Enable it only
	// behind a proxy that overwrites those headers.
	TrustProxy bool
}

// fileConfig is the optional YAML layer named by BOOKREFLECT_CONFIG. Env vars win over it.
type fileConfig struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	Mongo    struct {
		URI string `yaml:"uri"`
		DB  string `yaml:"db"`
	} `yaml:"mongo"`
	LocalDBPath string `yaml:"local_db_path"`
	S3          struct {
		Bucket string `yaml:"bucket"`
		Region string `yaml:"region"`
	} `yaml:"s3"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
	AppBaseURL  string `yaml:"app_base_url"`
	GoogleBooks struct {
		URL string  `yaml:"url"`
		RPS float64 `yaml:"rps"`
	} `yaml:"google_books"`
	MaxUploadMB   int64   `yaml:"max_upload_mb"`
	AuthRateLimit float64 `yaml:"auth_rate_limit"`
	TrustProxy    bool    `yaml:"trust_proxy"`
}

func loadFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func Load() (*Config, error) {
	fc, err := loadFile(os.Getenv("BOOKREFLECT_CONFIG"))
	if err != nil {
		return nil, err
	}

	var resetKey []byte
	if k := getEnv("RESET_TOKEN_KEY", ""); k != "" {
		resetKey, _ = base64.StdEncoding.DecodeString(k)
		if len(resetKey) != 32 {
			resetKey = nil
		}
	}

	return &Config{
		Port:     getEnv("PORT", or(fc.Port, "8080")),
		Env:      getEnv("APP_ENV", or(fc.Env, "development")),
		LogLevel: getEnv("LOG_LEVEL", or(fc.LogLevel, "info")),

		MongoURI:    getEnv("MONGODB_URI", or(fc.Mongo.URI, "mongodb://localhost:27017")),
		DBName:      getEnv("MONGODB_DB", or(fc.Mongo.DB, "bookreflect")),
		LocalDBPath: getEnv("LOCAL_DB_PATH", or(fc.LocalDBPath, "bookreflect.db")),

		S3Bucket:      getEnv("AWS_S3_BUCKET", fc.S3.Bucket),
		S3Region:      getEnv("AWS_REGION", or(fc.S3.Region, "us-east-1")),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", fc.SMTP.Host),
		SMTPPort:     int(getEnvInt("SMTP_PORT", int64(orInt(fc.SMTP.Port, 587)))),
		SMTPUsername: getEnv("SMTP_USERNAME", fc.SMTP.Username),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", fc.SMTP.From),
		AppBaseURL:   strings.TrimRight(getEnv("APP_BASE_URL", or(fc.AppBaseURL, "http://localhost:8080")), "/"),

		GoogleBooksURL:    getEnv("GOOGLE_BOOKS_URL", or(fc.GoogleBooks.URL, "https://www.googleapis.com/books/v1")),
		GoogleBooksAPIKey: getEnv("GOOGLE_BOOKS_API_KEY", ""),
		GoogleBooksRPS:    getEnvFloat("GOOGLE_BOOKS_RPS", orFloat(fc.GoogleBooks.RPS, 5)),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		ResetTokenKey: resetKey,
		MaxUploadMB:   getEnvInt("MAX_UPLOAD_MB", orInt64(fc.MaxUploadMB, 20)),
		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", orFloat(fc.AuthRateLimit, 2)),
		TrustProxy:    getEnvBool("TRUST_PROXY", fc.TrustProxy),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}

func orFloat(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

// RequiredEnvVars are checked by ValidateEnv before the server starts.
var RequiredEnvVars = []string{
	"MONGODB_URI",
	"MONGODB_DB",
	"JWT_SECRET",
	"RESET_TOKEN_KEY",
}

// OptionalEnvVars are logged at startup so you can confirm they are loaded when set.
var OptionalEnvVars = []string{
	"PORT",
	"APP_ENV",
	"LOCAL_DB_PATH",
	"AWS_S3_BUCKET",
	"AWS_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"SMTP_HOST",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"GOOGLE_BOOKS_API_KEY",
	"TRUST_PROXY",
}

var secretEnvVars = map[string]bool{
	"JWT_SECRET":            true,
	"RESET_TOKEN_KEY":       true,
	"AWS_ACCESS_KEY_ID":     true,
	"AWS_SECRET_ACCESS_KEY": true,
	"SMTP_PASSWORD":         true,
	"GOOGLE_BOOKS_API_KEY":  true,
}

// ValidateEnv checks that required env vars are set and logs the status of the optional ones.
func ValidateEnv(log *zap.Logger) error {
	var missing []string
	for _, key := range RequiredEnvVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		} else {
			log.Debug("env loaded", zap.String("key", key))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	for _, key := range OptionalEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		switch {
		case v == "":
			log.Debug("env not set (optional)", zap.String("key", key))
		case secretEnvVars[key]:
			log.Debug("env loaded", zap.String("key", key))
		default:
			log.Debug("env loaded", zap.String("key", key), zap.String("value", v))
		}
	}
	if os.Getenv("JWT_SECRET") == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set to a strong secret (not the default change-me-in-production)")
	}
	dec, _ := base64.StdEncoding.DecodeString(os.Getenv("RESET_TOKEN_KEY"))
	if len(dec) != 32 {
		return fmt.Errorf("RESET_TOKEN_KEY must be 32 bytes base64 (got %d bytes); generate with: openssl rand -base64 32", len(dec))
	}
	return nil
}
