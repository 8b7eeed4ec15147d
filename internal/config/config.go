package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション設定
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Google     GoogleOAuthConfig
	Media      MediaConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Suggestion SuggestionConfig
	LogLevel   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port          string
	Env           string // development / production
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	AllowedOrigin string // CORSで許可するオリジン（Cookie認証のためワイルドカード不可）
	MaxBodyBytes  int64
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	DBName          string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig 認証設定
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	CookieName  string
}

// GoogleOAuthConfig Googleログイン設定（ClientIDが空なら無効）
type GoogleOAuthConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURL     string
	SuccessRedirect string // ログイン成功後のフロントエンドURL
	FailureRedirect string
}

// Enabled Googleログインが設定されているか
func (c GoogleOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// MediaConfig 画像ストレージ設定
type MediaConfig struct {
	Provider   string // cloudinary / s3
	Cloudinary CloudinaryConfig
	S3         S3Config
}

// CloudinaryConfig Cloudinary設定
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// S3Config S3互換ストレージ設定（Cloudflare R2も可）
type S3Config struct {
	Region   string
	Bucket   string
	Endpoint string
	BaseURL  string // 公開URLのベース（空の場合はアップロード結果のLocationを使用）
}

// RedisConfig Redis設定（トークン失効リスト用）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig NATS設定（ドメインイベント配信用）
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// SuggestionConfig おすすめユーザー設定
type SuggestionConfig struct {
	SampleSize int
	Limit      int
}

// Load 環境変数から設定をロード
func Load() (*Config, error) {
	// .env ファイルをロード (存在すれば)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "5000"),
			Env:           getEnv("APP_ENV", "development"),
			ReadTimeout:   time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout:  time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 10)) * time.Second,
			AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
			MaxBodyBytes:  int64(getEnvAsInt("MAX_BODY_SIZE", 5)) * 1024 * 1024, // MB to Bytes
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			Username:        getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "social"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME", 60)) * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
			TokenExpiry: time.Duration(getEnvAsInt("TOKEN_EXPIRY_DAYS", 15)) * 24 * time.Hour,
			CookieName:  getEnv("AUTH_COOKIE_NAME", "jwt"),
		},
		Google: GoogleOAuthConfig{
			ClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:     getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/api/auth/google/callback"),
			SuccessRedirect: getEnv("OAUTH_SUCCESS_REDIRECT", "http://localhost:3000/"),
			FailureRedirect: getEnv("OAUTH_FAILURE_REDIRECT", "http://localhost:3000/login"),
		},
		Media: MediaConfig{
			Provider: getEnv("MEDIA_PROVIDER", "cloudinary"),
			Cloudinary: CloudinaryConfig{
				CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
				APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
				APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
				Folder:    getEnv("CLOUDINARY_FOLDER", ""),
			},
			S3: S3Config{
				Region:   getEnv("AWS_REGION", "ap-northeast-1"),
				Bucket:   getEnv("S3_BUCKET", ""),
				Endpoint: getEnv("S3_ENDPOINT", ""),
				BaseURL:  getEnv("S3_PUBLIC_BASE_URL", ""),
			},
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "social"),
		},
		Suggestion: SuggestionConfig{
			SampleSize: getEnvAsInt("SUGGESTION_SAMPLE_SIZE", 10),
			Limit:      getEnvAsInt("SUGGESTION_LIMIT", 4),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config, nil
}

// IsProduction 本番環境かどうか
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// getEnv 環境変数を取得、存在しない場合はデフォルト値を返す
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
