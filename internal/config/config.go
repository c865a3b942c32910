package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultAppSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env  string
	Port string

	// 持久化
	StorageDriver string // file 或 postgres
	DataFile      string
	DatabaseURL   string

	// 向量
	EmbeddingProvider   string // hash, ollama, openai
	EmbeddingDimensions int
	EmbeddingCacheSize  int
	OllamaHost          string
	OllamaModel         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string

	// 排序策略
	QueryWeight    float64
	TasteWeight    float64
	DislikePenalty float64
	GenreBoost     float64
	ResultCacheTTL time.Duration

	// 未保存修改的补写间隔
	CheckpointInterval time.Duration

	// 海报抓取是否允许内网地址
	PosterAllowPrivateHosts bool

	// 管理接口
	AppSecret     string
	AdminPassword string
	JWTExpiry     time.Duration

	LogLevel  string
	LogFormat string
}

// Load 加载配置
func Load() *Config {
	expiryHours := getEnvInt("JWT_EXPIRY_HOURS", 72)

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "cinerag")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := getEnv("DATABASE_URL", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL))

	env := getEnv("APP_ENV", "development")
	appSecret := getEnv("APP_SECRET", defaultAppSecret)

	logFormat := "console"
	if env == "production" {
		logFormat = "json"
	}

	return &Config{
		Env:                     env,
		Port:                    getEnv("PORT", "5005"),
		StorageDriver:           getEnv("STORAGE_DRIVER", "file"),
		DataFile:                getEnv("DATA_FILE", "cinerag_data.json"),
		DatabaseURL:             dbURL,
		EmbeddingProvider:       getEnv("EMBEDDING_PROVIDER", "hash"),
		EmbeddingDimensions:     getEnvInt("EMBEDDING_DIMENSIONS", 384),
		EmbeddingCacheSize:      getEnvInt("EMBEDDING_CACHE_SIZE", 1024),
		OllamaHost:              getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:             getEnv("OLLAMA_MODEL", "all-minilm"),
		OpenAIAPIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:           getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:             getEnv("OPENAI_MODEL", "text-embedding-3-small"),
		QueryWeight:             getEnvFloat("QUERY_WEIGHT", 0.6),
		TasteWeight:             getEnvFloat("TASTE_WEIGHT", 0.4),
		DislikePenalty:          getEnvFloat("DISLIKE_PENALTY", 0.1),
		GenreBoost:              getEnvFloat("GENRE_BOOST", 1.2),
		ResultCacheTTL:          time.Duration(getEnvInt("RESULT_CACHE_TTL_SECONDS", 300)) * time.Second,
		CheckpointInterval:      time.Duration(getEnvInt("CHECKPOINT_INTERVAL_SECONDS", 60)) * time.Second,
		PosterAllowPrivateHosts: getEnvBool("POSTER_ALLOW_PRIVATE_HOSTS", false),
		AppSecret:               appSecret,
		AdminPassword:           getEnv("ADMIN_PASSWORD", ""),
		JWTExpiry:               time.Duration(expiryHours) * time.Hour,
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", logFormat),
	}
}

// UsesDefaultSecret 生产环境仍在使用默认密钥
func (c *Config) UsesDefaultSecret() bool {
	return c.Env == "production" && c.AppSecret == defaultAppSecret
}

// Validate 检查取值是否可用
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "file", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	switch c.EmbeddingProvider {
	case "hash", "ollama", "openai":
	default:
		return fmt.Errorf("unsupported embedding provider %q", c.EmbeddingProvider)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.StorageDriver == "file" && c.DataFile == "" {
		return fmt.Errorf("data file is required for the file storage driver")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
