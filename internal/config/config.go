package config

import (
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
	Region    string
}

type Config struct {
	DB_URL        string
	Port          string
	AdminUser     string
	AdminPassword string
	Secret        string
	DomainURL     string
	RedisAddr     string
	ChunkDir      string
	BackupDir     string
	Environment   string
	CorsConfig    cors.Options
	Minio         MinioConfig
}

var Envs = initConfig()

func initConfig() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Infof("No %s file found, relying on environment", envFile)
	}

	return Config{
		DB_URL:        getEnv("DB_URL", ""),
		Port:          getEnv("PORT", "8080"),
		AdminUser:     getEnv("ADMIN_USER", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		Secret:        getEnv("SECRET", "not-so-secret-now-is-it?"),
		DomainURL:     getEnv("DOMAIN_URL", "http://localhost:8080"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		ChunkDir:      getEnv("CHUNK_DIR", "tmp_chunks"),
		BackupDir:     getEnv("BACKUP_DIR", "tmp_backup"),
		Environment:   getEnv("ENV", "development"),
		CorsConfig:    CorsConfig(),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Secure:    getEnvBool("MINIO_SECURE", false),
			Bucket:    getEnv("MINIO_BUCKET", "files"),
			Region:    getEnv("MINIO_REGION", "us-east-1"),
		},
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
