package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	GCS       GCSConfig       `json:"gcs"`
	Converter ConverterConfig `json:"converter"`
	AI        AIConfig        `json:"ai"`
	Upload    UploadConfig    `json:"upload"`
}

type ServerConfig struct {
	Port         string   `json:"port"`
	Environment  string   `json:"environment"`
	BaseURL      string   `json:"base_url"`
	AllowOrigins []string `json:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
}

type GCSConfig struct {
	BucketName      string `json:"bucket_name"`
	ProjectID       string `json:"project_id"`
	CredentialsPath string `json:"credentials_path"`
}

// ConverterConfig drives the PDF conversion backend chain.
type ConverterConfig struct {
	GotenbergURL     string        `json:"gotenberg_url"`
	GotenbergTimeout string        `json:"gotenberg_timeout"`
	SofficePaths     []string      `json:"soffice_paths"`
	ConvertTimeout   time.Duration `json:"convert_timeout"`
}

// AIConfig configures the vision model client.
type AIConfig struct {
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"-"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

// UploadConfig carries the two size ceilings: admin uploads and user uploads
// go through different routes with different limits.
type UploadConfig struct {
	AdminMaxBytes int64 `json:"admin_max_bytes"`
	UserMaxBytes  int64 `json:"user_max_bytes"`
	MinParagraphs int   `json:"min_paragraphs"`
}

func (d *DatabaseConfig) DSN() string {
	// Cloud SQL Unix socket support
	if len(d.Host) > 0 && d.Host[0] == '/' {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.DBName)
	}
	// Standard TCP connection
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Failed to load .env file: %v, using system environment variables\n", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			BaseURL:      getEnv("BASE_URL", ""),
			AllowOrigins: parseAllowOrigins(),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "df_anlz"),
		},
		GCS: GCSConfig{
			BucketName:      getEnv("GCS_BUCKET_NAME", ""),
			ProjectID:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
			CredentialsPath: getEnv("GCS_CREDENTIALS_PATH", ""),
		},
		Converter: ConverterConfig{
			GotenbergURL:     getEnv("GOTENBERG_URL", ""),
			GotenbergTimeout: getEnv("GOTENBERG_TIMEOUT", "30s"),
			SofficePaths:     parseCSV(getEnv("SOFFICE_PATHS", "")),
			ConvertTimeout:   getDuration("CONVERT_TIMEOUT", 30*time.Second),
		},
		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("AI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
			Timeout: getDuration("AI_TIMEOUT", 60*time.Second),
		},
		Upload: UploadConfig{
			AdminMaxBytes: getInt64("UPLOAD_ADMIN_MAX_BYTES", 100*1024*1024),
			UserMaxBytes:  getInt64("UPLOAD_USER_MAX_BYTES", 10*1024*1024),
			MinParagraphs: getInt("UPLOAD_MIN_PARAGRAPHS", 3),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseCSV(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func parseAllowOrigins() []string {
	if origins := os.Getenv("ALLOW_ORIGINS"); origins != "" {
		return parseCSV(origins)
	}

	// Default origins if none specified
	return []string{
		"http://localhost:3000",
		"http://localhost:3001",
	}
}
