// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	Timezone       string
}

type MongoConfig struct {
	URI            string
	Database       string
	TimeoutSeconds int
}

// DatabaseConfig points at the Postgres database holding inventory alert snapshots
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	UploadDir string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	OTPTTL     time.Duration
	BcryptCost int
}

type StorageConfig struct {
	Driver         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	PresignTTL     time.Duration
	MaxUploadBytes int64
}

type JobsConfig struct {
	Enabled        bool
	AlertSweepSpec string
	SweepWorkers   int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = fromViper()

		if instance.Storage.Driver == "local" {
			ensureDir(instance.App.UploadDir)
		}
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("SERVER_TIMEZONE", "Local")

	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "pharmacare")
	viper.SetDefault("MONGO_TIMEOUT_SECONDS", 10)

	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "pharmacare")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")

	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 60)

	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("JWT_ISSUER", "pharmacare")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("OTP_TTL", "10m")
	viper.SetDefault("BCRYPT_COST", 10)

	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "prescriptions")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("STORAGE_PRESIGN_TTL", "15m")
	viper.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 5<<20)

	viper.SetDefault("JOBS_ENABLED", true)
	viper.SetDefault("JOBS_ALERT_SWEEP_SPEC", "10 0 * * *")
	viper.SetDefault("JOBS_SWEEP_WORKERS", 4)
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			Timezone:       viper.GetString("SERVER_TIMEZONE"),
		},
		Mongo: MongoConfig{
			URI:            viper.GetString("MONGO_URI"),
			Database:       viper.GetString("MONGO_DATABASE"),
			TimeoutSeconds: viper.GetInt("MONGO_TIMEOUT_SECONDS"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			UploadDir: viper.GetString("APP_UPLOAD_DIR"),
		},
		Cache: CacheConfig{
			Enabled:             viper.GetBool("CACHE_ENABLED"),
			RedisURL:            viper.GetString("REDIS_URL"),
			RedisHost:           viper.GetString("REDIS_HOST"),
			RedisPort:           viper.GetString("REDIS_PORT"),
			RedisPassword:       viper.GetString("REDIS_PASSWORD"),
			RedisDB:             viper.GetInt("REDIS_DB"),
			AnalyticsTTLSeconds: viper.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
		},
		Auth: AuthConfig{
			JWTSecret:  viper.GetString("JWT_SECRET"),
			Issuer:     viper.GetString("JWT_ISSUER"),
			TokenTTL:   viper.GetDuration("JWT_TTL"),
			OTPTTL:     viper.GetDuration("OTP_TTL"),
			BcryptCost: viper.GetInt("BCRYPT_COST"),
		},
		Storage: StorageConfig{
			Driver:         viper.GetString("STORAGE_DRIVER"),
			Endpoint:       viper.GetString("STORAGE_ENDPOINT"),
			AccessKey:      viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:      viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:         viper.GetString("STORAGE_BUCKET"),
			Region:         viper.GetString("STORAGE_REGION"),
			UseSSL:         viper.GetBool("STORAGE_USE_SSL"),
			PresignTTL:     viper.GetDuration("STORAGE_PRESIGN_TTL"),
			MaxUploadBytes: viper.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
		},
		Jobs: JobsConfig{
			Enabled:        viper.GetBool("JOBS_ENABLED"),
			AlertSweepSpec: viper.GetString("JOBS_ALERT_SWEEP_SPEC"),
			SweepWorkers:   viper.GetInt("JOBS_SWEEP_WORKERS"),
		},
	}
}

// Location resolves the server timezone used for day boundaries in reports.
func (c ServerConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown SERVER_TIMEZONE %q, falling back to local time", c.Timezone)
		return time.Local
	}
	return loc
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
