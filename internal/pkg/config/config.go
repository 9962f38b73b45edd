package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string        `env:"PORT,         default=8080"`
	Env         string        `env:"ENV,          default=development"`
	JWTSecret   string        `env:"JWT_SECRET,   default=dev-secret-change-me"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=24h"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	LogLevels   string        `env:"LOG_LEVELS"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT, default=15s"`

	// DefaultCategories are created by the categories step of business setup.
	DefaultCategories []string `env:"DEFAULT_CATEGORIES, default=Detergent,Fabric Conditioner"`

	Backend BackendConfig
	Geocode GeocodeConfig
	PSGC    PSGCConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	S3      S3Config
}

type BackendConfig struct {
	BaseURL string `env:"API_BASE_URL, required"`
}

type GeocodeConfig struct {
	APIKey       string  `env:"GOOGLE_MAPS_API_KEY"`
	BaseURL      string  `env:"GEOCODE_BASE_URL,      default=https://maps.googleapis.com/maps/api/geocode/json"`
	RegionSuffix string  `env:"GEOCODE_REGION_SUFFIX, default=Metro Manila, Philippines"`
	RPS          float64 `env:"GEOCODE_RPS,           default=5"`
}

type PSGCConfig struct {
	BaseURL    string `env:"PSGC_BASE_URL,    default=https://psgc.gitlab.io/api"`
	RegionCode string `env:"PSGC_REGION_CODE, default=130000000"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=merchant_app"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type S3Config struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION,     default=ap-southeast-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	PathStyle       bool   `env:"S3_PATH_STYLE, default=false"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// Production reports whether ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file and then the environment using
// go-envconfig. Variables already set in the environment win over the file.
// A non-empty envFile must exist.
func Load(envFile string) *Config {
	if err := loadDotenv(envFile); err != nil {
		panic(fmt.Sprintf("config: failed to read env file: %v", err))
	}

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

func loadDotenv(envFile string) error {
	if envFile != "" {
		return godotenv.Load(envFile)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
