package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "PADDY"

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig              `mapstructure:"server"`
	Log         LogConfig                 `mapstructure:"log"`
	Database    DatabaseConfig            `mapstructure:"database"`
	Redis       RedisConfig               `mapstructure:"redis"`
	Models      []entity.ModelSpec        `mapstructure:"models"`
	Labels      LabelsConfig              `mapstructure:"labels"`
	Agreement   service.QuorumPolicy      `mapstructure:"agreement"`
	Attribution service.AttributionConfig `mapstructure:"attribution"`
	Inference   InferenceConfig           `mapstructure:"inference"`
	Storage     StorageConfig             `mapstructure:"storage"`
	ONNX        ONNXConfig                `mapstructure:"onnx"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
	// MaxImagePixels caps width × height of a decoded upload
	MaxImagePixels int64 `mapstructure:"max_image_pixels"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// DSN overrides the assembled connection string; for sqlite it is the file path
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LabelsConfig holds the class vocabulary
type LabelsConfig struct {
	Names   []string `mapstructure:"names"`
	Healthy string   `mapstructure:"healthy"`
}

// Vocabulary returns the configured labels
func (l LabelsConfig) Vocabulary() entity.Labels {
	return entity.NewLabels(l.Names, l.Healthy)
}

// InferenceConfig holds per-request inference configuration
type InferenceConfig struct {
	ModelTimeout time.Duration `mapstructure:"model_timeout"`
	Workers      int           `mapstructure:"workers"`
	Explain      bool          `mapstructure:"explain"`
}

// StorageConfig holds artifact directory configuration
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

// ONNXConfig holds ONNX Runtime configuration
type ONNXConfig struct {
	SharedLibraryPath string `mapstructure:"shared_library_path"`
}

// Load reads configuration from defaults, an optional config file and PADDY_* environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if len(cfg.Models) == 0 {
		cfg.Models = entity.DefaultModelSpecs()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("server.max_image_pixels", 40_000_000)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "paddy")
	v.SetDefault("database.password", "paddy")
	v.SetDefault("database.dbname", "paddy")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.dsn", "")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	// Label defaults
	v.SetDefault("labels.names", entity.DefaultLabels)
	v.SetDefault("labels.healthy", entity.DefaultHealthyLabel)

	// Ensemble defaults
	v.SetDefault("agreement.min_votes", 3)
	v.SetDefault("agreement.fraction", 0.0)
	v.SetDefault("attribution.method", string(service.MethodSmoothGrad))
	v.SetDefault("attribution.samples", service.DefaultSamples)
	v.SetDefault("attribution.noise_level", service.DefaultNoiseLevel)
	v.SetDefault("attribution.seed", 0)
	v.SetDefault("inference.model_timeout", "30s")
	v.SetDefault("inference.workers", 4)
	v.SetDefault("inference.explain", true)

	// Storage defaults
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.output_dir", "./outputs")

	v.SetDefault("onnx.shared_library_path", "")
}
