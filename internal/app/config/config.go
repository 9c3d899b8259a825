package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceHost string
	ServicePort int
	Backend     BackendConfig
	JWT         JWTConfig `mapstructure:"-"`
	Redis       RedisConfig
	MinIO       MinIOConfig
	Audit       AuditConfig
	Auth        AuthConfig
	Notify      NotifyConfig
	Log         LogConfig
	CORS        CORSConfig
}

// BackendConfig points at the remote CRUD backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

type JWTConfig struct {
	Token         string
	ExpiresIn     time.Duration
	SigningMethod jwt.SigningMethod
}

type RedisConfig struct {
	Host        string
	Password    string
	Port        int
	User        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether report exports go to object storage.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

type AuditConfig struct {
	DSN string
}

type AuthConfig struct {
	Enabled bool
}

type NotifyConfig struct {
	Capacity int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowOrigins []string
}

const (
	envRedisHost    = "REDIS_HOST"
	envRedisPort    = "REDIS_PORT"
	envRedisUser    = "REDIS_USER"
	envRedisPass    = "REDIS_PASSWORD"
	envJWTSecret    = "JWT_SECRET"
	envBackendToken = "BACKEND_TOKEN"
	envMinIOAccess  = "MINIO_ACCESS_KEY"
	envMinIOSecret  = "MINIO_SECRET_KEY"
	envAuditDSN     = "AUDIT_DSN"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("ServiceHost", "0.0.0.0")
	v.SetDefault("ServicePort", 8080)
	v.SetDefault("Backend.BaseURL", "http://localhost:3000")
	v.SetDefault("Backend.Timeout", 15*time.Second)
	v.SetDefault("MinIO.Bucket", "license-reports")
	v.SetDefault("Auth.Enabled", true)
	v.SetDefault("Notify.Capacity", 100)
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "text")
	v.SetDefault("CORS.AllowOrigins", []string{"http://localhost:5173"})
}

func NewConfig() (*Config, error) {
	configName := "config"
	_ = godotenv.Load()
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Warnf("config file %q not found, using defaults", configName)
	}

	return fromViper(v)
}

// fromViper builds the Config from an already populated viper instance and the environment.
func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		if cfg.Auth.Enabled {
			return nil, fmt.Errorf("%s is required when auth is enabled", envJWTSecret)
		}
		log.Warnf("%s not set, tokens are signed with a development key", envJWTSecret)
		secret = "local-dev"
	}
	cfg.JWT = JWTConfig{
		Token:         secret,
		ExpiresIn:     time.Hour,
		SigningMethod: jwt.SigningMethodHS256,
	}

	if token := os.Getenv(envBackendToken); token != "" {
		cfg.Backend.Token = token
	}
	if dsn := os.Getenv(envAuditDSN); dsn != "" {
		cfg.Audit.DSN = dsn
	}
	if key := os.Getenv(envMinIOAccess); key != "" {
		cfg.MinIO.AccessKey = key
	}
	if key := os.Getenv(envMinIOSecret); key != "" {
		cfg.MinIO.SecretKey = key
	}

	cfg.Redis.Host = os.Getenv(envRedisHost)
	if port := os.Getenv(envRedisPort); port != "" {
		var err error
		cfg.Redis.Port, err = strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("redis port must be int value: %w", err)
		}
	}
	cfg.Redis.Password = os.Getenv(envRedisPass)
	cfg.Redis.User = os.Getenv(envRedisUser)
	cfg.Redis.DialTimeout = 10 * time.Second
	cfg.Redis.ReadTimeout = 10 * time.Second

	if cfg.Auth.Enabled && cfg.Redis.Host == "" {
		return nil, fmt.Errorf("%s is required when auth is enabled", envRedisHost)
	}

	log.Info("config parsed")

	return cfg, nil
}
