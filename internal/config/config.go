package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	Server   ServerConfig    `yaml:"server"`
	JWT      JWTConfig       `yaml:"jwt"`
	Redis    RedisConfig     `yaml:"redis"`
	Auth     AuthConfig      `yaml:"auth"`
	AWS      AWSConfig       `yaml:"aws"`
	CORS     CORSConfig      `yaml:"cors"`
	Privs    PrivilegeConfig `yaml:"privileges"`
	Logging  LoggingConfig   `yaml:"logging"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type ServerConfig struct {
	Port           string `yaml:"port"`
	PaymentBaseURL string `yaml:"payment_base_url"`
}

type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	Expiry     time.Duration `yaml:"expiry"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	OTPExpiry      time.Duration `yaml:"otp_expiry"`
	OTPCooldown    time.Duration `yaml:"otp_cooldown"`
	OTPMaxAttempts int           `yaml:"otp_max_attempts"`
	RefreshExpiry  time.Duration `yaml:"refresh_expiry"`
}

type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	EndpointURL     string `yaml:"endpoint_url"`
	Bucket          string `yaml:"bucket"`
	FromEmail       string `yaml:"from_email"`
}

// PrivilegeConfig tunes the authorization engine.
type PrivilegeConfig struct {
	// StrictOverrides makes resolution fail on overrides referencing
	// unknown privilege codes instead of ignoring them.
	StrictOverrides bool `yaml:"strict_overrides"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Load builds the configuration from defaults, an optional YAML file named
// by TV_CONFIG_FILE, and environment variables, in that order (env wins).
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("TV_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "troopvault",
			SSLMode: "disable",
		},
		Server: ServerConfig{
			Port:           "8080",
			PaymentBaseURL: "https://pay.troopvault.app",
		},
		JWT: JWTConfig{
			SigningKey: "default-signing-key-change-in-production",
			Issuer:     "troop-vault",
			Expiry:     24 * time.Hour,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			OTPExpiry:      5 * time.Minute,
			OTPCooldown:    60 * time.Second,
			OTPMaxAttempts: 3,
			RefreshExpiry:  7 * 24 * time.Hour,
		},
		AWS: AWSConfig{
			Region:    "us-east-1",
			Bucket:    "troopvault-media",
			FromEmail: "no-reply@troopvault.app",
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Filename:   "logs/tv-backend.log",
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

func (c *Config) applyEnv() {
	c.Database.Host = getEnv("POSTGRES_HOST", c.Database.Host)
	c.Database.Port = getEnv("POSTGRES_PORT", c.Database.Port)
	c.Database.User = getEnv("POSTGRES_USER", c.Database.User)
	c.Database.Password = getEnv("POSTGRES_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("POSTGRES_DB", c.Database.DBName)
	c.Database.SSLMode = getEnv("POSTGRES_SSL_MODE", c.Database.SSLMode)

	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.PaymentBaseURL = getEnv("PAYMENT_BASE_URL", c.Server.PaymentBaseURL)

	c.JWT.SigningKey = getEnv("JWT_SIGNING_KEY", c.JWT.SigningKey)
	c.JWT.Issuer = getEnv("JWT_ISSUER", c.JWT.Issuer)
	c.JWT.Expiry = getEnvDuration("JWT_EXPIRY", c.JWT.Expiry)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Auth.OTPExpiry = getEnvDuration("AUTH_OTP_EXPIRY", c.Auth.OTPExpiry)
	c.Auth.OTPCooldown = getEnvDuration("AUTH_OTP_COOLDOWN", c.Auth.OTPCooldown)
	c.Auth.OTPMaxAttempts = getEnvInt("AUTH_OTP_MAX_ATTEMPTS", c.Auth.OTPMaxAttempts)
	c.Auth.RefreshExpiry = getEnvDuration("AUTH_REFRESH_EXPIRY", c.Auth.RefreshExpiry)

	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)
	c.AWS.AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", c.AWS.AccessKeyID)
	c.AWS.SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", c.AWS.SecretAccessKey)
	c.AWS.EndpointURL = getEnv("AWS_ENDPOINT_URL", c.AWS.EndpointURL)
	c.AWS.Bucket = getEnv("AWS_BUCKET", c.AWS.Bucket)
	c.AWS.FromEmail = getEnv("AWS_FROM_EMAIL", c.AWS.FromEmail)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = strings.Split(origins, ",")
	}

	c.Privs.StrictOverrides = getEnvBool("PRIVILEGES_STRICT_OVERRIDES", c.Privs.StrictOverrides)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.Filename = getEnv("LOG_FILENAME", c.Logging.Filename)
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
