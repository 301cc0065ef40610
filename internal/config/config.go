package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envServerBodyLimit       = "SERVER_BODY_LIMIT"
	envRateLimitRPS          = "RATE_LIMIT_RPS"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
	envAuthRateLimitRPS      = "AUTH_RATE_LIMIT_RPS"
	envAuthRateLimitBurst    = "AUTH_RATE_LIMIT_BURST"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDatabaseURL           = "DATABASE_URL"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY"
	envJWTIssuer             = "JWT_ISSUER"
	envAllowedOrigins        = "ALLOWED_ORIGINS"
	envDBAllowedOrigins      = "DB_ALLOWED_ORIGINS"
	envMailProviders         = "MAIL_PROVIDERS"
	envMailStrategy          = "MAIL_STRATEGY"
	envMailFrom              = "MAIL_FROM"
	envMailProviderLimits    = "MAIL_PROVIDER_LIMITS"
	envResendAPIKey          = "RESEND_API_KEY"
	envSendGridAPIKey        = "SENDGRID_API_KEY"
	envS3Bucket              = "S3_BUCKET"
	envS3Prefix              = "S3_PREFIX"
	envAWSRegion             = "AWS_REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envPresignedURLExpiry    = "PRESIGNED_URL_EXPIRY"
	envPresenceTimeout       = "PRESENCE_TIMEOUT"
	envAppName               = "APP_NAME"
	envAppURL                = "APP_URL"
)

const (
	defaultServerPort          = "8080"
	defaultServerReadTimeout   = 15 * time.Second
	defaultServerWriteTimeout  = 15 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultServerBodyLimit     = "10M"
	defaultRateLimitRPS        = 100
	defaultRateLimitBurst      = 200
	defaultAuthRateLimitRPS    = 5
	defaultAuthRateLimitBurst  = 10
	defaultDBHost              = "localhost"
	defaultDBPort              = 5432
	defaultDBName              = "javascriv"
	defaultDBUser              = "javascriv"
	defaultDBSSLMode           = "disable"
	defaultDBMaxConns          = 25
	defaultDBMinConns          = 2
	defaultJWTExpiry           = 720 * time.Hour
	defaultJWTIssuer           = "javascriv-api"
	defaultAllowedOrigin       = "http://localhost:3000"
	defaultMailStrategy        = "failover"
	defaultAWSRegion           = "us-east-1"
	defaultS3Prefix            = "attachments"
	defaultPresignedURLExpiry  = 15 * time.Minute
	defaultPresenceTimeout     = 2 * time.Minute
	defaultAppName             = "Javascriv"
	minJWTSecretLength         = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	errPortRequiredFmt         = "PORT must be set"
	errDatabaseRequiredFmt     = "DATABASE_URL or DB_PASSWORD must be set"
	errPoolSizeFmt             = "DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errJWTExpiryFmt            = "JWT_EXPIRY must be positive"
	errMailFromRequiredFmt     = "MAIL_FROM must be set when mail providers are configured"
	errPresenceTimeoutFmt      = "PRESENCE_TIMEOUT must be positive"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Mail     MailConfig
	S3       S3Config
	App      AppConfig
}

type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	BodyLimit          string
	RateLimitRPS       int
	RateLimitBurst     int
	AuthRateLimitRPS   int
	AuthRateLimitBurst int
	// EnableProfiling mounts pprof under /debug/pprof for authenticated users.
	EnableProfiling    bool
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
	Issuer         string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// MailConfig lists providers in delivery order. Mail is disabled when no
// provider has an API key.
type MailConfig struct {
	Providers      []string
	Strategy       string
	From           string
	ResendAPIKey   string
	// ProviderLimits caps sends per provider for the priority strategy.
	ProviderLimits map[string]int
	SendGridAPIKey string
}

// S3Config enables image attachments when Bucket is set. Empty credentials
// fall back to the AWS SDK's default chain.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type AppConfig struct {
	Name               string
	URL                string
	PresenceTimeout    time.Duration
	PresignedURLExpiry time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv(envPort, defaultServerPort),
			ReadTimeout:        getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:       getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout:    getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			BodyLimit:          getEnv(envServerBodyLimit, defaultServerBodyLimit),
			RateLimitRPS:       getIntEnv(envRateLimitRPS, defaultRateLimitRPS),
			RateLimitBurst:     getIntEnv(envRateLimitBurst, defaultRateLimitBurst),
			AuthRateLimitRPS:   getIntEnv(envAuthRateLimitRPS, defaultAuthRateLimitRPS),
			AuthRateLimitBurst: getIntEnv(envAuthRateLimitBurst, defaultAuthRateLimitBurst),
			EnableProfiling:    getBoolEnv(envEnableProfiling),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv(envDatabaseURL),
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		JWT: JWTConfig{
			Secret:         requireEnv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
			Issuer:         getEnv(envJWTIssuer, defaultJWTIssuer),
		},
		CORS: CORSConfig{
			AllowedOrigins: getSliceEnv(envAllowedOrigins, getSliceEnv(envDBAllowedOrigins, []string{defaultAllowedOrigin})),
		},
		Mail: MailConfig{
			Providers:      getSliceEnv(envMailProviders, nil),
			Strategy:       getEnv(envMailStrategy, defaultMailStrategy),
			From:           os.Getenv(envMailFrom),
			ResendAPIKey:   os.Getenv(envResendAPIKey),
			SendGridAPIKey: os.Getenv(envSendGridAPIKey),
			ProviderLimits: getLimitsEnv(envMailProviderLimits),
		},
		S3: S3Config{
			Bucket:          os.Getenv(envS3Bucket),
			Prefix:          getEnv(envS3Prefix, defaultS3Prefix),
			Region:          getEnv(envAWSRegion, defaultAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
		},
		App: AppConfig{
			Name:               getEnv(envAppName, defaultAppName),
			URL:                strings.TrimRight(os.Getenv(envAppURL), "/"),
			PresenceTimeout:    getDurationEnv(envPresenceTimeout, defaultPresenceTimeout),
			PresignedURLExpiry: getDurationEnv(envPresignedURLExpiry, defaultPresignedURLExpiry),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf(errDatabaseRequiredFmt)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf(errPoolSizeFmt, c.Database.MinConns, c.Database.MaxConns)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.JWT.ExpiryDuration <= 0 {
		return fmt.Errorf(errJWTExpiryFmt)
	}

	if c.Mail.Enabled() && c.Mail.From == "" {
		return fmt.Errorf(errMailFromRequiredFmt)
	}

	if c.App.PresenceTimeout <= 0 {
		return fmt.Errorf(errPresenceTimeoutFmt)
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	if len(charCounts) < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

// DSN prefers DATABASE_URL and otherwise assembles a keyword/value string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Enabled reports whether at least one listed provider has credentials.
func (c *MailConfig) Enabled() bool {
	for _, p := range c.Providers {
		if c.APIKey(p) != "" {
			return true
		}
	}
	return false
}

func (c *MailConfig) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "resend":
		return c.ResendAPIKey
	case "sendgrid":
		return c.SendGridAPIKey
	default:
		return ""
	}
}

func (c *S3Config) Enabled() bool {
	return c.Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(messages.requiredEnvNotSet(key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

// getSliceEnv splits a comma-separated value, dropping blanks.
func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getLimitsEnv parses "name=limit" pairs such as "resend=100,sendgrid=50".
// Malformed or non-positive entries are skipped.
func getLimitsEnv(key string) map[string]int {
	pairs := getSliceEnv(key, nil)
	if len(pairs) == 0 {
		return nil
	}

	limits := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || limit <= 0 {
			continue
		}
		limits[strings.ToLower(strings.TrimSpace(name))] = limit
	}
	return limits
}
