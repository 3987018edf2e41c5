// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Default bootstrap credentials, seeded when no admin exists.
const (
	DefaultAdminUsername = "Admin"
	DefaultAdminPassword = "Admin"
)

// S3Options configures the optional object store for uploads.
type S3Options struct {
	Endpoint  string `json:"endpoint" env:"ENDPOINT"`
	AccessKey string `json:"access_key" env:"ACCESS_KEY"`
	SecretKey string `json:"secret_key" env:"SECRET_KEY"`
	Bucket    string `json:"bucket" env:"BUCKET"`
	UseSSL    bool   `json:"use_ssl" env:"USE_SSL"`
	PublicURL string `json:"public_url" env:"PUBLIC_URL"`
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port" env:"SERVER_ADDRESS"`

	// DatabaseDSN selects the durable backend when set. Empty means the
	// in-memory backend.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_URL"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`

	// Env is "development" or "production". Production enables secure cookies.
	Env string `json:"env" env:"ENV"`

	LogLevel  string `json:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" env:"LOG_FORMAT"`

	AdminUsername string `json:"admin_username" env:"ADMIN_USERNAME"`
	AdminPassword string `json:"admin_password" env:"ADMIN_PASSWORD"`

	// TLSCertFile and TLSKeyFile switch the server to HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string `json:"tls_key_file" env:"TLS_KEY_FILE"`

	SessionLifetime time.Duration `json:"-" env:"SESSION_LIFETIME"`

	// TrustedOrigins are host[:port] values allowed to send cross-origin
	// mutations, e.g. a separately hosted admin front end.
	TrustedOrigins []string `json:"trusted_origins" env:"TRUSTED_ORIGINS" envSeparator:","`

	// LoginRate and LoginBurst bound login attempts per client IP.
	LoginRate  float64 `json:"login_rate" env:"LOGIN_RATE"`
	LoginBurst int     `json:"login_burst" env:"LOGIN_BURST"`

	S3 S3Options `json:"s3" envPrefix:"S3_"`
}

// IsDevelopment reports whether the server runs in development mode.
func (o *Options) IsDevelopment() bool {
	return o.Env != "production"
}

// ObjectStoreEnabled reports whether uploads go to object storage.
func (o *Options) ObjectStoreEnabled() bool {
	return o.S3.Endpoint != "" && o.S3.Bucket != ""
}

// TLSEnabled reports whether both certificate files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}

// UsesDefaultAdminPassword reports whether the bootstrap password was left
// at its default.
func (o *Options) UsesDefaultAdminPassword() bool {
	return o.AdminPassword == DefaultAdminPassword
}

// ParseArgs builds Options from args, then the JSON config file, then
// environment variables; each step overrides the previous one.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.StringVar(&options.Env, "env", "development", "environment: development or production")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	options.LogFormat = "json"
	options.AdminUsername = DefaultAdminUsername
	options.AdminPassword = DefaultAdminPassword
	options.SessionLifetime = 24 * time.Hour
	options.LoginRate = 0.5
	options.LoginBurst = 5
	options.S3.Bucket = "stoneworks"

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("error while parsing environment: %w", err)
	}

	return options, nil
}

// Parse loads .env if present, then parses the command line, config file
// and environment. It exits the process on invalid configuration.
func Parse() *Options {
	_ = godotenv.Load()

	options, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return options
}
