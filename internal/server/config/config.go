// Package config handles configuration for the Memoir server, including
// defaults, a JSON or YAML file overlay, environment variables and
// command-line flags.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the Memoir server.
//
// Fields:
//   - HTTPAddr: bind address for the JSON API.
//   - HealthAddrGRPC: bind address for the gRPC health service; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible image store.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - S3PublicBaseURL: prefix of the public URLs stored as memory image URLs.
//   - ImageUploadValidityDuration: lifetime of presigned upload URLs.
type Config struct {
	HTTPAddr                     string
	HealthAddrGRPC               string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	S3PublicBaseURL              string
	ImageUploadValidityDuration  time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.HealthAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "memories"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3PublicBaseURL = ""
	c.ImageUploadValidityDuration = 15 * time.Minute
}

// UsesMemoryStore reports whether no database is configured.
func (c *Config) UsesMemoryStore() bool {
	return c.DatabaseDSN == ""
}

// ImageBaseURL returns the prefix for public image URLs, falling back to the
// S3 endpoint plus bucket.
func (c *Config) ImageBaseURL() string {
	if c.S3PublicBaseURL != "" {
		return trimSlash(c.S3PublicBaseURL)
	}
	return trimSlash(c.S3BaseEndpoint) + "/" + c.S3Bucket
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment (a .env file is loaded
// first when present) and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}

	// a missing .env is normal outside development
	_ = godotenv.Load()

	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	return cfg, nil
}
