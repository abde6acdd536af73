package config

import (
	"fmt"
	"time"
)

// envPrefix namespaces every environment variable read by the server.
const envPrefix = "MEMOIR_"

// parseEnv overlays MEMOIR_* environment variables on config. Durations use
// time.ParseDuration syntax.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	stringVars := map[string]*string{
		"HTTP_ADDR":          &config.HTTPAddr,
		"HEALTH_ADDR_GRPC":   &config.HealthAddrGRPC,
		"DATABASE_DSN":       &config.DatabaseDSN,
		"SECRET_KEY":         &config.SecretKey,
		"S3_ROOT_USER":       &config.S3RootUser,
		"S3_ROOT_PASSWORD":   &config.S3RootPassword,
		"S3_BUCKET":          &config.S3Bucket,
		"S3_REGION":          &config.S3Region,
		"S3_BASE_ENDPOINT":   &config.S3BaseEndpoint,
		"S3_PUBLIC_BASE_URL": &config.S3PublicBaseURL,
	}
	for name, dst := range stringVars {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY_DURATION":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_VALIDITY_DURATION": &config.RefreshTokenValidityDuration,
		"IMAGE_UPLOAD_VALIDITY_DURATION":  &config.ImageUploadValidityDuration,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	return nil
}
