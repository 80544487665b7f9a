package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vivekprasad7/hc-youtube-backend/internal/timex"
)

// parseEnv overlays environment variables onto config. Values from envFile
// (dotenv syntax, optional) are read first; variables found through lookup
// take precedence unless empty. The process environment is never modified.
//
// Recognised variables:
//
//	PORT, HTTP_ADDR, STORAGE_BACKEND, DATABASE_DSN, MONGODB_URI,
//	MONGODB_DATABASE, ACCESS_TOKEN_SECRET, ACCESS_TOKEN_EXPIRY,
//	REFRESH_TOKEN_SECRET, REFRESH_TOKEN_EXPIRY, PASSWORD_HASH_ALGO,
//	PASSWORD_HASH_COST, UPLOAD_DIR, MAX_UPLOAD_BYTES, COOKIE_SECURE,
//	CORS_ORIGIN, LOG_BACKEND, LOG_DEBUG, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET,
//	S3_REGION, S3_ENDPOINT, S3_PUBLIC_BASE_URL
//
// Malformed values panic, like the other config sources.
func parseEnv(config *Config, envFile string, lookup func(string) (string, bool)) {
	fileVars := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			panic(fmt.Errorf("read %s: %w", envFile, err))
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := get("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + strings.TrimPrefix(v, ":")
	}
	str("HTTP_ADDR", &config.HTTPAddr)
	str("STORAGE_BACKEND", &config.Storage)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("MONGODB_URI", &config.MongoURI)
	str("MONGODB_DATABASE", &config.MongoDatabase)
	str("ACCESS_TOKEN_SECRET", &config.AccessTokenSecret)
	str("REFRESH_TOKEN_SECRET", &config.RefreshTokenSecret)
	str("PASSWORD_HASH_ALGO", &config.PasswordHashAlgorithm)
	str("UPLOAD_DIR", &config.UploadDir)
	str("CORS_ORIGIN", &config.CORSOrigin)
	str("LOG_BACKEND", &config.LogBackend)
	str("S3_ACCESS_KEY", &config.S3RootUser)
	str("S3_SECRET_KEY", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PUBLIC_BASE_URL", &config.S3PublicBaseURL)

	if v, ok := get("ACCESS_TOKEN_EXPIRY"); ok && v != "" {
		config.AccessTokenValidityDuration = mustDuration("ACCESS_TOKEN_EXPIRY", v)
	}
	if v, ok := get("REFRESH_TOKEN_EXPIRY"); ok && v != "" {
		config.RefreshTokenValidityDuration = mustDuration("REFRESH_TOKEN_EXPIRY", v)
	}
	if v, ok := get("PASSWORD_HASH_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("PASSWORD_HASH_COST: %w", err))
		}
		config.PasswordHashCost = n
	}
	if v, ok := get("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("MAX_UPLOAD_BYTES: %w", err))
		}
		config.MaxUploadBytes = n
	}
	if v, ok := get("COOKIE_SECURE"); ok && v != "" {
		config.CookieSecure = mustBool("COOKIE_SECURE", v)
	}
	if v, ok := get("LOG_DEBUG"); ok && v != "" {
		config.LogDebug = mustBool("LOG_DEBUG", v)
	}
}

func mustDuration(key, v string) time.Duration {
	d, err := timex.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func mustBool(key, v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return b
}
