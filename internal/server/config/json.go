package config

import (
	"encoding/json"
	"os"

	"github.com/vivekprasad7/hc-youtube-backend/internal/flagx"
	"github.com/vivekprasad7/hc-youtube-backend/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Duration fields use timex.Duration, so both "15m" / "10d" strings and
// integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	Storage                      string         `json:"storage"`
	DatabaseDSN                  string         `json:"database_dsn"`
	MongoURI                     string         `json:"mongodb_uri"`
	MongoDatabase                string         `json:"mongodb_database"`
	AccessTokenSecret            string         `json:"access_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenSecret           string         `json:"refresh_token_secret"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	PasswordHashAlgorithm        string         `json:"password_hash_algorithm"`
	PasswordHashCost             int            `json:"password_hash_cost"`
	UploadDir                    string         `json:"upload_dir"`
	MaxUploadBytes               int64          `json:"max_upload_bytes"`
	CookieSecure                 bool           `json:"cookie_secure"`
	CORSOrigin                   string         `json:"cors_origin"`
	LogBackend                   string         `json:"log_backend"`
	LogDebug                     bool           `json:"log_debug"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3PublicBaseURL              string         `json:"s3_public_base_url"`
	ReadTimeout                  timex.Duration `json:"read_timeout"`
	WriteTimeout                 timex.Duration `json:"write_timeout"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout"`
}

func (j *JsonConfig) from(c *Config) {
	*j = JsonConfig{
		HTTPAddr:                     c.HTTPAddr,
		Storage:                      c.Storage,
		DatabaseDSN:                  c.DatabaseDSN,
		MongoURI:                     c.MongoURI,
		MongoDatabase:                c.MongoDatabase,
		AccessTokenSecret:            c.AccessTokenSecret,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenSecret:           c.RefreshTokenSecret,
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		PasswordHashAlgorithm:        c.PasswordHashAlgorithm,
		PasswordHashCost:             c.PasswordHashCost,
		UploadDir:                    c.UploadDir,
		MaxUploadBytes:               c.MaxUploadBytes,
		CookieSecure:                 c.CookieSecure,
		CORSOrigin:                   c.CORSOrigin,
		LogBackend:                   c.LogBackend,
		LogDebug:                     c.LogDebug,
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
		S3PublicBaseURL:              c.S3PublicBaseURL,
		ReadTimeout:                  timex.Duration{Duration: c.ReadTimeout},
		WriteTimeout:                 timex.Duration{Duration: c.WriteTimeout},
		ShutdownTimeout:              timex.Duration{Duration: c.ShutdownTimeout},
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.HTTPAddr = j.HTTPAddr
	c.Storage = j.Storage
	c.DatabaseDSN = j.DatabaseDSN
	c.MongoURI = j.MongoURI
	c.MongoDatabase = j.MongoDatabase
	c.AccessTokenSecret = j.AccessTokenSecret
	c.AccessTokenValidityDuration = j.AccessTokenValidityDuration.Duration
	c.RefreshTokenSecret = j.RefreshTokenSecret
	c.RefreshTokenValidityDuration = j.RefreshTokenValidityDuration.Duration
	c.PasswordHashAlgorithm = j.PasswordHashAlgorithm
	c.PasswordHashCost = j.PasswordHashCost
	c.UploadDir = j.UploadDir
	c.MaxUploadBytes = j.MaxUploadBytes
	c.CookieSecure = j.CookieSecure
	c.CORSOrigin = j.CORSOrigin
	c.LogBackend = j.LogBackend
	c.LogDebug = j.LogDebug
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.S3PublicBaseURL = j.S3PublicBaseURL
	c.ReadTimeout = j.ReadTimeout.Duration
	c.WriteTimeout = j.WriteTimeout.Duration
	c.ShutdownTimeout = j.ShutdownTimeout.Duration
}

// parseJson overlays the JSON file named by -c / -config onto config.
// Keys absent from the file keep their current values. A missing flag means
// no file is read; an unreadable file or invalid JSON panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFromArgs(args)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	c.from(config)

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}
