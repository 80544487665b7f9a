package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vivekprasad7/hc-youtube-backend/internal/flagx"
	"github.com/vivekprasad7/hc-youtube-backend/internal/timex"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-k string   storage backend: memory, postgres or mongo
//	-d string   PostgreSQL DSN
//	-m string   MongoDB URI
//	-s string   access token HMAC secret
//	-f string   refresh token HMAC secret
//	-t dur      access token validity ("15m", "1d")
//	-r dur      refresh token validity ("10d")
//	-l string   log backend: slog or zap
//	-i bool     Secure attribute on auth cookies
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// args is filtered through flagx.FilterArgs first so flags owned by other
// components (such as -c) do not break parsing. Invalid values panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{
		"-a", "-k", "-d", "-m", "-s", "-f", "-t", "-r", "-l", "-i", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.Storage, "k", config.Storage, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "f", config.RefreshTokenSecret, "refresh token secret")
	fs.Func("t", "access token validity", durationFlag(&config.AccessTokenValidityDuration))
	fs.Func("r", "refresh token validity", durationFlag(&config.RefreshTokenValidityDuration))
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend")
	fs.Func("i", "secure auth cookies", func(s string) error {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		config.CookieSecure = b
		return nil
	})

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

func durationFlag(dst *time.Duration) func(string) error {
	return func(s string) error {
		d, err := timex.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration %q: %w", s, err)
		}
		*dst = d
		return nil
	}
}
