package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:9090", "-k", "mongo", "-d", "db", "-m", "mongodb://m", "-s", "secret", "-f", "refresh",
			"-t", "15m", "-r", "7d", "-l", "zap", "-i", "false",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		}, expectPanic: false,
			expected: &Config{
				HTTPAddr:                     "127.0.0.1:9090",
				Storage:                      "mongo",
				DatabaseDSN:                  "db",
				MongoURI:                     "mongodb://m",
				AccessTokenSecret:            "secret",
				RefreshTokenSecret:           "refresh",
				AccessTokenValidityDuration:  15 * time.Minute,
				RefreshTokenValidityDuration: 7 * 24 * time.Hour,
				LogBackend:                   "zap",
				CookieSecure:                 false,
				S3RootUser:                   "user",
				S3RootPassword:               "password",
				S3Bucket:                     "bucket",
				S3Region:                     "us-west-1",
				S3BaseEndpoint:               "http://endpoint",
			}},
		{name: "foreign flags are ignored", args: []string{"-c", "server.json", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1"}},
		{name: "bad duration", args: []string{"-t", "forever"}, expectPanic: true},
		{name: "bad bool", args: []string{"-i", "perhaps"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
