package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var serverFlags = []string{"-a", "-k", "-s", "-t", "-i"}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "keeps server flags and drops the config file flag",
			args:    []string{"-c", "server.json", "-a", ":8000", "-k", "memory"},
			allowed: serverFlags,
			want:    []string{"-a", ":8000", "-k", "memory"},
		},
		{
			name:    "equals form",
			args:    []string{"-t=15m", "-x=1", "-i=false"},
			allowed: serverFlags,
			want:    []string{"-t=15m", "-i=false"},
		},
		{
			name:    "secret that starts with a dash needs the equals form",
			args:    []string{"-s", "-weird", "-s=-weird"},
			allowed: serverFlags,
			want:    []string{"-s", "-s=-weird"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-k"},
			allowed: serverFlags,
			want:    []string{"-k"},
		},
		{
			name:    "positional arguments are dropped",
			args:    []string{"serve", "-a", ":9000", "extra"},
			allowed: serverFlags,
			want:    []string{"-a", ":9000"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-k", "postgres", "-k", "mongo"},
			allowed: serverFlags,
			want:    []string{"-k", "postgres", "-k", "mongo"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", ":8000"},
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-a", ":8000", "-c", "/etc/videotube/server.json"}, "/etc/videotube/server.json"},
		{"long equals", []string{"-config=dev.json", "-k", "memory"}, "dev.json"},
		{"absent", []string{"-a", ":8000", "-s", "secret"}, ""},
		{"last one wins", []string{"-c", "a.json", "-config", "b.json"}, "b.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFileFromArgs(tt.args))
		})
	}
}
