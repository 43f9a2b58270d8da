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
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "60",
				"-k", "10", "-w", "3", "-o", "http://a.example, http://b.example", "-l", "debug",
			},
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:9090",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: time.Hour,
				BcryptCost:            10,
				HashWorkers:           3,
				AllowedOrigins:        []string{"http://a.example", "http://b.example"},
				LogLevel:              "debug",
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"-c", "cfg.json", "-s", "secret", "-x"},
			expected: &Config{
				EndpointAddrHTTP:      ":3001",
				SecretKey:             "secret",
				TokenValidityDuration: 24 * time.Hour,
				BcryptCost:            12,
				HashWorkers:           2,
				AllowedOrigins:        []string{"http://localhost:3000"},
				LogLevel:              "info",
			},
		},
		{
			name:        "non-numeric ttl",
			args:        []string{"-t", "forever"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				EndpointAddrHTTP:      ":3001",
				TokenValidityDuration: 24 * time.Hour,
				BcryptCost:            12,
				HashWorkers:           2,
				AllowedOrigins:        []string{"http://localhost:3000"},
				LogLevel:              "info",
			}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b ,"))
}
