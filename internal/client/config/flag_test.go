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
		name      string
		args      []string
		expected  *Config
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://api/api", "-r", "http://rc/v3.1", "-s", "/tmp/x.db", "-t", "7", "-l", "debug", "-m", ":9100"},
			expected: &Config{APIBaseURL: "http://api/api", CountriesBaseURL: "http://rc/v3.1", StateFile: "/tmp/x.db",
				RequestTimeout: 7 * time.Second, LogLevel: "debug", MetricsAddr: ":9100"},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "conf.json", "-x", "1", "-s=state.db"},
			expected: &Config{StateFile: "state.db", RequestTimeout: 10 * time.Second},
		},
		{
			name:     "unset timeout keeps sub-second value",
			args:     []string{"-l", "warn"},
			expected: &Config{LogLevel: "warn", RequestTimeout: 10 * time.Second},
		},
		{name: "bad timeout", args: []string{"-t", "abc"}, expectErr: true},
		{name: "zero timeout", args: []string{"-t", "0"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RequestTimeout: 10 * time.Second}
			err := parseFlags(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondTimeoutWhenAbsent(t *testing.T) {
	cfg := &Config{RequestTimeout: 500 * time.Millisecond}
	require.NoError(t, parseFlags(cfg, []string{"-s", "x.db"}))
	assert.Equal(t, 500*time.Millisecond, cfg.RequestTimeout)
}
