package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Profile: DefaultLogProfile},
		Metrics: MetricsConfig{Enabled: true, Port: DefaultMetricsPort},
		Health:  HealthConfig{Enabled: true},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:        "port zero",
			mutate:      func(c *Config) { c.Server.Port = 0 },
			wantErr:     true,
			errContains: "out of range",
		},
		{
			name:        "port too large",
			mutate:      func(c *Config) { c.Server.Port = 70000 },
			wantErr:     true,
			errContains: "out of range",
		},
		{
			name:        "negative read timeout",
			mutate:      func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr:     true,
			errContains: "read timeout",
		},
		{
			name:        "zero shutdown timeout",
			mutate:      func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr:     true,
			errContains: "shutdown timeout",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			wantErr:     true,
			errContains: "log level",
		},
		{
			name:        "unknown log profile",
			mutate:      func(c *Config) { c.Logging.Profile = "pretty" },
			wantErr:     true,
			errContains: "log profile",
		},
		{
			name:        "metrics port out of range",
			mutate:      func(c *Config) { c.Metrics.Port = -1 },
			wantErr:     true,
			errContains: "metrics port",
		},
		{
			name:        "metrics port conflicts with server",
			mutate:      func(c *Config) { c.Metrics.Port = c.Server.Port },
			wantErr:     true,
			errContains: "conflicts",
		},
		{
			name: "metrics disabled skips port checks",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Port = 0
			},
		},
		{
			name:   "console profile accepted",
			mutate: func(c *Config) { c.Logging.Profile = "console" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", s.Addr())

	s = ServerConfig{Host: "::1", Port: 9000}
	assert.Equal(t, "[::1]:9000", s.Addr())
}

func TestMetricsConfig_Addr(t *testing.T) {
	m := MetricsConfig{Enabled: true, Port: 9090}
	assert.Equal(t, "localhost:9090", m.Addr("localhost"))
}
