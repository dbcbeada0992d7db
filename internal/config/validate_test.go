package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name: "valid host",
			mutate: func(c *Config) {
				c.Hosts = []HostConfig{{Name: "web", Address: "10.0.0.5", Port: 22}}
			},
		},
		{
			name: "unsupported type passes",
			mutate: func(c *Config) {
				c.Hosts = []HostConfig{{Address: "10.0.0.5", Type: "telnet"}}
			},
		},
		{
			name: "missing address",
			mutate: func(c *Config) {
				c.Hosts = []HostConfig{{Name: "web"}}
			},
			wantErr: "host 'web' needs an 'address'",
		},
		{
			name: "unnamed host without address",
			mutate: func(c *Config) {
				c.Hosts = []HostConfig{{Address: "a"}, {}}
			},
			wantErr: "host '#2'",
		},
		{
			name: "whitespace in address",
			mutate: func(c *Config) {
				c.Hosts = []HostConfig{{Address: "10.0.0.5 10.0.0.6"}}
			},
			wantErr: "whitespace",
		},
		{
			name: "port out of range",
			mutate: func(c *Config) {
				c.Hosts = []HostConfig{{Address: "a", Port: 70000}}
			},
			wantErr: "port 70000",
		},
		{
			name:    "zero local interval",
			mutate:  func(c *Config) { c.Refresh.Local = 0 },
			wantErr: "refresh.local",
		},
		{
			name:    "negative remote interval",
			mutate:  func(c *Config) { c.Refresh.Remote = -time.Second },
			wantErr: "refresh.remote",
		},
		{
			name:    "zero ssh timeout",
			mutate:  func(c *Config) { c.SSH.Timeout = 0 },
			wantErr: "ssh.timeout",
		},
		{
			name:    "negative pause",
			mutate:  func(c *Config) { c.Startup.PartialFailurePause = -1 },
			wantErr: "partial_failure_pause",
		},
		{
			name:   "zero pause allowed",
			mutate: func(c *Config) { c.Startup.PartialFailurePause = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
