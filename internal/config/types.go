package config

import (
	"time"

	"github.com/rileyhilliard/mytop/internal/session"
)

// Config represents the complete hosts file plus the tunables that can be
// overridden from the environment.
type Config struct {
	Hosts   []HostConfig  `yaml:"hosts" mapstructure:"hosts"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	SSH     SSHConfig     `yaml:"ssh" mapstructure:"ssh"`
	Startup StartupConfig `yaml:"startup" mapstructure:"startup"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-" mapstructure:"-"`
}

// HostConfig defines a remote machine and its login.
type HostConfig struct {
	// Name is shown in the header; defaults to Address.
	Name     string `yaml:"name" mapstructure:"name"`
	Address  string `yaml:"address" mapstructure:"address"`
	Port     int    `yaml:"port,omitempty" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// Type is the transport kind. Only "ssh" connects; anything else is
	// kept and fails at connect time.
	Type string `yaml:"type,omitempty" mapstructure:"type"`
}

// RefreshConfig sets how often the active source is sampled.
type RefreshConfig struct {
	// Local applies whenever local collection is on.
	Local time.Duration `yaml:"local" mapstructure:"local"`
	// Remote applies when only remote hosts are monitored.
	Remote time.Duration `yaml:"remote" mapstructure:"remote"`
}

// SSHConfig controls how remote sessions are dialed.
type SSHConfig struct {
	Timeout               time.Duration `yaml:"timeout" mapstructure:"timeout"`
	StrictHostKeyChecking bool          `yaml:"strict_host_key_checking" mapstructure:"strict_host_key_checking"`
	// KnownHosts defaults to ~/.ssh/known_hosts.
	KnownHosts string `yaml:"known_hosts" mapstructure:"known_hosts"`
}

// StartupConfig controls behavior before the dashboard starts.
type StartupConfig struct {
	// PartialFailurePause is how long connection failures stay on screen
	// when at least one source is still available.
	PartialFailurePause time.Duration `yaml:"partial_failure_pause" mapstructure:"partial_failure_pause"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Hosts: []HostConfig{},
		Refresh: RefreshConfig{
			Local:  2 * time.Second,
			Remote: 5 * time.Second,
		},
		SSH: SSHConfig{
			Timeout:               session.DefaultTimeout,
			StrictHostKeyChecking: true,
		},
		Startup: StartupConfig{
			PartialFailurePause: 3 * time.Second,
		},
	}
}

// Label returns the display name, falling back to the address.
func (h HostConfig) Label() string {
	if h.Name != "" {
		return h.Name
	}
	return h.Address
}

// SessionHost converts the entry to the registry's host type, filling in
// the default port and transport kind.
func (h HostConfig) SessionHost() session.Host {
	port := h.Port
	if port == 0 {
		port = DefaultPort
	}
	kind := h.Type
	if kind == "" {
		kind = session.KindSSH
	}
	return session.Host{
		Name:     h.Label(),
		Address:  h.Address,
		Port:     port,
		Username: h.Username,
		Password: h.Password,
		Kind:     kind,
	}
}

// SessionHosts converts every configured host.
func (c *Config) SessionHosts() []session.Host {
	hosts := make([]session.Host, len(c.Hosts))
	for i, h := range c.Hosts {
		hosts[i] = h.SessionHost()
	}
	return hosts
}
