package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/mytop/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
// Transport kinds are not checked here; an unsupported kind only disables
// its host when it is connected.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try running the command again.")
	}

	where := "your hosts file"
	if cfg.Path != "" {
		where = cfg.Path
	}

	for i, host := range cfg.Hosts {
		if err := validateHost(i, host); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the host entries in "+where+".")
		}
	}

	if err := validateRefresh(cfg.Refresh); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Use a positive duration like '2s', in the 'refresh' section or --interval/--remote-interval.")
	}

	if cfg.SSH.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("ssh.timeout must be positive, got %s", cfg.SSH.Timeout),
			"Use a duration like '10s'.")
	}

	if cfg.Startup.PartialFailurePause < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("startup.partial_failure_pause can't be negative, got %s", cfg.Startup.PartialFailurePause),
			"Use '0s' to skip the pause.")
	}

	return nil
}

// validateHost checks a single host entry.
func validateHost(i int, host HostConfig) error {
	label := host.Label()
	if label == "" {
		label = fmt.Sprintf("#%d", i+1)
	}

	if strings.TrimSpace(host.Address) == "" {
		return fmt.Errorf("host '%s' needs an 'address'", label)
	}
	if strings.ContainsAny(host.Address, " \t") {
		return fmt.Errorf("host '%s' has whitespace in its address '%s'", label, host.Address)
	}
	if host.Port < 0 || host.Port > 65535 {
		return fmt.Errorf("host '%s' has port %d, which isn't between 1 and 65535", label, host.Port)
	}
	return nil
}

// validateRefresh checks the refresh intervals.
func validateRefresh(r RefreshConfig) error {
	if r.Local <= 0 {
		return fmt.Errorf("refresh.local must be positive, got %s", r.Local)
	}
	if r.Remote <= 0 {
		return fmt.Errorf("refresh.remote must be positive, got %s", r.Remote)
	}
	return nil
}
