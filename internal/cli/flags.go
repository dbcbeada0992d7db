package cli

import (
	"strings"
	"time"

	"github.com/rileyhilliard/mytop/internal/config"
	"github.com/rileyhilliard/mytop/internal/errors"
)

// Options is the root command's flag set, decoupled from cobra for tests.
type Options struct {
	ConfigPath string
	Server     string
	Login      string
	Username   string
	Password   string
	Type       string
	Port       int

	All      bool
	DryRun   bool
	Insecure bool

	Interval       time.Duration
	RemoteInterval time.Duration
}

func optionsFromFlags() Options {
	return Options{
		ConfigPath:     remoteConfigFlag,
		Server:         remoteServerFlag,
		Login:          loginFlag,
		Username:       usernameFlag,
		Password:       passwordFlag,
		Type:           connTypeFlag,
		Port:           portFlag,
		All:            allFlag,
		DryRun:         dryRunFlag,
		Insecure:       insecureFlag,
		Interval:       intervalFlag,
		RemoteInterval: remoteIntervalFlag,
	}
}

// parseLogin splits USER@HOST at the first '@'.
func parseLogin(s string) (user, host string, err error) {
	user, host, ok := strings.Cut(s, "@")
	if !ok || host == "" {
		return "", "", errors.New(errors.ErrConfig,
			"Invalid --login value '"+s+"'",
			"Use the form USER@HOST, e.g. -l admin@10.0.0.5")
	}
	return user, host, nil
}

// cliHost builds the host given with -s or -l. The second result is false
// when neither flag was used. -l wins over -s for the address, and -u wins
// over the user part of -l.
func (o Options) cliHost() (config.HostConfig, bool, error) {
	if o.Server == "" && o.Login == "" {
		return config.HostConfig{}, false, nil
	}

	h := config.HostConfig{
		Address:  o.Server,
		Port:     o.Port,
		Username: o.Username,
		Password: o.Password,
		Type:     o.Type,
	}

	if o.Login != "" {
		user, host, err := parseLogin(o.Login)
		if err != nil {
			return config.HostConfig{}, false, err
		}
		h.Address = host
		if h.Username == "" {
			h.Username = user
		}
	}

	h.Name = h.Address
	return h, true, nil
}

// applyOverrides folds command-line tunables into cfg.
func (o Options) applyOverrides(cfg *config.Config) {
	if o.Interval > 0 {
		cfg.Refresh.Local = o.Interval
	}
	if o.RemoteInterval > 0 {
		cfg.Refresh.Remote = o.RemoteInterval
	}
	if o.Insecure {
		cfg.SSH.StrictHostKeyChecking = false
	}
}

// collectionMode decides which sources are sampled: remote whenever hosts
// exist, local when there are none or when --all asks for both.
func collectionMode(hostCount int, all bool) (local, remote bool) {
	if hostCount == 0 {
		return true, false
	}
	return all, true
}
