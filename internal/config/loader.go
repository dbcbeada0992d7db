package config

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/spf13/viper"
)

const (
	// DefaultFileName is tried in the working directory when no hosts file
	// or command-line host is given.
	DefaultFileName = ".mytop"
	// EnvPrefix prefixes environment overrides, e.g. MYTOP_REFRESH_LOCAL=1s.
	EnvPrefix = "MYTOP"
	// DotEnvFile is loaded into the environment before overrides are read.
	DotEnvFile = ".env"
	// DefaultPort is used for hosts that don't name one.
	DefaultPort = 22
	// RequiredMode is the only permission set accepted for a hosts file,
	// since it holds passwords.
	RequiredMode os.FileMode = 0600
)

// ErrInsecurePermissions is the cause of the error CheckPermissions returns
// for a file that isn't 0600.
var ErrInsecurePermissions = stderrors.New("hosts file is readable or writable by others")

// LoadDotEnv loads DotEnvFile if it exists. Variables already set in the
// environment win.
func LoadDotEnv() {
	_ = godotenv.Load(DotEnvFile)
}

// CheckPermissions returns an ErrConfig error unless path is exactly 0600.
func CheckPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Hosts file not found: "+path,
				"Check the path is correct")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot access hosts file: "+path,
			"Check file permissions")
	}

	if mode := info.Mode().Perm(); mode != RequiredMode {
		return errors.WrapWithCode(ErrInsecurePermissions, errors.ErrConfig,
			fmt.Sprintf("Hosts file %s must have permissions 0600 (has %04o)", path, mode),
			"It stores passwords. Run: chmod 600 "+path)
	}
	return nil
}

// Load reads the hosts file at path after checking its permissions. Both
// the YAML layout and the legacy one-host-per-line layout are accepted.
func Load(path string) (*Config, error) {
	if err := CheckPermissions(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read hosts file",
			"Check the file exists and is readable")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid hosts file format",
			"Check the syntax in "+path)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadDefaults returns the defaults with environment overrides applied.
func LoadDefaults() (*Config, error) {
	return Parse(nil)
}

// Resolve picks the hosts file the way the command line asks for it:
//
//   - an explicit path must exist and be 0600, otherwise it is fatal;
//   - without one, DefaultFileName is tried unless a host was given on the
//     command line. A missing implicit file is fine, and one with bad
//     permissions is skipped with a warning.
func Resolve(explicit string, cliHost bool, log logger.Logger) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if cliHost {
		return LoadDefaults()
	}

	if _, err := os.Stat(DefaultFileName); os.IsNotExist(err) {
		return LoadDefaults()
	}

	cfg, err := Load(DefaultFileName)
	if stderrors.Is(err, ErrInsecurePermissions) {
		log.Warn("ignoring %s: %s", DefaultFileName, errors.ShortMessage(err))
		return LoadDefaults()
	}
	return cfg, err
}

// Parse decodes hosts file contents. Nil data yields the defaults.
// Environment overrides are applied either way.
func Parse(data []byte) (*Config, error) {
	v := newViper()

	var legacy []HostConfig
	if IsLegacyFormat(data) {
		hosts, err := ParseLegacy(data)
		if err != nil {
			return nil, err
		}
		legacy = hosts
	} else if len(bytes.TrimSpace(data)) > 0 {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if legacy != nil {
		cfg.Hosts = legacy
	}
	if cfg.Hosts == nil {
		cfg.Hosts = []HostConfig{}
	}

	return cfg, nil
}

// newViper configures defaults and MYTOP_* environment bindings. Every key
// needs a default for AutomaticEnv to reach it through Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("refresh.local", def.Refresh.Local)
	v.SetDefault("refresh.remote", def.Refresh.Remote)
	v.SetDefault("ssh.timeout", def.SSH.Timeout)
	v.SetDefault("ssh.strict_host_key_checking", def.SSH.StrictHostKeyChecking)
	v.SetDefault("ssh.known_hosts", def.SSH.KnownHosts)
	v.SetDefault("startup.partial_failure_pause", def.Startup.PartialFailurePause)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// IsLegacyFormat reports whether every non-comment line of data looks like
// name:address:port:user:password:type.
func IsLegacyFormat(data []byte) bool {
	found := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := parseLegacyLine(line); !ok {
			return false
		}
		found = true
	}
	return found
}

// ParseLegacy parses the one-host-per-line layout. Blank lines and lines
// starting with '#' are skipped; malformed lines are dropped.
func ParseLegacy(data []byte) ([]HostConfig, error) {
	hosts := []HostConfig{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if h, ok := parseLegacyLine(line); ok {
			hosts = append(hosts, h)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hosts: %w", err)
	}
	return hosts, nil
}

// parseLegacyLine splits name:address:port:user:password:type. The password
// may itself contain colons; the type is the last field.
func parseLegacyLine(line string) (HostConfig, bool) {
	fields := strings.Split(line, ":")
	if len(fields) < 6 {
		return HostConfig{}, false
	}

	port, err := strconv.Atoi(fields[2])
	if err != nil {
		return HostConfig{}, false
	}

	last := len(fields) - 1
	h := HostConfig{
		Name:     fields[0],
		Address:  fields[1],
		Port:     port,
		Username: fields[3],
		Password: strings.Join(fields[4:last], ":"),
		Type:     strings.TrimSpace(fields[last]),
	}
	if h.Name == "" || h.Address == "" || h.Username == "" || h.Type == "" || strings.ContainsAny(h.Type, " \t") {
		return HostConfig{}, false
	}
	return h, true
}

// FormatLegacyLine renders h in the one-host-per-line layout.
func FormatLegacyLine(h HostConfig) string {
	port := h.Port
	if port == 0 {
		port = DefaultPort
	}
	kind := h.Type
	if kind == "" {
		kind = "ssh"
	}
	return fmt.Sprintf("%s:%s:%d:%s:%s:%s", h.Label(), h.Address, port, h.Username, h.Password, kind)
}
