package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/rileyhilliard/mytop/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultPort is used when neither the caller nor ~/.ssh/config names one.
const DefaultPort = 22

// Client wraps an SSH connection with additional metadata.
type Client struct {
	*ssh.Client
	Host    string // The original host/alias used to connect
	Address string // The resolved address (host:port)
}

// Options describes one password-authenticated connection.
type Options struct {
	// Host is a hostname, IP address, or ~/.ssh/config alias.
	Host string
	// Port overrides the port; 0 means ~/.ssh/config or DefaultPort.
	Port int
	// User overrides the login name; empty means ~/.ssh/config or $USER.
	User     string
	Password string
	Timeout  time.Duration

	// StrictHostKeyChecking verifies the server key against KnownHostsPath.
	// When false, host key verification is skipped.
	StrictHostKeyChecking bool
	KnownHostsPath        string

	// SSHConfigPath defaults to ~/.ssh/config.
	SSHConfigPath string
}

// Dial establishes an SSH connection and authenticates with a password.
// Password and keyboard-interactive are the only methods offered; the
// latter answers every prompt with the same password, which is what
// PAM-backed servers ask for.
func Dial(opts Options) (*Client, error) {
	settings := resolveSSHSettings(opts.Host, opts.SSHConfigPath)
	if opts.Port > 0 {
		settings.port = strconv.Itoa(opts.Port)
	}
	if opts.User != "" {
		settings.user = opts.User
	}

	config, err := buildSSHConfig(settings, opts)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", opts.Host),
			"Check that ~/.ssh/known_hosts is readable")
	}

	address := settings.address()
	conn, err := net.DialTimeout("tcp", address, config.Timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", opts.Host, address),
			suggestionForDialError(err))
	}

	// Bound the handshake too; net.DialTimeout only covers the TCP connect.
	_ = conn.SetDeadline(time.Now().Add(config.Timeout))

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrSSH,
				hostKeyErr.Error(),
				hostKeyErr.Suggestion())
		}

		var unknownErr *UnknownHostKeyError
		if stderrors.As(err, &unknownErr) {
			return nil, errors.New(errors.ErrSSH,
				unknownErr.Error(),
				unknownErr.Suggestion())
		}

		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH login to '%s' as '%s' didn't go through", opts.Host, settings.user),
			suggestionForHandshakeError(err))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    opts.Host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the original host/alias used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname string
	port     string
	user     string
}

// address returns the host:port string for dialing.
func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings parses the host string and resolves settings from the
// SSH config file. Accepted forms: alias, host, user@host, host:port.
func resolveSSHSettings(host, configPath string) *sshSettings {
	settings := &sshSettings{
		port: strconv.Itoa(DefaultPort),
		user: currentUser(),
	}

	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		settings.user = host[:atIdx]
		host = host[atIdx+1:]
	}

	if colonIdx := strings.LastIndex(host, ":"); colonIdx != -1 && !strings.Contains(host[:colonIdx], ":") {
		potentialPort := host[colonIdx+1:]
		if _, err := strconv.Atoi(potentialPort); err == nil {
			settings.port = potentialPort
			host = host[:colonIdx]
		}
	}

	settings.hostname = host

	if configPath == "" {
		configPath = filepath.Join(homeDir(), ".ssh", "config")
	}

	// kevinburke/ssh_config doesn't support Match, so only the content
	// before the first Match block is decoded.
	content, err := preprocessSSHConfig(configPath)
	if err != nil {
		return settings
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return settings
	}

	if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
		settings.hostname = hostname
	}
	if port, _ := cfg.Get(host, "Port"); port != "" {
		settings.port = port
	}
	if user, _ := cfg.Get(host, "User"); user != "" {
		settings.user = user
	}

	return settings
}

// buildSSHConfig creates an SSH client config with password authentication.
func buildSSHConfig(settings *sshSettings, opts Options) (*ssh.ClientConfig, error) {
	password := opts.Password
	authMethods := []ssh.AuthMethod{
		ssh.Password(password),
		ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = password
			}
			return answers, nil
		}),
	}

	var hostKeyCallback ssh.HostKeyCallback
	if opts.StrictHostKeyChecking {
		knownHostsPath := opts.KnownHostsPath
		if knownHostsPath == "" {
			knownHostsPath = filepath.Join(homeDir(), ".ssh", "known_hosts")
		}
		var err error
		hostKeyCallback, err = createHostKeyCallback(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
	} else {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // User explicitly disabled host key checking
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ssh.ClientConfig{
		User:            settings.user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on that box? Try: ssh <host>"
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the host. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		return "Password rejected. Check the username and password for this host."
	}
	if strings.Contains(errStr, "host key") {
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}

// HostKeyMismatchError provides helpful context when known_hosts verification fails.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns actionable steps to fix the host key mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := stripPort(e.Hostname)

	var wantTypes []string
	for _, k := range e.Want {
		wantTypes = append(wantTypes, k.Key.Type())
	}
	wantStr := "unknown"
	if len(wantTypes) > 0 {
		wantStr = strings.Join(wantTypes, ", ")
	}

	return fmt.Sprintf(
		"The server's host key doesn't match what's in known_hosts.\n"+
			"  Known types: %s\n"+
			"  Server sent: %s\n\n"+
			"  If the server was reinstalled, remove the old entry:\n"+
			"    ssh-keygen -R %s",
		wantStr, e.ReceivedType, host)
}

// UnknownHostKeyError is returned when the server isn't in known_hosts at all.
type UnknownHostKeyError struct {
	Hostname   string
	KnownHosts string
}

func (e *UnknownHostKeyError) Error() string {
	return fmt.Sprintf("host key for %s is not in %s", e.Hostname, e.KnownHosts)
}

// Suggestion returns the command that records the server's key.
func (e *UnknownHostKeyError) Suggestion() string {
	host, port := e.Hostname, ""
	if h, p, err := net.SplitHostPort(e.Hostname); err == nil {
		host, port = h, p
	}
	portFlag := ""
	if port != "" && port != strconv.Itoa(DefaultPort) {
		portFlag = "-p " + port + " "
	}
	return fmt.Sprintf("Record the host key first:\n    ssh-keyscan %s%s >> %s\n  or run with --insecure (or set ssh.strict_host_key_checking: false) to skip verification.",
		portFlag, host, e.KnownHosts)
}

func stripPort(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}

// preprocessSSHConfig reads the SSH config and returns content up to the first Match directive.
func preprocessSSHConfig(configPath string) ([]byte, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), nil
}

// createHostKeyCallback wraps the knownhosts callback to provide better error messages.
func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		if err == nil {
			return nil
		}

		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) {
			if len(keyErr.Want) > 0 {
				return &HostKeyMismatchError{
					Hostname:     hostname,
					ReceivedType: key.Type(),
					KnownHosts:   knownHostsPath,
					Want:         keyErr.Want,
				}
			}
			return &UnknownHostKeyError{
				Hostname:   hostname,
				KnownHosts: knownHostsPath,
			}
		}
		return err
	}, nil
}
