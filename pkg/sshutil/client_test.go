package sshutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoSSH skips the test unless MYTOP_TEST_SSH_HOST names a reachable
// host and MYTOP_TEST_SSH_PASSWORD holds its password.
func skipIfNoSSH(t *testing.T) Options {
	t.Helper()
	host := os.Getenv("MYTOP_TEST_SSH_HOST")
	if host == "" {
		t.Skip("Skipping SSH test: MYTOP_TEST_SSH_HOST not set")
	}
	return Options{
		Host:     host,
		User:     os.Getenv("MYTOP_TEST_SSH_USER"),
		Password: os.Getenv("MYTOP_TEST_SSH_PASSWORD"),
		Timeout:  10 * time.Second,
	}
}

func TestDial_Success(t *testing.T) {
	opts := skipIfNoSSH(t)

	client, err := Dial(opts)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, opts.Host, client.Host)
	assert.NotEmpty(t, client.Address)
}

func TestDial_Unreachable(t *testing.T) {
	// TEST-NET-1 is never routable, so this fails without a network.
	_, err := Dial(Options{
		Host:          "192.0.2.1",
		Password:      "x",
		Timeout:       200 * time.Millisecond,
		SSHConfigPath: filepath.Join(t.TempDir(), "none"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "192.0.2.1")
}

func TestExec_ListingAndExitCode(t *testing.T) {
	opts := skipIfNoSSH(t)

	client, err := Dial(opts)
	require.NoError(t, err)
	defer client.Close()

	stdout, _, exitCode, err := client.Exec("ps -A -o pid,comm")
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, string(stdout), "PID")

	_, _, exitCode, err = client.Exec("exit 42")
	require.NoError(t, err)
	assert.Equal(t, 42, exitCode)
}

func TestResolveSSHSettings(t *testing.T) {
	noConfig := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name     string
		host     string
		hostname string
		port     string
		user     string
	}{
		{name: "simple host", host: "example.com", hostname: "example.com", port: "22"},
		{name: "user at host", host: "testuser@example.com", hostname: "example.com", port: "22", user: "testuser"},
		{name: "host with port", host: "example.com:2222", hostname: "example.com", port: "2222"},
		{name: "full form", host: "admin@server.example.com:2222", hostname: "server.example.com", port: "2222", user: "admin"},
		{name: "ipv6 literal left alone", host: "::1", hostname: "::1", port: "22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolveSSHSettings(tt.host, noConfig)
			assert.Equal(t, tt.hostname, s.hostname)
			assert.Equal(t, tt.port, s.port)
			if tt.user != "" {
				assert.Equal(t, tt.user, s.user)
			}
		})
	}
}

func TestResolveSSHSettings_FromConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	content := `Host web1
    HostName 10.0.0.5
    Port 2200
    User deploy

Match host *.internal
    User ignored
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	s := resolveSSHSettings("web1", configPath)
	assert.Equal(t, "10.0.0.5", s.hostname)
	assert.Equal(t, "2200", s.port)
	assert.Equal(t, "deploy", s.user)
	assert.Equal(t, "10.0.0.5:2200", s.address())

	other := resolveSSHSettings("db1", configPath)
	assert.Equal(t, "db1", other.hostname)
	assert.Equal(t, "22", other.port)
}

func TestPreprocessSSHConfig_StopsAtMatch(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(configPath, []byte("Host a\n  Port 1\n  match all\nHost b\n"), 0600))

	content, err := preprocessSSHConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "Host a\n  Port 1", string(content))

	_, err = preprocessSSHConfig(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestBuildSSHConfig(t *testing.T) {
	settings := &sshSettings{hostname: "web1", port: "22", user: "ops"}

	cfg, err := buildSSHConfig(settings, Options{Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.User)
	assert.Len(t, cfg.Auth, 2)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	knownHosts := filepath.Join(t.TempDir(), "ssh", "known_hosts")
	cfg, err = buildSSHConfig(settings, Options{
		Password:              "secret",
		Timeout:               time.Second,
		StrictHostKeyChecking: true,
		KnownHostsPath:        knownHosts,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.FileExists(t, knownHosts, "missing known_hosts is created empty")
}

func TestSuggestionForDialError(t *testing.T) {
	tests := []struct {
		errMsg   string
		contains string
	}{
		{"connection refused", "Is SSH running"},
		{"no route to host", "Can't route"},
		{"i/o timeout", "timed out"},
		{"random error", "Make sure the host is reachable"},
	}

	for _, tt := range tests {
		t.Run(tt.errMsg, func(t *testing.T) {
			assert.Contains(t, suggestionForDialError(errors.New(tt.errMsg)), tt.contains)
		})
	}
}

func TestSuggestionForHandshakeError(t *testing.T) {
	tests := []struct {
		errMsg   string
		contains string
	}{
		{"ssh: unable to authenticate, attempted methods [none password]", "Password rejected"},
		{"ssh: handshake failed: host key mismatch", "Host key issue"},
		{"random error", "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.errMsg, func(t *testing.T) {
			assert.Contains(t, suggestionForHandshakeError(errors.New(tt.errMsg)), tt.contains)
		})
	}
}

func TestUnknownHostKeyError_Suggestion(t *testing.T) {
	err := &UnknownHostKeyError{Hostname: "web1:2200", KnownHosts: "/home/ops/.ssh/known_hosts"}
	assert.Contains(t, err.Error(), "web1:2200")
	assert.Contains(t, err.Suggestion(), "ssh-keyscan -p 2200 web1 >> /home/ops/.ssh/known_hosts")
	assert.Contains(t, err.Suggestion(), "--insecure")
	assert.Contains(t, err.Suggestion(), "ssh.strict_host_key_checking")

	err = &UnknownHostKeyError{Hostname: "web1:22", KnownHosts: "kh"}
	assert.Contains(t, err.Suggestion(), "ssh-keyscan web1 >> kh")
}

func TestHostKeyMismatchError_Suggestion(t *testing.T) {
	err := &HostKeyMismatchError{Hostname: "web1:22", ReceivedType: "ssh-ed25519"}
	assert.Contains(t, err.Error(), "ssh-ed25519")
	assert.Contains(t, err.Suggestion(), "ssh-keygen -R web1")
	assert.Contains(t, err.Suggestion(), "Known types: unknown")
}

func TestLimitedBuffer(t *testing.T) {
	b := &LimitedBuffer{Max: 8}

	n, err := b.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.False(t, b.Truncated())

	n, err = b.Write([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 6, n, "writes report full length so the remote command isn't cut off")
	assert.Equal(t, "hello wo", b.String())
	assert.True(t, b.Truncated())

	_, _ = b.Write([]byte("more"))
	assert.Equal(t, "hello wo", b.String())

	var empty LimitedBuffer
	_, _ = empty.Write(nil)
	assert.False(t, empty.Truncated())
}

func TestPasswordDialer_PropagatesError(t *testing.T) {
	client, err := PasswordDialer.Dial(Options{
		Host:          "192.0.2.1",
		Timeout:       100 * time.Millisecond,
		SSHConfigPath: filepath.Join(t.TempDir(), "none"),
	})
	assert.Error(t, err)
	assert.Nil(t, client, "a failed dial must not yield a typed-nil client")
}
