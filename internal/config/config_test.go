package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Hosts)
	assert.Equal(t, 2*time.Second, cfg.Refresh.Local)
	assert.Equal(t, 5*time.Second, cfg.Refresh.Remote)
	assert.Equal(t, 10*time.Second, cfg.SSH.Timeout)
	assert.True(t, cfg.SSH.StrictHostKeyChecking)
	assert.Equal(t, 3*time.Second, cfg.Startup.PartialFailurePause)
	assert.NoError(t, Validate(cfg))
}

func TestCheckPermissions(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mode    os.FileMode
		wantErr bool
	}{
		{"owner read write", 0600, false},
		{"group readable", 0640, true},
		{"world readable", 0644, true},
		{"owner read only", 0400, true},
		{"executable", 0700, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, "", tt.mode)
			err := CheckPermissions(path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.True(t, stderrors.Is(err, ErrInsecurePermissions))
			assert.Contains(t, err.Error(), "chmod 600")
		})
	}
}

func TestCheckPermissions_Missing(t *testing.T) {
	err := CheckPermissions(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.False(t, stderrors.Is(err, ErrInsecurePermissions))
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
}

func TestParseLegacy(t *testing.T) {
	data := []byte(`# name:address:port:user:password:type
web:10.0.0.5:22:admin:s3cret:ssh

db:db.internal:2222:root:pa:ss:word:ssh
bad line
telnet-box:10.0.0.9:23:ops:x:telnet
`)

	hosts, err := ParseLegacy(data)
	require.NoError(t, err)
	require.Len(t, hosts, 3)

	assert.Equal(t, HostConfig{Name: "web", Address: "10.0.0.5", Port: 22, Username: "admin", Password: "s3cret", Type: "ssh"}, hosts[0])
	assert.Equal(t, "pa:ss:word", hosts[1].Password, "colons belong to the password")
	assert.Equal(t, 2222, hosts[1].Port)
	assert.Equal(t, "telnet", hosts[2].Type, "unsupported kinds are kept until connect")
}

func TestParseLegacyLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{"valid", "a:b:22:u:p:ssh", true},
		{"empty password", "a:b:22:u::ssh", true},
		{"five fields", "a:b:22:u:p", false},
		{"port not numeric", "a:b:ssh:u:p:ssh", false},
		{"missing name", ":b:22:u:p:ssh", false},
		{"missing user", "a:b:22::p:ssh", false},
		{"missing type", "a:b:22:u:p:", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseLegacyLine(tt.line)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestIsLegacyFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"legacy", "web:10.0.0.5:22:admin:pw:ssh\n", true},
		{"legacy with comments", "# hosts\n\nweb:10.0.0.5:22:admin:pw:ssh\n", true},
		{"yaml", "hosts:\n  - name: web\n    address: 10.0.0.5\n", false},
		{"yaml flow", "hosts: [{name: a, address: b, port: 22, username: c, password: d}]\n", false},
		{"empty", "", false},
		{"comments only", "# nothing\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLegacyFormat([]byte(tt.data)))
		})
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
hosts:
  - name: web
    address: 10.0.0.5
    username: admin
    password: s3cret
  - address: db.internal
    port: 2222
    username: root
    password: pw
    type: ssh
refresh:
  local: 1s
  remote: 10s
ssh:
  timeout: 4s
  strict_host_key_checking: false
  known_hosts: /tmp/kh
startup:
  partial_failure_pause: 0s
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, cfg.Hosts, 2)
	assert.Equal(t, "web", cfg.Hosts[0].Name)
	assert.Equal(t, 0, cfg.Hosts[0].Port)
	assert.Equal(t, "db.internal", cfg.Hosts[1].Label())
	assert.Equal(t, 2222, cfg.Hosts[1].Port)

	assert.Equal(t, time.Second, cfg.Refresh.Local)
	assert.Equal(t, 10*time.Second, cfg.Refresh.Remote)
	assert.Equal(t, 4*time.Second, cfg.SSH.Timeout)
	assert.False(t, cfg.SSH.StrictHostKeyChecking)
	assert.Equal(t, "/tmp/kh", cfg.SSH.KnownHosts)
	assert.Equal(t, time.Duration(0), cfg.Startup.PartialFailurePause)
}

func TestParse_PartialYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("refresh:\n  local: 500ms\n"))
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Refresh.Local)
	assert.Equal(t, 5*time.Second, cfg.Refresh.Remote)
	assert.True(t, cfg.SSH.StrictHostKeyChecking)
	assert.NotNil(t, cfg.Hosts)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("hosts: [unclosed\n"))
	assert.Error(t, err)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("MYTOP_REFRESH_LOCAL", "750ms")
	t.Setenv("MYTOP_SSH_TIMEOUT", "3s")
	t.Setenv("MYTOP_SSH_STRICT_HOST_KEY_CHECKING", "false")
	t.Setenv("MYTOP_STARTUP_PARTIAL_FAILURE_PAUSE", "1s")

	cfg, err := Parse([]byte("refresh:\n  local: 1s\n"))
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Refresh.Local, "env beats the file")
	assert.Equal(t, 3*time.Second, cfg.SSH.Timeout)
	assert.False(t, cfg.SSH.StrictHostKeyChecking)
	assert.Equal(t, time.Second, cfg.Startup.PartialFailurePause)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("legacy file", func(t *testing.T) {
		path := writeFile(t, dir, "legacy", "web:10.0.0.5:22:admin:pw:ssh\n", 0600)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Len(t, cfg.Hosts, 1)
		assert.Equal(t, path, cfg.Path)
		assert.Equal(t, 2*time.Second, cfg.Refresh.Local)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := writeFile(t, dir, "yaml", "hosts:\n  - name: web\n    address: 10.0.0.5\n", 0600)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Len(t, cfg.Hosts, 1)
		assert.Equal(t, "10.0.0.5", cfg.Hosts[0].Address)
	})

	t.Run("bad permissions", func(t *testing.T) {
		path := writeFile(t, dir, "open", "web:10.0.0.5:22:admin:pw:ssh\n", 0644)
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrInsecurePermissions))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken", "hosts: [oops\n", 0600)
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "Invalid hosts file format")
	})
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestResolve(t *testing.T) {
	t.Run("explicit path is loaded", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "hosts", "web:10.0.0.5:22:admin:pw:ssh\n", 0600)
		cfg, err := Resolve(path, false, logger.Noop())
		require.NoError(t, err)
		assert.Len(t, cfg.Hosts, 1)
	})

	t.Run("explicit path with bad permissions is fatal", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "hosts", "web:10.0.0.5:22:admin:pw:ssh\n", 0644)
		_, err := Resolve(path, false, logger.Noop())
		assert.Error(t, err)
	})

	t.Run("explicit missing path is fatal", func(t *testing.T) {
		_, err := Resolve(filepath.Join(t.TempDir(), "missing"), false, logger.Noop())
		assert.Error(t, err)
	})

	t.Run("implicit file is used", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, DefaultFileName, "web:10.0.0.5:22:admin:pw:ssh\n", 0600)
		chdir(t, dir)

		cfg, err := Resolve("", false, logger.Noop())
		require.NoError(t, err)
		assert.Len(t, cfg.Hosts, 1)
	})

	t.Run("implicit missing file gives defaults", func(t *testing.T) {
		chdir(t, t.TempDir())

		cfg, err := Resolve("", false, logger.Noop())
		require.NoError(t, err)
		assert.Empty(t, cfg.Hosts)
	})

	t.Run("implicit file with bad permissions is skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, DefaultFileName, "web:10.0.0.5:22:admin:pw:ssh\n", 0644)
		chdir(t, dir)
		log := logger.NewBufferLogger()

		cfg, err := Resolve("", false, log)
		require.NoError(t, err)
		assert.Empty(t, cfg.Hosts)
		assert.True(t, log.HasLevel("warn"))
	})

	t.Run("implicit file ignored with a command-line host", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, DefaultFileName, "web:10.0.0.5:22:admin:pw:ssh\n", 0600)
		chdir(t, dir)

		cfg, err := Resolve("", true, logger.Noop())
		require.NoError(t, err)
		assert.Empty(t, cfg.Hosts)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DotEnvFile, "MYTOP_REFRESH_REMOTE=9s\n", 0600)
	chdir(t, dir)
	t.Cleanup(func() { _ = os.Unsetenv("MYTOP_REFRESH_REMOTE") })

	LoadDotEnv()

	cfg, err := LoadDefaults()
	require.NoError(t, err)
	assert.Equal(t, 9*time.Second, cfg.Refresh.Remote)
}

func TestSessionHost(t *testing.T) {
	tests := []struct {
		name string
		in   HostConfig
		want session.Host
	}{
		{
			name: "defaults filled in",
			in:   HostConfig{Address: "10.0.0.5", Username: "u", Password: "p"},
			want: session.Host{Name: "10.0.0.5", Address: "10.0.0.5", Port: 22, Username: "u", Password: "p", Kind: session.KindSSH},
		},
		{
			name: "explicit values kept",
			in:   HostConfig{Name: "web", Address: "10.0.0.5", Port: 2222, Username: "u", Password: "p", Type: "telnet"},
			want: session.Host{Name: "web", Address: "10.0.0.5", Port: 2222, Username: "u", Password: "p", Kind: "telnet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.SessionHost())
		})
	}

	cfg := &Config{Hosts: []HostConfig{tests[0].in, tests[1].in}}
	assert.Len(t, cfg.SessionHosts(), 2)
}

func TestFormatLegacyLine(t *testing.T) {
	line := FormatLegacyLine(HostConfig{Address: "10.0.0.5", Username: "u", Password: "p"})
	assert.Equal(t, "10.0.0.5:10.0.0.5:22:u:p:ssh", line)

	h, ok := parseLegacyLine(line)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", h.Name)
}
