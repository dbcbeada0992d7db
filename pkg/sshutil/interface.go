package sshutil

import "io"

// SSHClient defines the interface for SSH command execution.
// Both the real Client and mock implementations satisfy this interface.
type SSHClient interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// ExecStream runs a command and streams output to the provided writers.
	ExecStream(cmd string, stdout, stderr io.Writer) (exitCode int, err error)

	// Close closes the SSH connection.
	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string
}

// Dialer opens SSH connections. The session registry depends on this
// rather than on Dial so tests can hand it mock clients.
type Dialer interface {
	Dial(opts Options) (SSHClient, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(opts Options) (SSHClient, error)

// Dial calls f(opts).
func (f DialerFunc) Dial(opts Options) (SSHClient, error) {
	return f(opts)
}

// PasswordDialer is the production Dialer.
var PasswordDialer Dialer = DialerFunc(func(opts Options) (SSHClient, error) {
	client, err := Dial(opts)
	if err != nil {
		return nil, err
	}
	return client, nil
})
