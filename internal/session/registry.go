// Package session owns the remote host connections. Each host gets exactly
// one connection attempt; a host that fails is disabled for the rest of the
// run and never retried.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/pkg/sshutil"
)

// KindSSH is the only supported transport kind.
const KindSSH = "ssh"

// DefaultTimeout bounds the TCP connect and SSH handshake.
const DefaultTimeout = 10 * time.Second

// Host describes one remote machine to monitor.
type Host struct {
	Name     string // display name
	Address  string
	Port     int
	Username string
	Password string
	Kind     string // empty means ssh
}

// Label returns the display name, falling back to the address.
func (h Host) Label() string {
	if h.Name != "" {
		return h.Name
	}
	return h.Address
}

// Failure records why a host could not be connected.
type Failure struct {
	Index int
	Host  Host
	Err   error
}

// Option tunes how the registry dials.
type Option func(*Registry)

// WithTimeout sets the connect timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHostKeyChecking verifies server keys against knownHosts (empty means
// ~/.ssh/known_hosts) when strict is true, and skips verification otherwise.
func WithHostKeyChecking(strict bool, knownHosts string) Option {
	return func(r *Registry) {
		r.strict = strict
		r.knownHosts = knownHosts
	}
}

// Observer is told about each attempt ConnectAll makes.
type Observer interface {
	Connecting(h Host)
	Connected(h Host, took time.Duration, err error)
}

// WithObserver reports ConnectAll progress to o.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// Registry holds the host list and the live client for each connected host.
// Indices are stable for the life of the registry.
type Registry struct {
	mu      sync.Mutex
	hosts   []Host
	clients []sshutil.SSHClient // nil when disabled
	dialer  sshutil.Dialer
	log     logger.Logger

	timeout    time.Duration
	strict     bool
	knownHosts string
	observer   Observer
}

// NewRegistry creates a registry with every host disabled. Nothing is dialed
// until Connect or ConnectAll.
func NewRegistry(hosts []Host, dialer sshutil.Dialer, log logger.Logger, opts ...Option) *Registry {
	if dialer == nil {
		dialer = sshutil.PasswordDialer
	}
	if log == nil {
		log = logger.Noop()
	}
	r := &Registry{
		hosts:   append([]Host(nil), hosts...),
		clients: make([]sshutil.SSHClient, len(hosts)),
		dialer:  dialer,
		log:     log,
		timeout: DefaultTimeout,
		strict:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of configured hosts, enabled or not.
func (r *Registry) Len() int {
	return len(r.hosts)
}

// Host returns the configuration of host i.
func (r *Registry) Host(i int) Host {
	return r.hosts[i]
}

// Enabled reports whether host i has a live connection.
func (r *Registry) Enabled(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return i >= 0 && i < len(r.clients) && r.clients[i] != nil
}

// Client returns the connection for host i, or false when it is disabled.
func (r *Registry) Client(i int) (sshutil.SSHClient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.clients) || r.clients[i] == nil {
		return nil, false
	}
	return r.clients[i], true
}

// Connect makes the single connection attempt for host i. On failure the
// host stays disabled. Calling Connect on an enabled host is a no-op.
func (r *Registry) Connect(ctx context.Context, i int) error {
	if i < 0 || i >= len(r.hosts) {
		return fmt.Errorf("host index %d out of range", i)
	}
	if r.Enabled(i) {
		return nil
	}

	h := r.hosts[i]
	if h.Kind != "" && h.Kind != KindSSH {
		r.log.Warn("host %s: unsupported connection type %q", h.Label(), h.Kind)
		return errors.New(errors.ErrSSH,
			fmt.Sprintf("Unsupported connection type %q for '%s'", h.Kind, h.Label()),
			"Only ssh is supported. Remove the type or set it to ssh.")
	}

	opts := sshutil.Options{
		Host:                  h.Address,
		Port:                  h.Port,
		User:                  h.Username,
		Password:              h.Password,
		Timeout:               r.timeout,
		StrictHostKeyChecking: r.strict,
		KnownHostsPath:        r.knownHosts,
	}

	r.log.Debug("connecting to %s (%s:%d as %s)", h.Label(), h.Address, h.Port, h.Username)

	type dialResult struct {
		client sshutil.SSHClient
		err    error
	}
	done := make(chan dialResult, 1)
	go func() {
		client, err := r.dialer.Dial(opts)
		done <- dialResult{client, err}
	}()

	var res dialResult
	select {
	case res = <-done:
	case <-ctx.Done():
		// The dial can't be interrupted; drop whatever it eventually returns.
		go func() {
			if late := <-done; late.client != nil {
				_ = late.client.Close()
			}
		}()
		return ctx.Err()
	}

	if res.err != nil {
		r.log.Warn("host %s disabled: %v", h.Label(), errors.ShortMessage(res.err))
		return res.err
	}

	r.mu.Lock()
	r.clients[i] = res.client
	r.mu.Unlock()

	r.log.Info("connected to %s", h.Label())
	return nil
}

// ConnectAll tries every host once, in order, and reports how many
// connected along with the failures.
func (r *Registry) ConnectAll(ctx context.Context) (connected int, failures []Failure) {
	for i := range r.hosts {
		start := time.Now()
		if r.observer != nil {
			r.observer.Connecting(r.hosts[i])
		}
		err := r.Connect(ctx, i)
		if r.observer != nil {
			r.observer.Connected(r.hosts[i], time.Since(start), err)
		}
		if err != nil {
			failures = append(failures, Failure{Index: i, Host: r.hosts[i], Err: err})
			if ctx.Err() != nil {
				break
			}
			continue
		}
		connected++
	}
	return connected, failures
}

// Disconnect closes host i and marks it disabled.
func (r *Registry) Disconnect(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(i)
}

// Close releases every connection.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.clients {
		r.closeLocked(i)
	}
}

func (r *Registry) closeLocked(i int) {
	if i < 0 || i >= len(r.clients) || r.clients[i] == nil {
		return
	}
	if err := r.clients[i].Close(); err != nil {
		r.log.Debug("closing %s: %v", r.hosts[i].Label(), err)
	}
	r.clients[i] = nil
}
