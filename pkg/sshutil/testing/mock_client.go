package testing

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rileyhilliard/mytop/pkg/sshutil"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// MockProcess is one entry in the mock host's process table.
type MockProcess struct {
	PID     int
	User    string
	State   byte
	Pri     int
	Nice    int
	VSZKB   uint64
	RSSKB   uint64
	PMem    float64
	PCPU    float64
	Seconds uint64
	Comm    string
}

// MockClient simulates an SSH connection for testing.
// It answers ps listings and kill commands against a virtual process table,
// and returns configured responses for anything else.
type MockClient struct {
	mu       sync.Mutex
	host     string
	address  string
	procs    map[int]*MockProcess
	closed   bool
	commands map[string]CommandResponse // pattern -> response
	history  []string
}

// NewMockClient creates a new mock SSH client with an empty process table.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:     host,
		address:  host + ":22",
		procs:    make(map[int]*MockProcess),
		commands: make(map[string]CommandResponse),
	}
}

// Exec runs a command against the virtual process table.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.history = append(m.history, cmd)

	if resp, ok := m.commands[cmd]; ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}

	for pattern, resp := range m.commands {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
		}
	}

	return m.parseAndExecute(cmd)
}

// ExecStream runs a command and writes output to the provided writers.
func (m *MockClient) ExecStream(cmd string, stdout, stderr io.Writer) (exitCode int, err error) {
	out, errOut, code, execErr := m.Exec(cmd)
	if execErr != nil {
		return -1, execErr
	}

	if stdout != nil && len(out) > 0 {
		_, _ = stdout.Write(out)
	}
	if stderr != nil && len(errOut) > 0 {
		_, _ = stderr.Write(errOut)
	}

	return code, nil
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the host:port address.
func (m *MockClient) GetAddress() string {
	return m.address
}

// SetCommandResponse registers a canned response for a command pattern.
// The pattern can be an exact string or a regex pattern.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

// AddProcess adds or replaces an entry in the process table.
func (m *MockClient) AddProcess(p MockProcess) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.State == 0 {
		p.State = 'S'
	}
	m.procs[p.PID] = &p
}

// Process returns a copy of the process table entry for pid.
func (m *MockClient) Process(pid int) (MockProcess, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.procs[pid]
	if !ok {
		return MockProcess{}, false
	}
	return *p, true
}

// History returns every command executed so far, in order.
func (m *MockClient) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

func (m *MockClient) parseAndExecute(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	cmd = strings.TrimSpace(cmd)

	if strings.HasPrefix(cmd, "ps ") {
		return m.handlePS()
	}

	if strings.HasPrefix(cmd, "kill ") {
		return m.handleKill(cmd)
	}

	// Unknown command - return success by default
	return nil, nil, 0, nil
}

// handlePS renders the process table in
// pid,user,state,pri,ni,vsz,rss,pmem,pcpu,times,comm column order.
func (m *MockClient) handlePS() ([]byte, []byte, int, error) {
	pids := make([]int, 0, len(m.procs))
	for pid := range m.procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	var b strings.Builder
	b.WriteString("    PID USER     S PRI  NI    VSZ   RSS %MEM %CPU     TIME COMMAND\n")
	for _, pid := range pids {
		p := m.procs[pid]
		fmt.Fprintf(&b, "%7d %-8s %c %3d %3d %6d %5d %4.1f %4.1f %8d %s\n",
			p.PID, p.User, p.State, p.Pri, p.Nice, p.VSZKB, p.RSSKB, p.PMem, p.PCPU, p.Seconds, p.Comm)
	}
	return []byte(b.String()), nil, 0, nil
}

// handleKill processes: kill -<signal> <pid>
func (m *MockClient) handleKill(cmd string) ([]byte, []byte, int, error) {
	fields := strings.Fields(cmd)
	if len(fields) != 3 || !strings.HasPrefix(fields[1], "-") {
		return nil, []byte("kill: usage: kill -signum pid"), 2, nil
	}

	sig, err := strconv.Atoi(strings.TrimPrefix(fields[1], "-"))
	if err != nil {
		return nil, []byte(fmt.Sprintf("kill: %s: invalid signal specification", fields[1])), 1, nil
	}
	pid, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, []byte(fmt.Sprintf("kill: %s: arguments must be process or job IDs", fields[2])), 1, nil
	}

	p, ok := m.procs[pid]
	if !ok {
		return nil, []byte(fmt.Sprintf("kill: (%d) - No such process", pid)), 1, nil
	}

	switch sig {
	case 9, 15:
		delete(m.procs, pid)
	case 19:
		p.State = 'T'
	case 18:
		if p.State == 'T' {
			p.State = 'S'
		}
	}
	return nil, nil, 0, nil
}

// MockDialer hands out preconfigured clients by host and records every
// Options it was asked to dial.
type MockDialer struct {
	mu      sync.Mutex
	clients map[string]*MockClient
	errs    map[string]error
	dialed  []sshutil.Options
}

// NewMockDialer creates a dialer that fails for any host it doesn't know.
func NewMockDialer() *MockDialer {
	return &MockDialer{
		clients: make(map[string]*MockClient),
		errs:    make(map[string]error),
	}
}

// AddHost makes Dial(host) succeed with client.
func (d *MockDialer) AddHost(host string, client *MockClient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[host] = client
}

// FailHost makes Dial(host) return err.
func (d *MockDialer) FailHost(host string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[host] = err
}

// Dial implements sshutil.Dialer.
func (d *MockDialer) Dial(opts sshutil.Options) (sshutil.SSHClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialed = append(d.dialed, opts)

	if err, ok := d.errs[opts.Host]; ok {
		return nil, err
	}
	if c, ok := d.clients[opts.Host]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("dial tcp %s:%d: connect: connection refused", opts.Host, opts.Port)
}

// Dialed returns the options of every Dial call, in order.
func (d *MockDialer) Dialed() []sshutil.Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sshutil.Options(nil), d.dialed...)
}
