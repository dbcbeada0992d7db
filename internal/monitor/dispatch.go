package monitor

import (
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/pkg/sshutil"
	"golang.org/x/sys/unix"
)

// CommandHelp lists the command-mode grammar.
const CommandHelp = "commands: kill <pid> | pause <pid> | resume <pid> | restart <pid> | help | quit"

// signalAction is a command that delivers a signal. Remote hosts get the
// Linux signal number, which doesn't depend on the local platform.
type signalAction struct {
	local  unix.Signal
	remote int
	name   string
}

var signalActions = map[string]signalAction{
	"kill":    {local: unix.SIGTERM, remote: 15, name: "SIGTERM"},
	"pause":   {local: unix.SIGSTOP, remote: 19, name: "SIGSTOP"},
	"resume":  {local: unix.SIGCONT, remote: 18, name: "SIGCONT"},
	"restart": {local: unix.SIGHUP, remote: 1, name: "SIGHUP"},
}

// Result is the outcome of one command line. Err is always one of the
// package's sentinel errors (possibly wrapped) or a transport error; it is
// shown to the user and never ends the program. Quit asks the loop to exit.
type Result struct {
	Message string
	Err     error
	Quit    bool
}

// ClientSource hands out the live session for a host index.
type ClientSource interface {
	Client(i int) (sshutil.SSHClient, bool)
}

// Dispatcher parses command lines and carries them out against the source
// the view currently shows.
type Dispatcher struct {
	sessions ClientSource
	signal   func(pid int, sig unix.Signal) error
	log      logger.Logger
}

// NewDispatcher creates a dispatcher. sessions may be nil when there are
// no remote hosts.
func NewDispatcher(sessions ClientSource, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{
		sessions: sessions,
		signal:   unix.Kill,
		log:      log,
	}
}

// Dispatch runs one command line. An empty line does nothing.
func (d *Dispatcher) Dispatch(line string, view *View) Result {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}
	}

	action := fields[0]
	switch action {
	case "help", "h":
		return Result{Message: CommandHelp}
	case "quit", "q":
		return Result{Quit: true}
	}

	sa, ok := signalActions[action]
	if !ok {
		return Result{Err: fmt.Errorf("%w: %q (try help)", ErrInvalidAction, action)}
	}

	if len(fields) < 2 {
		return Result{Err: fmt.Errorf("%s: %w", action, ErrMissingPID)}
	}
	pid, err := strconv.Atoi(fields[1])
	if err != nil || pid <= 0 {
		return Result{Err: fmt.Errorf("%s: %w: %q", action, ErrInvalidPID, fields[1])}
	}

	if i, remote := view.Remote(); remote {
		return d.signalRemote(i, sa, pid)
	}
	return d.signalLocal(sa, pid)
}

func (d *Dispatcher) signalLocal(sa signalAction, pid int) Result {
	// pid_t is 32 bits; anything larger can't name a process.
	if pid > math.MaxInt32 {
		return Result{Err: fmt.Errorf("pid %d: %w", pid, ErrNoSuchProcess)}
	}

	err := d.signal(pid, sa.local)
	switch {
	case err == nil:
		d.log.Info("sent %s to %d", sa.name, pid)
		return Result{Message: fmt.Sprintf("sent %s to %d", sa.name, pid)}
	case stderrors.Is(err, unix.ESRCH):
		return Result{Err: fmt.Errorf("pid %d: %w", pid, ErrNoSuchProcess)}
	case stderrors.Is(err, unix.EPERM):
		return Result{Err: fmt.Errorf("pid %d: %w", pid, ErrPermission)}
	default:
		return Result{Err: errors.WrapWithCode(err, errors.ErrSignal,
			fmt.Sprintf("Couldn't send %s to %d", sa.name, pid), "")}
	}
}

func (d *Dispatcher) signalRemote(i int, sa signalAction, pid int) Result {
	if d.sessions == nil {
		return Result{Err: ErrNoSession}
	}
	client, ok := d.sessions.Client(i)
	if !ok {
		return Result{Err: ErrNoSession}
	}

	cmd := KillCommand(sa.remote, pid)
	_, stderr, exitCode, err := client.Exec(cmd)
	if err != nil {
		return Result{Err: errors.WrapWithCode(err, errors.ErrSignal,
			fmt.Sprintf("Couldn't run kill on '%s'", client.GetHost()),
			"The connection may have dropped.")}
	}
	// Only delivery of the command is reported; the remote exit status isn't.
	if exitCode != 0 {
		d.log.Debug("%s on %s exited %d: %s", cmd, client.GetHost(), exitCode, strings.TrimSpace(string(stderr)))
	}

	d.log.Info("sent %s to %d on %s", sa.name, pid, client.GetHost())
	return Result{Message: fmt.Sprintf("sent %s to %d on %s", sa.name, pid, client.GetHost())}
}
