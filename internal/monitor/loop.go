package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/internal/process"
	"github.com/rileyhilliard/mytop/internal/session"
)

// StatusDisconnected is shown in place of samples for a disabled host.
const StatusDisconnected = "disconnected"

// Frame is everything the renderer needs for one screen.
type Frame struct {
	Source    string // "local" or the host's display name
	Local     bool
	HostIndex int // valid when !Local
	HostCount int

	Batch    process.Batch
	Sort     process.SortMode
	Status   string // non-empty when there are no samples to show, e.g. "disconnected"
	ShowHelp bool
	Interval time.Duration
}

// Renderer draws frames. It is only ever called from the loop goroutine.
type Renderer interface {
	Render(f Frame) error
}

// Sampler produces a batch from the local machine.
type Sampler interface {
	Sample() (process.Batch, error)
}

// Sessions is the view of the session registry the loop needs.
type Sessions interface {
	ClientSource
	Len() int
	Host(i int) session.Host
}

// LoopConfig wires the loop's collaborators. Local is nil when local
// collection is off; Sessions is nil when no hosts are configured.
type LoopConfig struct {
	Local    Sampler
	Remote   *RemoteSampler
	Sessions Sessions
	Renderer Renderer
	Terminal RawMode

	// In delivers key presses and command lines; Out receives the
	// command-mode prompt and results.
	In  io.Reader
	Out io.Writer

	LocalInterval  time.Duration
	RemoteInterval time.Duration
	Logger         logger.Logger
}

// Loop is the dashboard's single thread of control. It alternates between
// checking for a key, refreshing when the clock is due, and sleeping for at
// most IdleQuantum.
type Loop struct {
	cfg        LoopConfig
	log        logger.Logger
	view       *View
	clock      *RefreshClock
	dispatcher *Dispatcher
	keys       *keyReader

	sort     process.SortMode
	showHelp bool
}

// NewLoop builds a loop from cfg, filling in defaults.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	if cfg.Remote == nil {
		cfg.Remote = NewRemoteSampler(cfg.Logger)
	}
	if cfg.LocalInterval <= 0 {
		cfg.LocalInterval = LocalInterval
	}
	if cfg.RemoteInterval <= 0 {
		cfg.RemoteInterval = RemoteInterval
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}

	hostCount := 0
	var sources ClientSource
	if cfg.Sessions != nil {
		hostCount = cfg.Sessions.Len()
		sources = cfg.Sessions
	}

	// Local data refreshes faster; remote-only dashboards poll less often.
	interval := cfg.RemoteInterval
	if cfg.Local != nil {
		interval = cfg.LocalInterval
	}

	return &Loop{
		cfg:        cfg,
		log:        cfg.Logger,
		view:       NewView(cfg.Local != nil, hostCount),
		clock:      NewRefreshClock(interval),
		dispatcher: NewDispatcher(sources, cfg.Logger),
		keys:       newKeyReader(cfg.In),
		sort:       process.SortByCPU,
	}
}

// Run takes over the terminal and runs until the user quits or ctx is
// cancelled. The terminal is restored on every return path.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.cfg.Terminal.MakeRaw(); err != nil {
		return errors.WrapWithCode(err, errors.ErrStartup,
			"Couldn't switch the terminal to raw mode",
			"mytop needs an interactive terminal on stdin.")
	}
	defer func() {
		if err := l.cfg.Terminal.Restore(); err != nil {
			l.log.Error("restore terminal: %v", err)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go l.keys.run(done)

	keys := l.keys.keys
	timer := time.NewTimer(IdleQuantum)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if l.handleKey(ctx, key) {
				return nil
			}
			continue
		default:
		}

		if l.clock.Due() {
			l.refresh()
			l.clock.Mark()
			continue
		}

		wait := l.clock.Remaining()
		if wait > IdleQuantum {
			wait = IdleQuantum
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			timer.Stop()
			if !ok {
				keys = nil
				continue
			}
			if l.handleKey(ctx, key) {
				return nil
			}
		case <-timer.C:
		}
	}
}

// handleKey applies one key press and reports whether the loop should exit.
// Every key forces the next pass to refresh.
func (l *Loop) handleKey(ctx context.Context, key byte) bool {
	defer l.clock.Expire()

	switch ActionForKey(key) {
	case ActionQuit:
		return true
	case ActionSortCPU:
		l.sort = process.SortByCPU
	case ActionSortMemory:
		l.sort = process.SortByMemory
	case ActionCycleView:
		l.view.Cycle()
		l.log.Debug("view: %s", l.label())
	case ActionToggleHelp:
		l.showHelp = !l.showHelp
	case ActionCommand:
		return l.commandMode(ctx)
	}
	return false
}

// refresh samples the active source, sorts and renders it.
func (l *Loop) refresh() {
	f := Frame{
		Source:   l.label(),
		Local:    l.view.IsLocal(),
		Sort:     l.sort,
		ShowHelp: l.showHelp,
		Interval: l.clock.Interval(),
	}
	if l.cfg.Sessions != nil {
		f.HostCount = l.cfg.Sessions.Len()
	}

	if i, remote := l.view.Remote(); remote {
		f.HostIndex = i
		client, ok := l.cfg.Sessions.Client(i)
		if !ok {
			f.Status = StatusDisconnected
		} else {
			batch, err := l.cfg.Remote.Sample(client)
			if err != nil {
				l.log.Warn("sampling %s: %v", f.Source, err)
				f.Status = errors.ShortMessage(err)
			}
			f.Batch = batch
		}
	} else if l.cfg.Local != nil {
		batch, err := l.cfg.Local.Sample()
		if err != nil {
			l.log.Warn("sampling local: %v", err)
			f.Status = errors.ShortMessage(err)
		}
		f.Batch = batch
	}

	process.Sort(f.Batch.Samples, l.sort)

	if err := l.cfg.Renderer.Render(f); err != nil {
		l.log.Error("render: %v", err)
	}
}

// commandMode hands the terminal back to cooked mode, reads and runs one
// command line, then takes raw mode back. Raw mode and key reading resume
// even if dispatch panics. Cancelling ctx at the prompt quits.
func (l *Loop) commandMode(ctx context.Context) (quit bool) {
	if err := l.cfg.Terminal.Restore(); err != nil {
		l.log.Error("leave raw mode: %v", err)
	}
	defer func() {
		if err := l.cfg.Terminal.MakeRaw(); err != nil {
			l.log.Error("re-enter raw mode: %v", err)
		}
		l.keys.resumeReading()
	}()

	out := l.cfg.Out
	fmt.Fprint(out, "\r\n> ")

	line, err := readLineContext(ctx, l.cfg.In)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		l.log.Debug("command line: %v", err)
		return false
	}

	res := l.dispatcher.Dispatch(line, l.view)
	if res.Quit {
		return true
	}

	switch {
	case res.Err != nil:
		fmt.Fprintf(out, "error: %s\n", errors.ShortMessage(res.Err))
	case res.Message != "":
		fmt.Fprintln(out, res.Message)
	}
	fmt.Fprint(out, "press enter to continue")
	_, _ = readLineContext(ctx, l.cfg.In)
	return ctx.Err() != nil
}

func (l *Loop) label() string {
	return l.view.Label(func(i int) string {
		return l.cfg.Sessions.Host(i).Label()
	})
}

// keyReader forwards single bytes from in to keys. After forwarding the
// command key it stops reading until resumeReading, so command mode can
// read lines from the same input without losing bytes to it.
type keyReader struct {
	in     io.Reader
	keys   chan byte
	resume chan struct{}
}

func newKeyReader(in io.Reader) *keyReader {
	return &keyReader{
		in:     in,
		keys:   make(chan byte, 32),
		resume: make(chan struct{}, 1),
	}
}

func (k *keyReader) run(done <-chan struct{}) {
	defer close(k.keys)
	if k.in == nil {
		return
	}

	buf := make([]byte, 1)
	for {
		n, err := k.in.Read(buf)
		if n == 1 {
			select {
			case k.keys <- buf[0]:
			case <-done:
				return
			}
			if buf[0] == KeyCommand {
				select {
				case <-k.resume:
				case <-done:
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func (k *keyReader) resumeReading() {
	select {
	case k.resume <- struct{}{}:
	default:
	}
}

// readLineContext is readLine that gives up when ctx is done. SIGINT in
// cooked mode cancels ctx without unblocking the read, so the read runs on
// its own goroutine and is abandoned.
func readLineContext(ctx context.Context, in io.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := readLine(in)
		ch <- result{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readLine reads up to and including '\n' one byte at a time, so nothing
// past the line is consumed. The trailing CR/LF is stripped.
func readLine(in io.Reader) (string, error) {
	if in == nil {
		return "", io.EOF
	}

	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			return "", err
		}
	}
}
