package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/mytop/internal/config"
	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/internal/monitor"
	"github.com/rileyhilliard/mytop/internal/session"
	"github.com/rileyhilliard/mytop/internal/system"
	"github.com/rileyhilliard/mytop/internal/ui"
	"github.com/rileyhilliard/mytop/pkg/sshutil"
)

// credentialPrompter fills in whichever of username and password is empty.
type credentialPrompter func(host string, username, password *string) error

// monitorDeps are the side effects of a run, replaceable in tests.
type monitorDeps struct {
	out       io.Writer
	dialer    sshutil.Dialer
	prompt    credentialPrompter
	procRoot  string
	pause     func(ctx context.Context, d time.Duration)
	dashboard func(ctx context.Context, cfg monitor.LoopConfig) error
	logPath   string
}

func defaultDeps() monitorDeps {
	return monitorDeps{
		out:       os.Stdout,
		dialer:    sshutil.PasswordDialer,
		prompt:    promptCredentials,
		procRoot:  monitor.DefaultProcRoot,
		pause:     pauseFor,
		dashboard: runDashboard,
		logPath:   os.Getenv(logger.FileEnv),
	}
}

// monitorCommand runs the dashboard with the real terminal and network.
func monitorCommand(ctx context.Context, opts Options) error {
	return runMonitor(ctx, opts, defaultDeps())
}

// runMonitor resolves hosts, connects them once, applies the startup
// policy and then runs the dashboard until quit or cancellation.
func runMonitor(ctx context.Context, opts Options, deps monitorDeps) error {
	cliHost, hasCLIHost, err := opts.cliHost()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(opts.ConfigPath, hasCLIHost, logger.NewEnvLogger("[config]"))
	if err != nil {
		return err
	}

	if hasCLIHost {
		if cliHost.Username == "" || cliHost.Password == "" {
			if err := deps.prompt(cliHost.Label(), &cliHost.Username, &cliHost.Password); err != nil {
				return err
			}
		}
		cfg.Hosts = append(cfg.Hosts, cliHost)
	}

	opts.applyOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// From here on the screen belongs to the connection display and then
	// the dashboard, so log lines go to MYTOP_LOG or nowhere.
	restoreLog, err := logger.RedirectToFile(deps.logPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open the log file",
			"Check "+logger.FileEnv+" points at a writable path")
	}
	defer restoreLog()

	collectLocal, _ := collectionMode(len(cfg.Hosts), opts.All)

	display := ui.NewConnectionDisplay(deps.out)
	registry := session.NewRegistry(cfg.SessionHosts(), deps.dialer, logger.NewEnvLogger("[session]"),
		session.WithTimeout(cfg.SSH.Timeout),
		session.WithHostKeyChecking(cfg.SSH.StrictHostKeyChecking, cfg.SSH.KnownHosts),
		session.WithObserver(connectionObserver{display}),
	)
	defer registry.Close()

	var local *monitor.LocalSampler
	if collectLocal {
		local = monitor.NewLocalSampler(deps.procRoot, logger.NewEnvLogger("[local]"))
		// The baseline pass, so the first screen has real CPU figures.
		if err := local.Prime(); err != nil {
			if opts.DryRun {
				fmt.Fprintf(deps.out, "%s local process table: %v\n", ui.SymbolFail, err)
			} else {
				return errors.WrapWithCode(err, errors.ErrStartup,
					"Can't read the local process table",
					"mytop reads "+deps.procRoot+"; check it is mounted and readable")
			}
		} else if opts.DryRun {
			fmt.Fprintf(deps.out, "%s local process table: OK\n", ui.SymbolSuccess)
		}
	}

	connected, failures := 0, []session.Failure(nil)
	if registry.Len() > 0 {
		connected, failures = registry.ConnectAll(ctx)
		display.Finish()
	}
	if ctx.Err() != nil {
		return nil
	}

	if opts.DryRun {
		return nil
	}

	if !collectLocal && connected == 0 {
		return errors.New(errors.ErrStartup,
			"No data source available: every remote host failed to connect",
			"Check the addresses and credentials above, or add --all to also show local processes")
	}

	if len(failures) > 0 && cfg.Startup.PartialFailurePause > 0 {
		fmt.Fprintf(deps.out, "Continuing without %d unavailable host(s)...\n", len(failures))
		deps.pause(ctx, cfg.Startup.PartialFailurePause)
		if ctx.Err() != nil {
			return nil
		}
	}

	loopCfg := monitor.LoopConfig{
		LocalInterval:  cfg.Refresh.Local,
		RemoteInterval: cfg.Refresh.Remote,
		Logger:         logger.NewEnvLogger("[loop]"),
	}
	if local != nil {
		loopCfg.Local = local
	}
	if registry.Len() > 0 {
		loopCfg.Sessions = registry
	}

	return deps.dashboard(ctx, loopCfg)
}

// runDashboard attaches the loop to the process's terminal.
func runDashboard(ctx context.Context, cfg monitor.LoopConfig) error {
	term := monitor.NewTerminal(int(os.Stdin.Fd()))
	if !term.IsTerminal() {
		return errors.New(errors.ErrStartup,
			"mytop needs an interactive terminal",
			"Run it from a terminal, or use --dry-run to only test connections")
	}

	screen := ui.NewScreen(os.Stdout, version)
	screen.Size = term.Size
	if cfg.Local != nil {
		screen.Summary = system.Local
	}

	cfg.Renderer = screen
	cfg.Terminal = term
	cfg.In = os.Stdin
	cfg.Out = os.Stdout

	screen.Enter()
	defer screen.Leave()

	return monitor.NewLoop(cfg).Run(ctx)
}

// pauseFor waits d or until ctx is done.
func pauseFor(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// promptCredentials asks for the missing login fields with huh.
func promptCredentials(host string, username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username for "+host).
			Value(username).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("username is required")
				}
				return nil
			}))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password for "+host).
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get credentials",
			"Pass them with -u and -p instead")
	}
	return nil
}

// connectionObserver feeds registry progress into the connection display.
type connectionObserver struct {
	display *ui.ConnectionDisplay
}

func (o connectionObserver) Connecting(h session.Host) {
	o.display.Trying(hostLine(h))
}

func (o connectionObserver) Connected(h session.Host, took time.Duration, err error) {
	if err == nil {
		o.display.AddAttempt(hostLine(h), ui.StatusSuccess, took, "")
		return
	}
	o.display.AddAttempt(hostLine(h), ui.ClassifyError(err), took, errors.ShortMessage(err))
}

// hostLine is "name (address:port)", or "address:port" for unnamed hosts.
func hostLine(h session.Host) string {
	addr := fmt.Sprintf("%s:%d", h.Address, h.Port)
	if h.Name == "" || h.Name == h.Address {
		return addr
	}
	return fmt.Sprintf("%s (%s)", h.Name, addr)
}
