package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/mytop/internal/config"
	"github.com/spf13/cobra"
)

// Root command flags
var (
	remoteConfigFlag   string
	remoteServerFlag   string
	loginFlag          string
	usernameFlag       string
	passwordFlag       string
	connTypeFlag       string
	portFlag           int
	allFlag            bool
	dryRunFlag         bool
	insecureFlag       bool
	intervalFlag       time.Duration
	remoteIntervalFlag time.Duration
)

// rootCmd starts the dashboard
var rootCmd = &cobra.Command{
	Use:   "mytop",
	Short: "Live process monitor for this machine and remote hosts",
	Long: `mytop shows a live, sorted process table for the local machine and for
remote hosts polled over SSH with password login.

Keys: p sort by CPU, m sort by memory, r next host, c command, h help, q quit.
Commands: kill <pid>, pause <pid>, resume <pid>, restart <pid>, help, quit.

Examples:
  mytop                               # local processes
  mytop -s 10.0.0.5 -u admin          # one remote host, password prompted
  mytop -l admin@10.0.0.5 -a          # remote host plus local processes
  mytop -c hosts.yaml --dry-run       # test every host in a hosts file`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), optionsFromFlags())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&remoteConfigFlag, "remote-config", "c", "", "hosts file (must be mode 0600; default ./"+config.DefaultFileName+")")

	flags := rootCmd.Flags()
	flags.StringVarP(&remoteServerFlag, "remote-server", "s", "", "remote host address")
	flags.StringVarP(&loginFlag, "login", "l", "", "remote user and host as USER@HOST")
	flags.StringVarP(&usernameFlag, "username", "u", "", "remote username (prompted if missing)")
	flags.StringVarP(&passwordFlag, "password", "p", "", "remote password (prompted if missing)")
	flags.StringVarP(&connTypeFlag, "connexion-type", "t", "ssh", "transport for the command-line host")
	flags.IntVarP(&portFlag, "port", "P", config.DefaultPort, "port for the command-line host")
	flags.BoolVarP(&allFlag, "all", "a", false, "also collect local processes when remote hosts are configured")
	flags.BoolVarP(&dryRunFlag, "dry-run", "d", false, "test local access and connections, then exit")
	flags.BoolVar(&insecureFlag, "insecure", false, "skip known_hosts verification")
	flags.DurationVar(&intervalFlag, "interval", 0, "refresh interval when local processes are shown (default 2s)")
	flags.DurationVar(&remoteIntervalFlag, "remote-interval", 0, "refresh interval for remote-only monitoring (default 5s)")
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
// The caller prints the returned error and exits non-zero.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
