package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/mytop/internal/config"
	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// hosts add flags
var (
	addNameFlag     string
	addAddressFlag  string
	addPortFlag     int
	addUsernameFlag string
	addPasswordFlag string
	addTypeFlag     string
)

// hostsCmd groups host management
var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Manage the hosts file",
}

// hostsListCmd prints the configured hosts
var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured hosts",
	Long: `List the hosts mytop would connect to, from --remote-config or ./` + config.DefaultFileName + `.
Passwords are never printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(remoteConfigFlag, false, logger.NewEnvLogger("[config]"))
		if err != nil {
			return err
		}
		return listHosts(cmd.OutOrStdout(), cfg)
	},
}

// hostsAddCmd appends a host to the hosts file
var hostsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a host to the hosts file",
	Long: `Append a host to --remote-config (default ./` + config.DefaultFileName + `).
The file is created with mode 0600 if it doesn't exist. Missing fields are
prompted for when running in a terminal.

Examples:
  mytop hosts add --name web --address 10.0.0.5 --username admin
  mytop hosts add -c ops.yaml --address db.internal --port 2222`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := config.HostConfig{
			Name:     addNameFlag,
			Address:  addAddressFlag,
			Port:     addPortFlag,
			Username: addUsernameFlag,
			Password: addPasswordFlag,
			Type:     addTypeFlag,
		}

		if missingHostFields(h) {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New(errors.ErrConfig,
					"Address, username and password are required",
					"Pass --address, --username and --password")
			}
			if err := promptHost(&h); err != nil {
				return err
			}
		}

		path := remoteConfigFlag
		if path == "" {
			path = config.DefaultFileName
		}
		return addHost(cmd.OutOrStdout(), path, h)
	},
}

func init() {
	hostsAddCmd.Flags().StringVar(&addNameFlag, "name", "", "display name (default: the address)")
	hostsAddCmd.Flags().StringVar(&addAddressFlag, "address", "", "hostname or IP address")
	hostsAddCmd.Flags().IntVar(&addPortFlag, "port", config.DefaultPort, "SSH port")
	hostsAddCmd.Flags().StringVar(&addUsernameFlag, "username", "", "login name")
	hostsAddCmd.Flags().StringVar(&addPasswordFlag, "password", "", "login password")
	hostsAddCmd.Flags().StringVar(&addTypeFlag, "type", "ssh", "transport kind")

	hostsCmd.AddCommand(hostsListCmd, hostsAddCmd)
	rootCmd.AddCommand(hostsCmd)
}

// listHosts writes one aligned line per host.
func listHosts(w io.Writer, cfg *config.Config) error {
	if len(cfg.Hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"No hosts configured",
			"Add one with 'mytop hosts add' or pass -c with a hosts file")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorInfo)
	row := "%-16s %-28s %-6s %-12s %s"

	fmt.Fprintln(w, header.Render(fmt.Sprintf(row, "NAME", "ADDRESS", "PORT", "USER", "TYPE")))
	for _, h := range cfg.Hosts {
		sh := h.SessionHost()
		fmt.Fprintf(w, row+"\n", sh.Name, sh.Address, fmt.Sprint(sh.Port), sh.Username, sh.Kind)
	}
	if cfg.Path != "" {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("from "+cfg.Path))
	}
	return nil
}

// addHost validates h and appends it to the hosts file at path.
func addHost(w io.Writer, path string, h config.HostConfig) error {
	check := config.DefaultConfig()
	check.Hosts = []config.HostConfig{h}
	if err := config.Validate(check); err != nil {
		return err
	}

	if err := config.AddHost(path, h); err != nil {
		if errors.IsCode(err, errors.ErrConfig) {
			return err
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to add host '"+h.Label()+"'",
			"Check "+path+" is valid and writable")
	}

	fmt.Fprintf(w, "%s Added host '%s' to %s\n", ui.SymbolSuccess, h.Label(), path)
	return nil
}

func missingHostFields(h config.HostConfig) bool {
	return h.Address == "" || h.Username == "" || h.Password == ""
}

// promptHost asks for the empty fields of h with huh.
func promptHost(h *config.HostConfig) error {
	required := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", what)
			}
			return nil
		}
	}

	var fields []huh.Field
	if h.Address == "" {
		fields = append(fields, huh.NewInput().
			Title("Address").
			Description("Hostname or IP address").
			Placeholder("10.0.0.5").
			Value(&h.Address).
			Validate(required("address")))
	}
	if h.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Display name").
			Description("Shown in the header; leave empty to use the address").
			Value(&h.Name))
	}
	if h.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&h.Username).
			Validate(required("username")))
	}
	if h.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&h.Password))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Pass the fields as flags instead")
	}
	return nil
}
