// Package cli implements mytop's command line.
//
// The root command resolves the hosts to monitor from flags and the hosts
// file, makes one connection attempt per host, and then hands the terminal
// to the dashboard loop. Subcommands:
//
//	mytop hosts list   Show the configured hosts
//	mytop hosts add    Append a host to the hosts file
//	mytop version      Print build information
//
// Collection mode follows from the host list: with any host configured only
// remote data is collected unless --all is given; with none, only the local
// process table is shown.
package cli
