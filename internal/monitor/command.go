package monitor

import "fmt"

// ListingCommand is run on remote hosts to list every process. The column
// order is what parsers.ParsePSLine expects.
const ListingCommand = "ps -A -o pid,user,state,pri,ni,vsz,rss,pmem,pcpu,times,comm"

// MaxListingBytes caps how much listing output is kept from one remote call.
const MaxListingBytes = 1 << 20

// KillCommand returns the remote command that delivers signal number sig to pid.
// Numeric signals keep it portable across kill builtins.
func KillCommand(sig int, pid int) string {
	return fmt.Sprintf("kill -%d %d", sig, pid)
}
