// Package monitor implements mytop's dashboard engine: the samplers, the
// view state machine, the refresh clock, the command dispatcher and the
// cooperative loop that ties them together.
//
// # Key Components
//
//	LocalSampler   - Reads /proc; CPU% from tick deltas between passes
//	RemoteSampler  - Runs the ps listing over an SSH session and parses it
//	View           - Local -> host 0 .. host n-1 -> Local cycle
//	RefreshClock   - Interval gate that keys can force-expire
//	Dispatcher     - kill/pause/resume/restart, routed local or remote
//	Terminal       - Scoped raw mode with idempotent restore
//	Loop           - The single thread of control
//
// # Loop
//
// Each pass checks for one pending key, refreshes the active source when
// the clock is due, and otherwise waits up to IdleQuantum for a key. Only
// the key reader runs on another goroutine, and it only forwards bytes.
// Sampling, sorting and rendering all happen on the loop goroutine, so the
// samplers need no locking.
//
// Command mode hands the terminal back to cooked mode, pauses the key
// reader, and reads one line from the same input. Raw mode is re-entered
// before the loop continues, whatever the command did.
package monitor
