// Package process holds the data model shared by the local and remote
// samplers: one Sample per observed process, grouped into a Batch.
package process

import "time"

// Sample is one process observation. Memory sizes are always bytes,
// regardless of the unit the source reported them in.
type Sample struct {
	PID      int
	Name     string
	User     string // account name, or the numeric uid when it can't be resolved
	State    byte   // run-state code: R, S, D, Z, T, ...
	Priority int64
	Nice     int64

	Virt uint64
	Res  uint64
	Shr  uint64 // always 0 for remote samples

	MemPercent float64
	CPUPercent float64

	// CPUTicks is the cumulative CPU time consumed since the process started,
	// in clock ticks. It never decreases for a given process.
	CPUTicks uint64

	// CPUTime is the same counter in seconds, for the TIME+ column.
	CPUTime time.Duration
}

// Batch is the set of samples one sampler invocation produced.
type Batch struct {
	Samples []Sample
	Taken   time.Time

	// Seeded marks a batch taken without a valid previous snapshot. Its
	// CPUPercent values are all zero and should be displayed as unknown.
	Seeded bool
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int {
	return len(b.Samples)
}

// Running counts the samples in the R state.
func (b Batch) Running() int {
	n := 0
	for i := range b.Samples {
		if b.Samples[i].State == 'R' {
			n++
		}
	}
	return n
}
