package process

import "sort"

// SortMode selects the metric a batch is ordered by.
type SortMode int

const (
	SortByCPU SortMode = iota
	SortByMemory
)

// String returns a human-readable label for the sort mode.
func (m SortMode) String() string {
	switch m {
	case SortByMemory:
		return "MEM%"
	default:
		return "CPU%"
	}
}

// Sort orders samples in place, highest first, by the metric mode selects.
// Samples with equal keys end up in no particular order.
func Sort(samples []Sample, mode SortMode) {
	key := func(s *Sample) float64 { return s.CPUPercent }
	if mode == SortByMemory {
		key = func(s *Sample) float64 { return s.MemPercent }
	}

	sort.Slice(samples, func(i, j int) bool {
		return key(&samples[i]) > key(&samples[j])
	})
}
