package process

// CPUPercent computes a process's share of total CPU time between two
// snapshots: 100 * (cur - prev) / (curTotal - prevTotal).
//
// The result is 0 when the total delta is not positive (first tick, clock
// stall, counter wrap) and when the process counter went backwards (pid
// reuse). It is clamped to [0, 100].
func CPUPercent(cur, prev, curTotal, prevTotal uint64) float64 {
	if curTotal <= prevTotal || cur < prev {
		return 0
	}

	pct := 100 * float64(cur-prev) / float64(curTotal-prevTotal)
	if pct > 100 {
		return 100
	}
	return pct
}

// MemPercent returns resident memory as a percentage of total memory,
// or 0 when total is unknown.
func MemPercent(res, total uint64) float64 {
	if total == 0 {
		return 0
	}
	pct := 100 * float64(res) / float64(total)
	if pct > 100 {
		return 100
	}
	return pct
}
