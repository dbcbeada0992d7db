package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// LocalClockTicks is USER_HZ, the unit of the tick counters in /proc.
// The kernel exports 100 regardless of its internal HZ.
const LocalClockTicks = 100

// ProcStat holds the fields of /proc/<pid>/stat the local sampler uses.
type ProcStat struct {
	PID      int
	Comm     string
	State    byte
	Ticks    uint64 // utime + stime
	Priority int64
	Nice     int64
}

// ParseTotalCPU sums the aggregate "cpu" line of /proc/stat:
// user + nice + system + idle + iowait + irq + softirq + steal.
// guest and guest_nice are already counted in user and nice.
func ParseTotalCPU(procStat string) (uint64, error) {
	scanner := bufio.NewScanner(strings.NewReader(procStat))

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return 0, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		var total uint64
		for i := 1; i < len(fields) && i <= 8; i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return 0, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			total += val
		}
		return total, nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	return 0, fmt.Errorf("no aggregate cpu line in /proc/stat")
}

// ParseMemTotal returns MemTotal from /proc/meminfo in bytes.
func ParseMemTotal(procMeminfo string) (uint64, error) {
	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 || parts[0] != "MemTotal:" {
			continue
		}

		// Values in /proc/meminfo are in kB
		kb, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse MemTotal: %w", err)
		}
		return kb * 1024, nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	return 0, fmt.Errorf("MemTotal not found in /proc/meminfo")
}

// ParseProcStat parses /proc/<pid>/stat. The command name sits between the
// first '(' and the last ')' and may itself contain spaces or parentheses.
func ParseProcStat(data string) (*ProcStat, error) {
	line := strings.TrimSpace(data)

	l := strings.IndexByte(line, '(')
	r := strings.LastIndexByte(line, ')')
	if l < 0 || r < 0 || r <= l {
		return nil, fmt.Errorf("malformed stat line: missing comm")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(line[:l]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pid: %w", err)
	}

	// fields[0] is field 3 (state) in proc(5) numbering
	fields := strings.Fields(line[r+1:])
	if len(fields) < 17 {
		return nil, fmt.Errorf("stat line has %d fields after comm, want at least 17", len(fields))
	}
	field := func(n int) string { return fields[n-3] }

	st := &ProcStat{
		PID:   pid,
		Comm:  line[l+1 : r],
		State: field(3)[0],
	}

	utime, err := strconv.ParseUint(field(14), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse utime: %w", err)
	}
	stime, err := strconv.ParseUint(field(15), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stime: %w", err)
	}
	st.Ticks = utime + stime

	if st.Priority, err = strconv.ParseInt(field(18), 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse priority: %w", err)
	}
	if st.Nice, err = strconv.ParseInt(field(19), 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse nice: %w", err)
	}

	return st, nil
}

// ParseProcStatm parses the size, resident and shared page counts of
// /proc/<pid>/statm and converts them to bytes.
func ParseProcStatm(data string, pageSize uint64) (virt, res, shr uint64, err error) {
	fields := strings.Fields(data)
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("statm has %d fields, want at least 3", len(fields))
	}

	var pages [3]uint64
	for i := range pages {
		pages[i], err = strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("failed to parse statm field %d: %w", i, err)
		}
	}

	return pages[0] * pageSize, pages[1] * pageSize, pages[2] * pageSize, nil
}

// ParseStatusUID returns the real uid from the "Uid:" line of /proc/<pid>/status.
func ParseStatusUID(data string) (uint32, error) {
	scanner := bufio.NewScanner(strings.NewReader(data))

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}

		// "Uid:    1000    1000    1000    1000" (real, effective, saved, fs)
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("malformed Uid line: %q", line)
		}
		uid, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("failed to parse uid: %w", err)
		}
		return uint32(uid), nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error scanning status: %w", err)
	}
	return 0, fmt.Errorf("no Uid line in status")
}
