package parsers

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/mytop/internal/process"
)

// PSColumns is the number of columns in one listing line:
// pid, user, state, pri, ni, vsz, rss, pmem, pcpu, times, comm.
const PSColumns = 11

// RemoteClockTicks converts ps "times" seconds into clock ticks. Linux
// reports CLK_TCK as 100 on every mainstream architecture.
const RemoteClockTicks = 100

// ParsePSListing parses the output of
// `ps -A -o pid,user,state,pri,ni,vsz,rss,pmem,pcpu,times,comm`.
// A header line is skipped. Lines that don't parse are dropped without error,
// since remote ps output isn't guaranteed to be well formed.
func ParsePSListing(output string) []process.Sample {
	var samples []process.Sample
	seen := make(map[int]bool)

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if isPSHeader(line) {
			continue
		}

		s, ok := ParsePSLine(line)
		if !ok || seen[s.PID] {
			continue
		}
		seen[s.PID] = true
		samples = append(samples, s)
	}

	return samples
}

// ParsePSLine parses a single listing line. The command name is the last
// column; anything after the tenth field belongs to it.
func ParsePSLine(line string) (process.Sample, bool) {
	fields := strings.Fields(line)
	if len(fields) < PSColumns {
		return process.Sample{}, false
	}

	pid, err := strconv.Atoi(fields[0])
	if err != nil || pid <= 0 {
		return process.Sample{}, false
	}

	pri, ok := parseSchedValue(fields[3])
	if !ok {
		return process.Sample{}, false
	}
	ni, ok := parseSchedValue(fields[4])
	if !ok {
		return process.Sample{}, false
	}

	vszKB, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return process.Sample{}, false
	}
	rssKB, err := strconv.ParseUint(fields[6], 10, 64)
	if err != nil {
		return process.Sample{}, false
	}
	pmem, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return process.Sample{}, false
	}
	pcpu, err := strconv.ParseFloat(fields[8], 64)
	if err != nil {
		return process.Sample{}, false
	}
	secs, ok := parseCPUTime(fields[9])
	if !ok {
		return process.Sample{}, false
	}

	return process.Sample{
		PID:        pid,
		User:       fields[1],
		State:      fields[2][0],
		Priority:   pri,
		Nice:       ni,
		Virt:       vszKB * 1024,
		Res:        rssKB * 1024,
		Shr:        0, // not available from ps
		MemPercent: pmem,
		CPUPercent: pcpu, // ps's own figure, deliberately not re-derived
		CPUTicks:   secs * RemoteClockTicks,
		CPUTime:    time.Duration(secs) * time.Second,
		Name:       strings.Join(fields[PSColumns-1:], " "),
	}, true
}

func isPSHeader(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == "PID"
}

// parseSchedValue parses PRI/NI. ps prints "-" for realtime tasks that
// have no nice value; those read as 0.
func parseSchedValue(s string) (int64, bool) {
	if s == "-" {
		return 0, true
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseCPUTime accepts plain seconds ("times") as well as the
// [[dd-]hh:]mm:ss form some ps builds print instead.
func parseCPUTime(s string) (uint64, bool) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, true
	}

	var days uint64
	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		d, err := strconv.ParseUint(s[:dash], 10, 64)
		if err != nil {
			return 0, false
		}
		days = d
		s = s[dash+1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	var total uint64
	for _, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return 0, false
		}
		total = total*60 + v
	}
	return days*86400 + total, true
}
