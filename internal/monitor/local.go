package monitor

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/internal/monitor/parsers"
	"github.com/rileyhilliard/mytop/internal/process"
)

// DefaultProcRoot is where procfs is normally mounted.
const DefaultProcRoot = "/proc"

// LocalSampler reads the local process table from procfs. It keeps the
// previous per-process tick counts and the previous system total between
// calls, so CPU percentages cover the interval since the last Sample.
//
// A LocalSampler is not safe for concurrent use.
type LocalSampler struct {
	root     string
	pageSize uint64
	log      logger.Logger

	prev      map[int]uint64 // pid -> cumulative ticks at the last pass
	prevTotal uint64
	primed    bool

	users      map[uint32]string
	lookupUser func(uid string) (string, error)
	now        func() time.Time
}

// NewLocalSampler creates a sampler over the procfs tree at root.
// An empty root means DefaultProcRoot.
func NewLocalSampler(root string, log logger.Logger) *LocalSampler {
	if root == "" {
		root = DefaultProcRoot
	}
	if log == nil {
		log = logger.Noop()
	}
	return &LocalSampler{
		root:     root,
		pageSize: uint64(os.Getpagesize()),
		log:      log,
		prev:     make(map[int]uint64),
		users:    make(map[uint32]string),
		lookupUser: func(uid string) (string, error) {
			u, err := user.LookupId(uid)
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
		now: time.Now,
	}
}

// Prime takes the baseline snapshot without producing a batch, so the
// first Sample already reports real CPU percentages.
func (s *LocalSampler) Prime() error {
	_, err := s.Sample()
	return err
}

// Sample scans every process once. The first call after construction only
// seeds the baseline: its batch is marked Seeded and every CPU% is zero.
func (s *LocalSampler) Sample() (process.Batch, error) {
	statData, err := os.ReadFile(filepath.Join(s.root, "stat"))
	if err != nil {
		return process.Batch{}, fmt.Errorf("read system cpu counters: %w", err)
	}
	total, err := parsers.ParseTotalCPU(string(statData))
	if err != nil {
		return process.Batch{}, err
	}

	var memTotal uint64
	if meminfo, err := os.ReadFile(filepath.Join(s.root, "meminfo")); err == nil {
		memTotal, _ = parsers.ParseMemTotal(string(meminfo))
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return process.Batch{}, fmt.Errorf("list processes: %w", err)
	}

	seeding := !s.primed
	batch := process.Batch{
		Samples: make([]process.Sample, 0, len(entries)),
		Taken:   s.now(),
		Seeded:  seeding,
	}

	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}

		sample, ok := s.readProcess(pid)
		if !ok {
			continue
		}

		if !seeding {
			sample.CPUPercent = process.CPUPercent(sample.CPUTicks, s.prev[pid], total, s.prevTotal)
		}
		sample.MemPercent = process.MemPercent(sample.Res, memTotal)
		s.prev[pid] = sample.CPUTicks

		batch.Samples = append(batch.Samples, sample)
	}

	s.prevTotal = total
	s.primed = true

	s.log.Debug("local pass: %d processes, total ticks %d", len(batch.Samples), total)
	return batch, nil
}

// readProcess gathers one pid. Any unreadable or malformed file skips the
// process; it most likely exited mid-scan.
func (s *LocalSampler) readProcess(pid int) (process.Sample, bool) {
	dir := filepath.Join(s.root, strconv.Itoa(pid))

	statData, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return process.Sample{}, false
	}
	st, err := parsers.ParseProcStat(string(statData))
	if err != nil {
		return process.Sample{}, false
	}

	statmData, err := os.ReadFile(filepath.Join(dir, "statm"))
	if err != nil {
		return process.Sample{}, false
	}
	virt, res, shr, err := parsers.ParseProcStatm(string(statmData), s.pageSize)
	if err != nil {
		return process.Sample{}, false
	}

	statusData, err := os.ReadFile(filepath.Join(dir, "status"))
	if err != nil {
		return process.Sample{}, false
	}
	uid, err := parsers.ParseStatusUID(string(statusData))
	if err != nil {
		return process.Sample{}, false
	}

	return process.Sample{
		PID:      pid,
		Name:     st.Comm,
		User:     s.userName(uid),
		State:    st.State,
		Priority: st.Priority,
		Nice:     st.Nice,
		Virt:     virt,
		Res:      res,
		Shr:      shr,
		CPUTicks: st.Ticks,
		CPUTime:  time.Duration(st.Ticks) * time.Second / parsers.LocalClockTicks,
	}, true
}

// userName resolves uid once and caches the answer, including the numeric
// fallback for uids with no passwd entry.
func (s *LocalSampler) userName(uid uint32) string {
	if name, ok := s.users[uid]; ok {
		return name
	}
	id := strconv.FormatUint(uint64(uid), 10)
	name, err := s.lookupUser(id)
	if err != nil || name == "" {
		name = id
	}
	s.users[uid] = name
	return name
}
