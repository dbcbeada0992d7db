package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	"github.com/rileyhilliard/mytop/internal/monitor/parsers"
	"github.com/rileyhilliard/mytop/internal/process"
	"github.com/rileyhilliard/mytop/pkg/sshutil"
)

// RemoteSampler lists processes on a remote host by running ListingCommand
// over an existing session. It holds no per-host state: CPU percentages come
// from ps as-is.
type RemoteSampler struct {
	log logger.Logger
	now func() time.Time
}

// NewRemoteSampler creates a remote sampler.
func NewRemoteSampler(log logger.Logger) *RemoteSampler {
	if log == nil {
		log = logger.Noop()
	}
	return &RemoteSampler{log: log, now: time.Now}
}

// Sample runs the listing on client and parses the result. Only transport
// failures are returned; lines that don't parse are dropped.
func (r *RemoteSampler) Sample(client sshutil.SSHClient) (process.Batch, error) {
	stdout := &sshutil.LimitedBuffer{Max: MaxListingBytes}
	stderr := &sshutil.LimitedBuffer{Max: 4096}

	exitCode, err := client.ExecStream(ListingCommand, stdout, stderr)
	if err != nil {
		return process.Batch{}, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't list processes on '%s'", client.GetHost()),
			"The connection may have dropped.")
	}
	if stdout.Truncated() {
		r.log.Warn("listing from %s exceeded %d bytes, tail dropped", client.GetHost(), MaxListingBytes)
	}

	output := stdout.String()
	if exitCode != 0 && strings.TrimSpace(output) == "" {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", exitCode)
		}
		return process.Batch{}, errors.New(errors.ErrExec,
			fmt.Sprintf("ps failed on '%s': %s", client.GetHost(), msg),
			"The remote host needs a procps-compatible ps.")
	}

	samples := parsers.ParsePSListing(output)
	r.log.Debug("remote pass on %s: %d processes", client.GetHost(), len(samples))

	return process.Batch{
		Samples: samples,
		Taken:   r.now(),
	}, nil
}
