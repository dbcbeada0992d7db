package monitor

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/rileyhilliard/mytop/internal/errors"
	"github.com/rileyhilliard/mytop/internal/logger"
	sshtesting "github.com/rileyhilliard/mytop/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSampler_Sample(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.AddProcess(sshtesting.MockProcess{PID: 1, User: "root", State: 'S', Pri: 19, VSZKB: 168000, RSSKB: 12000, PMem: 0.3, PCPU: 0.0, Seconds: 12, Comm: "systemd"})
	client.AddProcess(sshtesting.MockProcess{PID: 812, User: "www", State: 'R', Pri: 19, VSZKB: 50000, RSSKB: 8000, PMem: 0.2, PCPU: 37.5, Seconds: 3600, Comm: "nginx"})

	b, err := NewRemoteSampler(nil).Sample(client)
	require.NoError(t, err)
	assert.False(t, b.Seeded)
	require.Equal(t, 2, b.Len())

	assert.Equal(t, []string{ListingCommand}, client.History())

	// ps lists in pid order
	nginx := b.Samples[1]
	assert.Equal(t, 812, nginx.PID)
	assert.Equal(t, "www", nginx.User)
	assert.Equal(t, uint64(50000*1024), nginx.Virt)
	assert.Equal(t, uint64(8000*1024), nginx.Res)
	assert.Zero(t, nginx.Shr)
	assert.InDelta(t, 37.5, nginx.CPUPercent, 1e-9, "ps's own CPU figure is kept")
}

func TestRemoteSampler_HeaderOnly(t *testing.T) {
	client := sshtesting.NewMockClient("web1")

	b, err := NewRemoteSampler(nil).Sample(client)
	require.NoError(t, err)
	assert.Zero(t, b.Len())
}

func TestRemoteSampler_DropsMalformedLines(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse(ListingCommand, sshtesting.CommandResponse{
		Stdout: []byte("PID USER S PRI NI VSZ RSS %MEM %CPU TIME COMMAND\n" +
			"1 root S 19 0 100 10 0.1 0.0 5 init\n" +
			"2 root S 19 0 100 10 0.1\n"),
	})

	b, err := NewRemoteSampler(nil).Sample(client)
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())
	assert.Equal(t, "init", b.Samples[0].Name)
}

func TestRemoteSampler_TransportError(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse(ListingCommand, sshtesting.CommandResponse{Error: stderrors.New("EOF")})

	_, err := NewRemoteSampler(nil).Sample(client)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}

func TestRemoteSampler_CommandFailed(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse(ListingCommand, sshtesting.CommandResponse{
		Stderr:   []byte("ps: unknown option -- o\n"),
		ExitCode: 1,
	})

	_, err := NewRemoteSampler(nil).Sample(client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")
}

func TestRemoteSampler_Truncated(t *testing.T) {
	line := "1 root S 19 0 100 10 0.1 0.0 5 init\n"
	big := strings.Repeat(line, MaxListingBytes/len(line)+10)
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse(ListingCommand, sshtesting.CommandResponse{Stdout: []byte(big)})
	log := logger.NewBufferLogger()

	b, err := NewRemoteSampler(log).Sample(client)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len(), "duplicate pids collapse to one sample")
	assert.True(t, log.HasLevel("warn"))
}
