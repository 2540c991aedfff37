package cmdbuf_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/hwutils"
)

var testCosts = caps.CommandCosts{
	caps.MiFlushDw:        {Bytes: 20, References: 1},
	caps.MiAtomic:         {Bytes: 44, References: 1},
	caps.VdControlState:   {Bytes: 12},
	caps.MiBatchBufferEnd: {Bytes: 4},
}

func TestBuffer_Add(t *testing.T) {
	buf := cmdbuf.NewBuffer(testCosts, cmdbuf.Budget{Bytes: 100, References: 2})

	require.NoError(t, buf.Add(cmdbuf.Command{Op: caps.VdControlState, Control: cmdbuf.ControlInit}))
	require.NoError(t, buf.Add(cmdbuf.Command{Op: caps.MiFlushDw}))
	require.Equal(t, cmdbuf.Budget{Bytes: 32, References: 1}, buf.Used())

	require.NoError(t, buf.Add(cmdbuf.Command{Op: caps.MiAtomic, Atomic: cmdbuf.AtomicIncrement}))
	require.Equal(t, 3, buf.Len())

	// A second atomic would need a third reference
	err := buf.Add(cmdbuf.Command{Op: caps.MiAtomic})
	require.True(t, errors.Is(err, hwutils.ErrBudgetExceeded))
	require.Equal(t, 3, buf.Len())
	require.Equal(t, cmdbuf.Budget{Bytes: 76, References: 2}, buf.Used())

	require.NoError(t, buf.Add(cmdbuf.Command{Op: caps.MiBatchBufferEnd}))
	require.Equal(t, 1, buf.Count(caps.MiAtomic))
	require.Equal(t, cmdbuf.Manifest{
		caps.VdControlState:   1,
		caps.MiFlushDw:        1,
		caps.MiAtomic:         1,
		caps.MiBatchBufferEnd: 1,
	}, buf.Manifest())
}

func TestBuffer_UnpricedCommand(t *testing.T) {
	buf := cmdbuf.NewBuffer(testCosts, cmdbuf.Budget{Bytes: 1000, References: 100})

	err := buf.Add(cmdbuf.Command{Op: caps.HcpPicState})
	require.True(t, errors.Is(err, hwutils.ErrUnsupportedConfiguration))
	require.Equal(t, 0, buf.Len())
}

func TestBuffer_Tags(t *testing.T) {
	buf := cmdbuf.NewBuffer(testCosts, cmdbuf.Budget{Bytes: 1000, References: 100})
	buf.SetPipe(2)
	buf.AddWait(1)
	buf.AddWait(1)
	buf.AddSignal(3)

	tags := buf.Tags()
	require.Equal(t, 2, tags.Pipe)
	require.Equal(t, []cmdbuf.SyncPoint{1}, tags.Waits)
	require.Equal(t, []cmdbuf.SyncPoint{3}, tags.Signals)

	tags.Waits[0] = 7
	require.Equal(t, []cmdbuf.SyncPoint{1}, buf.Tags().Waits)

	require.NoError(t, buf.Add(cmdbuf.Command{Op: caps.MiFlushDw}))
	buf.Reset()
	require.Equal(t, 0, buf.Len())
	require.True(t, buf.Used().IsZero())
	require.Empty(t, buf.Tags().Waits)
}

func TestManifest_Budget(t *testing.T) {
	manifest := cmdbuf.Manifest{}
	manifest.Add(caps.MiFlushDw, 2)
	manifest.Add(caps.MiAtomic, 0)

	other := cmdbuf.Manifest{caps.MiAtomic: 1, caps.VdControlState: 2}
	manifest.Merge(other, 3)

	require.Equal(t, []caps.Opcode{caps.MiFlushDw, caps.MiAtomic, caps.VdControlState}, manifest.Ops())

	budget, err := manifest.Budget(testCosts)
	require.NoError(t, err)
	require.Equal(t, cmdbuf.Budget{Bytes: 2*20 + 3*44 + 6*12, References: 2 + 3}, budget)

	manifest.Add(caps.HcpPicState, 1)
	budget, err = manifest.Budget(testCosts)
	require.True(t, errors.Is(err, hwutils.ErrUnsupportedConfiguration))
	require.True(t, budget.IsZero())
}

func TestBudget_Arithmetic(t *testing.T) {
	b := cmdbuf.Budget{Bytes: 10, References: 1}
	require.Equal(t, cmdbuf.Budget{Bytes: 30, References: 3}, b.Scale(3))
	require.Equal(t, cmdbuf.Budget{Bytes: 20, References: 2}, b.Add(b))
	require.True(t, b.Covers(b))
	require.False(t, b.Covers(cmdbuf.Budget{Bytes: 11}))
}

func TestManifest_Widen(t *testing.T) {
	manifest := cmdbuf.Manifest{caps.MiFlushDw: 2, caps.MiAtomic: 1}
	manifest.Widen(cmdbuf.Manifest{caps.MiFlushDw: 1, caps.MiAtomic: 3, caps.MiMath: 1})

	require.Equal(t, cmdbuf.Manifest{caps.MiFlushDw: 2, caps.MiAtomic: 3, caps.MiMath: 1}, manifest)
}
