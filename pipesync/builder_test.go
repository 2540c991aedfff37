package pipesync_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/phase"
	"github.com/vdbox/scalability/pipesync"
)

var unlimited = cmdbuf.Budget{Bytes: math.MaxInt32, References: math.MaxInt32}

func gen12Costs(t *testing.T) caps.CostTable {
	costs, err := caps.Default().Costs(caps.Gen12)
	require.NoError(t, err)
	return costs
}

func planFor(t *testing.T, pipes int) phase.List {
	list, err := phase.Plan(phase.Option{PipeCount: pipes})
	require.NoError(t, err)
	return list
}

func buildFrame(t *testing.T, builder *pipesync.Builder, list phase.List) []*cmdbuf.Buffer {
	costs := gen12Costs(t)
	buffers := make([]*cmdbuf.Buffer, 0, len(list))
	for _, p := range list {
		buf := cmdbuf.NewBuffer(costs, unlimited)
		require.NoError(t, builder.Begin(p, buf))
		require.NoError(t, builder.LockPipe(buf))
		require.NoError(t, builder.UnlockPipe(buf))
		require.NoError(t, builder.End(p, buf))
		buffers = append(buffers, buf)
	}
	return buffers
}

func ops(buf *cmdbuf.Buffer) []caps.Opcode {
	var out []caps.Opcode
	for _, cmd := range buf.Commands() {
		out = append(out, cmd.Op)
	}
	return out
}

func TestCounters_Layout(t *testing.T) {
	seen := map[int]bool{}
	ids := []pipesync.CounterID{pipesync.CounterFrontEndDone, pipesync.CounterCompletion}
	for ordinal := 0; ordinal < phase.MaxPipes; ordinal++ {
		ids = append(ids, pipesync.BackEndDone(ordinal))
	}

	for _, id := range ids {
		require.True(t, id.Valid())
		addr := id.Address()
		require.Equal(t, caps.BufferSyncCounters, addr.Buffer)
		require.Zero(t, addr.Offset%pipesync.CounterStride)
		require.False(t, seen[addr.Offset], "counter %s shares an offset", id)
		seen[addr.Offset] = true
	}
	require.Len(t, seen, pipesync.CounterCount)
	require.False(t, pipesync.CounterID(pipesync.CounterCount).Valid())
	require.Equal(t, "BackEndDone3", pipesync.BackEndDone(3).String())

	required, err := caps.Default().RequiredBytes(caps.BufferSyncCounters, codec.FrameGeometry{
		Width: 64, Height: 64, BitDepth: 8, Chroma: codec.Chroma420, Mode: codec.ModeHEVC,
	})
	require.NoError(t, err)
	require.LessOrEqual(t, pipesync.CounterBytes, required)
}

func TestBuilder_Legacy(t *testing.T) {
	list := planFor(t, 1)
	builder, err := pipesync.NewBuilder(list, pipesync.Options{})
	require.NoError(t, err)

	buffers := buildFrame(t, builder, list)
	require.Len(t, buffers, 1)
	require.Equal(t, []caps.Opcode{
		caps.VdControlState, caps.MiFlushDw,
		caps.VdControlState, caps.VdControlState,
		caps.MiFlushDw,
	}, ops(buffers[0]))

	cmds := buffers[0].Commands()
	require.Equal(t, cmdbuf.ControlInit, cmds[0].Control)
	require.Equal(t, cmdbuf.ControlPipeLock, cmds[2].Control)
	require.Equal(t, cmdbuf.ControlPipeUnlock, cmds[3].Control)

	require.True(t, builder.Finished())
	counters := builder.Counters()
	require.True(t, counters.Settled())
}

func TestBuilder_FourPipes(t *testing.T) {
	list := planFor(t, 4)
	builder, err := pipesync.NewBuilder(list, pipesync.Options{StreamoutBytes: 4096})
	require.NoError(t, err)

	buffers := buildFrame(t, builder, list)
	require.Len(t, buffers, 5)
	require.True(t, builder.Finished())
	counters := builder.Counters()
	require.True(t, counters.Settled())

	frontEnd := buffers[0].Commands()
	require.Equal(t, []caps.Opcode{
		caps.VdControlState, caps.MiFlushDw,
		caps.VdControlState, caps.VdControlState,
		caps.MiFlushDw, caps.MiLoadRegisterReg, caps.MiLoadRegisterImm, caps.MiLoadRegisterImm, caps.MiLoadRegisterImm,
		caps.MiMath, caps.MiStoreRegisterMem,
		caps.MiAtomic,
	}, ops(buffers[0]))
	require.Equal(t, uint32(4096), frontEnd[7].Value)
	require.Equal(t, cmdbuf.Address{Buffer: caps.BufferFrontEndStatus, Offset: pipesync.StatusOverflowOffset}, frontEnd[10].Target)
	require.Equal(t, pipesync.CounterFrontEndDone.Address(), frontEnd[11].Target)
	require.Equal(t, cmdbuf.AtomicIncrement, frontEnd[11].Atomic)

	// Back end 1: gate on back end 0, reset and signal its own counter, then guard on the status word
	backEnd := buffers[2].Commands()
	require.Equal(t, []caps.Opcode{
		caps.VdControlState, caps.MiFlushDw,
		caps.MiWatchdogStop,
		caps.MiSemaphoreWait, caps.MiAtomic,
		caps.MiStoreDataImm, caps.MiAtomic,
		caps.MiConditionalBatchBufferEnd,
		caps.VdControlState, caps.VdControlState,
		caps.MiAtomic,
	}, ops(buffers[2]))
	require.Equal(t, pipesync.BackEndDone(0).Address(), backEnd[3].Target)
	require.Equal(t, pipesync.BackEndDone(0).Address(), backEnd[4].Target)
	require.Equal(t, cmdbuf.AtomicDecrement, backEnd[4].Atomic)
	require.Equal(t, pipesync.BackEndDone(1).Address(), backEnd[5].Target)
	require.Equal(t, pipesync.BackEndDone(1).Address(), backEnd[6].Target)
	require.Equal(t, cmdbuf.AtomicIncrement, backEnd[6].Atomic)
	require.Equal(t, caps.BufferFrontEndStatus, backEnd[7].Target.Buffer)
	require.Equal(t, pipesync.CounterCompletion.Address(), backEnd[10].Target)

	// Back end 0 gates on the front end
	require.Equal(t, pipesync.CounterFrontEndDone.Address(), buffers[1].Commands()[3].Target)

	// The last back end has nothing to signal at start and waits for the other three at the end
	last := buffers[4]
	require.Equal(t, 1, last.Count(caps.MiStoreDataImm))
	require.Equal(t, 1+3, last.Count(caps.MiAtomic))
	lastCmds := last.Commands()
	wait := lastCmds[len(lastCmds)-4]
	require.Equal(t, caps.MiSemaphoreWait, wait.Op)
	require.Equal(t, uint32(3), wait.Value)
	require.Equal(t, cmdbuf.CompareEqual, wait.Compare)

	for i, buf := range buffers[1:] {
		require.Equal(t, i, buf.Tags().Pipe)
		require.Equal(t, 1, buf.Count(caps.MiConditionalBatchBufferEnd))
		require.Equal(t, 1, buf.Count(caps.MiWatchdogStop))
	}
}

func TestBuilder_FrontEndSeparateSubmission(t *testing.T) {
	list := planFor(t, 3)
	builder, err := pipesync.NewBuilder(list, pipesync.Options{FrontEndSeparateSubmission: true})
	require.NoError(t, err)

	buffers := buildFrame(t, builder, list)
	counters := builder.Counters()
	require.True(t, counters.Settled())

	frontEnd := buffers[0].Tags()
	require.True(t, frontEnd.SeparateSubmission)
	require.Equal(t, []cmdbuf.SyncPoint{pipesync.SyncFrontEndDone}, frontEnd.Signals)
	require.Zero(t, buffers[0].Count(caps.MiAtomic))

	backEnd0 := buffers[1]
	require.Equal(t, []cmdbuf.SyncPoint{pipesync.SyncFrontEndDone}, backEnd0.Tags().Waits)
	require.False(t, backEnd0.Tags().SeparateSubmission)
	for _, cmd := range backEnd0.Commands() {
		require.NotEqual(t, pipesync.CounterFrontEndDone.Address(), cmd.Target)
	}

	require.Empty(t, buffers[2].Tags().Waits)
}

func TestBuilder_Ordering(t *testing.T) {
	list := planFor(t, 2)
	costs := gen12Costs(t)

	builder, err := pipesync.NewBuilder(list, pipesync.Options{})
	require.NoError(t, err)

	// A back end cannot begin ahead of the front end
	err = builder.Begin(list[1], cmdbuf.NewBuffer(costs, unlimited))
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))

	frontEnd := cmdbuf.NewBuffer(costs, unlimited)
	require.NoError(t, builder.Begin(list[0], frontEnd))

	// Nor while the front end is still open
	err = builder.Begin(list[1], cmdbuf.NewBuffer(costs, unlimited))
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))

	err = builder.UnlockPipe(frontEnd)
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))

	err = builder.LockPipe(cmdbuf.NewBuffer(costs, unlimited))
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))

	require.NoError(t, builder.LockPipe(frontEnd))
	err = builder.LockPipe(frontEnd)
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))

	err = builder.End(list[0], frontEnd)
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))

	require.NoError(t, builder.UnlockPipe(frontEnd))
	require.NoError(t, builder.End(list[0], frontEnd))
	require.False(t, builder.Finished())

	err = builder.End(list[0], frontEnd)
	require.True(t, errors.Is(err, pipesync.ErrPhaseOutOfOrder))
}

func TestBuilder_BudgetExceeded(t *testing.T) {
	list := planFor(t, 2)
	builder, err := pipesync.NewBuilder(list, pipesync.Options{})
	require.NoError(t, err)

	buf := cmdbuf.NewBuffer(gen12Costs(t), cmdbuf.Budget{Bytes: 16, References: 16})
	err = builder.Begin(list[0], buf)
	require.True(t, errors.Is(err, hwutils.ErrBudgetExceeded))

	err = builder.Begin(list[0], cmdbuf.NewBuffer(gen12Costs(t), unlimited))
	require.Error(t, err)
	require.False(t, builder.Finished())
}

func TestNewBuilder_RejectsMalformedList(t *testing.T) {
	_, err := pipesync.NewBuilder(nil, pipesync.Options{})
	require.Error(t, err)

	list := planFor(t, 2)
	list[0].IsFirst = false
	_, err = pipesync.NewBuilder(list, pipesync.Options{})
	require.Error(t, err)

	_, err = pipesync.NewBuilder(planFor(t, 2), pipesync.Options{StreamoutBytes: -1})
	require.Error(t, err)
}

func TestWorstCaseManifest(t *testing.T) {
	for pipes := 1; pipes <= phase.MaxPipes; pipes++ {
		for _, separate := range []bool{false, true} {
			manifest, err := pipesync.WorstCaseManifest(pipes, separate)
			require.NoError(t, err)

			for _, shortFormat := range []bool{false, true} {
				list, err := phase.Plan(phase.Option{PipeCount: pipes, ShortFormat: shortFormat})
				require.NoError(t, err)

				builder, err := pipesync.NewBuilder(list, pipesync.Options{FrontEndSeparateSubmission: separate})
				require.NoError(t, err)

				for _, buf := range buildFrame(t, builder, list) {
					for op, count := range buf.Manifest() {
						require.LessOrEqual(t, count, manifest[op], "pipes %d op %s", pipes, op)
					}
				}
			}
		}
	}

	manifest, err := pipesync.WorstCaseManifest(8, false)
	require.NoError(t, err)
	require.Equal(t, 8, manifest[caps.MiAtomic])
	require.Equal(t, 3, manifest[caps.VdControlState])

	_, err = pipesync.WorstCaseManifest(0, false)
	require.True(t, errors.Is(err, hwutils.ErrUnsupportedConfiguration))
}
