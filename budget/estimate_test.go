package budget_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/budget"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/phase"
	"github.com/vdbox/scalability/pipesync"
)

const tilesPerPhase = 3

func emitManifest(buf *cmdbuf.Buffer, manifest cmdbuf.Manifest, times int) error {
	for i := 0; i < times; i++ {
		for _, op := range manifest.Ops() {
			for n := 0; n < manifest[op]; n++ {
				err := buf.Add(cmdbuf.Command{Op: op})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func allFeatures() []budget.Features {
	var out []budget.Features
	for _, pipes := range []int{0, 1, 2, 3, 4, 8} {
		for mask := 0; mask < 16; mask++ {
			out = append(out, budget.Features{
				PipeCount:                  pipes,
				ScalingEngine:              mask&1 != 0,
				TileReplay:                 mask&2 != 0,
				HighBitDepth:               mask&4 != 0,
				FrontEndSeparateSubmission: mask&8 != 0,
			})
		}
	}
	return out
}

// Every phase of the largest legal frame for a configuration must fit in the estimate
func TestEstimate_Conservative(t *testing.T) {
	table := caps.Default()
	supported := 0

	for _, mode := range []codec.Mode{codec.ModeHEVC, codec.ModeVP9, codec.ModeAV1, codec.ModeAVC} {
		for _, gen := range []caps.Generation{caps.Gen11, caps.Gen12, caps.XeHPM} {
			for _, features := range allFeatures() {
				capacity, err := budget.Estimate(mode, gen, features, table)
				if err != nil {
					require.True(t, errors.Is(err, hwutils.ErrUnsupportedConfiguration), "%s %s %+v: %v", mode, gen, features, err)
					require.True(t, capacity.IsZero())
					continue
				}
				supported++

				picture, tile, err := budget.Manifests(mode, features, table)
				require.NoError(t, err)
				costs, err := table.Costs(gen)
				require.NoError(t, err)

				list, err := phase.Plan(phase.Option{
					PipeCount:   features.EffectivePipeCount(),
					TileReplay:  features.TileReplay,
					ShortFormat: true,
				})
				require.NoError(t, err)
				builder, err := pipesync.NewBuilder(list, pipesync.Options{
					FrontEndSeparateSubmission: features.FrontEndSeparateSubmission,
					StreamoutBytes:             1 << 20,
				})
				require.NoError(t, err)

				for _, p := range list {
					buf := cmdbuf.NewBuffer(costs, capacity.PhaseBudget(tilesPerPhase))
					require.NoError(t, builder.Begin(p, buf))
					require.NoError(t, emitManifest(buf, picture, 1), "%s %s %+v phase %d", mode, gen, features, p.Index)
					require.NoError(t, builder.LockPipe(buf))
					require.NoError(t, emitManifest(buf, tile, tilesPerPhase), "%s %s %+v phase %d", mode, gen, features, p.Index)
					require.NoError(t, builder.UnlockPipe(buf))
					require.NoError(t, builder.End(p, buf))
				}
				require.True(t, builder.Finished())
			}
		}
	}

	require.NotZero(t, supported)
}

func TestEstimate_FailsClosed(t *testing.T) {
	table := caps.Default()

	testCases := map[string]struct {
		mode     codec.Mode
		gen      caps.Generation
		features budget.Features
	}{
		"UnknownMode":        {mode: codec.ModeUnknown, gen: caps.Gen12},
		"UnknownGeneration":  {mode: codec.ModeHEVC, gen: caps.GenerationUnknown},
		"AV1OnGen11":         {mode: codec.ModeAV1, gen: caps.Gen11},
		"ScalableAVC":        {mode: codec.ModeAVC, gen: caps.Gen12, features: budget.Features{PipeCount: 2}},
		"HighBitDepthAVC":    {mode: codec.ModeAVC, gen: caps.Gen12, features: budget.Features{HighBitDepth: true}},
		"ScalingEngineSplit": {mode: codec.ModeHEVC, gen: caps.Gen12, features: budget.Features{PipeCount: 2, ScalingEngine: true}},
		"AV1TileReplay":      {mode: codec.ModeAV1, gen: caps.Gen12, features: budget.Features{TileReplay: true}},
		"TooManyPipes":       {mode: codec.ModeHEVC, gen: caps.Gen12, features: budget.Features{PipeCount: phase.MaxPipes + 1}},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			capacity, err := budget.Estimate(testCase.mode, testCase.gen, testCase.features, table)
			require.True(t, errors.Is(err, hwutils.ErrUnsupportedConfiguration), "%v", err)
			require.True(t, capacity.IsZero())
		})
	}

	_, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{}, nil)
	require.Error(t, err)
}

func TestEstimate_Growth(t *testing.T) {
	table := caps.Default()

	single, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{PipeCount: 1}, table)
	require.NoError(t, err)
	dual, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{PipeCount: 2}, table)
	require.NoError(t, err)
	quad, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{PipeCount: 4}, table)
	require.NoError(t, err)
	require.Less(t, single.Picture.Bytes, dual.Picture.Bytes)
	require.Less(t, dual.Picture.Bytes, quad.Picture.Bytes)
	require.Equal(t, single.Tile, quad.Tile)

	wide, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{HighBitDepth: true}, table)
	require.NoError(t, err)
	require.Greater(t, wide.Picture.Bytes, single.Picture.Bytes)

	scaled, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{ScalingEngine: true}, table)
	require.NoError(t, err)
	require.Greater(t, scaled.Picture.Bytes, single.Picture.Bytes)
	require.Greater(t, scaled.Picture.References, single.Picture.References)

	// Replay forces one pipe no matter how many were requested
	replay, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{TileReplay: true}, table)
	require.NoError(t, err)
	replayQuad, err := budget.Estimate(codec.ModeHEVC, caps.Gen12, budget.Features{TileReplay: true, PipeCount: 4}, table)
	require.NoError(t, err)
	require.Equal(t, replay, replayQuad)
	require.Greater(t, replay.Picture.Bytes, single.Picture.Bytes)

	newer, err := budget.Estimate(codec.ModeHEVC, caps.XeHPM, budget.Features{PipeCount: 4}, table)
	require.NoError(t, err)
	require.Greater(t, newer.Picture.Bytes, quad.Picture.Bytes)
}

func TestEstimate_SyntheticTable(t *testing.T) {
	costs := caps.CommandCosts{}
	for _, op := range []caps.Opcode{
		caps.MfxPipeModeSelect, caps.MfxSurfaceState, caps.MfxPipeBufAddrState, caps.MfxIndObjBaseAddrState,
		caps.MfxBspBufBaseAddrState, caps.MfxAvcImgState, caps.MfxQmState, caps.MfxAvcDirectModeState,
		caps.MfxAvcRefIdxState, caps.MfxAvcWeightOffsetState, caps.MfxAvcSliceState, caps.MfdAvcBsdObject, caps.MfxWait,
		caps.MiFlushDw, caps.MiStoreDataImm, caps.MiStoreRegisterMem, caps.MiBatchBufferEnd, caps.VdControlState,
	} {
		costs[op] = caps.CommandCost{Bytes: 1, References: 1}
	}

	table, err := caps.NewTable(caps.TableCreateInfo{
		Generations: map[caps.Generation]caps.CommandCosts{caps.Gen12: costs},
		Modes: map[codec.Mode]caps.ModeCaps{
			codec.ModeAVC: {},
		},
	})
	require.NoError(t, err)

	capacity, err := budget.Estimate(codec.ModeAVC, caps.Gen12, budget.Features{}, table)
	require.NoError(t, err)

	// 11 picture commands, 5 status report commands, and init, flush, lock, unlock, flush
	require.Equal(t, cmdbuf.Budget{Bytes: 11 + 5 + 5, References: 11 + 5 + 5}, capacity.Picture)
	require.Equal(t, cmdbuf.Budget{Bytes: 7, References: 7}, capacity.Tile)
	require.Equal(t, cmdbuf.Budget{Bytes: 21 + 14, References: 21 + 14}, capacity.PhaseBudget(2))
}
