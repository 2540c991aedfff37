package budget

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
	"github.com/vdbox/scalability/pipesync"
)

// Features are the per-stream options that change which commands a frame emits
type Features struct {
	// PipeCount is the number of pipes the frame is split across. Zero is treated as one.
	PipeCount int
	// ScalingEngine chains the scaling engine after decode. It is only available on a single pipe.
	ScalingEngine bool
	// TileReplay decodes the frame in tile-based replay passes, which forces a single pipe
	TileReplay bool
	// HighBitDepth selects the wider quantization matrix commands used above 8 bits per sample
	HighBitDepth bool
	// FrontEndSeparateSubmission submits the front end on its own context
	FrontEndSeparateSubmission bool
}

// EffectivePipeCount is the number of pipes the frame actually runs on
func (f Features) EffectivePipeCount() int {
	if f.TileReplay || f.PipeCount < 1 {
		return 1
	}
	return f.PipeCount
}

// Capacity is the command budget of one phase: the picture level commands, and separately the
// commands repeated once per tile or slice
type Capacity struct {
	Picture cmdbuf.Budget
	Tile    cmdbuf.Budget
}

// PhaseBudget is the budget of a phase that emits the provided number of tiles
func (c Capacity) PhaseBudget(tiles int) cmdbuf.Budget {
	return c.Picture.Add(c.Tile.Scale(hwutils.Max(tiles, 1)))
}

func (c Capacity) IsZero() bool {
	return c.Picture.IsZero() && c.Tile.IsZero()
}

// Manifests returns the worst-case picture and tile level codec commands of one phase. The
// synchronization wrapped around the phase is not included. It fails with an error marked
// hwutils.ErrUnsupportedConfiguration when the mode or the feature combination is not supported.
func Manifests(mode codec.Mode, features Features, table *caps.Table) (picture cmdbuf.Manifest, tile cmdbuf.Manifest, err error) {
	if table == nil {
		return nil, nil, errors.New("attempted to estimate command capacity without a capability table")
	}

	modeCaps, err := table.Mode(mode)
	if err != nil {
		return nil, nil, err
	}
	known, ok := manifests[mode]
	if !ok {
		return nil, nil, errors.Mark(errors.Newf("no command manifest is known for codec mode %s", mode), hwutils.ErrUnsupportedConfiguration)
	}

	pipes := features.EffectivePipeCount()
	if pipes > 1 && !modeCaps.Scalable {
		return nil, nil, errors.Mark(errors.Newf("codec mode %s does not support %d pipes", mode, pipes), hwutils.ErrUnsupportedConfiguration)
	}
	if features.TileReplay && !modeCaps.TileReplay {
		return nil, nil, errors.Mark(errors.Newf("codec mode %s does not support tile-based replay", mode), hwutils.ErrUnsupportedConfiguration)
	}
	if features.ScalingEngine && pipes > 1 {
		return nil, nil, errors.Mark(errors.Newf("the scaling engine cannot be chained after a frame split across %d pipes", pipes), hwutils.ErrUnsupportedConfiguration)
	}
	if features.HighBitDepth && !known.highBitDepth {
		return nil, nil, errors.Mark(errors.Newf("codec mode %s does not support extended bit depth", mode), hwutils.ErrUnsupportedConfiguration)
	}

	picture = known.picture.Clone()
	picture.Merge(statusReport, 1)
	if features.HighBitDepth {
		picture.Add(caps.HcpQmStateWide, known.qmStates)
	} else {
		picture.Add(caps.HcpQmState, known.qmStates)
	}
	if features.ScalingEngine {
		picture.Merge(scalingEngine, 1)
	}
	if features.TileReplay {
		picture.Merge(tileReplay, 1)
	}

	return picture, known.tile.Clone(), nil
}

// Estimate computes the command capacity of one phase of a frame decoded with mode on hardware of
// generation gen. The result is an upper bound, never a prediction. Unknown modes and generations
// fail closed: the returned Capacity is zero and the error is marked
// hwutils.ErrUnsupportedConfiguration.
func Estimate(mode codec.Mode, gen caps.Generation, features Features, table *caps.Table) (Capacity, error) {
	picture, tile, err := Manifests(mode, features, table)
	if err != nil {
		return Capacity{}, err
	}

	pipes := features.EffectivePipeCount()
	sync, err := pipesync.WorstCaseManifest(pipes, features.FrontEndSeparateSubmission)
	if err != nil {
		return Capacity{}, err
	}
	// Each phase's budget covers the synchronization of every phase of the frame
	picture.Merge(sync, pipes)

	costs, err := table.Costs(gen)
	if err != nil {
		return Capacity{}, err
	}

	var capacity Capacity
	capacity.Picture, err = picture.Budget(costs)
	if err != nil {
		return Capacity{}, errors.Wrapf(err, "codec mode %s on %s", mode, gen)
	}
	capacity.Tile, err = tile.Budget(costs)
	if err != nil {
		return Capacity{}, errors.Wrapf(err, "codec mode %s on %s", mode, gen)
	}

	return capacity, nil
}
