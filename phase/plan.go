package phase

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/hwutils"
)

// MaxPipes is the largest number of back-end pipes a frame can be split across
const MaxPipes = 8

// Tiling is how a scalable frame's columns are distributed across back ends
type Tiling uint32

const (
	// TilingSingleColumn does not split columns; the back ends cooperate through the streamout buffer only
	TilingSingleColumn Tiling = iota
	// TilingRealTile assigns the bitstream's own tile columns to pipes round-robin
	TilingRealTile
	// TilingVirtual splits the frame into even vertical stripes of CTB columns
	TilingVirtual
)

var tilingMapping = map[Tiling]string{
	TilingSingleColumn: "SingleColumn",
	TilingRealTile:     "RealTile",
	TilingVirtual:      "Virtual",
}

func (t Tiling) String() string {
	return tilingMapping[t]
}

// Option is the scalability configuration requested for one frame
type Option struct {
	// PipeCount is the number of pipes the frame should be split across, 1 through MaxPipes
	PipeCount int
	Tiling    Tiling
	// ResolutionStable indicates the stream has not changed geometry since the previous frame. It
	// does not change the phases that are planned.
	ResolutionStable bool
	// TileReplay forces a single pipe, because replay cannot run concurrently on several pipes
	TileReplay bool
	// ShortFormat prepends a conversion phase that expands short-format slice parameters
	ShortFormat bool
	// WidthInCtb is the frame width in CTBs, used to split columns under TilingVirtual
	WidthInCtb int
	// TileColumns is the number of tile columns in the bitstream, used under TilingRealTile
	TileColumns int
}

// Plan decomposes a frame into its ordered phases. It is a pure function of option.
//
// A single-pipe frame is one legacy phase that is both first and last. A frame split across P
// pipes is one front-end phase followed by P back-end phases, where back end k runs on pipe k
// and the back end with ordinal P-1 is last. With ShortFormat, a conversion phase runs first and
// takes the first marker. This holds for single-pipe frames too: the conversion phase is first and
// the legacy phase is last, so the two markers no longer fall on one phase.
func Plan(option Option) (List, error) {
	pipeCount := option.PipeCount
	if pipeCount < 1 || pipeCount > MaxPipes {
		return nil, errors.Mark(errors.Newf("pipe count must be between 1 and %d, but was %d", MaxPipes, pipeCount), hwutils.ErrUnsupportedConfiguration)
	}
	if _, ok := tilingMapping[option.Tiling]; !ok {
		return nil, errors.Mark(errors.Newf("unknown tiling strategy %d", option.Tiling), hwutils.ErrUnsupportedConfiguration)
	}

	if option.TileReplay {
		pipeCount = 1
	}

	var list List
	if option.ShortFormat {
		list = append(list, Phase{Mode: WorkModeShortFormat})
	}

	if pipeCount == 1 {
		list = append(list, Phase{Mode: WorkModeLegacy})
	} else {
		columns, err := splitColumns(option, pipeCount)
		if err != nil {
			return nil, err
		}

		list = append(list, Phase{Mode: WorkModeFrontEnd})
		for ordinal := 0; ordinal < pipeCount; ordinal++ {
			list = append(list, Phase{
				Pipe:    ordinal,
				Mode:    WorkModeBackEnd,
				Ordinal: ordinal,
				Columns: columns[ordinal],
			})
		}
	}

	for i := range list {
		list[i].Index = i
	}
	list[0].IsFirst = true
	list[len(list)-1].IsLast = true

	hwutils.DebugValidate(list)
	return list, nil
}

func splitColumns(option Option, pipeCount int) ([][]ColumnSpan, error) {
	columns := make([][]ColumnSpan, pipeCount)

	switch option.Tiling {
	case TilingSingleColumn:
		return columns, nil
	case TilingVirtual:
		if option.WidthInCtb <= 0 {
			return columns, nil
		}
		if option.WidthInCtb < pipeCount {
			return nil, errors.Mark(errors.Newf("cannot split %d CTB columns across %d pipes", option.WidthInCtb, pipeCount), hwutils.ErrUnsupportedConfiguration)
		}

		base := option.WidthInCtb / pipeCount
		remainder := option.WidthInCtb % pipeCount
		start := 0
		for pipe := 0; pipe < pipeCount; pipe++ {
			count := base
			if pipe < remainder {
				count++
			}
			columns[pipe] = []ColumnSpan{{Start: start, Count: count}}
			start += count
		}
	case TilingRealTile:
		if option.TileColumns < 0 {
			return nil, errors.Newf("tile column count must not be negative, but was %d", option.TileColumns)
		}
		for column := 0; column < option.TileColumns; column++ {
			pipe := column % pipeCount
			columns[pipe] = append(columns[pipe], ColumnSpan{Start: column, Count: 1})
		}
	}

	return columns, nil
}
