package caps

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
	"golang.org/x/exp/slices"
)

// ModeCaps describes what a codec mode needs from the orchestration core
type ModeCaps struct {
	// Scalable indicates that the mode can be split across more than one pipe
	Scalable bool
	// TileReplay indicates that the mode supports tile-based replay
	TileReplay bool
	// Buffers lists the scratch buffers every frame of this mode needs
	Buffers []BufferKind
	// ScalableBuffers lists the additional scratch buffers needed when the frame runs on more than one pipe
	ScalableBuffers []BufferKind
}

func (c ModeCaps) clone() ModeCaps {
	return ModeCaps{
		Scalable:        c.Scalable,
		TileReplay:      c.TileReplay,
		Buffers:         slices.Clone(c.Buffers),
		ScalableBuffers: slices.Clone(c.ScalableBuffers),
	}
}

// TableCreateInfo holds the contents of a capability Table before validation
type TableCreateInfo struct {
	Generations map[Generation]CommandCosts
	Sizing      map[BufferKind]SizingRule
	Modes       map[codec.Mode]ModeCaps
}

// Table is the immutable hardware-capability configuration injected into a decode session. It
// combines per-generation command costs, scratch buffer sizing rules and per-mode requirements.
// A Table is safe for concurrent use.
type Table struct {
	generations map[Generation]CommandCosts
	sizing      map[BufferKind]SizingRule
	modes       map[codec.Mode]ModeCaps
}

// NewTable validates the provided contents and copies them into a new Table. Later changes to the
// maps in createInfo do not affect the Table.
func NewTable(createInfo TableCreateInfo) (*Table, error) {
	table := &Table{
		generations: make(map[Generation]CommandCosts, len(createInfo.Generations)),
		sizing:      make(map[BufferKind]SizingRule, len(createInfo.Sizing)),
		modes:       make(map[codec.Mode]ModeCaps, len(createInfo.Modes)),
	}

	for gen, costs := range createInfo.Generations {
		if gen == GenerationUnknown {
			return nil, errors.New("the capability table may not describe the unknown generation")
		}

		for op, cost := range costs {
			if op == OpInvalid || op >= opcodeCount {
				return nil, errors.Newf("generation %s: invalid opcode %d", gen, op)
			}
			if cost.Bytes <= 0 || cost.References < 0 {
				return nil, errors.Newf("generation %s: command %s has invalid cost %+v", gen, op, cost)
			}
		}

		table.generations[gen] = costs.clone()
	}

	for kind, rule := range createInfo.Sizing {
		if kind == BufferInvalid {
			return nil, errors.New("the capability table may not size the invalid buffer kind")
		}

		err := rule.Validate()
		if err != nil {
			return nil, errors.Wrapf(err, "buffer %s", kind)
		}

		table.sizing[kind] = rule
	}

	for mode, modeCaps := range createInfo.Modes {
		if mode == codec.ModeUnknown {
			return nil, errors.New("the capability table may not describe the unknown codec mode")
		}

		for _, kind := range modeCaps.Buffers {
			if _, ok := table.sizing[kind]; !ok {
				return nil, errors.Newf("mode %s needs buffer %s, which has no sizing rule", mode, kind)
			}
		}
		for _, kind := range modeCaps.ScalableBuffers {
			if _, ok := table.sizing[kind]; !ok {
				return nil, errors.Newf("mode %s needs buffer %s, which has no sizing rule", mode, kind)
			}
		}

		if !modeCaps.Scalable && len(modeCaps.ScalableBuffers) > 0 {
			return nil, errors.Newf("mode %s is not scalable but lists scalable buffers", mode)
		}

		table.modes[mode] = modeCaps.clone()
	}

	return table, nil
}

// Costs returns the command cost table for a hardware generation. Generations the table does not
// describe fail closed with an error marked hwutils.ErrUnsupportedConfiguration.
func (t *Table) Costs(gen Generation) (CostTable, error) {
	costs, ok := t.generations[gen]
	if !ok {
		return nil, errors.Mark(errors.Newf("hardware generation %s is not described by the capability table", gen), hwutils.ErrUnsupportedConfiguration)
	}
	return costs, nil
}

// Sizing returns the sizing rule for a scratch buffer
func (t *Table) Sizing(kind BufferKind) (SizingRule, error) {
	rule, ok := t.sizing[kind]
	if !ok {
		return SizingRule{}, errors.Mark(errors.Newf("buffer %s has no sizing rule", kind), hwutils.ErrUnsupportedConfiguration)
	}
	return rule, nil
}

// RequiredBytes computes how large the scratch buffer of the provided kind must be for a frame
func (t *Table) RequiredBytes(kind BufferKind, geometry codec.FrameGeometry) (int, error) {
	rule, err := t.Sizing(kind)
	if err != nil {
		return 0, err
	}
	return rule.RequiredBytes(geometry), nil
}

// Mode returns the requirements of a codec mode
func (t *Table) Mode(mode codec.Mode) (ModeCaps, error) {
	modeCaps, ok := t.modes[mode]
	if !ok {
		return ModeCaps{}, errors.Mark(errors.Newf("codec mode %s is not described by the capability table", mode), hwutils.ErrUnsupportedConfiguration)
	}
	return modeCaps.clone(), nil
}

// BuffersFor lists every scratch buffer a frame of the provided mode needs, including the
// multi-pipe buffers when scalable is true
func (t *Table) BuffersFor(mode codec.Mode, scalable bool) ([]BufferKind, error) {
	modeCaps, ok := t.modes[mode]
	if !ok {
		return nil, errors.Mark(errors.Newf("codec mode %s is not described by the capability table", mode), hwutils.ErrUnsupportedConfiguration)
	}

	if scalable && !modeCaps.Scalable {
		return nil, errors.Mark(errors.Newf("codec mode %s does not support more than one pipe", mode), hwutils.ErrUnsupportedConfiguration)
	}

	kinds := slices.Clone(modeCaps.Buffers)
	if scalable {
		kinds = append(kinds, modeCaps.ScalableBuffers...)
	}
	return kinds, nil
}

// Generations lists the hardware generations the table describes, in ascending order
func (t *Table) Generations() []Generation {
	gens := make([]Generation, 0, len(t.generations))
	for gen := range t.generations {
		gens = append(gens, gen)
	}
	slices.Sort(gens)
	return gens
}

// Modes lists the codec modes the table describes, in ascending order
func (t *Table) Modes() []codec.Mode {
	modes := make([]codec.Mode, 0, len(t.modes))
	for mode := range t.modes {
		modes = append(modes, mode)
	}
	slices.Sort(modes)
	return modes
}

func (t *Table) bufferKinds() []BufferKind {
	kinds := make([]BufferKind, 0, len(t.sizing))
	for kind := range t.sizing {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}
