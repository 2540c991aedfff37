package caps

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vdbox/scalability/codec"
	"golang.org/x/exp/slices"
)

// LoadTable parses a capability table from the JSON format written by Table.Dump and validates it
// the same way NewTable does
func LoadTable(data []byte) (*Table, error) {
	createInfo := TableCreateInfo{
		Generations: make(map[Generation]CommandCosts),
		Sizing:      make(map[BufferKind]SizingRule),
		Modes:       make(map[codec.Mode]ModeCaps),
	}

	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "Generations":
			readGenerations(&r, createInfo.Generations)
		case "Sizing":
			readSizing(&r, createInfo.Sizing)
		case "Modes":
			readModes(&r, createInfo.Modes)
		default:
			_ = r.SkipValue()
		}
	}

	if err := r.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to parse capability table")
	}

	return NewTable(createInfo)
}

func readGenerations(r *jreader.Reader, out map[Generation]CommandCosts) {
	for genObj := r.Object(); genObj.Next(); {
		name := string(genObj.Name())
		gen := ParseGeneration(name)
		if gen == GenerationUnknown {
			r.AddError(errors.Newf("unknown generation %q", name))
			return
		}

		costs := CommandCosts{}
		for opObj := r.Object(); opObj.Next(); {
			opName := string(opObj.Name())
			op := ParseOpcode(opName)
			if op == OpInvalid {
				r.AddError(errors.Newf("generation %s: unknown command %q", name, opName))
				return
			}

			var cost CommandCost
			for costObj := r.Object(); costObj.Next(); {
				switch string(costObj.Name()) {
				case "Bytes":
					cost.Bytes = r.Int()
				case "References":
					cost.References = r.Int()
				default:
					_ = r.SkipValue()
				}
			}
			costs[op] = cost
		}
		out[gen] = costs
	}
}

func readPair(r *jreader.Reader) [2]int {
	var pair [2]int
	index := 0
	for arr := r.Array(); arr.Next(); {
		value := r.Int()
		if index < len(pair) {
			pair[index] = value
		}
		index++
	}
	if index != 0 && index != len(pair) {
		r.AddError(errors.Newf("expected %d values per bit depth class, found %d", len(pair), index))
	}
	return pair
}

func readSizing(r *jreader.Reader, out map[BufferKind]SizingRule) {
	for kindObj := r.Object(); kindObj.Next(); {
		name := string(kindObj.Name())
		kind := ParseBufferKind(name)
		if kind == BufferInvalid {
			r.AddError(errors.Newf("unknown buffer %q", name))
			return
		}

		var rule SizingRule
		for ruleObj := r.Object(); ruleObj.Next(); {
			switch string(ruleObj.Name()) {
			case "Extent":
				extentName := r.String()
				extent, ok := parseExtent(extentName)
				if !ok {
					r.AddError(errors.Newf("buffer %s: unknown extent %q", name, extentName))
					return
				}
				rule.Extent = extent
			case "Granularity":
				rule.Granularity = r.Int()
			case "BytesPerUnit":
				rule.BytesPerUnit = readPair(r)
			case "BytesPerUnitWideChroma":
				rule.BytesPerUnitWideChroma = readPair(r)
			case "Lockable":
				rule.Lockable = r.Bool()
			default:
				_ = r.SkipValue()
			}
		}
		out[kind] = rule
	}
}

func readBufferList(r *jreader.Reader) []BufferKind {
	var kinds []BufferKind
	for arr := r.Array(); arr.Next(); {
		name := r.String()
		kind := ParseBufferKind(name)
		if kind == BufferInvalid {
			r.AddError(errors.Newf("unknown buffer %q", name))
			return nil
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

func readModes(r *jreader.Reader, out map[codec.Mode]ModeCaps) {
	for modeObj := r.Object(); modeObj.Next(); {
		name := string(modeObj.Name())
		mode := codec.ParseMode(name)
		if mode == codec.ModeUnknown {
			r.AddError(errors.Newf("unknown codec mode %q", name))
			return
		}

		var modeCaps ModeCaps
		for capsObj := r.Object(); capsObj.Next(); {
			switch string(capsObj.Name()) {
			case "Scalable":
				modeCaps.Scalable = r.Bool()
			case "TileReplay":
				modeCaps.TileReplay = r.Bool()
			case "Buffers":
				modeCaps.Buffers = readBufferList(r)
			case "ScalableBuffers":
				modeCaps.ScalableBuffers = readBufferList(r)
			default:
				_ = r.SkipValue()
			}
		}
		out[mode] = modeCaps
	}
}

// Dump writes the table as JSON in the format LoadTable reads. Entries are written in ascending
// order so that dumps of equal tables are byte-identical.
func (t *Table) Dump(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	gensObj := obj.Name("Generations").Object()
	for _, gen := range t.Generations() {
		costs := t.generations[gen]
		ops := make([]Opcode, 0, len(costs))
		for op := range costs {
			ops = append(ops, op)
		}
		slices.Sort(ops)

		genObj := gensObj.Name(gen.String()).Object()
		for _, op := range ops {
			costObj := genObj.Name(op.String()).Object()
			costObj.Name("Bytes").Int(costs[op].Bytes)
			costObj.Name("References").Int(costs[op].References)
			costObj.End()
		}
		genObj.End()
	}
	gensObj.End()

	sizingObj := obj.Name("Sizing").Object()
	for _, kind := range t.bufferKinds() {
		rule := t.sizing[kind]

		ruleObj := sizingObj.Name(kind.String()).Object()
		ruleObj.Name("Extent").String(rule.Extent.String())
		ruleObj.Name("Granularity").Int(rule.Granularity)
		writePair(ruleObj.Name("BytesPerUnit"), rule.BytesPerUnit)
		if rule.BytesPerUnitWideChroma != [2]int{} {
			writePair(ruleObj.Name("BytesPerUnitWideChroma"), rule.BytesPerUnitWideChroma)
		}
		ruleObj.Name("Lockable").Bool(rule.Lockable)
		ruleObj.End()
	}
	sizingObj.End()

	modesObj := obj.Name("Modes").Object()
	for _, mode := range t.Modes() {
		modeCaps := t.modes[mode]

		modeObj := modesObj.Name(mode.String()).Object()
		modeObj.Name("Scalable").Bool(modeCaps.Scalable)
		modeObj.Name("TileReplay").Bool(modeCaps.TileReplay)
		writeBufferList(modeObj.Name("Buffers"), modeCaps.Buffers)
		writeBufferList(modeObj.Name("ScalableBuffers"), modeCaps.ScalableBuffers)
		modeObj.End()
	}
	modesObj.End()
}

// DumpString returns the JSON produced by Dump
func (t *Table) DumpString() string {
	writer := jwriter.NewWriter()
	t.Dump(&writer)
	return string(writer.Bytes())
}

func writePair(w *jwriter.Writer, pair [2]int) {
	arr := w.Array()
	arr.Int(pair[0])
	arr.Int(pair[1])
	arr.End()
}

func writeBufferList(w *jwriter.Writer, kinds []BufferKind) {
	arr := w.Array()
	for _, kind := range kinds {
		arr.String(kind.String())
	}
	arr.End()
}
