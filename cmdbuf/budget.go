package cmdbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"golang.org/x/exp/slices"
)

// Budget is the upper bound on what one phase's command stream may consume
type Budget struct {
	Bytes      int
	References int
}

func (b Budget) Add(other Budget) Budget {
	return Budget{
		Bytes:      b.Bytes + other.Bytes,
		References: b.References + other.References,
	}
}

func (b Budget) Scale(count int) Budget {
	return Budget{
		Bytes:      b.Bytes * count,
		References: b.References * count,
	}
}

// Covers reports whether used fits inside the budget
func (b Budget) Covers(used Budget) bool {
	return used.Bytes <= b.Bytes && used.References <= b.References
}

func (b Budget) IsZero() bool {
	return b.Bytes == 0 && b.References == 0
}

// Manifest counts how many times each command may be emitted. Manifests describe worst cases:
// a command emitted a data-dependent number of times appears with its maximum count.
type Manifest map[caps.Opcode]int

// Add records count more emissions of op
func (m Manifest) Add(op caps.Opcode, count int) {
	if count == 0 {
		return
	}
	m[op] += count
}

// Merge adds every entry of other, scaled by times
func (m Manifest) Merge(other Manifest, times int) {
	for op, count := range other {
		m.Add(op, count*times)
	}
}

// Widen raises every entry to at least its count in other. It combines the manifests of
// alternative command sequences into one that covers whichever of them is emitted.
func (m Manifest) Widen(other Manifest) {
	for op, count := range other {
		if count > m[op] {
			m[op] = count
		}
	}
}

func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	out.Merge(m, 1)
	return out
}

// Ops lists the commands in the manifest in ascending order
func (m Manifest) Ops() []caps.Opcode {
	ops := make([]caps.Opcode, 0, len(m))
	for op := range m {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// Budget prices the manifest with a cost table. Any command the table cannot price fails the whole
// manifest rather than being left out of the sum.
func (m Manifest) Budget(costs caps.CostTable) (Budget, error) {
	var total Budget
	for _, op := range m.Ops() {
		cost, err := costs.Cost(op)
		if err != nil {
			return Budget{}, err
		}

		count := m[op]
		if count < 0 {
			return Budget{}, errors.AssertionFailedf("command %s has negative count %d", op, count)
		}

		total = total.Add(Budget{Bytes: cost.Bytes, References: cost.References}.Scale(count))
	}
	return total, nil
}
