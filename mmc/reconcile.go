package mmc

import (
	"golang.org/x/exp/slices"
)

// maxSkipSlots is the number of reference slots the skip mask can describe
const maxSkipSlots = 32

// Result is the compression state the emission layer programs for one frame
type Result struct {
	Target     Target
	References ReferenceSet
	// Skipped is set for frames that are not inter predicted, which reconcile nothing
	Skipped bool
	// SelfReference is set when the target appears in its own reference list
	SelfReference bool
	// Mode is the compression mode every reference shares. It is CompressionDisabled when the
	// set is empty, or when an intra frame skipped reconciliation of a mixed set.
	Mode CompressionMode
	// Decompress lists the surfaces that must be decompressed in place, in order, before any
	// hardware programming for the frame. A surface appears at most once.
	Decompress   []SurfaceHandle
	Remediations []Remediation

	skipMask uint32
}

// SkipMask has bit i set when surface state for reference slot i must ignore compression: the
// slot aliases the decode target, or it holds a dummy surface. Slots past 31 are not represented.
func (r Result) SkipMask() uint32 {
	return r.skipMask
}

// Uniform reports whether every reference shares one compression mode
func (r Result) Uniform() bool {
	for _, entry := range r.References {
		if entry.Mode != r.References[0].Mode {
			return false
		}
	}
	return true
}

func (r *Result) decompress(surface SurfaceHandle) {
	if !slices.Contains(r.Decompress, surface) {
		r.Decompress = append(r.Decompress, surface)
	}
}

// Reconcile makes the target and its references safe for hardware to touch together. It never
// fails: hazards are resolved by giving up compression, and every resolution is recorded.
//
// A target that appears in its own reference list is forced to CompressionDisabled, and
// decompressed in place first if it held compressed data, so hardware never reads stale
// compressed tiles of the frame it is writing. Independently, a reference set that mixes
// compression modes has every compressed entry decompressed so the set is uniformly disabled.
// Neither refs nor its entries are modified; the reconciled state is returned.
func Reconcile(target Target, refs ReferenceSet, inter bool) Result {
	result := Result{
		Target:     target,
		References: slices.Clone(refs),
	}

	if !inter {
		result.Skipped = true
		result.Mode = uniformMode(result.References)
		result.skipMask = dummyMask(result.References)
		return result
	}

	compressedAlias := false
	for slot, entry := range result.References {
		if entry.Surface == target.Surface {
			result.SelfReference = true
			compressedAlias = compressedAlias || entry.Mode.Compressed()
			if slot < maxSkipSlots {
				result.skipMask |= 1 << slot
			}
		}
	}

	if result.SelfReference {
		result.Remediations = append(result.Remediations, Remediation{
			Kind:     RemediationSelfReference,
			Surface:  target.Surface,
			Slot:     TargetSlot,
			Previous: target.Mode,
		})
		if target.Mode.Compressed() || compressedAlias {
			result.decompress(target.Surface)
		}
		result.Target.Mode = CompressionDisabled

		// The aliased slots are the target's own memory, which is now uncompressed
		for slot := range result.References {
			if result.References[slot].Surface == target.Surface {
				result.References[slot].Mode = CompressionDisabled
			}
		}
	}

	if !result.Uniform() {
		for slot, entry := range result.References {
			if !entry.Mode.Compressed() {
				continue
			}

			result.Remediations = append(result.Remediations, Remediation{
				Kind:     RemediationMixedCompression,
				Surface:  entry.Surface,
				Slot:     slot,
				Previous: entry.Mode,
			})
			result.decompress(entry.Surface)
			result.References[slot].Mode = CompressionDisabled
		}
	}

	result.Mode = uniformMode(result.References)
	result.skipMask |= dummyMask(result.References)
	return result
}

func uniformMode(refs ReferenceSet) CompressionMode {
	if len(refs) == 0 {
		return CompressionDisabled
	}
	for _, entry := range refs[1:] {
		if entry.Mode != refs[0].Mode {
			return CompressionDisabled
		}
	}
	return refs[0].Mode
}

func dummyMask(refs ReferenceSet) uint32 {
	var mask uint32
	for slot, entry := range refs {
		if entry.Dummy && slot < maxSkipSlots {
			mask |= 1 << slot
		}
	}
	return mask
}
