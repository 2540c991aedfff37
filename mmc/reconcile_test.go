package mmc_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/mmc"
)

var modes = []mmc.CompressionMode{mmc.CompressionDisabled, mmc.CompressionLossless, mmc.CompressionLossy}

func randomSet(rng *rand.Rand, target mmc.SurfaceHandle) mmc.ReferenceSet {
	refs := make(mmc.ReferenceSet, rng.Intn(9))
	for i := range refs {
		surface := mmc.SurfaceHandle(100 + rng.Intn(6))
		if rng.Intn(8) == 0 {
			surface = target
		}
		refs[i] = mmc.ReferenceEntry{
			Surface:    surface,
			Mode:       modes[rng.Intn(len(modes))],
			FrameIndex: i,
			Dummy:      rng.Intn(10) == 0,
		}
	}
	return refs
}

func TestReconcile_SelfReferenceDisablesTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		target := mmc.Target{Surface: 1, Mode: modes[rng.Intn(len(modes))]}
		refs := randomSet(rng, target.Surface)
		refs = append(refs, mmc.ReferenceEntry{Surface: target.Surface, Mode: modes[rng.Intn(len(modes))]})

		result := mmc.Reconcile(target, refs, true)
		require.True(t, result.SelfReference)
		require.Equal(t, mmc.CompressionDisabled, result.Target.Mode)
		require.NotZero(t, result.SkipMask()&(1<<(len(refs)-1)))
		if target.Mode.Compressed() {
			require.Contains(t, result.Decompress, target.Surface)
		}
	}
}

func TestReconcile_UniformCompression(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		target := mmc.Target{Surface: 1, Mode: modes[rng.Intn(len(modes))]}
		refs := randomSet(rng, target.Surface)
		original := append(mmc.ReferenceSet(nil), refs...)

		result := mmc.Reconcile(target, refs, true)
		require.True(t, result.Uniform())
		require.Equal(t, original, refs, "the input set must not be modified")
		require.Len(t, result.References, len(refs))

		// Compression is only ever given up, never gained
		for slot, entry := range result.References {
			if entry.Mode != refs[slot].Mode {
				require.Equal(t, mmc.CompressionDisabled, entry.Mode)
				require.Contains(t, result.Decompress, refs[slot].Surface)
			}
		}

		seen := map[mmc.SurfaceHandle]bool{}
		for _, surface := range result.Decompress {
			require.False(t, seen[surface], "surface %d decompressed twice", surface)
			seen[surface] = true
		}
		if len(result.References) > 0 {
			require.Equal(t, result.References[0].Mode, result.Mode)
		}
	}
}

func TestReconcile_LastSlotIsTarget(t *testing.T) {
	target := mmc.Target{Surface: 9, Mode: mmc.CompressionLossy, FrameIndex: 4}
	refs := mmc.ReferenceSet{
		{Surface: 3, Mode: mmc.CompressionDisabled, FrameIndex: 1},
		{Surface: 5, Mode: mmc.CompressionDisabled, FrameIndex: 2},
		{Surface: 9, Mode: mmc.CompressionDisabled, FrameIndex: 4},
	}

	result := mmc.Reconcile(target, refs, true)
	require.True(t, result.SelfReference)
	require.Equal(t, mmc.CompressionDisabled, result.Target.Mode)
	require.Equal(t, []mmc.Remediation{{
		Kind:     mmc.RemediationSelfReference,
		Surface:  9,
		Slot:     mmc.TargetSlot,
		Previous: mmc.CompressionLossy,
	}}, result.Remediations)
	require.Equal(t, []mmc.SurfaceHandle{9}, result.Decompress)
	require.Equal(t, uint32(1<<2), result.SkipMask())
}

func TestReconcile_MixedModesDisableEverything(t *testing.T) {
	target := mmc.Target{Surface: 1, Mode: mmc.CompressionLossy}
	refs := mmc.ReferenceSet{
		{Surface: 2, Mode: mmc.CompressionLossy},
		{Surface: 3, Mode: mmc.CompressionLossy},
		{Surface: 4, Mode: mmc.CompressionDisabled},
	}

	result := mmc.Reconcile(target, refs, true)
	require.False(t, result.SelfReference)
	for _, entry := range result.References {
		require.Equal(t, mmc.CompressionDisabled, entry.Mode)
	}
	require.Equal(t, mmc.CompressionDisabled, result.Mode)
	require.Equal(t, []mmc.SurfaceHandle{2, 3}, result.Decompress)
	require.Len(t, result.Remediations, 2)
	require.Equal(t, mmc.RemediationMixedCompression, result.Remediations[0].Kind)
	require.Equal(t, 1, result.Remediations[1].Slot)

	// The target is not part of the reference set
	require.Equal(t, mmc.CompressionLossy, result.Target.Mode)
}

func TestReconcile_UniformSetIsUntouched(t *testing.T) {
	target := mmc.Target{Surface: 1, Mode: mmc.CompressionLossless}
	refs := mmc.ReferenceSet{
		{Surface: 2, Mode: mmc.CompressionLossless},
		{Surface: 3, Mode: mmc.CompressionLossless},
	}

	result := mmc.Reconcile(target, refs, true)
	require.Empty(t, result.Remediations)
	require.Empty(t, result.Decompress)
	require.Equal(t, mmc.CompressionLossless, result.Mode)
	require.Equal(t, target, result.Target)
	require.Zero(t, result.SkipMask())
}

func TestReconcile_IntraFrameIsSkipped(t *testing.T) {
	target := mmc.Target{Surface: 1, Mode: mmc.CompressionLossy}
	refs := mmc.ReferenceSet{{Surface: 1, Mode: mmc.CompressionLossy}}

	result := mmc.Reconcile(target, refs, false)
	require.True(t, result.Skipped)
	require.False(t, result.SelfReference)
	require.Empty(t, result.Remediations)
	require.Equal(t, mmc.CompressionLossy, result.Target.Mode)
}

func TestReconcile_IntraFrameReportsMixedSetAsDisabled(t *testing.T) {
	refs := mmc.ReferenceSet{
		{Surface: 2, Mode: mmc.CompressionLossy},
		{Surface: 3, Mode: mmc.CompressionDisabled},
	}

	result := mmc.Reconcile(mmc.Target{Surface: 1}, refs, false)
	require.True(t, result.Skipped)
	require.False(t, result.Uniform())
	require.Equal(t, mmc.CompressionDisabled, result.Mode)
	// Skipped sets are reported, not remediated
	require.Equal(t, mmc.CompressionLossy, result.References[0].Mode)
	require.Empty(t, result.Decompress)

	uniform := mmc.Reconcile(mmc.Target{Surface: 1}, refs[:1], false)
	require.Equal(t, mmc.CompressionLossy, uniform.Mode)
}

func TestReconcile_DummySlotsAreSkipped(t *testing.T) {
	target := mmc.Target{Surface: 1}
	refs := mmc.ReferenceSet{
		{Surface: 2},
		{Surface: 7, Dummy: true},
		{Surface: 3},
		{Surface: 7, Dummy: true},
	}

	result := mmc.Reconcile(target, refs, true)
	require.Equal(t, uint32(0b1010), result.SkipMask())
}
