package mmc

// CompressionMode is the memory compression state a surface holds
type CompressionMode uint32

const (
	CompressionDisabled CompressionMode = iota
	CompressionLossless
	CompressionLossy
)

var compressionModeMapping = map[CompressionMode]string{
	CompressionDisabled: "Disabled",
	CompressionLossless: "Lossless",
	CompressionLossy:    "Lossy",
}

func (m CompressionMode) String() string {
	str, ok := compressionModeMapping[m]
	if !ok {
		return "Unknown"
	}
	return str
}

// Compressed reports whether the surface holds compressed data that hardware reading it without
// compression enabled would misinterpret
func (m CompressionMode) Compressed() bool {
	return m != CompressionDisabled
}

// SurfaceHandle identifies a client surface. Two entries refer to the same memory exactly when
// their handles are equal.
type SurfaceHandle uint64

// Target is the surface the frame is decoded into
type Target struct {
	Surface    SurfaceHandle
	Mode       CompressionMode
	FrameIndex int
}

// ReferenceEntry is one slot of the frame's reference list
type ReferenceEntry struct {
	Surface    SurfaceHandle
	Mode       CompressionMode
	FrameIndex int
	// Dummy marks a slot filled with a placeholder surface because the bitstream left it empty
	Dummy bool
}

// ReferenceSet is the frame's active references in slot order
type ReferenceSet []ReferenceEntry

// RemediationKind names the hazard a remediation resolved
type RemediationKind uint32

const (
	// RemediationSelfReference is recorded when the target appears in its own reference list
	RemediationSelfReference RemediationKind = iota
	// RemediationMixedCompression is recorded for each reference decompressed because the set
	// mixed compression modes
	RemediationMixedCompression
)

var remediationKindMapping = map[RemediationKind]string{
	RemediationSelfReference:    "SelfReference",
	RemediationMixedCompression: "MixedCompression",
}

func (k RemediationKind) String() string {
	return remediationKindMapping[k]
}

// TargetSlot is the Slot of a remediation applied to the decode target rather than a reference
const TargetSlot = -1

// Remediation is the diagnostic record of one forced decompression
type Remediation struct {
	Kind    RemediationKind
	Surface SurfaceHandle
	Slot    int
	// Previous is the compression mode the surface held before the remediation
	Previous CompressionMode
}
