package caps

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/hwutils"
)

const (
	// DefaultGranularity is the minimum block size, in pixels, that the decode engines work in
	DefaultGranularity int = 16
	// CacheLineSize is the alignment applied to every computed scratch size
	CacheLineSize uint = 64
)

// Extent selects which frame dimension a scratch buffer scales with
type Extent uint32

const (
	// ExtentFixed buffers do not depend on geometry
	ExtentFixed Extent = iota
	// ExtentRow buffers hold one entry per block column and scale with the frame width
	ExtentRow
	// ExtentColumn buffers hold one entry per block row and scale with the frame height
	ExtentColumn
	// ExtentArea buffers hold one entry per block and scale with the frame area
	ExtentArea
)

var extentMapping = map[Extent]string{
	ExtentFixed:  "Fixed",
	ExtentRow:    "Row",
	ExtentColumn: "Column",
	ExtentArea:   "Area",
}

func (e Extent) String() string {
	return extentMapping[e]
}

func parseExtent(name string) (Extent, bool) {
	for extent, str := range extentMapping {
		if str == name {
			return extent, true
		}
	}
	return ExtentFixed, false
}

// SizingRule describes how the required size of one scratch buffer is derived from frame geometry
type SizingRule struct {
	Extent Extent
	// Granularity is the block size in pixels that the frame extent is rounded up to. Zero means
	// DefaultGranularity. It must be a power of two.
	Granularity int
	// BytesPerUnit is the number of bytes per block for 8-bit content (index 0) and for higher
	// bit depths (index 1). For ExtentFixed it is the total buffer size.
	BytesPerUnit [2]int
	// BytesPerUnitWideChroma replaces BytesPerUnit for 4:2:2 and 4:4:4 content when it is non-zero
	BytesPerUnitWideChroma [2]int
	// Lockable buffers may be read back by software after the pipeline drains
	Lockable bool
}

func (r SizingRule) granularity() int {
	if r.Granularity == 0 {
		return DefaultGranularity
	}
	return r.Granularity
}

func (r SizingRule) Validate() error {
	if r.Granularity != 0 {
		err := hwutils.CheckPow2(r.Granularity, "granularity")
		if err != nil {
			return err
		}
	}

	if _, ok := extentMapping[r.Extent]; !ok {
		return errors.Newf("unknown extent %d", r.Extent)
	}

	if r.BytesPerUnit[0] <= 0 || r.BytesPerUnit[1] <= 0 {
		return errors.Newf("bytes per unit must be positive for both bit depth classes, but was %v", r.BytesPerUnit)
	}

	if r.BytesPerUnitWideChroma[0] < 0 || r.BytesPerUnitWideChroma[1] < 0 {
		return errors.Newf("wide chroma bytes per unit must not be negative, but was %v", r.BytesPerUnitWideChroma)
	}

	return nil
}

// RequiredBytes computes the size the buffer must have to serve a frame with the provided geometry
func (r SizingRule) RequiredBytes(geometry codec.FrameGeometry) int {
	depthIndex := 0
	if geometry.HighBitDepth() {
		depthIndex = 1
	}

	perUnit := r.BytesPerUnit[depthIndex]
	if (geometry.Chroma == codec.Chroma422 || geometry.Chroma == codec.Chroma444) && r.BytesPerUnitWideChroma[depthIndex] != 0 {
		perUnit = r.BytesPerUnitWideChroma[depthIndex]
	}

	granularity := r.granularity()
	hwutils.DebugCheckPow2(granularity, "granularity")
	var units int
	switch r.Extent {
	case ExtentFixed:
		units = 1
	case ExtentRow:
		units = geometry.WidthInBlocks(granularity)
	case ExtentColumn:
		units = geometry.HeightInBlocks(granularity)
	case ExtentArea:
		units = geometry.WidthInBlocks(granularity) * geometry.HeightInBlocks(granularity)
	}

	return hwutils.AlignUp(units*perUnit, CacheLineSize)
}
