package caps

// BufferKind is the identity of a scratch buffer. A decode session owns at most one buffer per kind.
type BufferKind uint32

const (
	BufferInvalid BufferKind = iota

	BufferDeblockLine
	BufferDeblockTileLine
	BufferDeblockTileColumn
	BufferMetadataLine
	BufferMetadataTileLine
	BufferMetadataTileColumn
	BufferSaoLine
	BufferSaoTileLine
	BufferSaoTileColumn
	BufferMvUpRightColumn
	BufferIntraPredUpRightColumn
	BufferIntraPredLeftReconColumn
	BufferHvdLine
	BufferHvdTile
	BufferSegmentID
	BufferProbability
	BufferMvTemporal
	BufferCdefLine
	BufferCdefTileColumn
	BufferLoopRestorationLine
	BufferIntraRowStore
	BufferDeblockingFilterRowStore
	BufferBsdMpcRowStore
	BufferMprRowStore
	BufferCabacStreamout
	BufferFrontEndStatus
	BufferSyncCounters
)

var bufferKindMapping = map[BufferKind]string{
	BufferInvalid:                  "Invalid",
	BufferDeblockLine:              "DeblockLine",
	BufferDeblockTileLine:          "DeblockTileLine",
	BufferDeblockTileColumn:        "DeblockTileColumn",
	BufferMetadataLine:             "MetadataLine",
	BufferMetadataTileLine:         "MetadataTileLine",
	BufferMetadataTileColumn:       "MetadataTileColumn",
	BufferSaoLine:                  "SaoLine",
	BufferSaoTileLine:              "SaoTileLine",
	BufferSaoTileColumn:            "SaoTileColumn",
	BufferMvUpRightColumn:          "MvUpRightColumn",
	BufferIntraPredUpRightColumn:   "IntraPredUpRightColumn",
	BufferIntraPredLeftReconColumn: "IntraPredLeftReconColumn",
	BufferHvdLine:                  "HvdLine",
	BufferHvdTile:                  "HvdTile",
	BufferSegmentID:                "SegmentID",
	BufferProbability:              "Probability",
	BufferMvTemporal:               "MvTemporal",
	BufferCdefLine:                 "CdefLine",
	BufferCdefTileColumn:           "CdefTileColumn",
	BufferLoopRestorationLine:      "LoopRestorationLine",
	BufferIntraRowStore:            "IntraRowStore",
	BufferDeblockingFilterRowStore: "DeblockingFilterRowStore",
	BufferBsdMpcRowStore:           "BsdMpcRowStore",
	BufferMprRowStore:              "MprRowStore",
	BufferCabacStreamout:           "CabacStreamout",
	BufferFrontEndStatus:           "FrontEndStatus",
	BufferSyncCounters:             "SyncCounters",
}

func (k BufferKind) String() string {
	str, ok := bufferKindMapping[k]
	if !ok {
		return "Invalid"
	}
	return str
}

var bufferKindLookup = func() map[string]BufferKind {
	lookup := make(map[string]BufferKind, len(bufferKindMapping))
	for kind, name := range bufferKindMapping {
		lookup[name] = kind
	}
	return lookup
}()

// ParseBufferKind maps a buffer name back to its BufferKind, returning BufferInvalid for unknown names
func ParseBufferKind(name string) BufferKind {
	return bufferKindLookup[name]
}
