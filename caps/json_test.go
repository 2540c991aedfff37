package caps_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/codec"
)

func TestTable_DumpLoad(t *testing.T) {
	table := caps.Default()
	dump := table.DumpString()

	loaded, err := caps.LoadTable([]byte(dump))
	require.NoError(t, err)
	require.Equal(t, dump, loaded.DumpString())
	require.Equal(t, table.Generations(), loaded.Generations())
	require.Equal(t, table.Modes(), loaded.Modes())
}

func TestLoadTable_Synthetic(t *testing.T) {
	table, err := caps.LoadTable([]byte(`{
		"Generations": {"Gen12": {"MiFlushDw": {"Bytes": 32, "References": 2}}},
		"Sizing": {"DeblockLine": {"Extent": "Row", "Granularity": 32, "BytesPerUnit": [64, 128]}},
		"Modes": {"HEVC": {"Scalable": false, "Buffers": ["DeblockLine"]}},
		"Comment": "ignored"
	}`))
	require.NoError(t, err)

	costs, err := table.Costs(caps.Gen12)
	require.NoError(t, err)
	cost, err := costs.Cost(caps.MiFlushDw)
	require.NoError(t, err)
	require.Equal(t, caps.CommandCost{Bytes: 32, References: 2}, cost)

	size, err := table.RequiredBytes(caps.BufferDeblockLine, codec.FrameGeometry{Width: 1920, Height: 1080, BitDepth: 10})
	require.NoError(t, err)
	require.Equal(t, 60*128, size)
}

func TestLoadTable_Rejects(t *testing.T) {
	_, err := caps.LoadTable([]byte(`{"Generations": {"Gen99": {}}}`))
	require.Error(t, err)

	_, err = caps.LoadTable([]byte(`{"Generations": {"Gen12": {"NotACommand": {"Bytes": 4}}}}`))
	require.Error(t, err)

	_, err = caps.LoadTable([]byte(`{"Sizing": {"DeblockLine": {"Extent": "Diagonal", "BytesPerUnit": [1, 1]}}}`))
	require.Error(t, err)

	_, err = caps.LoadTable([]byte(`{"Sizing": {"DeblockLine": {"Extent": "Row", "BytesPerUnit": [1, 1, 1]}}}`))
	require.Error(t, err)

	_, err = caps.LoadTable([]byte(`{"Modes": {"HEVC": {"Buffers": ["DeblockLine"]}}}`))
	require.Error(t, err)

	_, err = caps.LoadTable([]byte(`not json`))
	require.Error(t, err)
}
