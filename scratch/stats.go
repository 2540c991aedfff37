package scratch

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/hwutils"
)

// Statistics returns the manager's running totals
func (m *Manager) Statistics() hwutils.Statistics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.stats
}

// AllocationFailures is the number of allocations the backend has refused
func (m *Manager) AllocationFailures() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.failures
}

// CalculateStatistics summarizes the live buffers, including their size range
func (m *Manager) CalculateStatistics(stats *hwutils.DetailedStatistics) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats.Clear()
	m.buffers.Iter(func(_ caps.BufferKind, buffer *Buffer) bool {
		stats.AddBuffer(buffer.size)
		return false
	})
	stats.AllocationCount = m.stats.AllocationCount
	stats.FreeCount = m.stats.FreeCount
}

// BuildStatsString writes the manager's statistics as JSON. When detailedMap is true, every live
// buffer is listed along with its size, lockability and generation.
func (m *Manager) BuildStatsString(writer *jwriter.Writer, detailedMap bool) {
	var stats hwutils.DetailedStatistics
	m.CalculateStatistics(&stats)

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	obj := writer.Object()
	defer obj.End()

	totalObj := obj.Name("Total").Object()
	totalObj.Name("BufferCount").Int(stats.BufferCount)
	totalObj.Name("BufferBytes").Int(stats.BufferBytes)
	totalObj.Name("AllocationCount").Int(stats.AllocationCount)
	totalObj.Name("FreeCount").Int(stats.FreeCount)
	totalObj.Name("Reallocations").Int(stats.Reallocations())
	totalObj.Name("AllocationFailures").Int(m.failures)
	if stats.BufferCount > 0 {
		totalObj.Name("BufferSizeMin").Int(stats.BufferSizeMin)
		totalObj.Name("BufferSizeMax").Int(stats.BufferSizeMax)
	}
	totalObj.End()

	if !detailedMap {
		return
	}

	buffersObj := obj.Name("Buffers").Object()
	for _, kind := range m.kinds() {
		buffer, _ := m.buffers.Get(kind)

		bufferObj := buffersObj.Name(kind.String()).Object()
		bufferObj.Name("Size").Int(buffer.size)
		bufferObj.Name("Lockable").Bool(buffer.lockable)
		bufferObj.Name("Generation").Int(buffer.generation)
		bufferObj.End()
	}
	buffersObj.End()
}
