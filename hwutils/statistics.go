package hwutils

import "math"

// Statistics summarizes the scratch buffers owned by a session
type Statistics struct {
	BufferCount     int
	BufferBytes     int
	AllocationCount int
	FreeCount       int
}

func (s *Statistics) Clear() {
	s.BufferCount = 0
	s.BufferBytes = 0
	s.AllocationCount = 0
	s.FreeCount = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BufferCount += other.BufferCount
	s.BufferBytes += other.BufferBytes
	s.AllocationCount += other.AllocationCount
	s.FreeCount += other.FreeCount
}

// Reallocations is the number of allocations that replaced a smaller buffer
func (s *Statistics) Reallocations() int {
	return s.AllocationCount - s.BufferCount
}

type DetailedStatistics struct {
	Statistics
	BufferSizeMin int
	BufferSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.BufferSizeMin = math.MaxInt
	s.BufferSizeMax = 0
}

func (s *DetailedStatistics) AddBuffer(size int) {
	s.BufferCount++
	s.BufferBytes += size

	if size < s.BufferSizeMin {
		s.BufferSizeMin = size
	}

	if size > s.BufferSizeMax {
		s.BufferSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.BufferSizeMin < s.BufferSizeMin {
		s.BufferSizeMin = other.BufferSizeMin
	}

	if other.BufferSizeMax > s.BufferSizeMax {
		s.BufferSizeMax = other.BufferSizeMax
	}
}
