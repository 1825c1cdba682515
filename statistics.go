package memkit

import "math"

// Statistics summarizes an allocator's live blocks.
type Statistics struct {
	AllocationCount int
	AllocationBytes int
}

// Clear resets s to its zero value.
func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.AllocationBytes = 0
}

// AddStatistics accumulates other into s, for composite allocators that
// sum their children's statistics.
func (s *Statistics) AddStatistics(other Statistics) {
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with the min/max allocation
// sizes seen, useful for diagnosing fragmentation in pool-based
// strategies.
type DetailedStatistics struct {
	Statistics
	AllocationSizeMin int
	AllocationSizeMax int
}

// Clear resets s to its zero value, with the min/max sentinels
// initialized so the first AddAllocation call establishes real bounds.
func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
}

// AddAllocation records a single live allocation of size bytes.
func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}
	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

// AddDetailedStatistics accumulates other into s.
func (s *DetailedStatistics) AddDetailedStatistics(other DetailedStatistics) {
	s.Statistics.AddStatistics(other.Statistics)

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}
	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
