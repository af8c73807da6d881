package util

import "runtime"

// GetHeapAllocMB reports the live heap allocation in megabytes, for
// the health endpoint.
func GetHeapAllocMB() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc >> 20
}
