package backend

import "sync/atomic"

// MaxMemoryHeaps is the maximum number of heaps an adapter reports,
// matching the host API's heap table size.
const MaxMemoryHeaps = 16

// FamilyIgnored is the sentinel returned when no queue family matches.
const FamilyIgnored = ^uint32(0)

// DeviceType classifies an adapter for ranking.
type DeviceType int

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

// String returns the device type name.
func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// Rank returns a capability score used to order adapters
// most-capable-first.
func (t DeviceType) Rank() int {
	switch t {
	case DeviceTypeDiscreteGPU:
		return 1000
	case DeviceTypeIntegratedGPU:
		return 500
	default:
		return 100
	}
}

// DeviceProperties are the core properties of an adapter.
type DeviceProperties struct {
	Name          string
	VendorID      uint32
	DeviceID      uint32
	Type          DeviceType
	APIVersion    uint32
	DriverVersion uint32
}

// QueueFlags is a bitmask of queue family capabilities.
type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
)

// QueueFamily describes one queue family of an adapter.
type QueueFamily struct {
	Flags QueueFlags
	Count uint32
}

// QueueFamilyIndices holds the family selected for each queue role.
// The same family may back multiple roles when no specialized family
// exists.
type QueueFamilyIndices struct {
	Graphics uint32
	Compute  uint32
	Transfer uint32
}

// FindQueueFamily scans families in index order and returns the first
// whose flags, masked by mask, equal want. Returns FamilyIgnored when
// no family matches.
func FindQueueFamily(families []QueueFamily, mask, want QueueFlags) uint32 {
	for i, f := range families {
		if f.Flags&mask == want {
			return uint32(i)
		}
	}
	return FamilyIgnored
}

// SelectQueueFamilies picks a family per queue role. Compute prefers a
// dedicated compute family and falls back to the graphics family;
// transfer prefers a dedicated transfer family and falls back to the
// compute family.
func SelectQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	graphics := FindQueueFamily(families,
		QueueGraphics|QueueCompute,
		QueueGraphics|QueueCompute)
	if graphics == FamilyIgnored {
		graphics = FindQueueFamily(families, QueueGraphics, QueueGraphics)
	}

	compute := FindQueueFamily(families,
		QueueGraphics|QueueCompute,
		QueueCompute)
	if compute == FamilyIgnored {
		compute = graphics
	}

	transfer := FindQueueFamily(families,
		QueueGraphics|QueueCompute|QueueTransfer,
		QueueTransfer)
	if transfer == FamilyIgnored {
		transfer = compute
	}

	return QueueFamilyIndices{
		Graphics: graphics,
		Compute:  compute,
		Transfer: transfer,
	}
}

// HeapFlags is a bitmask of memory heap properties.
type HeapFlags uint32

// HeapDeviceLocal marks a heap residing in device memory.
const HeapDeviceLocal HeapFlags = 1 << 0

// HeapInfo describes one memory heap and the amount of memory
// allocated from it by the application.
type HeapInfo struct {
	Flags     HeapFlags
	Budget    uint64
	Allocated uint64
}

// MemoryInfo is a snapshot of all memory heaps of an adapter.
type MemoryInfo struct {
	Heaps []HeapInfo
}

// UnifiedMemory reports whether every heap is device-local.
func UnifiedMemory(heaps []HeapInfo) bool {
	for _, h := range heaps {
		if h.Flags&HeapDeviceLocal == 0 {
			return false
		}
	}
	return len(heaps) > 0
}

// HeapAccounting tracks per-heap allocation counters. Concrete
// adapters embed it to satisfy the NotifyHeapAlloc/NotifyHeapFree side
// of the Adapter interface. The counters are advisory: nothing is
// enforced here, collaborators read them for budget-aware allocation
// decisions.
//
// The zero value is ready for use. All methods are lock-free and safe
// for concurrent use; each update is a single counter with no
// composite invariant.
type HeapAccounting struct {
	alloc [MaxMemoryHeaps]atomic.Uint64
}

// NotifyHeapAlloc registers an allocation of bytes from the heap.
// Out-of-range heap indices are ignored.
func (h *HeapAccounting) NotifyHeapAlloc(heap uint32, bytes uint64) {
	if heap < MaxMemoryHeaps {
		h.alloc[heap].Add(bytes)
	}
}

// NotifyHeapFree registers a free of bytes back to the heap.
func (h *HeapAccounting) NotifyHeapFree(heap uint32, bytes uint64) {
	if heap < MaxMemoryHeaps {
		h.alloc[heap].Add(^(bytes - 1))
	}
}

// HeapAllocated returns the bytes currently recorded as allocated from
// the heap.
func (h *HeapAccounting) HeapAllocated(heap uint32) uint64 {
	if heap >= MaxMemoryHeaps {
		return 0
	}
	return h.alloc[heap].Load()
}
