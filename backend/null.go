package backend

import (
	"sync"

	"github.com/gogpu/gcn/resource"
)

// Backend name constants.
const (
	// BackendVulkan is the name of the Vulkan backend (goki/vulkan).
	BackendVulkan = "vulkan"
	// BackendWGPU is the name of the wgpu hal backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
	// BackendNull is the name of the built-in mock backend.
	BackendNull = "null"
)

// NullBackend is a fully functional mock backend. It executes
// submissions synchronously, records every device-level event in order
// and needs no GPU, which makes it both the last-resort fallback and
// the test double for the submission pipeline.
type NullBackend struct {
	initialized bool
	adapters    []*NullAdapter
}

// init registers the null backend on package import.
func init() {
	Register(BackendNull, func() Backend {
		return NewNullBackend()
	})
}

// NewNullBackend creates a null backend exposing one default adapter.
func NewNullBackend() *NullBackend {
	return &NullBackend{
		adapters: []*NullAdapter{NewNullAdapter("null-device")},
	}
}

// SetAdapters replaces the backend's adapter list. Call before Init to
// script adapter discovery in tests. An empty list emulates a machine
// with no GPU.
func (b *NullBackend) SetAdapters(adapters ...*NullAdapter) {
	b.adapters = adapters
}

// Name returns the backend identifier.
func (b *NullBackend) Name() string {
	return BackendNull
}

// Init initializes the backend.
func (b *NullBackend) Init() error {
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *NullBackend) Close() {
	b.initialized = false
}

// EnumerateAdapters returns the scripted adapter list.
func (b *NullBackend) EnumerateAdapters() []Adapter {
	if !b.initialized {
		return nil
	}
	out := make([]Adapter, len(b.adapters))
	for i, a := range b.adapters {
		out[i] = a
	}
	return out
}

// NullAdapter is a configurable fake adapter. The zero configuration
// reports one graphics+compute+transfer queue family, one device-local
// heap and an extension set that satisfies an empty device extension
// table.
type NullAdapter struct {
	HeapAccounting

	props      DeviceProperties
	extensions NameSet
	families   []QueueFamily
	heaps      []HeapInfo
	deviceExts []*Ext
}

// NewNullAdapter creates a null adapter with default capabilities.
func NewNullAdapter(name string) *NullAdapter {
	return &NullAdapter{
		props: DeviceProperties{
			Name: name,
			Type: DeviceTypeCPU,
		},
		extensions: NameSet{},
		families: []QueueFamily{
			{Flags: QueueGraphics | QueueCompute | QueueTransfer, Count: 1},
		},
		heaps: []HeapInfo{
			{Flags: HeapDeviceLocal, Budget: 1 << 30},
		},
	}
}

// SetExtensions replaces the advertised extension set.
func (a *NullAdapter) SetExtensions(exts NameSet) { a.extensions = exts }

// SetQueueFamilies replaces the queue family table.
func (a *NullAdapter) SetQueueFamilies(families []QueueFamily) { a.families = families }

// SetHeaps replaces the memory heap table.
func (a *NullAdapter) SetHeaps(heaps []HeapInfo) { a.heaps = heaps }

// SetDeviceExtensions replaces the extension table negotiated by
// CreateDevice. Tests use this to script required-extension failures.
func (a *NullAdapter) SetDeviceExtensions(exts []*Ext) { a.deviceExts = exts }

// Properties returns the adapter's device properties.
func (a *NullAdapter) Properties() DeviceProperties { return a.props }

// Extensions returns the advertised extension set.
func (a *NullAdapter) Extensions() NameSet { return a.extensions }

// QueueFamilies returns the queue family table.
func (a *NullAdapter) QueueFamilies() []QueueFamily { return a.families }

// MemoryInfo returns the heap table with current allocation counters.
func (a *NullAdapter) MemoryInfo() MemoryInfo {
	heaps := make([]HeapInfo, len(a.heaps))
	copy(heaps, a.heaps)
	for i := range heaps {
		heaps[i].Allocated = a.HeapAllocated(uint32(i))
	}
	return MemoryInfo{Heaps: heaps}
}

// IsUnifiedMemory reports whether every heap is device-local.
func (a *NullAdapter) IsUnifiedMemory() bool {
	return UnifiedMemory(a.heaps)
}

// CreateDevice negotiates the adapter's device extension table and
// builds a synchronous null device.
func (a *NullAdapter) CreateDevice() (Device, error) {
	if _, err := Negotiate(a.extensions, a.deviceExts); err != nil {
		return nil, err
	}

	indices := SelectQueueFamilies(a.families)
	if indices.Graphics == FamilyIgnored {
		return nil, ErrNoAdapter
	}

	dev := &NullDevice{adapter: a}
	queue := &NullQueue{dev: dev, family: indices.Graphics}
	dev.queues = DeviceQueues{Graphics: queue, Compute: queue, Transfer: queue}
	if indices.Compute != indices.Graphics {
		dev.queues.Compute = &NullQueue{dev: dev, family: indices.Compute}
	}
	if indices.Transfer != indices.Graphics && indices.Transfer != indices.Compute {
		dev.queues.Transfer = &NullQueue{dev: dev, family: indices.Transfer}
	}
	return dev, nil
}

// NullDevice is a synchronous mock device. It keeps an in-order event
// log ("record", "submit", "present") that tests read through Events.
type NullDevice struct {
	adapter *NullAdapter

	mu     sync.Mutex
	events []string
	closed bool

	queues DeviceQueues
}

func (d *NullDevice) log(event string) {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
}

// Events returns a copy of the device's event log in call order.
func (d *NullDevice) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	copy(out, d.events)
	return out
}

// Adapter returns the adapter the device was created from.
func (d *NullDevice) Adapter() Adapter { return d.adapter }

// Queues returns the device's queue handles.
func (d *NullDevice) Queues() DeviceQueues { return d.queues }

// NewCommandList starts a new mock command list and logs "record".
func (d *NullDevice) NewCommandList() (CommandList, error) {
	d.log("record")
	return &NullCommandList{}, nil
}

// CreatePresenter builds a counting presenter. The null backend is
// headless; any supplied surface is ignored.
func (d *NullDevice) CreatePresenter(desc *PresenterDesc) (Presenter, error) {
	count := desc.ImageCount
	if count == 0 {
		count = 3
	}
	return &NullPresenter{dev: d, imageCount: count}, nil
}

// WaitIdle is a no-op: null submissions complete synchronously.
func (d *NullDevice) WaitIdle() {}

// Close marks the device closed.
func (d *NullDevice) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// NullQueue executes submissions synchronously in call order.
type NullQueue struct {
	dev    *NullDevice
	family uint32
}

// Family returns the queue family index.
func (q *NullQueue) Family() uint32 { return q.family }

// Submit executes the submission synchronously: the command list is
// in use for write for the duration of the call and idle after it.
func (q *NullQueue) Submit(sub Submission) error {
	tracker := sub.CmdList.Tracker()
	tracker.Acquire(resource.AccessWrite)
	q.dev.log("submit")
	tracker.Release(resource.AccessWrite)
	return nil
}

// Present forwards to the presenter and logs the call.
func (q *NullQueue) Present(p Presenter, imageIndex uint32, sync SyncPair) error {
	return p.Present(imageIndex, sync)
}

// NullCommandList is a mock command list with a live use tracker.
type NullCommandList struct {
	tracker resource.UseTracker
}

// Tracker returns the list's use tracker.
func (l *NullCommandList) Tracker() *resource.UseTracker { return &l.tracker }

// Free is a no-op.
func (l *NullCommandList) Free() {}

// NullPresenter rotates over a virtual image set and counts presents.
type NullPresenter struct {
	dev        *NullDevice
	imageCount uint32

	mu        sync.Mutex
	frame     uint32
	presented uint64
	closed    bool
}

// AcquireNextImage rotates through the virtual image set. The null
// backend has no real synchronization, so the pair is empty.
func (p *NullPresenter) AcquireNextImage() (uint32, SyncPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	index := p.frame
	p.frame = (p.frame + 1) % p.imageCount
	return index, SyncPair{}, nil
}

// Present counts the present and logs it on the device.
func (p *NullPresenter) Present(imageIndex uint32, _ SyncPair) error {
	p.mu.Lock()
	p.presented++
	p.mu.Unlock()
	p.dev.log("present")
	return nil
}

// Presented returns the number of completed present calls.
func (p *NullPresenter) Presented() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presented
}

// ImageCount returns the size of the virtual image set.
func (p *NullPresenter) ImageCount() uint32 { return p.imageCount }

// Close marks the presenter closed.
func (p *NullPresenter) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Interface compliance checks.
var (
	_ Backend     = (*NullBackend)(nil)
	_ Adapter     = (*NullAdapter)(nil)
	_ Device      = (*NullDevice)(nil)
	_ Queue       = (*NullQueue)(nil)
	_ CommandList = (*NullCommandList)(nil)
	_ Presenter   = (*NullPresenter)(nil)
)
