package backend

import (
	"errors"

	"github.com/gogpu/gcn/resource"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrNoAdapter is returned when a backend exposes no usable adapter.
	ErrNoAdapter = errors.New("backend: no adapter found")

	// ErrExtensionNotSupported is returned when a required extension is
	// missing from the adapter's advertised extension set.
	ErrExtensionNotSupported = errors.New("backend: required extension not supported")

	// ErrNoSurface is returned when a presenter is requested from a
	// backend that needs a surface but none was supplied.
	ErrNoSurface = errors.New("backend: presenter requires a surface")
)

// Backend is the interface for host graphics backends.
// It abstracts the host API (Vulkan, wgpu hal, the in-package null
// backend), allowing the driver to run on whichever is available.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "vulkan", "wgpu", "null").
	Name() string

	// Init initializes the backend and discovers adapters.
	// This must be called before EnumerateAdapters.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// EnumerateAdapters returns the discovered adapters ranked
	// most-capable-first. Index 0 is the default selection.
	// An empty slice means no GPU is available.
	EnumerateAdapters() []Adapter
}

// Adapter is a discoverable host GPU, immutable after discovery except
// for its heap allocation counters.
type Adapter interface {
	// Properties returns the adapter's core device properties.
	Properties() DeviceProperties

	// Extensions returns the extension set the adapter advertises.
	Extensions() NameSet

	// QueueFamilies returns the adapter's queue family table.
	QueueFamilies() []QueueFamily

	// MemoryInfo returns a snapshot of every memory heap, including
	// the bytes currently allocated from it through this adapter.
	MemoryInfo() MemoryInfo

	// NotifyHeapAlloc registers bytes allocated from a heap.
	// Advisory accounting only; safe for concurrent use.
	NotifyHeapAlloc(heap uint32, bytes uint64)

	// NotifyHeapFree registers bytes freed back to a heap.
	NotifyHeapFree(heap uint32, bytes uint64)

	// IsUnifiedMemory reports whether every heap is device-local.
	IsUnifiedMemory() bool

	// CreateDevice negotiates the adapter's extension table, selects
	// queue families and builds the logical device. A missing required
	// extension or a host API rejection fails device creation.
	CreateDevice() (Device, error)
}

// Device is the logical connection built from one adapter plus its
// negotiated extension set.
type Device interface {
	// Adapter returns the adapter the device was created from.
	Adapter() Adapter

	// Queues returns the device's queue handles.
	Queues() DeviceQueues

	// NewCommandList starts recording a new backend-native command list.
	NewCommandList() (CommandList, error)

	// CreatePresenter builds a presenter for the given target.
	CreatePresenter(desc *PresenterDesc) (Presenter, error)

	// WaitIdle blocks until the device has finished all submitted work.
	WaitIdle()

	// Close destroys the logical device. Idempotent.
	Close()
}

// DeviceQueues holds the queue handles of a device. Roles may share one
// backing queue when the adapter has no specialized family.
type DeviceQueues struct {
	Graphics Queue
	Compute  Queue
	Transfer Queue
}

// Queue is a backend queue handle work is submitted to.
type Queue interface {
	// Family returns the queue family index the queue was created from.
	Family() uint32

	// Submit submits one recorded command list with its wait/signal
	// synchronization. Submissions execute in call order.
	Submit(sub Submission) error

	// Present asks the presenter to show the given image, waiting on
	// the submission's present semaphore.
	Present(p Presenter, imageIndex uint32, sync SyncPair) error
}

// CommandList is an opaque recorded sequence of executable GPU
// commands. The embedded tracker is acquired for write when the list is
// submitted and released when the backend observes completion.
type CommandList interface {
	// Tracker returns the list's resource use tracker.
	Tracker() *resource.UseTracker

	// Free releases the command list's backing storage.
	Free()
}

// Semaphore is an opaque backend-native synchronization handle.
type Semaphore = any

// SyncPair is a presentation synchronization pair: Acquire is signaled
// when the image is available, Present gates the actual present.
type SyncPair struct {
	Acquire Semaphore
	Present Semaphore
}

// Submission is one unit of queue work: a recorded command list, the
// semaphore to wait on before execution and the one to signal after.
type Submission struct {
	CmdList CommandList
	Wait    Semaphore
	Wake    Semaphore
}

// Presenter owns a presentable image set bound to an output surface,
// or a virtual image set when headless.
type Presenter interface {
	// AcquireNextImage returns the index of the next presentable image
	// and the synchronization pair to use with it.
	AcquireNextImage() (uint32, SyncPair, error)

	// Present queues the image for display, waiting on sync.Present.
	Present(imageIndex uint32, sync SyncPair) error

	// ImageCount returns the number of presentable images.
	ImageCount() uint32

	// Close destroys the presenter. Idempotent.
	Close()
}

// SurfaceProvider supplies a drawable surface handle for a host-API
// instance. The window glue implements this; headless presenters never
// see one.
type SurfaceProvider interface {
	// Surface creates a surface for the given instance handle and
	// returns it as a backend-native pointer value.
	Surface(instance any) (uintptr, error)
}

// PresenterDesc describes the presenter to create.
// A nil Surface requests a headless presenter on backends that support
// one; backends that require a surface return ErrNoSurface.
type PresenterDesc struct {
	Width      uint32
	Height     uint32
	ImageCount uint32
	Surface    SurfaceProvider
}
