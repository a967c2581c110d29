package gcn

import (
	"fmt"
	"sync"

	"github.com/gogpu/gcn/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Options configures driver creation. The zero value selects the best
// available backend, its highest-ranked adapter and the no-op decoder.
type Options struct {
	// Backend names the backend to use. Empty selects by registry
	// priority, falling through backends whose host API is absent.
	Backend string

	// AdapterIndex is the rank of the adapter to use. Adapters are
	// enumerated most-capable-first; 0 is the default selection.
	AdapterIndex int

	// Decoder translates command buffers while recording. Nil installs
	// the no-op decoder that accepts the opaque blob unchanged.
	Decoder Decoder

	// EventPump is invoked once per SubmitDone to service the host
	// windowing system. Nil means no pump (headless operation).
	// Overridden by AttachOutput when the target supplies its own.
	EventPump func()
}

// PresentTarget is a drawable output the driver can present to.
// videoout implements it for a desktop window; a nil-surface desc
// requests headless presentation.
type PresentTarget interface {
	// PresenterDesc returns the presenter parameters for the target.
	PresenterDesc() backend.PresenterDesc

	// EventPump returns the windowing event pump to run on SubmitDone,
	// or nil when the target needs none.
	EventPump() func()
}

// Driver is the per-process GPU driver context. It owns the backend
// connection, the logical device, the single real graphics queue and
// the virtual compute queue arena. Create one at startup with New and
// pass it to every collaborator; there is no package-level instance.
type Driver struct {
	mu     sync.Mutex
	closed bool

	backend   backend.Backend
	adapter   backend.Adapter
	device    backend.Device
	presenter backend.Presenter

	decoder Decoder
	pump    func()
	flip    FlipNotifier

	graphics *gpuQueue
	// compute is the virtual queue arena, indexed directly by virtual
	// queue id. Slot 0 is the graphics queue's id and never populates.
	compute [MaxComputeQueueCount]*gpuQueue
}

// New creates the driver: backend selection, adapter enumeration,
// device creation and graphics queue bring-up. Any failure here is
// fatal for GPU emulation; there is no degraded mode.
func New(opts Options) (*Driver, error) {
	var b backend.Backend
	var err error
	if opts.Backend != "" {
		b = backend.Get(opts.Backend)
		if b == nil {
			return nil, fmt.Errorf("gcn: backend %q: %w", opts.Backend, backend.ErrBackendNotAvailable)
		}
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("gcn: init backend %q: %w", opts.Backend, err)
		}
	} else {
		b, err = backend.InitDefault()
		if err != nil {
			return nil, fmt.Errorf("gcn: no usable backend: %w", err)
		}
	}

	adapters := b.EnumerateAdapters()
	if opts.AdapterIndex < 0 || opts.AdapterIndex >= len(adapters) {
		b.Close()
		return nil, fmt.Errorf("gcn: adapter rank %d: %w", opts.AdapterIndex, backend.ErrNoAdapter)
	}
	adapter := adapters[opts.AdapterIndex]
	logAdapterInfo(b, adapter)

	device, err := adapter.CreateDevice()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("gcn: create device: %w", err)
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = nopDecoder{}
	}

	d := &Driver{
		backend: b,
		adapter: adapter,
		device:  device,
		decoder: decoder,
		pump:    opts.EventPump,
	}

	// A GPU has a graphics queue by default; it exists for the life of
	// the driver and needs no identifier negotiation.
	d.graphics = newGPUQueue(QueueTypeGraphics, device, device.Queues().Graphics, decoder)

	return d, nil
}

// logAdapterInfo reports the selected adapter through the package
// logger, for bug reports and general troubleshooting.
func logAdapterInfo(b backend.Backend, adapter backend.Adapter) {
	props := adapter.Properties()
	info := adapter.MemoryInfo()

	log := Logger()
	log.Info("gcn: adapter selected",
		"backend", b.Name(),
		"name", props.Name,
		"type", props.Type.String(),
		"unifiedMemory", adapter.IsUnifiedMemory())
	for i, heap := range info.Heaps {
		log.Debug("gcn: adapter heap",
			"heap", i,
			"deviceLocal", heap.Flags&backend.HeapDeviceLocal != 0,
			"budget", heap.Budget)
	}
}

// AttachOutput creates the presenter for the given target and installs
// its event pump. Call once after New, before the first submission.
// Replacing an existing output closes the previous presenter.
func (d *Driver) AttachOutput(target PresentTarget) error {
	desc := target.PresenterDesc()
	presenter, err := d.device.CreatePresenter(&desc)
	if err != nil {
		return fmt.Errorf("gcn: create presenter: %w", err)
	}

	d.mu.Lock()
	if d.presenter != nil {
		d.presenter.Close()
	}
	d.presenter = presenter
	if pump := target.EventPump(); pump != nil {
		d.pump = pump
	}
	if n, ok := target.(FlipNotifier); ok {
		d.flip = n
	}
	d.mu.Unlock()
	return nil
}

// Backend returns the backend the driver runs on.
func (d *Driver) Backend() backend.Backend { return d.backend }

// Adapter returns the adapter the device was created from.
func (d *Driver) Adapter() backend.Adapter { return d.adapter }

// Device returns the logical device.
func (d *Driver) Device() backend.Device { return d.device }

// Shutdown tears down the driver: all queues, the presenter, the
// device and the backend, in that order. Idempotent.
func (d *Driver) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	presenter := d.presenter
	d.presenter = nil
	d.mu.Unlock()

	d.destroyQueues()
	if presenter != nil {
		presenter.Close()
	}
	if d.device != nil {
		d.device.WaitIdle()
		d.device.Close()
	}
	if d.backend != nil {
		d.backend.Close()
	}
}

// DeviceProvider returns a gpucontext.DeviceProvider view of the
// driver, so renderer and decoder collaborators from the gogpu
// ecosystem can consume the device without importing backend
// internals.
func (d *Driver) DeviceProvider() gpucontext.DeviceProvider {
	return deviceView{d: d}
}

// deviceView adapts the driver to gpucontext.DeviceProvider.
type deviceView struct {
	d *Driver
}

func (v deviceView) Device() gpucontext.Device   { return deviceHandle{dev: v.d.device} }
func (v deviceView) Queue() gpucontext.Queue     { return v.d.device.Queues().Graphics }
func (v deviceView) Adapter() gpucontext.Adapter { return v.d.adapter }

// SurfaceFormat reports the swapchain format the presenters use.
func (v deviceView) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// deviceHandle adapts a backend device to gpucontext.Device.
type deviceHandle struct {
	dev backend.Device
}

func (h deviceHandle) Poll(wait bool) {
	if wait {
		h.dev.WaitIdle()
	}
}

// Destroy is a no-op: the driver owns the device lifetime.
func (h deviceHandle) Destroy() {}
