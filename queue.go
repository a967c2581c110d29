package gcn

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gcn/backend"
)

// Queue identifier space. A compute queue is addressed by a
// (pipe, queue) pair; the pair folds into a single virtual queue id.
// Virtual id 0 is the graphics queue and is never handed out by
// mapping.
const (
	// MaxPipeID is the number of compute pipes.
	MaxPipeID = 8

	// MaxQueueID is the number of queues per pipe.
	MaxQueueID = 8

	// VQueueIDBegin is the first virtual id assigned to a compute
	// queue.
	VQueueIDBegin = 1

	// MaxComputeQueueCount bounds the virtual queue id space.
	MaxComputeQueueCount = VQueueIDBegin + MaxPipeID*MaxPipeID
)

// QueueType distinguishes the graphics queue from the virtual compute
// queues.
type QueueType int

const (
	QueueTypeGraphics QueueType = iota
	QueueTypeCompute
)

// String returns the queue type name.
func (t QueueType) String() string {
	if t == QueueTypeCompute {
		return "compute"
	}
	return "graphics"
}

// Command is one opaque console command buffer: a guest pointer/size
// pair. The emulator and the guest share one address space, so the
// pointer is directly dereferenceable by the decoder.
type Command struct {
	Buffer unsafe.Pointer
	Size   uint32
}

// Decoder turns an opaque command buffer into backend-native commands
// on a command list. Decoding of the console's binary encoding is an
// external collaborator; the driver only carries its output.
type Decoder interface {
	Decode(cmd Command, list backend.CommandList) error
}

// nopDecoder accepts the opaque blob without interpreting it.
type nopDecoder struct{}

func (nopDecoder) Decode(Command, backend.CommandList) error { return nil }

// gpuQueue binds one console-visible queue to a backend queue handle.
type gpuQueue struct {
	typ     QueueType
	device  backend.Device
	queue   backend.Queue
	decoder Decoder
}

func newGPUQueue(typ QueueType, device backend.Device, queue backend.Queue, decoder Decoder) *gpuQueue {
	return &gpuQueue{
		typ:     typ,
		device:  device,
		queue:   queue,
		decoder: decoder,
	}
}

// record decodes one command buffer into a fresh backend command list.
func (q *gpuQueue) record(cmd Command) (backend.CommandList, error) {
	list, err := q.device.NewCommandList()
	if err != nil {
		return nil, fmt.Errorf("gcn: new command list: %w", err)
	}
	if err := q.decoder.Decode(cmd, list); err != nil {
		list.Free()
		return nil, fmt.Errorf("gcn: decode command buffer: %w", err)
	}
	return list, nil
}

// MapComputeQueue binds a (pipe, queue) pair to a virtual compute
// queue backed by the device's compute queue handle.
//
// Validation order and the error reported for each failed precondition
// are fixed: pipe id, queue id, ring base alignment (256 bytes), ring
// size (power of two dwords), read pointer alignment (4 bytes). No
// state is mutated before all validations pass. On success the word at
// readPtrAddr is zeroed, the slot is populated and the virtual id is
// returned.
//
// Mapping and unmapping of the same virtual id must not race; the
// driver takes no lock here (caller obligation, matching the hardware
// contract).
func (d *Driver) MapComputeQueue(pipeID, queueID uint32, ringBaseAddr unsafe.Pointer, ringSizeInDW uint32, readPtrAddr unsafe.Pointer) (uint32, Status) {
	if pipeID >= MaxPipeID {
		return 0, StatusErrInvalidPipeID
	}
	if queueID >= MaxQueueID {
		return 0, StatusErrInvalidQueueID
	}
	if uintptr(ringBaseAddr)%256 != 0 {
		return 0, StatusErrInvalidRingBaseAddr
	}
	if !isPowerOfTwo(ringSizeInDW) {
		return 0, StatusErrInvalidRingSize
	}
	if uintptr(readPtrAddr)%4 != 0 {
		return 0, StatusErrInvalidReadPtrAddr
	}

	vqueueID := uint32(VQueueIDBegin + pipeID*MaxPipeID + queueID)
	if vqueueID >= MaxComputeQueueCount {
		Logger().Error("gcn: virtual queue id out of range",
			"vqueueID", vqueueID, "pipeID", pipeID, "queueID", queueID)
		return 0, StatusErrUnknown
	}

	// The console polls this word to track ring consumption.
	*(*uint32)(readPtrAddr) = 0

	d.compute[vqueueID] = newGPUQueue(QueueTypeCompute, d.device, d.device.Queues().Compute, d.decoder)

	Logger().Info("gcn: compute queue mapped",
		"vqueueID", vqueueID,
		"pipeID", pipeID,
		"queueID", queueID,
		"ringSizeInDW", ringSizeInDW)
	return vqueueID, StatusOK
}

// UnmapComputeQueue releases the compute queue bound to the virtual
// id. Out-of-range ids report an error; unmapping an already empty
// slot is an idempotent no-op.
func (d *Driver) UnmapComputeQueue(vqueueID uint32) Status {
	if vqueueID < VQueueIDBegin || vqueueID >= MaxComputeQueueCount {
		Logger().Error("gcn: unmap with out-of-range virtual queue id", "vqueueID", vqueueID)
		return StatusErrUnknown
	}
	d.compute[vqueueID] = nil
	return StatusOK
}

// DingDong notifies a compute queue that new commands are available up
// to the given ring offset. This is the console's doorbell signal.
//
// Compute-queue command consumption is not modeled: the doorbell is
// validated and recorded, but no work executes. Real titles drive all
// visible output through the graphics queue.
func (d *Driver) DingDong(vqueueID, nextStartOffsetInDW uint32) {
	if vqueueID < VQueueIDBegin || vqueueID >= MaxComputeQueueCount {
		Logger().Error("gcn: doorbell with out-of-range virtual queue id", "vqueueID", vqueueID)
		return
	}
	if d.compute[vqueueID] == nil {
		Logger().Error("gcn: doorbell on unmapped virtual queue", "vqueueID", vqueueID)
		return
	}
	Logger().Debug("gcn: doorbell",
		"vqueueID", vqueueID,
		"nextStartOffsetInDW", nextStartOffsetInDW)
}

// destroyQueues releases the graphics queue and every populated
// compute queue slot. Called once at driver teardown.
func (d *Driver) destroyQueues() {
	d.graphics = nil
	for i := range d.compute {
		d.compute[i] = nil
	}
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
