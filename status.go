package gcn

import "errors"

// Status is the integer result of a driver entry point, mirroring the
// fixed error code set the emulated console reports to games. The shim
// layer translates these to the console's native numeric codes.
type Status int32

const (
	// StatusOK reports success.
	StatusOK Status = iota

	// StatusErrUnknown reports an unclassified internal failure.
	StatusErrUnknown

	// StatusErrInvalidPipeID reports a pipe id >= MaxPipeID.
	StatusErrInvalidPipeID

	// StatusErrInvalidQueueID reports a queue id >= MaxQueueID.
	StatusErrInvalidQueueID

	// StatusErrInvalidRingBaseAddr reports a ring base address that is
	// not 256-byte aligned.
	StatusErrInvalidRingBaseAddr

	// StatusErrInvalidRingSize reports a ring size in dwords that is
	// not a power of two.
	StatusErrInvalidRingSize

	// StatusErrInvalidReadPtrAddr reports a read pointer address that
	// is not 4-byte aligned.
	StatusErrInvalidReadPtrAddr

	// StatusErrQueueUnavailable reports a submission against a queue
	// or presenter that does not exist.
	StatusErrQueueUnavailable
)

// Sentinel errors corresponding to the Status codes.
var (
	ErrUnknown             = errors.New("gcn: unknown error")
	ErrInvalidPipeID       = errors.New("gcn: invalid pipe id")
	ErrInvalidQueueID      = errors.New("gcn: invalid queue id")
	ErrInvalidRingBaseAddr = errors.New("gcn: ring base address not 256-byte aligned")
	ErrInvalidRingSize     = errors.New("gcn: ring size not a power of two")
	ErrInvalidReadPtrAddr  = errors.New("gcn: read pointer address not 4-byte aligned")
	ErrQueueUnavailable    = errors.New("gcn: queue unavailable")
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusErrUnknown:
		return "unknown error"
	case StatusErrInvalidPipeID:
		return "invalid pipe id"
	case StatusErrInvalidQueueID:
		return "invalid queue id"
	case StatusErrInvalidRingBaseAddr:
		return "invalid ring base address"
	case StatusErrInvalidRingSize:
		return "invalid ring size"
	case StatusErrInvalidReadPtrAddr:
		return "invalid read pointer address"
	case StatusErrQueueUnavailable:
		return "queue unavailable"
	default:
		return "invalid status"
	}
}

// Err returns the sentinel error for the status, or nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusErrInvalidPipeID:
		return ErrInvalidPipeID
	case StatusErrInvalidQueueID:
		return ErrInvalidQueueID
	case StatusErrInvalidRingBaseAddr:
		return ErrInvalidRingBaseAddr
	case StatusErrInvalidRingSize:
		return ErrInvalidRingSize
	case StatusErrInvalidReadPtrAddr:
		return ErrInvalidReadPtrAddr
	case StatusErrQueueUnavailable:
		return ErrQueueUnavailable
	default:
		return ErrUnknown
	}
}
