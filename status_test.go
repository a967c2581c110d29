package gcn

import (
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "ok"},
		{StatusErrUnknown, "unknown error"},
		{StatusErrInvalidPipeID, "invalid pipe id"},
		{StatusErrInvalidQueueID, "invalid queue id"},
		{StatusErrInvalidRingBaseAddr, "invalid ring base address"},
		{StatusErrInvalidRingSize, "invalid ring size"},
		{StatusErrInvalidReadPtrAddr, "invalid read pointer address"},
		{StatusErrQueueUnavailable, "queue unavailable"},
		{Status(99), "invalid status"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusErr(t *testing.T) {
	if err := StatusOK.Err(); err != nil {
		t.Errorf("StatusOK.Err() = %v, want nil", err)
	}

	tests := []struct {
		status Status
		want   error
	}{
		{StatusErrUnknown, ErrUnknown},
		{StatusErrInvalidPipeID, ErrInvalidPipeID},
		{StatusErrInvalidQueueID, ErrInvalidQueueID},
		{StatusErrInvalidRingBaseAddr, ErrInvalidRingBaseAddr},
		{StatusErrInvalidRingSize, ErrInvalidRingSize},
		{StatusErrInvalidReadPtrAddr, ErrInvalidReadPtrAddr},
		{StatusErrQueueUnavailable, ErrQueueUnavailable},
		{Status(99), ErrUnknown},
	}
	for _, tt := range tests {
		if err := tt.status.Err(); !errors.Is(err, tt.want) {
			t.Errorf("Status(%d).Err() = %v, want %v", tt.status, err, tt.want)
		}
	}
}
