// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package videoout

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/gogpu/gcn/backend"
)

// Bus types accepted by Open. Only the main display exists.
const (
	BusTypeMain int32 = 0
)

// Display constants the emulated output reports. The panel is fixed:
// a 32-inch 1080p screen refreshing at 59.94 Hz.
const (
	DisplayWidth  uint32 = 1920
	DisplayHeight uint32 = 1080

	RefreshRate5994 uint32 = 3

	AspectRatio16x9 uint32 = 0

	ScreenSizeInInch uint32 = 32

	// FlagOutputInUse marks the output as actively driven.
	FlagOutputInUse uint32 = 1
)

// MaxDisplayBuffers bounds one output's display buffer set.
const MaxDisplayBuffers = 16

// flipRates indexes the console's flip rate selector.
var flipRates = [3]uint32{60, 30, 20}

var (
	ErrInvalidHandle = errors.New("videoout: invalid handle")
	ErrInvalidValue  = errors.New("videoout: invalid value")
	ErrBusy          = errors.New("videoout: output already open")
)

// ResolutionStatus reports the display mode, matching the fields the
// console returns to games.
type ResolutionStatus struct {
	FullWidth        uint32
	FullHeight       uint32
	PaneWidth        uint32
	PaneHeight       uint32
	RefreshRate      uint32
	ScreenSizeInInch uint32
	Flags            uint32
}

// BufferAttribute describes a registered display buffer.
type BufferAttribute struct {
	PixelFormat  uint32
	TilingMode   uint32
	AspectRatio  uint32
	Width        uint32
	Height       uint32
	PitchInPixel uint32
	Option       uint32
}

// SetBufferAttribute populates attr from the given parameters. The
// aspect ratio is forced to 16:9, the only mode the panel supports.
func SetBufferAttribute(attr *BufferAttribute, pixelFormat, tilingMode, aspectRatio, width, height, pitchInPixel uint32) {
	*attr = BufferAttribute{
		PixelFormat:  pixelFormat,
		TilingMode:   tilingMode,
		AspectRatio:  AspectRatio16x9,
		Width:        width,
		Height:       height,
		PitchInPixel: pitchInPixel,
	}
}

// FlipStatus is a snapshot of the output's flip progress.
type FlipStatus struct {
	// Count increases by one per completed flip and never resets.
	Count uint64
	// PendingNum counts flips submitted but not yet completed.
	PendingNum uint32
	// CurrentBuffer is the display buffer index of the last flip.
	CurrentBuffer uint32
	// FlipArg is the caller-supplied argument of the last flip.
	FlipArg int64
}

// Manager owns the open video output handles.
type Manager struct {
	mu         sync.Mutex
	outputs    map[int32]*VideoOut
	nextHandle int32
}

// NewManager creates an empty handle table.
func NewManager() *Manager {
	return &Manager{
		outputs:    make(map[int32]*VideoOut),
		nextHandle: 1,
	}
}

// Open opens the display on the given bus and returns its handle.
// Only the main bus exists, and it can be open at most once.
func (m *Manager) Open(busType int32, index int32) (int32, error) {
	if busType != BusTypeMain {
		return 0, ErrInvalidValue
	}
	if index != 0 {
		return 0, ErrInvalidValue
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, out := range m.outputs {
		if out.busType == busType {
			return 0, ErrBusy
		}
	}

	handle := m.nextHandle
	m.nextHandle++
	m.outputs[handle] = newVideoOut(busType)
	return handle, nil
}

// Close releases the handle.
func (m *Manager) Close(handle int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.outputs[handle]
	if !ok {
		return ErrInvalidHandle
	}
	delete(m.outputs, handle)
	out.close()
	return nil
}

// Get resolves a handle to its output.
func (m *Manager) Get(handle int32) (*VideoOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.outputs[handle]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return out, nil
}

// ResolutionStatus reports the display mode of the handle's output.
func (m *Manager) ResolutionStatus(handle int32) (ResolutionStatus, error) {
	out, err := m.Get(handle)
	if err != nil {
		return ResolutionStatus{}, err
	}
	return out.resolutionStatus(), nil
}

// SetFlipRate selects the flip rate by table index: 0 is 60 Hz, 1 is
// 30 Hz, 2 is 20 Hz.
func (m *Manager) SetFlipRate(handle int32, rate int32) error {
	if rate < 0 || rate >= int32(len(flipRates)) {
		return ErrInvalidValue
	}
	out, err := m.Get(handle)
	if err != nil {
		return err
	}
	out.setFlipRate(flipRates[rate])
	return nil
}

// RegisterBuffers records the display buffers the game will flip
// between, starting at startIndex.
func (m *Manager) RegisterBuffers(handle int32, startIndex int32, addrs []unsafe.Pointer, attr *BufferAttribute) error {
	if startIndex < 0 || attr == nil || len(addrs) == 0 {
		return ErrInvalidValue
	}
	if int(startIndex)+len(addrs) > MaxDisplayBuffers {
		return ErrInvalidValue
	}
	out, err := m.Get(handle)
	if err != nil {
		return err
	}
	return out.registerBuffers(startIndex, addrs, attr)
}

// GetFlipStatus returns a snapshot of the output's flip progress.
func (m *Manager) GetFlipStatus(handle int32) (FlipStatus, error) {
	out, err := m.Get(handle)
	if err != nil {
		return FlipStatus{}, err
	}
	return out.flipStatus(), nil
}

// VideoOut is one open display output. It satisfies the driver's
// PresentTarget and FlipNotifier interfaces, so attaching it to the
// driver routes presentation and flip accounting through it.
type VideoOut struct {
	busType int32

	mu       sync.Mutex
	flipRate uint32
	attr     BufferAttribute
	buffers  [MaxDisplayBuffers]unsafe.Pointer
	bufCount uint32
	window   *Window

	status FlipStatus
}

func newVideoOut(busType int32) *VideoOut {
	return &VideoOut{
		busType:  busType,
		flipRate: flipRates[0],
	}
}

func (v *VideoOut) resolutionStatus() ResolutionStatus {
	return ResolutionStatus{
		FullWidth:        DisplayWidth,
		FullHeight:       DisplayHeight,
		PaneWidth:        DisplayWidth,
		PaneHeight:       DisplayHeight,
		RefreshRate:      RefreshRate5994,
		ScreenSizeInInch: ScreenSizeInInch,
		Flags:            FlagOutputInUse,
	}
}

func (v *VideoOut) setFlipRate(hz uint32) {
	v.mu.Lock()
	v.flipRate = hz
	v.mu.Unlock()
}

// FlipRate returns the selected flip rate in Hz.
func (v *VideoOut) FlipRate() uint32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.flipRate
}

func (v *VideoOut) registerBuffers(startIndex int32, addrs []unsafe.Pointer, attr *BufferAttribute) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, addr := range addrs {
		if addr == nil {
			return ErrInvalidValue
		}
		v.buffers[int(startIndex)+i] = addr
	}
	v.attr = *attr
	count := uint32(startIndex) + uint32(len(addrs))
	if count > v.bufCount {
		v.bufCount = count
	}
	return nil
}

// BufferCount returns the number of registered display buffers.
func (v *VideoOut) BufferCount() uint32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bufCount
}

// AttachWindow binds a desktop window to the output. Call before
// Driver.AttachOutput; without a window the output is headless.
func (v *VideoOut) AttachWindow(w *Window) {
	v.mu.Lock()
	v.window = w
	v.mu.Unlock()
}

func (v *VideoOut) flipStatus() FlipStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *VideoOut) close() {
	v.mu.Lock()
	window := v.window
	v.window = nil
	v.mu.Unlock()
	if window != nil {
		window.Destroy()
	}
}

// PresenterDesc describes the presenter for this output: sized to the
// registered buffer attribute when present, otherwise the full panel.
func (v *VideoOut) PresenterDesc() backend.PresenterDesc {
	v.mu.Lock()
	defer v.mu.Unlock()

	desc := backend.PresenterDesc{
		Width:      DisplayWidth,
		Height:     DisplayHeight,
		ImageCount: v.bufCount,
	}
	if v.attr.Width != 0 && v.attr.Height != 0 {
		desc.Width = v.attr.Width
		desc.Height = v.attr.Height
	}
	if v.window != nil {
		desc.Surface = v.window
	}
	return desc
}

// EventPump returns the window's event pump, or nil when headless.
func (v *VideoOut) EventPump() func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.window == nil {
		return nil
	}
	return v.window.Pump
}

// NotifyFlip records one completed flip.
func (v *VideoOut) NotifyFlip(bufferIndex uint32, flipMode uint32, flipArg int64) {
	v.mu.Lock()
	v.status.Count++
	v.status.CurrentBuffer = bufferIndex
	v.status.FlipArg = flipArg
	v.mu.Unlock()
}
