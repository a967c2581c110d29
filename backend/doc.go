// Package backend provides a pluggable host graphics backend abstraction.
//
// The backend package lets the gcn driver run on multiple host APIs.
// A backend discovers adapters, negotiates extensions, builds a logical
// device and hands out queues, command lists and presenters. The null
// backend is always available and executes submissions synchronously,
// which makes it the test double and the last-resort fallback.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The null backend is automatically registered on import; concrete
// backends are linked by blank import:
//
//	import (
//		_ "github.com/gogpu/gcn/backend/vulkan"
//		_ "github.com/gogpu/gcn/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get("vulkan")
//
// InitDefault() additionally initializes the backend, falling through
// the priority list when a backend's host API is not present.
//
// # Extension Negotiation
//
// Adapters advertise a NameSet of supported extensions. Device creation
// negotiates an extension table against it: required entries fail
// device creation when missing, optional entries are skipped, passive
// entries are probes that are never requested.
//
// # Available Backends
//
// - "vulkan": full present path via goki/vulkan
// - "wgpu": headless path via gogpu/wgpu hal
// - "null": synchronous mock (always available)
package backend
