// Package wgpu implements a host backend on the gogpu/wgpu hardware
// abstraction layer.
//
// Importing the package registers the backend:
//
//	import _ "github.com/gogpu/gcn/backend/wgpu"
//
// The hal layer exposes device and queue handles but no windowed
// surface, so this backend executes submissions for real (fenced, with
// a bounded wait) while presenting to a headless rotating image set.
// It sits between the Vulkan backend and the null mock in the registry
// priority: full GPU execution without the display path.
package wgpu
