// Package vulkan implements the Vulkan host backend.
//
// It uses goki/vulkan bindings over the system Vulkan loader. Importing
// the package registers the backend:
//
//	import _ "github.com/gogpu/gcn/backend/vulkan"
//
// The backend is the highest-priority choice in the registry: it is the
// only backend with a real windowed present path (VK_KHR_swapchain) and
// exposes the adapter's true queue family and memory heap topology.
// Init fails cleanly when the loader or a Vulkan 1.1 driver is missing,
// and the registry falls through to the next backend.
package vulkan
