// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"fmt"
	"sort"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/gcn/backend"
)

func init() {
	backend.Register(backend.BackendVulkan, func() backend.Backend {
		return &vulkanBackend{}
	})
}

// Instance-level extensions. Surface support is mandatory because the
// present path runs on VK_KHR_swapchain; the platform surface
// extensions are optional so the same binary runs under X11, Wayland
// and Windows.
func instanceExtensions() []*backend.Ext {
	return []*backend.Ext{
		backend.NewExt("VK_KHR_surface", backend.ExtModeRequired),
		backend.NewExt("VK_KHR_xcb_surface", backend.ExtModeOptional),
		backend.NewExt("VK_KHR_xlib_surface", backend.ExtModeOptional),
		backend.NewExt("VK_KHR_wayland_surface", backend.ExtModeOptional),
		backend.NewExt("VK_KHR_win32_surface", backend.ExtModeOptional),
		backend.NewExt("VK_KHR_get_physical_device_properties2", backend.ExtModeOptional),
	}
}

// vulkanBackend owns the Vulkan loader state and the instance.
type vulkanBackend struct {
	initialized bool
	instance    vk.Instance
	adapters    []*vulkanAdapter
}

var _ backend.Backend = (*vulkanBackend)(nil)

func (b *vulkanBackend) Name() string { return backend.BackendVulkan }

// Init loads the Vulkan loader, creates the instance and snapshots the
// physical devices. Returns ErrBackendNotAvailable wrapped around the
// loader error when no ICD is present.
func (b *vulkanBackend) Init() error {
	if b.initialized {
		return nil
	}
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("%w: vulkan loader: %v", backend.ErrBackendNotAvailable, err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("%w: vulkan init: %v", backend.ErrBackendNotAvailable, err)
	}

	supported, err := enumerateInstanceExtensions()
	if err != nil {
		return err
	}
	enabled, err := backend.Negotiate(supported, instanceExtensions())
	if err != nil {
		return err
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString("gcn"),
		ApplicationVersion: vk.MakeVersion(0, 1, 0),
		PEngineName:        safeString("gcn"),
		EngineVersion:      vk.MakeVersion(0, 1, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	extNames := safeStrings(enabled.Names())
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extNames)),
		PpEnabledExtensionNames: extNames,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("%w: create instance: %v", backend.ErrBackendNotAvailable, vk.Error(res))
	}
	vk.InitInstance(instance)
	b.instance = instance

	if err := b.enumeratePhysicalDevices(); err != nil {
		vk.DestroyInstance(instance, nil)
		return err
	}

	b.initialized = true
	return nil
}

func enumerateInstanceExtensions() (backend.NameSet, error) {
	var count uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &count, nil); res != vk.Success {
		return nil, fmt.Errorf("enumerate instance extensions: %v", vk.Error(res))
	}
	props := make([]vk.ExtensionProperties, count)
	if count > 0 {
		if res := vk.EnumerateInstanceExtensionProperties("", &count, props); res != vk.Success {
			return nil, fmt.Errorf("enumerate instance extensions: %v", vk.Error(res))
		}
	}
	set := backend.NameSet{}
	for i := range props {
		props[i].Deref()
		set.AddRevision(vk.ToString(props[i].ExtensionName[:]), props[i].SpecVersion)
	}
	return set, nil
}

func (b *vulkanBackend) enumeratePhysicalDevices() error {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(b.instance, &count, nil); res != vk.Success {
		return fmt.Errorf("enumerate physical devices: %v", vk.Error(res))
	}
	if count == 0 {
		return backend.ErrNoAdapter
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(b.instance, &count, devices); res != vk.Success {
		return fmt.Errorf("enumerate physical devices: %v", vk.Error(res))
	}

	b.adapters = b.adapters[:0]
	for _, dev := range devices {
		b.adapters = append(b.adapters, newVulkanAdapter(b, dev))
	}
	// Most capable first: discrete beats integrated beats software.
	sort.SliceStable(b.adapters, func(i, j int) bool {
		return b.adapters[i].props.Type.Rank() > b.adapters[j].props.Type.Rank()
	})
	return nil
}

func (b *vulkanBackend) EnumerateAdapters() []backend.Adapter {
	if !b.initialized {
		return nil
	}
	out := make([]backend.Adapter, len(b.adapters))
	for i, a := range b.adapters {
		out[i] = a
	}
	return out
}

func (b *vulkanBackend) Close() {
	if !b.initialized {
		return
	}
	vk.DestroyInstance(b.instance, nil)
	b.adapters = nil
	b.initialized = false
}

// safeString returns a NUL-terminated copy for the C ABI.
func safeString(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\x00' {
		return s
	}
	return s + "\x00"
}

func safeStrings(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = safeString(s)
	}
	return out
}
