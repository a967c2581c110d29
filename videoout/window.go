// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package videoout

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW requires its calls on the thread that initialized it.
	runtime.LockOSThread()
}

var (
	glfwMu   sync.Mutex
	glfwRefs int
)

func glfwAcquire() error {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("videoout: glfw init: %w", err)
		}
	}
	glfwRefs++
	return nil
}

func glfwRelease() {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	glfwRefs--
	if glfwRefs == 0 {
		glfw.Terminate()
	}
}

// Window is the desktop window an output presents into. It carries no
// GL context: the surface belongs to the backend's graphics API.
type Window struct {
	handle *glfw.Window
}

// NewWindow creates a fixed-size window for the display output.
func NewWindow(width, height uint32, title string) (*Window, error) {
	if err := glfwAcquire(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	handle, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		glfwRelease()
		return nil, fmt.Errorf("videoout: create window: %w", err)
	}
	return &Window{handle: handle}, nil
}

// RequiredInstanceExtensions lists the instance extensions the window
// system needs for surface creation. Valid after a window exists.
func RequiredInstanceExtensions() []string {
	return glfw.GetRequiredInstanceExtensions()
}

// Surface creates a presentation surface on the given API instance.
func (w *Window) Surface(instance any) (uintptr, error) {
	surface, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, fmt.Errorf("videoout: create window surface: %w", err)
	}
	return surface, nil
}

// Pump services the window system's event queue. The driver calls it
// once per SubmitDone.
func (w *Window) Pump() {
	glfw.PollEvents()
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.handle.ShouldClose()
}

// Destroy closes the window and releases the window system.
func (w *Window) Destroy() {
	if w.handle != nil {
		w.handle.Destroy()
		w.handle = nil
		glfwRelease()
	}
}
