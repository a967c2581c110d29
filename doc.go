// Package gcn emulates a game console's GPU command-submission model on
// top of a modern desktop graphics API.
//
// # Overview
//
// Games issue opaque draw (DCB) and constant (CCB) command-buffer
// submissions against a fixed set of hardware-like queues: one graphics
// queue and a bounded pool of virtual compute queues addressed by
// (pipe, queue) id pairs. gcn presents that queue model unchanged while
// translating each submission into work for a host graphics backend and
// keeping submission, presentation and resource lifetime in sync.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/gcn"
//
//		// Link the concrete backends; the registry picks the best one.
//		_ "github.com/gogpu/gcn/backend/vulkan"
//		_ "github.com/gogpu/gcn/backend/wgpu"
//	)
//
//	drv, err := gcn.New(gcn.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer drv.Shutdown()
//
//	// One submission: record, acquire, submit, present.
//	status := drv.SubmitAndFlip(1, dcbs, dcbSizes, nil, nil, 0, 0, 0, 0)
//
// # Architecture
//
// The library is organized into:
//   - Root: driver context, virtual queue arena, submission pipeline
//   - backend: host backend abstraction, extension negotiation, registry
//   - backend/vulkan, backend/wgpu: concrete backends
//   - resource: GPU resource use tracking
//   - videoout: emulated display output and window glue
//
// # Threading
//
// The driver assumes a single submission caller per queue, matching the
// hardware it emulates; Submit performs no internal locking. Mapping
// and unmapping of the same virtual queue id must not race. See the
// individual method docs for the exact caller obligations.
package gcn

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
