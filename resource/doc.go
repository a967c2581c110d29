// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource tracks GPU-side use of emulated resources.
//
// Any object referenced by recorded command lists (buffers, images,
// command lists themselves) embeds a UseTracker. Recording a command
// that touches the object acquires it for read or write; the completion
// path releases it. The tracker only observes use, it never owns the
// underlying object.
//
// Counters are lock-free. A resource is considered in use for write
// while any writer holds it, and in use for read while any reader or
// writer holds it: a pending write means the contents are not stable
// for readers either.
package resource
