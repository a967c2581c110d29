// Package videoout emulates the console's display output service.
//
// Games open a video output handle, describe their display buffers and
// flip between them; the driver presents the flips through the host
// backend. The package keeps the original service's observable
// behavior: a single main output, the fixed 1920x1080 at 59.94 Hz
// resolution report, the {60, 30, 20} Hz flip rate table and a
// monotonic flip counter.
//
// A VideoOut satisfies the driver's PresentTarget and FlipNotifier
// interfaces: attach it with Driver.AttachOutput and flips submitted
// through SubmitAndFlip show up in GetFlipStatus. With an attached
// Window the output presents to a real desktop window over a Vulkan
// surface; without one it runs headless, which keeps the package fully
// testable in CI.
package videoout
