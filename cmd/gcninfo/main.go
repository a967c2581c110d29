// Command gcninfo lists the GPU backends, adapters, queue families,
// extensions and memory heaps visible to the driver.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/gogpu/gcn"
	"github.com/gogpu/gcn/backend"

	// Link the concrete backends so the registry can pick them.
	_ "github.com/gogpu/gcn/backend/vulkan"
	_ "github.com/gogpu/gcn/backend/wgpu"
)

func main() {
	var (
		backendName = flag.String("backend", "", "backend to inspect (default: best available)")
		extensions  = flag.Bool("extensions", false, "list supported device extensions")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		gcn.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	names := backend.Available()
	sort.Strings(names)
	fmt.Printf("registered backends: %v\n", names)

	b, err := selectBackend(*backendName)
	if err != nil {
		log.Fatalf("gcninfo: %v", err)
	}
	defer b.Close()

	fmt.Printf("backend: %s\n\n", b.Name())

	adapters := b.EnumerateAdapters()
	if len(adapters) == 0 {
		log.Fatal("gcninfo: no adapters found")
	}
	for i, adapter := range adapters {
		printAdapter(i, adapter, *extensions)
	}
}

func selectBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.InitDefault()
	}
	b := backend.Get(name)
	if b == nil {
		return nil, fmt.Errorf("backend %q not registered", name)
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("init backend %q: %w", name, err)
	}
	return b, nil
}

func printAdapter(index int, adapter backend.Adapter, extensions bool) {
	props := adapter.Properties()
	fmt.Printf("adapter %d: %s\n", index, props.Name)
	fmt.Printf("  type:           %s\n", props.Type)
	if props.VendorID != 0 || props.DeviceID != 0 {
		fmt.Printf("  vendor/device:  %#x / %#x\n", props.VendorID, props.DeviceID)
	}
	fmt.Printf("  unified memory: %v\n", adapter.IsUnifiedMemory())

	fmt.Println("  queue families:")
	for i, family := range adapter.QueueFamilies() {
		fmt.Printf("    %d: %s x%d\n", i, queueFlagsString(family.Flags), family.Count)
	}

	fmt.Println("  memory heaps:")
	for i, heap := range adapter.MemoryInfo().Heaps {
		local := ""
		if heap.Flags&backend.HeapDeviceLocal != 0 {
			local = " device-local"
		}
		fmt.Printf("    %d: %s%s\n", i, formatBytes(heap.Budget), local)
	}

	if extensions {
		names := adapter.Extensions().Names()
		fmt.Printf("  extensions (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("    %s\n", name)
		}
	}
	fmt.Println()
}

func queueFlagsString(flags backend.QueueFlags) string {
	s := ""
	if flags&backend.QueueGraphics != 0 {
		s += "graphics|"
	}
	if flags&backend.QueueCompute != 0 {
		s += "compute|"
	}
	if flags&backend.QueueTransfer != 0 {
		s += "transfer|"
	}
	if s == "" {
		return "none"
	}
	return s[:len(s)-1]
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
