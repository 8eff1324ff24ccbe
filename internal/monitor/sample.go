package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/mem"

	"chatkeeper/internal/notify"
)

// Sample is one point-in-time measurement of host memory state. Samples are
// immutable; the monitor replaces its current sample wholesale each tick so
// readers never observe a torn value.
type Sample struct {
	Total     uint64
	Used      uint64
	Free      uint64
	Available uint64

	UsedPercent float64

	TakenAt time.Time
}

// takeSample reads the current host memory state.
func takeSample(ctx context.Context) (*Sample, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read virtual memory stats: %w", err)
	}

	s := &Sample{
		Total:     vm.Total,
		Used:      vm.Used,
		Free:      vm.Free,
		Available: vm.Available,
		TakenAt:   time.Now(),
	}
	if vm.Total > 0 {
		s.UsedPercent = float64(vm.Used) / float64(vm.Total) * 100.0
	}
	return s, nil
}

// exceedsThreshold reports whether the sample's used percentage is strictly
// above the threshold. A sample exactly at the threshold does not alert.
func exceedsThreshold(s *Sample, threshold float64) bool {
	return s.UsedPercent > threshold
}

func bytesToGB(b uint64) float64 {
	return float64(b) / (1024.0 * 1024.0 * 1024.0)
}

// buildReport formats a sample as a notification payload.
func buildReport(s *Sample, alert bool) notify.Report {
	title := "Daily memory report"
	if alert {
		title = "Memory usage alert"
	}

	return notify.Report{
		Title: title,
		Alert: alert,
		Fields: []notify.Field{
			{Name: "Total memory", Value: fmt.Sprintf("%.2f GB", bytesToGB(s.Total))},
			{Name: "Used memory", Value: fmt.Sprintf("%.2f GB", bytesToGB(s.Used))},
			{Name: "Free memory", Value: fmt.Sprintf("%.2f GB", bytesToGB(s.Free))},
			{Name: "Available memory", Value: fmt.Sprintf("%.2f GB", bytesToGB(s.Available))},
			{Name: "Used percentage", Value: fmt.Sprintf("%.2f%%", s.UsedPercent)},
		},
		At: s.TakenAt,
	}
}

// formatConsole renders a sample as the plain-text operator console dump.
func formatConsole(s *Sample) string {
	const line = "-----------------------------------------------------------\n"
	return line +
		fmt.Sprintf("Total memory: %d bytes (%.2f GB)\n", s.Total, bytesToGB(s.Total)) +
		fmt.Sprintf("Used memory: %d bytes (%.2f GB)\n", s.Used, bytesToGB(s.Used)) +
		fmt.Sprintf("Free memory: %d bytes (%.2f GB)\n", s.Free, bytesToGB(s.Free)) +
		fmt.Sprintf("Available memory: %d bytes (%.2f GB)\n", s.Available, bytesToGB(s.Available)) +
		fmt.Sprintf("Used memory percentage: %.2f%%\n", s.UsedPercent) +
		line
}
