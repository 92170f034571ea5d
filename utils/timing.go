package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether informational output is printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where informational output is printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Infof prints an informational message, gated by Verbose.
func Infof(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format, args...)
}

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime       time.Duration
	ConfigLoadTime  time.Duration
	ModelInitTime   time.Duration
	WeightsLoadTime time.Duration
	ForwardPassTime time.Duration
}

// PrintTimingStats prints detailed timing statistics for a number of
// forward passes. Respects the Verbose flag - does nothing if Verbose is
// false.
func PrintTimingStats(stats *TimingStats, passes int) {
	if !Verbose || passes <= 0 || stats.TotalTime <= 0 {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Forward passes: %d (avg %v)\n", passes, stats.ForwardPassTime/time.Duration(passes))
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Config load: %v (%.1f%%)\n", stats.ConfigLoadTime, pct(stats.ConfigLoadTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, pct(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Weights load: %v (%.1f%%)\n", stats.WeightsLoadTime, pct(stats.WeightsLoadTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Forward pass: %v (%.1f%%)\n", stats.ForwardPassTime, pct(stats.ForwardPassTime, stats.TotalTime))
}

func pct(part, total time.Duration) float64 {
	return float64(part) / float64(total) * 100
}
