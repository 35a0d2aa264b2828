package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/valuescreen/internal/brain"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata holds screening run metadata
type RunMetadata struct {
	RunID      string
	StrategyID string
	Source     string
	Top        int
	Timestamp  string
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Fundamentus Screening")
	PrintSeparator()
	fmt.Printf("  Run ID    : %s\n", meta.RunID)
	fmt.Printf("  Strategy  : %s\n", meta.StrategyID)
	if meta.Source != "" {
		fmt.Printf("  Source    : %s\n", meta.Source)
	}
	if meta.Top > 0 {
		fmt.Printf("  Top       : %d\n", meta.Top)
	} else {
		fmt.Println("  Top       : all")
	}
	PrintSeparator()
	fmt.Printf("[Screen] Run triggered at %s\n", meta.Timestamp)
}

// PrintRunSummary prints stage counts and rejection reasons of a run
func PrintRunSummary(result *brain.RunResult) {
	fmt.Println()
	PrintKeyValue("rows", fmt.Sprintf("%d", result.Normalize.Rows), 10)
	PrintKeyValue("duplicates", fmt.Sprintf("%d", len(result.Normalize.Duplicates)), 10)
	PrintKeyValue("passed", fmt.Sprintf("%d / %d", result.Screen.Passed, result.Screen.Input), 10)
	PrintKeyValue("returned", fmt.Sprintf("%d", result.Result.Len()), 10)

	if len(result.Screen.Rejected) > 0 {
		names := make([]string, 0, len(result.Screen.Rejected))
		for name := range result.Screen.Rejected {
			names = append(names, name)
		}
		sort.Strings(names)

		items := make([]string, 0, len(names))
		for _, name := range names {
			items = append(items, fmt.Sprintf("%s: %d", name, result.Screen.Rejected[name]))
		}
		fmt.Println()
		fmt.Println("   rejected by")
		PrintList(items)
	}
}

// PrintRunCompletion prints run completion message
func PrintRunCompletion(runID string, duration time.Duration) {
	fmt.Println()
	fmt.Printf("✅ Run %s completed in %.2fs\n", runID, duration.Seconds())
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}
