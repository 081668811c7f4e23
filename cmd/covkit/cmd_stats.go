package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"covkit/internal/report"
)

// statsCmd prints a per-file coverage summary
var statsCmd = &cobra.Command{
	Use:   "stats [tracefiles...]",
	Short: "Print a per-file coverage summary",
	Long: `Merges the given tracefiles (lossily) and prints per-file line,
function, and branch coverage with a total row.`,
	RunE: runStats,
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	totalStyle  = lipgloss.NewStyle().Bold(true)
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	midStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
)

func runStats(cmd *cobra.Command, args []string) error {
	merged, err := loadAndMerge(args, true)
	if err != nil {
		return err
	}

	files, total := merged.Summary()
	if len(files) == 0 {
		fmt.Println("No coverage data.")
		return nil
	}

	width := len("TOTAL")
	for _, fs := range files {
		if len(fs.File) > width {
			width = len(fs.File)
		}
	}

	fmt.Println(headerStyle.Render(
		fmt.Sprintf("%-*s  %18s  %18s  %18s", width, "File", "Lines", "Functions", "Branches")))
	for _, fs := range files {
		fmt.Println(summaryRow(fs, width, nil))
	}
	fmt.Println(strings.Repeat("─", width+3*20))
	total.File = "TOTAL"
	fmt.Println(summaryRow(total, width, &totalStyle))

	return nil
}

func summaryRow(fs report.FileSummary, width int, style *lipgloss.Style) string {
	row := fmt.Sprintf("%-*s  %18s  %18s  %18s",
		width, fs.File,
		renderCounts(fs.Lines), renderCounts(fs.Funcs), renderCounts(fs.Branches))
	if style != nil {
		return style.Render(row)
	}
	return row
}

// renderCounts formats "hit/found pct%" with the percentage colored by
// coverage band.
func renderCounts(c report.Counts) string {
	if c.Found == 0 {
		return "-"
	}
	pct := c.Percent()
	text := fmt.Sprintf("%d/%d %5.1f%%", c.Hit, c.Found, pct)
	switch {
	case pct < 50:
		return lowStyle.Render(text)
	case pct < 80:
		return midStyle.Render(text)
	default:
		return highStyle.Render(text)
	}
}
