package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	overStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// PrintTable writes one row per template with its count per risk level. A
// bounded level shows "count/max"; counts over their maximum are highlighted.
func PrintTable(w io.Writer, rep types.Report, th types.Threshold, opts PrintOptions) error {
	paint := func(s lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Template", "Extreme", "Very High", "High", "Medium", "Low", "Status")
	var passed, failed, errored int
	for _, o := range rep.Outcomes {
		row := []string{o.Template}
		for _, l := range types.RiskLevels {
			n := o.Results.Count(l)
			cell := strconv.Itoa(n)
			if max, ok := th.Max(l); ok {
				cell = fmt.Sprintf("%d/%d", n, max)
				if n > max {
					cell = paint(overStyle, cell)
				}
			}
			if o.Failed() {
				cell = "-"
			}
			row = append(row, cell)
		}
		switch {
		case o.Failed():
			errored++
			row = append(row, paint(errorStyle, "ERROR"))
		case Exceeds(o.Results, th):
			failed++
			row = append(row, paint(failStyle, "FAIL"))
		default:
			passed++
			row = append(row, paint(passStyle, "PASS"))
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTemplates: %d (passed: %d, failed: %d, errors: %d)\n", len(rep.Outcomes), passed, failed, errored)
	if rep.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", rep.Duration.Seconds())
	}
	return nil
}
