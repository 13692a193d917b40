package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// stdout receives all status output; tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary actions
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors, tension
	colorBlue   = lipgloss.Color("75")  // compression
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	styleTension     = lipgloss.NewStyle().Foreground(colorRed)
	styleCompression = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints model size and cache status on one line.
func printStats(s pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d elements", s.Elements),
		fmt.Sprintf("%d dofs", s.DOFs),
	}
	status := styleComputed.Render(fmt.Sprintf("solved in %s", s.SolveTime))
	if cached {
		status = styleCached.Render("cached")
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · "))+StyleDim.Render(" · ")+status)
}

// =============================================================================
// Results
// =============================================================================

// printSummary prints the peak values of an analysis.
func printSummary(res *truss.Result) {
	printKeyValue("max stress", StyleNumber.Render(formatSI(res.MaxStress, "Pa")))
	printKeyValue("max disp", StyleNumber.Render(formatSI(res.MaxDisp, "m")))
}

// elementTable renders the per-member results as a table, colouring the
// state column.
func elementTable(m *truss.Model, res *truss.Result) string {
	rows := make([][]string, len(m.Elements))
	states := render.Classify(res.ElemForces)
	for i, e := range m.Elements {
		rows[i] = []string{
			fmt.Sprint(i),
			fmt.Sprintf("%d-%d", e.N1, e.N2),
			fmt.Sprintf("%.4g", res.ElemForces[i]),
			fmt.Sprintf("%.4g", res.ElemStresses[i]),
			states[i].String(),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Nodes", "Force (N)", "Stress (Pa)", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col != 4 || row < 0 || row >= len(states) {
				return base
			}
			switch states[row] {
			case render.Tension:
				return styleTension.Padding(0, 1)
			case render.Compression:
				return styleCompression.Padding(0, 1)
			}
			return base.Foreground(colorDim)
		}).
		Render()
}

func printElementTable(m *truss.Model, res *truss.Result) {
	fmt.Fprintln(stdout, elementTable(m, res))
}

// formatSI prints v with an SI prefix, e.g. 1.414e7 Pa as "14.14 MPa".
func formatSI(v float64, unit string) string {
	prefixes := []struct {
		scale  float64
		prefix string
	}{
		{1e9, "G"}, {1e6, "M"}, {1e3, "k"}, {1, ""}, {1e-3, "m"}, {1e-6, "µ"}, {1e-9, "n"},
	}
	a := v
	if a < 0 {
		a = -a
	}
	if a == 0 {
		return "0 " + unit
	}
	for _, p := range prefixes {
		if a >= p.scale {
			return fmt.Sprintf("%.4g %s%s", v/p.scale, p.prefix, unit)
		}
	}
	return fmt.Sprintf("%.4g %s", v, unit)
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+lipgloss.NewStyle().Foreground(colorBlue).Render(cmd))
}
