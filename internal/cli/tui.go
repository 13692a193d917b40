package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/truss"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browserView selects the table shown by the browser.
type browserView int

const (
	viewElements browserView = iota
	viewNodes
)

// BrowserModel is the bubbletea model of the result browser. It lists
// elements or nodes with a detail pane for the row under the cursor.
type BrowserModel struct {
	Model  *truss.Model
	Result *truss.Result
	Title  string

	Mode   browserView
	Cursor int
	Offset int
	Height int

	states []render.MemberState
	fixed  map[int]bool
}

// NewBrowserModel creates a browser over an analysed model.
func NewBrowserModel(title string, m *truss.Model, res *truss.Result) BrowserModel {
	fixed := make(map[int]bool, len(m.Fixed))
	for _, d := range m.Fixed {
		fixed[d] = true
	}
	return BrowserModel{
		Model:  m,
		Result: res,
		Title:  title,
		Height: 12,
		states: render.Classify(res.ElemForces),
		fixed:  fixed,
	}
}

func (m BrowserModel) rows() int {
	if m.Mode == viewNodes {
		return len(m.Model.Nodes)
	}
	return len(m.Model.Elements)
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.Mode == viewElements {
				m.Mode = viewNodes
			} else {
				m.Mode = viewElements
			}
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-m.rows())
		case "end", "G":
			m.move(m.rows())
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped, keeping it in the window.
func (m *BrowserModel) move(delta int) {
	n := m.rows()
	if n == 0 {
		m.Cursor, m.Offset = 0, 0
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("max stress %s · max disp %s",
		formatSI(m.Result.MaxStress, "Pa"), formatSI(m.Result.MaxDisp, "m"))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab elements/nodes  q quit"))
	b.WriteString("\n\n")

	if m.rows() == 0 {
		b.WriteString(listDimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}

	if m.Mode == viewNodes {
		b.WriteString(m.nodeTable())
	} else {
		b.WriteString(m.elementTable())
	}
	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(m.detail()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.rows())))
	return b.String()
}

func (m BrowserModel) window() (int, int) {
	return m.Offset, min(m.Offset+m.Height, m.rows())
}

func (m BrowserModel) elementTable() string {
	start, end := m.window()
	var rows [][]string
	for i := start; i < end; i++ {
		e := m.Model.Elements[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(i),
			fmt.Sprintf("%d-%d", e.N1, e.N2),
			fmt.Sprintf("%.4g", m.Result.ElemForces[i]),
			fmt.Sprintf("%.4g", m.Result.ElemStresses[i]),
			m.states[i].String(),
		})
	}
	return m.table(rows, start, "", "#", "Nodes", "Force (N)", "Stress (Pa)", "State")
}

func (m BrowserModel) nodeTable() string {
	start, end := m.window()
	var rows [][]string
	for i := start; i < end; i++ {
		n := m.Model.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(i),
			fmt.Sprintf("(%g, %g)", n.X, n.Y),
			fmt.Sprintf("%.4g", m.Result.U[2*i]),
			fmt.Sprintf("%.4g", m.Result.U[2*i+1]),
			m.supportLabel(i),
		})
	}
	return m.table(rows, start, "", "#", "Position", "ux (m)", "uy (m)", "Support")
}

func (m BrowserModel) table(rows [][]string, start int, headers ...string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := start + row
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if m.Mode == viewElements && col == 5 && idx < len(m.states) {
				switch m.states[idx] {
				case render.Tension:
					return styleTension
				case render.Compression:
					return styleCompression
				}
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (m BrowserModel) supportLabel(node int) string {
	x, y := m.fixed[2*node], m.fixed[2*node+1]
	switch {
	case x && y:
		return "pinned"
	case x:
		return "roller (x)"
	case y:
		return "roller (y)"
	}
	return ""
}

// detail describes the row under the cursor.
func (m BrowserModel) detail() string {
	if m.Mode == viewNodes {
		i := m.Cursor
		n := m.Model.Nodes[i]
		ux, uy := m.Result.U[2*i], m.Result.U[2*i+1]
		lines := []string{
			StyleTitle.Render(fmt.Sprintf("Node %d", i)),
			fmt.Sprintf("position      (%g, %g) m", n.X, n.Y),
			fmt.Sprintf("displacement  %s", formatSI(math.Hypot(ux, uy), "m")),
			fmt.Sprintf("load          (%g, %g) N", m.Model.Loads[2*i], m.Model.Loads[2*i+1]),
		}
		if s := m.supportLabel(i); s != "" {
			lines = append(lines, "support       "+s)
		}
		return strings.Join(lines, "\n")
	}

	i := m.Cursor
	e := m.Model.Elements[i]
	length, _, _, _ := truss.Geometry(m.Model.Nodes[e.N1], m.Model.Nodes[e.N2])
	return strings.Join([]string{
		StyleTitle.Render(fmt.Sprintf("Element %d", i)),
		fmt.Sprintf("nodes    %d → %d", e.N1, e.N2),
		fmt.Sprintf("length   %.4g m", length),
		fmt.Sprintf("A, E     %g m², %s", e.A, formatSI(e.E, "Pa")),
		fmt.Sprintf("force    %s (%s)", formatSI(m.Result.ElemForces[i], "N"), m.states[i]),
		fmt.Sprintf("stress   %s", formatSI(m.Result.ElemStresses[i], "Pa")),
	}, "\n")
}
