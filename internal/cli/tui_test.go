package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/trussfea/pkg/truss"
)

func newDemoBrowser(t *testing.T) BrowserModel {
	t.Helper()
	m := truss.Demo(-1000, 1e-4, 210e9)
	res, err := truss.Analyze(m)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBrowserModel("demo", m, res)
	b.Height = 3
	return b
}

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	keyDown = tea.KeyMsg{Type: tea.KeyDown}
	keyUp   = tea.KeyMsg{Type: tea.KeyUp}
	keyTab  = tea.KeyMsg{Type: tea.KeyTab}
	keyEnd  = tea.KeyMsg{Type: tea.KeyEnd}
)

func TestBrowserNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []tea.KeyMsg
		wantCursor int
		wantOffset int
		wantMode   browserView
	}{
		{"initial", nil, 0, 0, viewElements},
		{"up at top stays", []tea.KeyMsg{keyUp}, 0, 0, viewElements},
		{"scrolls window", []tea.KeyMsg{keyDown, keyDown, keyDown}, 3, 1, viewElements},
		{"end clamps", []tea.KeyMsg{keyEnd, keyDown}, 4, 2, viewElements},
		{"tab switches and resets", []tea.KeyMsg{keyDown, keyTab}, 0, 0, viewNodes},
		{"nodes end", []tea.KeyMsg{keyTab, keyEnd}, 3, 1, viewNodes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(newDemoBrowser(t), tt.keys...).(BrowserModel)
			if got.Cursor != tt.wantCursor || got.Offset != tt.wantOffset || got.Mode != tt.wantMode {
				t.Errorf("cursor=%d offset=%d mode=%d, want %d %d %d",
					got.Cursor, got.Offset, got.Mode, tt.wantCursor, tt.wantOffset, tt.wantMode)
			}
		})
	}
}

func TestBrowserQuit(t *testing.T) {
	_, cmd := newDemoBrowser(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowserView(t *testing.T) {
	b := newDemoBrowser(t)
	b = press(b, keyDown, keyDown, keyDown, keyDown).(BrowserModel)
	view := b.View()
	for _, want := range []string{"Element 4", "tension", "[5/5]", "14.14 MPa"} {
		if !strings.Contains(view, want) {
			t.Errorf("element view missing %q:\n%s", want, view)
		}
	}

	b = press(b, keyTab).(BrowserModel)
	view = b.View()
	for _, want := range []string{"Node 0", "pinned", "Position"} {
		if !strings.Contains(view, want) {
			t.Errorf("node view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowserEmpty(t *testing.T) {
	b := NewBrowserModel("empty", &truss.Model{}, &truss.Result{})
	b = press(b, keyDown, keyEnd).(BrowserModel)
	if !strings.Contains(b.View(), "(empty)") {
		t.Error("empty model should say so")
	}
}

func TestBrowserSupportLabels(t *testing.T) {
	b := newDemoBrowser(t)
	tests := map[int]string{0: "pinned", 1: "", 2: "", 3: "roller (x)"}
	for node, want := range tests {
		if got := b.supportLabel(node); got != want {
			t.Errorf("supportLabel(%d) = %q, want %q", node, got, want)
		}
	}
}
