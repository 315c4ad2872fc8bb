package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func staticRender(view string) RenderFunc {
	return func(width int) (Content, error) {
		return Content{View: view, Plain: "plain:" + view}, nil
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return pm, cmd
}

// loaded runs the initial render synchronously.
func loaded(t *testing.T, render RenderFunc) Model {
	t.Helper()
	m := NewModel("R-1 depth 2", render, nil, TestTheme())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 10})
	c, err := render(120)
	m, _ = update(t, m, contentMsg{content: c, err: err})
	return m
}

func TestPager_InitializingUntilReady(t *testing.T) {
	m := NewModel("t", staticRender("x"), nil, TestTheme())
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View = %q", got)
	}
	m, _ = update(t, m, ReadyTimeoutMsg{})
	if !strings.Contains(m.View(), "t") {
		t.Errorf("expected header after ready timeout: %q", m.View())
	}
}

func TestPager_ShowsContent(t *testing.T) {
	m := loaded(t, staticRender("- R-1 Root [Open]\n-- blocks A-1 Child [Done]"))
	view := m.View()
	for _, want := range []string{"R-1 depth 2", "- R-1 Root [Open]", "blocks A-1", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPager_ResizeRerenders(t *testing.T) {
	var widths []int
	render := func(width int) (Content, error) {
		widths = append(widths, width)
		return Content{View: "x"}, nil
	}
	m := NewModel("t", render, nil, TestTheme())

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if cmd == nil {
		t.Fatal("expected a render command on width change")
	}
	if _, ok := cmd().(contentMsg); !ok {
		t.Fatal("render command did not produce content")
	}
	if len(widths) != 1 || widths[0] != 100 {
		t.Errorf("rendered with widths %v", widths)
	}

	_, cmd = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if cmd != nil {
		t.Error("height-only change should not re-render")
	}
}

func TestPager_RenderError(t *testing.T) {
	m := loaded(t, staticRender("old"))
	m, _ = update(t, m, contentMsg{err: errors.New("snapshot vanished")})
	view := m.View()
	if !strings.Contains(view, "Error: snapshot vanished") || !strings.Contains(view, "old") {
		t.Errorf("expected error banner over previous content:\n%s", view)
	}
}

func TestPager_FileChangedReloads(t *testing.T) {
	calls := 0
	render := func(int) (Content, error) {
		calls++
		return Content{View: "v"}, nil
	}
	m := loaded(t, render)
	calls = 0

	m, cmd := update(t, m, FileChangedMsg{})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	if !strings.HasPrefix(m.status, "reloaded") {
		t.Errorf("status = %q", m.status)
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			c()
		}
	}
	if calls != 1 {
		t.Errorf("render calls = %d, want 1", calls)
	}
}

func TestPager_CopyUsesPlainText(t *testing.T) {
	orig := copyFunc
	t.Cleanup(func() { copyFunc = orig })
	var copied string
	copyFunc = func(s string) error {
		copied = s
		return nil
	}

	m := loaded(t, staticRender("styled"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m, _ = update(t, m, cmd())
	if copied != "plain:styled" {
		t.Errorf("copied %q", copied)
	}
	if m.status != "copied to clipboard" {
		t.Errorf("status = %q", m.status)
	}

	copyFunc = func(string) error { return errors.New("no clipboard") }
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m, _ = update(t, m, cmd())
	if m.status != "copy failed: no clipboard" {
		t.Errorf("status = %q", m.status)
	}
}

func TestPager_QuitKeys(t *testing.T) {
	m := loaded(t, staticRender("x"))
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
	}
}

func TestPager_TopBottom(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "line"
	}
	m := loaded(t, staticRender(strings.Join(lines, "\n")))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if !m.viewport.AtBottom() {
		t.Error("expected viewport at bottom")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if !m.viewport.AtTop() {
		t.Error("expected viewport at top")
	}
}
