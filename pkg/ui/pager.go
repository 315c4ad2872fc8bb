// Package ui implements the scrollable terminal pager used by lt -tui.
package ui

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/linktree/pkg/watcher"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header line plus a bordered footer line
	chromeHeight = 3
)

// Content is one rendering of the tree: View is shown, Plain is copied.
type Content struct {
	View  string
	Plain string
}

// RenderFunc produces the pager content for a terminal width.
type RenderFunc func(width int) (Content, error)

// FileChangedMsg is sent when the watched data directory changes.
type FileChangedMsg struct{}

// ReadyTimeoutMsg makes the pager usable even if the terminal never reports
// its size.
type ReadyTimeoutMsg struct{}

type contentMsg struct {
	content Content
	err     error
}

type clipboardMsg struct{ err error }

// ReadyTimeoutCmd sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd waits for the next change reported by w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// copyFunc is replaced in tests.
var copyFunc = clipboard.WriteAll

// Model is the pager state.
type Model struct {
	title   string
	render  RenderFunc
	watcher *watcher.Watcher
	theme   Theme

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	content Content
	status  string
	err     error
}

// NewModel creates a pager. w may be nil to disable live reload.
func NewModel(title string, render RenderFunc, w *watcher.Watcher, theme Theme) Model {
	return Model{
		title:    title,
		render:   render,
		watcher:  w,
		theme:    theme,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		width:    defaultWidth,
		height:   defaultHeight,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.renderCmd(), ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) renderCmd() tea.Cmd {
	render, width := m.render, m.width
	return func() tea.Msg {
		c, err := render(width)
		return contentMsg{content: c, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resized := msg.Width != m.width
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		m.ready = true
		if resized {
			return m, m.renderCmd()
		}
		return m, nil

	case ReadyTimeoutMsg:
		m.ready = true
		return m, nil

	case contentMsg:
		m.err = msg.err
		if msg.err == nil {
			m.content = msg.content
			m.viewport.SetContent(msg.content.View)
		}
		return m, nil

	case FileChangedMsg:
		m.status = "reloaded " + time.Now().Format("15:04:05")
		var cmds []tea.Cmd
		cmds = append(cmds, m.renderCmd())
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.status = "refreshing"
			return m, m.renderCmd()
		case "c":
			plain := m.content.Plain
			return m, func() tea.Msg { return clipboardMsg{err: copyFunc(plain)} }
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(m.theme.Header.Render(m.title))
	sb.WriteByte('\n')
	if m.err != nil {
		sb.WriteString(m.theme.Alert.Render("Error: " + m.err.Error()))
		sb.WriteByte('\n')
	}
	sb.WriteString(m.viewport.View())
	sb.WriteByte('\n')
	sb.WriteString(m.theme.Footer.Width(m.width).Render(m.footer()))
	return sb.String()
}

func (m Model) footer() string {
	help := fmt.Sprintf("%3.f%%  ↑/↓ scroll · g/G top/bottom · r refresh · c copy · q quit", m.viewport.ScrollPercent()*100)
	if m.status == "" {
		return help
	}
	return m.theme.Status.Render(m.status) + "  " + help
}

// AutoCloseEnvVar quits the pager after the given number of milliseconds.
// Used by automated tests.
const AutoCloseEnvVar = "LT_TUI_AUTOCLOSE_MS"

// Run starts the pager on the alternate screen and blocks until it quits.
// SIGINT/SIGTERM quit gracefully; a second signal or a 5s stall kills it.
func Run(m Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}
		p.Quit()
		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}
		p.Kill()
	}()

	if v := os.Getenv(AutoCloseEnvVar); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()
				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
