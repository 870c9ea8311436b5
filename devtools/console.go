// Package devtools provides a terminal console for debug sessions: live
// protocol counters, a scrolling message trace, and a script eval prompt
// wired into the UI work queue.
package devtools

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/a3st/ABOVE/bridge"
	"github.com/a3st/ABOVE/errors"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	evalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dropStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Target is the slice of the adapter the console drives.
type Target interface {
	ExecuteScript(src string) error
	Dispatch(fn func()) error
	Stats() bridge.Stats
	Bound() []string
}

// Config configures a Console.
type Config struct {
	Target  Target
	AppName string
	URL     string

	// LogSize bounds the trace log. Zero selects 200 lines.
	LogSize int
}

// Console is a bubbletea program over a Target. Construct it with New,
// install Feed as the router tap, and call Run from its own goroutine.
type Console struct {
	cfg  Config
	ring *traceRing
	prog *tea.Program
}

// New validates the target and the terminal and builds the console.
func New(cfg Config) (*Console, error) {
	if cfg.Target == nil {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "nil devtools target")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "stdout is not a terminal")
	}
	if cfg.LogSize <= 0 {
		cfg.LogSize = 200
	}

	c := &Console{cfg: cfg, ring: newTraceRing(cfg.LogSize)}
	c.prog = tea.NewProgram(newConsoleModel(cfg, c.ring), tea.WithAltScreen())
	return c, nil
}

// Feed records a routed message in the trace log. It never blocks, so
// it is safe as the router tap on the UI thread.
func (c *Console) Feed(tr bridge.Trace) {
	c.ring.push(traceLine(tr))
}

// Run drives the console until the user closes it.
func (c *Console) Run() error {
	Logger().Info("devtools console started",
		zap.String("app", c.cfg.AppName),
		zap.String("url", c.cfg.URL))
	_, err := c.prog.Run()
	return err
}

// Stop closes a running console.
func (c *Console) Stop() {
	c.prog.Quit()
}

// traceRing is a bounded line log shared between the router tap and the
// console model.
type traceRing struct {
	mu    sync.Mutex
	lines []string
	limit int
}

func newTraceRing(limit int) *traceRing {
	return &traceRing{limit: limit}
}

func (r *traceRing) push(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.limit {
		r.lines = append(r.lines[:0], r.lines[len(r.lines)-r.limit:]...)
	}
}

func (r *traceRing) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

func traceLine(tr bridge.Trace) string {
	if tr.Outcome == bridge.OutcomeDroppedMalformed {
		return fmt.Sprintf("%s %s", tr.Outcome, clip(tr.Payload, 80))
	}
	return fmt.Sprintf("%s #%d %s %s", tr.Outcome, tr.Index, tr.Func, clip(tr.Payload, 80))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

type consoleModel struct {
	target Target
	ring   *traceRing
	header string

	input  textinput.Model
	lines  []string
	stats  bridge.Stats
	bound  []string
	height int
}

type tickMsg time.Time

func newConsoleModel(cfg Config, ring *traceRing) *consoleModel {
	ti := textinput.New()
	ti.Placeholder = "script"
	ti.Prompt = "js> "
	ti.Width = 60
	ti.Focus()

	header := cfg.AppName
	if cfg.URL != "" {
		header += "  " + cfg.URL
	}

	return &consoleModel{
		target: cfg.Target,
		ring:   ring,
		header: header,
		input:  ti,
	}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			m.eval(strings.TrimSpace(m.input.Value()))
			m.input.Reset()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tickMsg:
		m.stats = m.target.Stats()
		m.lines = m.ring.snapshot()
		m.bound = m.target.Bound()
		sort.Strings(m.bound)
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// eval schedules src on the UI work queue so page scripts run in order
// with the rest of the app's dispatched work. Failures land in the
// trace log since the model cannot be touched from the UI thread.
func (m *consoleModel) eval(src string) {
	if src == "" {
		return
	}
	m.ring.push("eval> " + src)

	err := m.target.Dispatch(func() {
		if err := m.target.ExecuteScript(src); err != nil {
			m.ring.push("eval failed: " + err.Error())
			Logger().Warn("devtools eval failed", zap.Error(err))
		}
	})
	if err != nil {
		m.ring.push("eval dispatch failed: " + err.Error())
	}
}

func (m *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ABOVE devtools"))
	b.WriteString(" ")
	b.WriteString(m.header)
	b.WriteString("\n\n")

	b.WriteString(countStyle.Render(fmt.Sprintf(
		"received %d  dispatched %d  dropped:malformed %d  dropped:unrouted %d",
		m.stats.Received, m.stats.Dispatched, m.stats.DroppedMalformed, m.stats.DroppedUnrouted)))
	b.WriteString("\n")
	if len(m.bound) > 0 {
		b.WriteString(helpStyle.Render("bound: " + strings.Join(m.bound, " ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	visible := 12
	if m.height > 8 {
		visible = m.height - 8
	}
	lines := m.lines
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "eval"):
			b.WriteString(evalStyle.Render(line))
		case strings.HasPrefix(line, "dropped"):
			b.WriteString(dropStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter eval • esc close console"))

	return b.String()
}
