package devtools

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/a3st/ABOVE/bridge"
	"github.com/a3st/ABOVE/errors"
)

type fakeTarget struct {
	stats       bridge.Stats
	execErr     error
	dispatchErr error
	executed    []string
	queued      []func()
}

func (f *fakeTarget) ExecuteScript(src string) error {
	f.executed = append(f.executed, src)
	return f.execErr
}

func (f *fakeTarget) Dispatch(fn func()) error {
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.queued = append(f.queued, fn)
	return nil
}

func (f *fakeTarget) Stats() bridge.Stats {
	return f.stats
}

func (f *fakeTarget) Bound() []string {
	return []string{"host.echo", "host.add"}
}

func (f *fakeTarget) drain() {
	for _, fn := range f.queued {
		fn()
	}
	f.queued = nil
}

func newTestModel(target Target) (*consoleModel, *traceRing) {
	ring := newTraceRing(10)
	return newConsoleModel(Config{Target: target, AppName: "app"}, ring), ring
}

func TestNewValidatesTarget(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindInvalidInput}) {
		t.Fatalf("New without target = %v", err)
	}
}

func TestTraceRingKeepsTail(t *testing.T) {
	ring := newTraceRing(3)
	for i := 1; i <= 5; i++ {
		ring.push(fmt.Sprintf("l%d", i))
	}

	got := ring.snapshot()
	want := []string{"l3", "l4", "l5"}
	if len(got) != len(want) {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}
}

func TestTraceLineFormats(t *testing.T) {
	tests := []struct {
		name  string
		trace bridge.Trace
		want  string
	}{
		{
			name:  "dispatched",
			trace: bridge.Trace{Outcome: bridge.OutcomeDispatched, Index: 4, Func: "host.add", Payload: "p"},
			want:  "dispatched #4 host.add p",
		},
		{
			name:  "unrouted",
			trace: bridge.Trace{Outcome: bridge.OutcomeDroppedUnrouted, Index: 9, Func: "host.gone", Payload: "p"},
			want:  "dropped:unrouted #9 host.gone p",
		},
		{
			name:  "malformed has no envelope fields",
			trace: bridge.Trace{Outcome: bridge.OutcomeDroppedMalformed, Payload: "not json"},
			want:  "dropped:malformed not json",
		},
		{
			name:  "long payload clipped",
			trace: bridge.Trace{Outcome: bridge.OutcomeDroppedMalformed, Payload: strings.Repeat("a", 100)},
			want:  "dropped:malformed " + strings.Repeat("a", 80) + "...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := traceLine(tt.trace); got != tt.want {
				t.Fatalf("traceLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalSchedulesScriptOnWorkQueue(t *testing.T) {
	target := &fakeTarget{}
	m, ring := newTestModel(target)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if lines := ring.snapshot(); len(lines) != 0 {
		t.Fatalf("empty eval logged %v", lines)
	}

	m.input.SetValue("console.log(1)")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got := ring.snapshot(); len(got) != 1 || got[0] != "eval> console.log(1)" {
		t.Fatalf("log = %v", got)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not reset: %q", m.input.Value())
	}
	if len(target.executed) != 0 {
		t.Fatal("script ran before the work queue drained")
	}

	target.drain()
	if len(target.executed) != 1 || target.executed[0] != "console.log(1)" {
		t.Fatalf("executed = %v", target.executed)
	}
}

func TestEvalFailuresLandInLog(t *testing.T) {
	target := &fakeTarget{execErr: stderrors.New("boom")}
	m, ring := newTestModel(target)

	m.input.SetValue("1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	target.drain()

	lines := ring.snapshot()
	if len(lines) != 2 || lines[1] != "eval failed: boom" {
		t.Fatalf("log = %v", lines)
	}

	target = &fakeTarget{dispatchErr: stderrors.New("queue full")}
	m, ring = newTestModel(target)
	m.input.SetValue("2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	lines = ring.snapshot()
	if len(lines) != 2 || lines[1] != "eval dispatch failed: queue full" {
		t.Fatalf("log = %v", lines)
	}
}

func TestTickRefreshesCountersAndLog(t *testing.T) {
	target := &fakeTarget{stats: bridge.Stats{Received: 3, Dispatched: 2, DroppedUnrouted: 1}}
	m, ring := newTestModel(target)
	ring.push("dispatched #0 host.add [1,2]")

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick did not reschedule")
	}
	if m.stats.Received != 3 || len(m.lines) != 1 {
		t.Fatalf("model not refreshed: stats=%+v lines=%v", m.stats, m.lines)
	}

	view := m.View()
	for _, want := range []string{
		"received 3  dispatched 2  dropped:malformed 0  dropped:unrouted 1",
		"bound: host.add host.echo",
		"dispatched #0 host.add [1,2]",
		"js> ",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestCloseKeysQuitConsole(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m, _ := newTestModel(&fakeTarget{})
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s did not quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s produced %T, want tea.QuitMsg", key, cmd())
		}
	}
}
