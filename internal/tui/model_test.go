package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgrover/result"
	"qgrover/sim"
)

func fixedRun(t *testing.T) RunFunc {
	t.Helper()
	table, err := result.Organize(map[string]int{"1 1 1": 800, "0 0 0": 224}, []string{"a", "b", "c"})
	require.NoError(t, err)
	res := &sim.Result{JobID: "0123456789abcdef", Backend: "statevector", Shots: 1024, Duration: time.Millisecond}
	return func(context.Context) (*result.Table, *sim.Result, error) {
		return table, res, nil
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func sized(t *testing.T, run RunFunc, opts ...Option) Model {
	t.Helper()
	m := New("a ∧ b", threeQubits(t), run, opts...)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeResize(t *testing.T) {
	m := New("search", threeQubits(t), nil)
	assert.Equal(t, "Loading...", m.View())
}

func TestTabCycling(t *testing.T) {
	m := sized(t, nil)
	assert.Equal(t, tabCircuit, m.tab)
	assert.Contains(t, ansi.Strip(m.View()), "┤ H ├")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabQASM, m.tab)
	assert.Contains(t, ansi.Strip(m.View()), "OPENQASM 2.0;")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabResults, m.tab)
	assert.Contains(t, ansi.Strip(m.View()), "press r to simulate")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabCircuit, m.tab)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, tabResults, m.tab)
}

func TestHorizontalScroll(t *testing.T) {
	m := sized(t, nil)
	m, _ = update(t, m, runes("l"))
	assert.Equal(t, 1, m.colStart)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.colStart)

	for range 10 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, m.grid.Len()-1, m.colStart)
}

func TestRunShowsResults(t *testing.T) {
	m := sized(t, fixedRun(t))

	m, cmd := update(t, m, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.running)
	assert.Equal(t, tabResults, m.tab)
	assert.Contains(t, ansi.Strip(m.View()), "simulating")

	// pressing r again while running starts nothing
	_, cmd = update(t, m, runes("r"))
	assert.Nil(t, cmd)

	m, _ = update(t, m, m.simulate()())
	assert.False(t, m.running)
	require.NotNil(t, m.table)
	assert.Equal(t, "job 01234567 done", m.statusMsg)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "$freq")
	assert.Contains(t, view, "800")
	assert.Contains(t, view, "78.1%")
	assert.Contains(t, view, "statevector")
}

func TestRunErrorOverlay(t *testing.T) {
	m := sized(t, func(context.Context) (*result.Table, *sim.Result, error) {
		return nil, nil, errors.New("too many qubits")
	})
	m, _ = update(t, m, runes("r"))
	m, _ = update(t, m, m.simulate()())
	require.Error(t, m.err)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Simulation failed")
	assert.Contains(t, view, "too many qubits")

	// keys other than esc are ignored while the error is shown
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabResults, m.tab)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NoError(t, m.err)
	assert.NotContains(t, ansi.Strip(m.View()), "Simulation failed")
}

func TestSaveWritesQASM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.qasm")
	m := sized(t, nil, WithQASMPath(path))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "Saved "+path, m.statusMsg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.circ.ToQASM(), string(data))
}

func TestQuit(t *testing.T) {
	m := sized(t, nil)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestResultColumns(t *testing.T) {
	table, err := result.Organize(map[string]int{"1 0": 1000, "0 1": 24}, []string{"long_label", "b"})
	require.NoError(t, err)

	cols := resultColumns(table)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	assert.Equal(t, []string{"", "long_label", "b", result.FreqColumn, "share"}, titles)
	assert.Equal(t, 3, cols[0].Width)
	assert.Equal(t, len("long_label"), cols[1].Width)
	assert.Equal(t, 3, cols[2].Width)
	assert.Equal(t, 5, cols[3].Width)
}

func TestRenderTabs(t *testing.T) {
	out := ansi.Strip(renderTabs(tabQASM))
	assert.Equal(t, []string{"Circuit", "│", "QASM", "│", "Results"}, strings.Fields(strings.ReplaceAll(out, "│", " │ ")))
}
