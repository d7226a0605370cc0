// Package tui is an interactive viewer for a built search circuit: its gate
// diagram, its OpenQASM text and the organized measurement counts of a
// simulation run.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qgrover/circuit"
	"qgrover/result"
	"qgrover/sim"
)

// RunFunc executes the search once and returns its organized counts.
type RunFunc func(ctx context.Context) (*result.Table, *sim.Result, error)

type simDoneMsg struct {
	table *result.Table
	res   *sim.Result
	err   error
}

type savedMsg struct {
	path string
	err  error
}

// Option configures a Model.
type Option func(*Model)

// WithLogger attaches a logger for run diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithQASMPath sets where ctrl+s writes the QASM text.
func WithQASMPath(path string) Option {
	return func(m *Model) {
		if path != "" {
			m.qasmPath = path
		}
	}
}

// WithContext sets the context simulation runs are started with.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model represents the TUI application state.
type Model struct {
	title    string
	circ     *circuit.Circuit
	grid     *grid
	run      RunFunc
	qasmPath string
	logger   *zap.Logger
	ctx      context.Context

	keys    keyMap
	help    help.Model
	diagram viewport.Model
	qasm    viewport.Model
	results table.Model
	spinner spinner.Model

	tab       tab
	colStart  int
	running   bool
	table     *result.Table
	res       *sim.Result
	err       error
	statusMsg string // transient status message (e.g. save confirmation)
	width     int
	height    int
}

// New returns a model showing c. run is invoked every time a simulation is
// requested.
func New(title string, c *circuit.Circuit, run RunFunc, opts ...Option) Model {
	m := Model{
		title:    title,
		circ:     c,
		grid:     newGrid(c),
		run:      run,
		qasmPath: "search.qasm",
		logger:   zap.NewNop(),
		ctx:      context.Background(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		diagram:  viewport.New(80, 20),
		qasm:     viewport.New(80, 20),
		results:  table.New(table.WithFocused(true), table.WithHeight(10)),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusStyle)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.qasm.SetContent(c.ToQASM())
	m.refreshDiagram()
	return m
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case simDoneMsg:
		m.running = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = ""
			m.logger.Error("simulation failed", zap.Error(msg.err))
			break
		}
		m.table, m.res = msg.table, msg.res
		m.setResults(msg.table)
		m.tab = tabResults
		m.statusMsg = fmt.Sprintf("job %s done", shortID(msg.res.JobID))
		m.logger.Info("simulation finished",
			zap.String("job_id", msg.res.JobID),
			zap.Int("outcomes", len(msg.table.Rows)),
			zap.Duration("duration", msg.res.Duration),
		)

	case savedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Save error: %v", msg.err)
		} else {
			m.statusMsg = "Saved " + msg.path
		}

	case tea.KeyMsg:
		m.statusMsg = ""

		if m.err != nil {
			switch {
			case key.Matches(msg, m.keys.Dismiss):
				m.err = nil
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			}
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % tab(len(tabNames))
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize(m.width, m.height)
		case key.Matches(msg, m.keys.Run):
			if !m.running && m.run != nil {
				m.running = true
				m.tab = tabResults
				cmds = append(cmds, m.spinner.Tick, m.simulate())
			}
		case key.Matches(msg, m.keys.Save):
			cmds = append(cmds, m.save())
		case m.tab == tabCircuit && key.Matches(msg, m.keys.Left):
			if m.colStart > 0 {
				m.colStart--
				m.refreshDiagram()
			}
		case m.tab == tabCircuit && key.Matches(msg, m.keys.Right):
			if m.colStart < m.grid.Len()-1 {
				m.colStart++
				m.refreshDiagram()
			}
		default:
			var cmd tea.Cmd
			switch m.tab {
			case tabCircuit:
				m.diagram, cmd = m.diagram.Update(msg)
			case tabQASM:
				m.qasm, cmd = m.qasm.Update(msg)
			case tabResults:
				m.results, cmd = m.results.Update(msg)
			}
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) simulate() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		t, res, err := run(ctx)
		return simDoneMsg{table: t, res: res, err: err}
	}
}

func (m Model) save() tea.Cmd {
	path, text := m.qasmPath, m.circ.ToQASM()
	return func() tea.Msg {
		return savedMsg{path: path, err: os.WriteFile(path, []byte(text), 0o644)}
	}
}

// bodySize returns the inner size of the panel.
func (m *Model) bodySize() (int, int) {
	helpH := lipgloss.Height(m.help.View(m.keys))
	return max(m.width-4, 10), max(m.height-4-helpH, 3)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	w, h := m.bodySize()
	m.diagram.Width, m.diagram.Height = w, h
	m.qasm.Width, m.qasm.Height = w, h
	m.results.SetWidth(w)
	m.results.SetHeight(max(h-2, 2))
	m.refreshDiagram()
}

func (m *Model) visibleCols() int {
	w := m.diagram.Width - m.grid.labelWidth() - 1
	return max(w/cellW, 1)
}

func (m *Model) refreshDiagram() {
	m.diagram.SetContent(m.grid.render(m.colStart, m.visibleCols()))
}

func (m *Model) setResults(t *result.Table) {
	m.results.SetRows(nil)
	m.results.SetColumns(resultColumns(t))
	records := t.Records()
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = append(table.Row(r), fmt.Sprintf("%5.1f%%", 100*t.Proportion(i)))
	}
	m.results.SetRows(rows)
	m.results.GotoTop()
}

// resultColumns lays out the results table: index, one column per qubit
// label, frequency and share of shots.
func resultColumns(t *result.Table) []table.Column {
	header := t.Header()
	cols := make([]table.Column, 0, len(header)+1)
	for i, h := range header {
		w := max(len(h), 3)
		switch {
		case i == 0:
			w = max(len(strconv.Itoa(len(t.Rows))), 3)
		case h == result.FreqColumn:
			w = max(len(strconv.Itoa(t.Total())), len(h))
		}
		cols = append(cols, table.Column{Title: h, Width: w})
	}
	return append(cols, table.Column{Title: "share", Width: 7})
}

// ──────────────────────────── View ────────────────────────────

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := titleStyle.Render(m.title) + "  " + renderTabs(m.tab)

	var body string
	switch m.tab {
	case tabCircuit:
		body = m.diagram.View()
	case tabQASM:
		body = m.qasm.View()
	case tabResults:
		body = m.resultsView()
	}
	w, h := m.bodySize()
	panel := panelStyle.Width(w + 2).Height(h).Render(body)

	footer := m.help.View(m.keys)
	if m.statusMsg != "" {
		footer += "  │  " + statusStyle.Render(m.statusMsg)
	}

	frame := lipgloss.JoinVertical(lipgloss.Left, header, panel, footer)
	if m.err != nil {
		box := errorBoxStyle.Width(min(60, m.width-4)).Render(
			titleStyle.Render("Simulation failed") + "\n\n" + m.err.Error() + "\n\n" + dimStyle.Render("esc to dismiss"))
		frame = centerOverlay(frame, box, m.width, m.height)
	}
	return frame
}

func (m Model) resultsView() string {
	switch {
	case m.running:
		return m.spinner.View() + " simulating..."
	case m.table == nil:
		return dimStyle.Render("press r to simulate")
	}
	return m.results.View() + "\n" + summary(m.res, m.circ)
}

// renderTabs draws the tab bar with active highlighted.
func renderTabs(active tab) string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == active {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = inactiveTabStyle.Render(name)
		}
	}
	return strings.Join(parts, dimStyle.Render("│"))
}

// summary describes a finished run in one line.
func summary(res *sim.Result, c *circuit.Circuit) string {
	if res == nil {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("job %s · %s · %d shots · %d qubits · depth %d · %s",
		shortID(res.JobID), res.Backend, res.Shots, c.NumQubits(), c.Depth(), res.Duration.Round(time.Microsecond)))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
