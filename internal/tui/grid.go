package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"qgrover/circuit"
)

// grid places gates into drawing columns. A gate occupies every wire between
// its lowest and highest qubit, so connectors never cross another gate.
// Measurements reach down to the classical wire and barriers span everything.
type grid struct {
	circ   *circuit.Circuit
	cols   [][]circuit.Gate
	labels []string
}

func newGrid(c *circuit.Circuit) *grid {
	n := c.NumQubits()
	g := &grid{circ: c, labels: qubitLabels(c)}
	next := make([]int, n)
	for _, gate := range c.Gates() {
		lo, hi := span(gate, n)
		col := 0
		for q := lo; q <= hi; q++ {
			col = max(col, next[q])
		}
		for len(g.cols) <= col {
			g.cols = append(g.cols, nil)
		}
		g.cols[col] = append(g.cols[col], gate)
		for q := lo; q <= hi; q++ {
			next[q] = col + 1
		}
	}
	return g
}

// span returns the range of wires a gate draws on.
func span(g circuit.Gate, numQubits int) (lo, hi int) {
	switch g.Type {
	case circuit.GateBarrier:
		return 0, numQubits - 1
	case circuit.GateMeasure:
		return g.Target, numQubits - 1
	}
	qs := g.Qubits()
	return slices.Min(qs), slices.Max(qs)
}

func qubitLabels(c *circuit.Circuit) []string {
	labels := make([]string, c.NumQubits())
	for q := range labels {
		reg, ok := c.QubitRegister(q)
		switch {
		case !ok:
			labels[q] = "q" + strconv.Itoa(q)
		case reg.Size == 1:
			labels[q] = strings.TrimPrefix(reg.Name, "q_")
		default:
			labels[q] = fmt.Sprintf("%s[%d]", strings.TrimPrefix(reg.Name, "q_"), q-reg.Offset)
		}
	}
	return labels
}

func (g *grid) labelWidth() int {
	w := 1
	for _, l := range g.labels {
		w = max(w, len(l))
	}
	return min(w, maxLabelW) + 1
}

// Len returns the number of drawing columns.
func (g *grid) Len() int { return len(g.cols) }

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate         *circuit.Gate
	isControl    bool
	isTarget     bool
	vertAbove    bool
	vertBelow    bool
	passThrough  bool
	measureBelow bool
	isBarrier    bool
}

func controlled(g circuit.Gate) bool {
	return g.Control >= 0 || len(g.Controls) > 0
}

// cellInfo returns rendering information for the cell at (col, qubit).
func (g *grid) cellInfo(col, qubit int) cellInfo {
	var info cellInfo
	for i := range g.cols[col] {
		gate := &g.cols[col][i]
		if gate.Type == circuit.GateBarrier {
			info.isBarrier = true
			continue
		}
		qs := gate.Qubits()
		if slices.Contains(qs, qubit) {
			info.gate = gate
			if controlled(*gate) {
				info.isTarget = gate.Target == qubit
				info.isControl = !info.isTarget
			}
		}
		if gate.Type == circuit.GateMeasure && qubit > gate.Target {
			info.measureBelow = true
		}
		if !controlled(*gate) {
			continue
		}
		lo, hi := slices.Min(qs), slices.Max(qs)
		if qubit >= lo && qubit <= hi {
			info.vertAbove = qubit > lo
			info.vertBelow = qubit < hi
			info.passThrough = qubit > lo && qubit < hi && !slices.Contains(qs, qubit)
		}
	}
	return info
}

// measureAt returns the classical bit written in col, or -1.
func (g *grid) measureAt(col int) int {
	for _, gate := range g.cols[col] {
		if gate.Type == circuit.GateMeasure {
			return gate.Cbit
		}
	}
	return -1
}

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate type.
func gateDisplayName(gateType string) string {
	if gateType == circuit.GateMeasure {
		return "M"
	}
	return gateType
}

// targetSymbol returns the wire symbol for the target of a controlled gate.
func targetSymbol(gateType string) string {
	if gateType == circuit.GateCZ {
		return "●"
	}
	return "⊕"
}

// renderCell returns 3 lines (top, mid, bot) for a single cell, each
// exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	onWire := func(sym string) string {
		return strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR)
	}
	// vertical connectors above and below a wire symbol
	connect := func() {
		top, bot = emptyRow, emptyRow
		if info.vertAbove {
			top = vertRow
		}
		if info.vertBelow {
			bot = vertRow
		}
	}

	switch {
	case info.isBarrier:
		top = strings.Repeat(" ", halfW) + barrierStyle.Render("░") + strings.Repeat(" ", cellW-halfW-1)
		mid = onWire(barrierStyle.Render("░"))
		bot = top

	case info.gate != nil && info.isControl:
		connect()
		mid = onWire(gateStyle.Render("●"))

	case info.gate != nil && info.isTarget:
		connect()
		mid = onWire(gateStyle.Render(targetSymbol(info.gate.Type)))

	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.gate.Type), gateNameW)
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if info.gate.Type == circuit.GateMeasure {
			bot = strings.Repeat(" ", margin) + gateStyle.Render("└─") + cbitConnectorStyle.Render("╥") + gateStyle.Render("─┘") + strings.Repeat(" ", rightMargin)
		}

	case info.passThrough:
		top, bot = vertRow, vertRow
		mid = onWire("┼")

	case info.measureBelow:
		// No gate here, but a measurement connection passes through vertically
		top, bot = dblVertRow, dblVertRow
		mid = onWire(cbitConnectorStyle.Render("╫"))

	default:
		top, bot = emptyRow, emptyRow
		mid = strings.Repeat("─", cellW)
	}
	return top, mid, bot
}

// render draws count columns starting at start.
func (g *grid) render(start, count int) string {
	var sb strings.Builder
	end := min(start+count, g.Len())
	labelW := g.labelWidth()
	pad := strings.Repeat(" ", labelW+1)

	header := pad
	for col := start; col < end; col++ {
		header += dimStyle.Render(padCenter(strconv.Itoa(col), cellW))
	}
	sb.WriteString(header + "\n")

	for q, label := range g.labels {
		style := qubitLabelStyle
		if !g.circ.MeasuresQubit(q) {
			style = ancillaLabelStyle
		}
		if len(label) > maxLabelW {
			label = label[:maxLabelW]
		}
		topLine := pad
		midLine := style.Render(fmt.Sprintf("%-*s", labelW, label)) + "─"
		botLine := pad
		for col := start; col < end; col++ {
			top, mid, bot := renderCell(g.cellInfo(col, q))
			topLine += top
			midLine += mid
			botLine += bot
		}
		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Classical bits share one wire with the landing bit index marked.
	if n := g.circ.NumCbits(); n > 0 {
		label := "c" + strconv.Itoa(n)
		line := cbitLabelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + cbitWireStyle.Render("═")
		for col := start; col < end; col++ {
			cbit := g.measureAt(col)
			if cbit < 0 {
				line += cbitWireStyle.Render(strings.Repeat("═", cellW))
				continue
			}
			bitLabel := strconv.Itoa(cbit)
			dashL := (cellW - 1) / 2
			dashR := max(cellW-dashL-1-len(bitLabel), 0)
			line += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
				cbitConnectorStyle.Render("╩"+bitLabel) +
				cbitWireStyle.Render(strings.Repeat("═", dashR))
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
