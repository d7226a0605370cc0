package tui

import "github.com/charmbracelet/bubbles/key"

// tab identifies one of the panels.
type tab int

const (
	tabCircuit tab = iota
	tabQASM
	tabResults
)

var tabNames = []string{"Circuit", "QASM", "Results"}

func (t tab) String() string { return tabNames[t] }

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Run     key.Binding
	Save    key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "prev panel")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll right")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Run:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "simulate")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save qasm")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Run, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Left, k.Right, k.Up, k.Down},
		{k.Run, k.Save, k.Dismiss},
		{k.Help, k.Quit},
	}
}
