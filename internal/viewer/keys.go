package viewer

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	PanLeft  key.Binding
	PanRight key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Reset    key.Binding
	Clear    key.Binding
	Pick     key.Binding
	Drop     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scrub back")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scrub forward")),
		PanLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "pan left")),
		PanRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "pan right")),
		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Reset:    key.NewBinding(key.WithKeys("0", "r"), key.WithHelp("0", "full lap")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "hide cursor")),
		Pick:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "compare with...")),
		Drop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "drop comparison")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.ZoomIn, k.ZoomOut, k.Pick, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Clear},
		{k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut, k.Reset},
		{k.Pick, k.Drop, k.Help, k.Quit},
	}
}
