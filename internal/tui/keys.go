package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the global bindings of the dashboard.
type keyMap struct {
	Quit        key.Binding
	Focus       key.Binding
	Refresh     key.Binding
	Performance key.Binding
	Save        key.Binding
	Clear       key.Binding
	Escape      key.Binding
	Menus       [4]key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Performance: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "performance")),
	Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save attachment")),
	Clear:       key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear chat")),
	Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Menus: [4]key.Binding{
		key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "portfolio")),
		key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "market")),
		key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "analysis")),
		key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "guide")),
	},
}

// hint renders a binding for the footer.
func hint(b key.Binding) string {
	h := b.Help()
	return KeyStyle.Render(h.Key) + " " + DescStyle.Render(h.Desc)
}
