package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Sort     key.Binding
	Order    key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	Mined    key.Binding
	Sent     key.Binding
	Refresh  key.Binding
	Lock     key.Binding
	Back     key.Binding
	Forward  key.Binding
	Menu     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		NextPage: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		Order:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort order")),
		Bigger:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "bigger pages")),
		Smaller:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "smaller pages")),
		Mined:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle mined")),
		Sent:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sent to name")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Lock:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "lock table")),
		Back:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back")),
		Forward:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forward")),
		Menu:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dashboard")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Sort, k.Order, k.Refresh, k.Back, k.Menu, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.NextPage, k.PrevPage, k.Bigger, k.Smaller},
		{k.Sort, k.Order, k.Mined, k.Sent, k.Refresh, k.Lock},
		{k.Back, k.Forward, k.Menu, k.Help, k.Quit},
	}
}
