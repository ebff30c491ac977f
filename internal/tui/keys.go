package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Reset       key.Binding
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Leaderboard key.Binding
	Back        key.Binding
	Choice1     key.Binding
	Choice2     key.Binding
	Choice3     key.Binding
	EndEarly    key.Binding
	Dismiss     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Reset:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Leaderboard: key.NewBinding(key.WithKeys("ctrl+l", "tab", "l"), key.WithHelp("l", "leaderboard")),
		Back:        key.NewBinding(key.WithKeys("esc", "b", "backspace"), key.WithHelp("esc", "back")),
		Choice1:     key.NewBinding(key.WithKeys("1")),
		Choice2:     key.NewBinding(key.WithKeys("2")),
		Choice3:     key.NewBinding(key.WithKeys("3")),
		EndEarly:    key.NewBinding(key.WithKeys("ctrl+e", "e"), key.WithHelp("e", "end module")),
		Dismiss:     key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "continue")),
	}
}

func (k keyMap) choices() []key.Binding {
	return []key.Binding{k.Choice1, k.Choice2, k.Choice3}
}
