package ui

import "github.com/charmbracelet/bubbles/key"

// Key bindings
var keys = struct {
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Home     key.Binding
	Search   key.Binding
	LoadMore key.Binding
	Refresh  key.Binding
	PrevCat  key.Binding
	NextCat  key.Binding
	Debug    key.Binding
	Escape   key.Binding
}{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Up:       key.NewBinding(key.WithKeys("k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down")),
	Enter:    key.NewBinding(key.WithKeys("enter")),
	Back:     key.NewBinding(key.WithKeys("esc", "backspace", "b")),
	Home:     key.NewBinding(key.WithKeys("H", "0")),
	Search:   key.NewBinding(key.WithKeys("/")),
	LoadMore: key.NewBinding(key.WithKeys("m")),
	Refresh:  key.NewBinding(key.WithKeys("r")),
	PrevCat:  key.NewBinding(key.WithKeys("h", "left")),
	NextCat:  key.NewBinding(key.WithKeys("l", "right")),
	Debug:    key.NewBinding(key.WithKeys("ctrl+d")),
	Escape:   key.NewBinding(key.WithKeys("esc")),
}
