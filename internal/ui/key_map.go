package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	category  key.Binding
	next      key.Binding
	prev      key.Binding
	toggle    key.Binding
	watchlist key.Binding
	search    key.Binding
	account   key.Binding
	focus     key.Binding
	retry     key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		category:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "category")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		toggle:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist +/-")),
		watchlist: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "watchlist")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		account:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "sign in/out")),
		focus:     key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "next field")),
		retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.category, k.toggle, k.watchlist, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.category, k.next, k.prev, k.search},
		{k.toggle, k.watchlist, k.account},
		{k.help, k.quit},
	}
}
