// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small movie browser:
//  1. [CatalogView] : Browse a category listing or search results, page by page
//  2. [DetailView] : Inspect one movie with its leading cast
//  3. [WatchlistView] : Review saved movies (requires a signed in session)
//  4. [LoginView] : Sign in before opening a protected view
//  5. [SearchView] : Enter a search query
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving results of catalog,
// watchlist and session calls via the Msg union type. A failed fetch turns the current view into an error panel
// until the user navigates again or retries.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) plus tab, n/p, w, v, / and a, with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
