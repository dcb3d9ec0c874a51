package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/services"
	"github.com/desertthunder/flickx/internal/session"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/watchlist"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CatalogView ViewState = iota
	DetailView
	WatchlistView
	LoginView
	SearchView
)

// Deps are the collaborators a [Model] drives.
type Deps struct {
	Catalog   services.Catalog
	Session   *session.Manager
	Watchlist *watchlist.Store
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	back    ViewState // view left for the detail view
	from    ViewState // view left for the login prompt
	after   ViewState // view opened after a successful login
	catalog services.Catalog
	session *session.Manager
	saved   *watchlist.Store
	logger  *log.Logger

	category models.Category
	page     int
	total    int
	query    string
	results  []models.Movie
	detail   *models.MovieDetail

	width    int
	height   int
	movies   list.Model
	watch    list.Model
	search   textinput.Model
	email    textinput.Model
	password textinput.Model

	loading bool
	status  string
	err     error
	retry   tea.Cmd
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "movie title"

	email := textinput.New()
	email.Prompt = "Email:    "
	email.Placeholder = "admin@example.com"

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Model{
		ctx:      ctx,
		view:     CatalogView,
		catalog:  deps.Catalog,
		session:  deps.Session,
		saved:    deps.Watchlist,
		logger:   logger,
		category: models.CategoryPopular,
		page:     1,
		movies:   newList(),
		watch:    newList(),
		search:   search,
		email:    email,
		password: password,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

func newList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Init initializes the TUI by fetching the first page of popular movies.
func (m *Model) Init() tea.Cmd {
	return m.fetchPage(m.category, 1)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movies.SetSize(msg.Width-4, msg.Height-8)
		m.watch.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		m.status = ""
		if m.err != nil {
			return m.handleErrorKeys(msg)
		}
		switch m.view {
		case CatalogView:
			return m.handleCatalogKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		case LoginView:
			return m.handleLoginKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	if m.err != nil {
		body = m.renderError()
	} else {
		switch m.view {
		case CatalogView:
			body = m.renderCatalog()
		case DetailView:
			body = m.renderDetail()
		case WatchlistView:
			body = m.renderWatchlist()
		case LoginView:
			body = m.renderLogin()
		case SearchView:
			body = m.renderSearch()
		}
	}

	parts := []string{m.renderHeader(), body}
	if m.status != "" {
		parts = append(parts, "", styles.warn.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMoviesFetched:
		data := msg.data.(moviesFetched)
		m.loading = false
		if data.err != nil {
			m.fail(data.err, CatalogView)
			return m, nil
		}
		m.err = nil
		m.query = data.query
		m.page = max(data.page.Page, 1)
		m.total = data.page.TotalPages
		m.results = data.page.Results
		m.refreshMovies()
		m.movies.ResetSelected()
		m.movies.Title = m.catalogTitle()
		m.view = CatalogView

	case MsgDetailFetched:
		data := msg.data.(detailFetched)
		m.loading = false
		if data.err != nil {
			m.fail(data.err, DetailView)
			return m, nil
		}
		m.err = nil
		m.detail = data.detail
		m.view = DetailView

	case MsgWatchlistToggled:
		data := msg.data.(watchlistToggled)
		if data.err != nil {
			m.logger.Error("watchlist update failed", "movie", data.movie.ID, "error", data.err)
			m.status = fmt.Sprintf("Watchlist update failed: %v", data.err)
			return m, nil
		}
		if data.added {
			m.status = fmt.Sprintf("Added %q to your watchlist", data.movie.Title)
		} else {
			m.status = fmt.Sprintf("Removed %q from your watchlist", data.movie.Title)
		}
		m.refreshMovies()
		m.refreshWatchlist()

	case MsgSessionChanged:
		data := msg.data.(sessionChanged)
		m.loading = false
		if data.err != nil {
			m.status = data.err.Error()
			return m, nil
		}
		if data.loggedOut {
			m.status = "Signed out"
			if m.view == WatchlistView {
				m.view = CatalogView
			}
			return m, nil
		}
		m.status = fmt.Sprintf("Signed in as %s", data.identity.Name)
		m.email.Blur()
		m.password.Blur()
		m.view = m.after
		if m.view == WatchlistView {
			m.refreshWatchlist()
		}
	}
	return m, nil
}

func (m *Model) handleCatalogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.category):
		m.category = m.category.Next()
		return m, m.fetchPage(m.category, 1)
	case key.Matches(msg, m.keys.next):
		if m.query == "" && m.page < min(m.total, models.MaxPages) {
			return m, m.fetchPage(m.category, m.page+1)
		}
		return m, nil
	case key.Matches(msg, m.keys.prev):
		if m.query == "" && m.page > 1 {
			return m, m.fetchPage(m.category, m.page-1)
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.query != "" {
			return m, m.fetchPage(m.category, 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movies.SelectedItem().(movieItem); ok {
			m.back = CatalogView
			return m, m.fetchDetail(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.movies.SelectedItem().(movieItem); ok {
			return m, m.toggle(item.movie)
		}
		return m, nil
	case key.Matches(msg, m.keys.watchlist):
		return m, m.openWatchlist()
	case key.Matches(msg, m.keys.account):
		return m, m.account()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.back
		m.detail = nil
	case key.Matches(msg, m.keys.toggle):
		if m.detail != nil {
			return m, m.toggle(m.detail.Movie)
		}
	case key.Matches(msg, m.keys.watchlist):
		return m, m.openWatchlist()
	case key.Matches(msg, m.keys.account):
		return m, m.account()
	}
	return m, nil
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = CatalogView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.watch.SelectedItem().(movieItem); ok {
			m.back = WatchlistView
			return m, m.fetchDetail(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.watch.SelectedItem().(movieItem); ok {
			return m, m.toggle(item.movie)
		}
		return m, nil
	case key.Matches(msg, m.keys.account):
		return m, m.account()
	}

	var cmd tea.Cmd
	m.watch, cmd = m.watch.Update(msg)
	return m, cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.email.Blur()
		m.password.Blur()
		m.view = m.from
		return m, nil
	case key.Matches(msg, m.keys.focus):
		return m, m.switchField()
	case key.Matches(msg, m.keys.enter):
		if m.email.Focused() {
			return m, m.switchField()
		}
		if m.loading {
			return m, nil
		}
		return m, m.login(m.email.Value(), m.password.Value())
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.search.Blur()
		m.view = CatalogView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.search.Blur()
		m.view = CatalogView
		query := strings.TrimSpace(m.search.Value())
		if query == "" {
			return m, nil
		}
		return m, m.fetchSearch(query)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleErrorKeys resolves the error panel. Retrying repeats the failed fetch; any navigation clears the error.
func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.retry):
		m.err = nil
		m.loading = true
		return m, m.retry
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.view = CatalogView
		return m, nil
	case key.Matches(msg, m.keys.category), key.Matches(msg, m.keys.next), key.Matches(msg, m.keys.prev):
		m.err = nil
		m.view = CatalogView
		return m.handleCatalogKeys(msg)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CatalogView:
		m.movies, cmd = m.movies.Update(msg)
	case WatchlistView:
		m.watch, cmd = m.watch.Update(msg)
	case LoginView:
		if m.email.Focused() {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
	case SearchView:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m *Model) fail(err error, view ViewState) {
	m.logger.Error("fetch failed", "view", view, "error", err)
	m.err = err
	m.view = view
}

func (m *Model) fetchPage(category models.Category, page int) tea.Cmd {
	ctx, catalog := m.ctx, m.catalog
	m.loading = true
	m.retry = func() tea.Msg {
		p, err := catalog.ListByCategory(ctx, category, page)
		return moviesFetchedMsg(p, "", err)
	}
	return m.retry
}

func (m *Model) fetchSearch(query string) tea.Cmd {
	ctx, catalog := m.ctx, m.catalog
	m.loading = true
	m.retry = func() tea.Msg {
		p, err := catalog.Search(ctx, query)
		return moviesFetchedMsg(p, query, err)
	}
	return m.retry
}

func (m *Model) fetchDetail(id int) tea.Cmd {
	ctx, catalog := m.ctx, m.catalog
	m.loading = true
	m.retry = func() tea.Msg {
		detail, err := catalog.GetDetail(ctx, id)
		return detailFetchedMsg(detail, err)
	}
	return m.retry
}

// toggle flips watchlist membership of movie, prompting for a login first when signed out.
func (m *Model) toggle(movie models.Movie) tea.Cmd {
	if !m.session.IsAuthenticated() {
		return m.requireLogin(m.view)
	}
	ctx, store := m.ctx, m.saved
	return func() tea.Msg {
		added, err := store.Toggle(ctx, movie)
		return watchlistToggledMsg(movie, added, err)
	}
}

func (m *Model) openWatchlist() tea.Cmd {
	if !m.session.IsAuthenticated() {
		return m.requireLogin(WatchlistView)
	}
	m.refreshWatchlist()
	m.view = WatchlistView
	return nil
}

// account signs out an authenticated session or opens the login prompt.
func (m *Model) account() tea.Cmd {
	if !m.session.IsAuthenticated() {
		return m.promptLogin(m.view)
	}
	ctx, sessions := m.ctx, m.session
	return func() tea.Msg {
		return sessionChangedMsg(models.Identity{}, true, sessions.Logout(ctx))
	}
}

func (m *Model) requireLogin(after ViewState) tea.Cmd {
	cmd := m.promptLogin(after)
	m.status = shared.ErrNotAuthenticated.Error()
	return cmd
}

func (m *Model) promptLogin(after ViewState) tea.Cmd {
	m.from = m.view
	m.after = after
	m.view = LoginView
	m.email.SetValue("")
	m.password.SetValue("")
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) switchField() tea.Cmd {
	if m.email.Focused() {
		m.email.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) login(email, password string) tea.Cmd {
	ctx, sessions := m.ctx, m.session
	m.loading = true
	return func() tea.Msg {
		id, err := sessions.Login(ctx, email, password)
		return sessionChangedMsg(id, false, err)
	}
}

func (m *Model) refreshMovies() {
	snap := m.saved.Snapshot()
	m.movies.SetItems(movieItems(m.results, snap.Contains))
}

func (m *Model) refreshWatchlist() {
	snap := m.saved.Snapshot()
	m.watch.SetItems(movieItems(snap.Items, snap.Contains))
	m.watch.Title = fmt.Sprintf("Watchlist (%d)", len(snap.Items))
}

func (m *Model) catalogTitle() string {
	if m.query != "" {
		return fmt.Sprintf("Results for %q", m.query)
	}
	return fmt.Sprintf("%s • page %d of %d", m.category.Label(), m.page, max(min(m.total, models.MaxPages), 1))
}

func (m *Model) renderHeader() string {
	who := styles.help.Render("not signed in")
	if id, ok := m.session.Identity(); ok {
		who = styles.ok.Render(fmt.Sprintf("%s (%s)", id.Name, id.Role))
	}
	return styles.title.Render("flickx") + "  " + who
}

func (m *Model) renderError() string {
	helpKeys := []key.Binding{m.keys.retry, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderCatalog() string {
	if m.loading && len(m.results) == 0 {
		return styles.help.Render("Loading movies...")
	}
	return fmt.Sprintf("%s\n\n%s", m.movies.View(), m.help.View(m.keys))
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return styles.help.Render("Loading movie...")
	}
	d := m.detail

	var b strings.Builder
	title := d.Title
	if year := d.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	b.WriteString(styles.label.Render(title) + "\n")
	if d.Tagline != "" {
		b.WriteString(styles.help.Render(d.Tagline) + "\n")
	}

	facts := []string{fmt.Sprintf("★ %.1f (%d votes)", d.VoteAverage, d.VoteCount)}
	if d.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", d.Runtime))
	}
	if genres := d.GenreNames(); genres != "" {
		facts = append(facts, genres)
	}
	b.WriteString(strings.Join(facts, " • ") + "\n\n")

	if d.Overview != "" {
		width := m.width - 4
		if width < 20 {
			width = 76
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(d.Overview) + "\n\n")
	}
	b.WriteString(styles.label.Render("Poster") + " " + m.catalog.ImageURL(d.PosterPath) + "\n\n")

	b.WriteString(styles.label.Render("Cast") + "\n")
	if len(d.Cast) == 0 {
		b.WriteString(styles.help.Render("  no cast information") + "\n")
	}
	for _, c := range d.Cast {
		line := "  • " + c.Name
		if c.Character != "" {
			line += " as " + c.Character
		}
		b.WriteString(line + "\n")
	}

	if m.session.IsAuthenticated() && m.saved.Contains(d.ID) {
		b.WriteString("\n" + styles.ok.Render("♥ On your watchlist") + "\n")
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.toggle, m.keys.watchlist, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderWatchlist() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.toggle, m.keys.back, m.keys.account, m.keys.quit}
	if len(m.watch.Items()) == 0 {
		empty := styles.help.Render("Your watchlist is empty. Press w on a movie to save it.")
		return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(m.watch.Title), empty, m.help.ShortHelpView(helpKeys))
	}
	return fmt.Sprintf("%s\n\n%s", m.watch.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Sign in")
	helpKeys := []key.Binding{m.keys.focus, m.keys.enter, m.keys.back}
	form := fmt.Sprintf("%s\n%s", m.email.View(), m.password.View())
	if m.loading {
		form += "\n\n" + styles.help.Render("Signing in...")
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, form, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSearch() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render("Search movies"), m.search.View(), m.help.ShortHelpView(helpKeys))
}
