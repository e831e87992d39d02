package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"school-admin/internal/api"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
	"school-admin/internal/views"
	"school-admin/internal/workers"
)

// KeyMap represents the key bindings for the interactive table
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Search  key.Binding
	Status  key.Binding
	Refresh key.Binding
	Delete  key.Binding
	Details key.Binding
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle status filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y", "o", "O"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// browseSource adapts one collection to the interactive table
type browseSource[T any] struct {
	noun   string
	fields fieldSet
	id     func(T) int64
	value  func(item T, field string) string
	// filter applies the search query and the status filter ("" for all)
	filter func(items []T, query string, status models.InvoiceStatus) []T
	// statuses are cycled by the status key; empty disables it
	statuses []models.InvoiceStatus
	load     func(ctx context.Context) ([]T, error)
	remove   func(ctx context.Context, id int64) error
	details  func(item T) string
}

// InteractiveTable represents the interactive table model
type InteractiveTable[T any] struct {
	ctx               context.Context
	src               browseSource[T]
	state             *views.ListState[T]
	visible           []T
	table             table.Model
	search            textinput.Model
	searching         bool
	statusIdx         int // 0 shows every status
	fields            []string
	keys              KeyMap
	catalog           *i18n.Catalog
	loading           bool
	spinner           spinner.Model
	err               error
	message           string
	showHelp          bool
	quitting          bool
	useColor          bool
	showDeleteConfirm bool
	deleteTarget      int64
	expired           bool
	watch             pauser
}

// pauser suspends background session checks while a prompt is shown
type pauser interface {
	Pause()
	Resume()
}

// NewInteractiveTable creates a new interactive table
func NewInteractiveTable[T any](ctx context.Context, src browseSource[T], fieldsFlag string, catalog *i18n.Catalog, noColor bool) (*InteractiveTable[T], error) {
	fields := src.fields.parseFields(fieldsFlag)
	if err := src.fields.validateFields(fields); err != nil {
		return nil, err
	}

	columns := make([]table.Column, len(fields))
	for i, field := range fields {
		columns[i] = table.Column{
			Title: src.fields.displayName(field),
			Width: calculateColumnWidth(src.fields.displayName(field), nil),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, number..."
	search.CharLimit = 64

	useColor := !noColor && isatty.IsTerminal(os.Stdout.Fd())

	if useColor {
		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)
	}

	return &InteractiveTable[T]{
		ctx:      ctx,
		src:      src,
		state:    &views.ListState[T]{},
		table:    t,
		search:   search,
		fields:   fields,
		keys:     DefaultKeyMap(),
		catalog:  catalog,
		spinner:  s,
		useColor: useColor,
	}, nil
}

// loadCompleteMsg is sent when a list request finishes. Stale requests are
// dropped by the list state before this message is built.
type loadCompleteMsg struct {
	gen       views.Generation
	committed bool
	err       error
}

// deleteCompleteMsg is sent when a delete operation completes
type deleteCompleteMsg struct {
	id  int64
	err error
}

// sessionExpiredMsg is sent by the session watcher
type sessionExpiredMsg struct{}

// Init starts the first load
func (m InteractiveTable[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reload())
}

// reload fetches the collection under a fresh generation
func (m InteractiveTable[T]) reload() tea.Cmd {
	gen := m.state.Begin()
	state, load, ctx := m.state, m.src.load, m.ctx
	return func() tea.Msg {
		items, err := load(ctx)
		return loadCompleteMsg{gen: gen, committed: state.Commit(gen, items, err), err: err}
	}
}

// Update handles messages and updates the model
func (m InteractiveTable[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showDeleteConfirm {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				return m.confirmDelete()
			case key.Matches(msg, m.keys.Cancel):
				m.showDeleteConfirm = false
				m.deleteTarget = 0
				m.message = m.catalog.T(i18n.MsgDeleteCancelled)
				if m.watch != nil {
					m.watch.Resume()
				}
				return m, nil
			}
			return m, nil
		}

		if m.searching {
			switch msg.Type {
			case tea.KeyEnter:
				m.searching = false
				m.search.Blur()
				return m, nil
			case tea.KeyEsc:
				m.searching = false
				m.search.Blur()
				m.search.SetValue("")
				return m.refilter(), nil
			}
			m.search, cmd = m.search.Update(msg)
			return m.refilter(), cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Search):
			m.searching = true
			return m, m.search.Focus()

		case key.Matches(msg, m.keys.Status):
			if len(m.src.statuses) == 0 {
				return m, nil
			}
			m.statusIdx = (m.statusIdx + 1) % (len(m.src.statuses) + 1)
			return m.refilter(), nil

		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			m.message = ""
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.reload())

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case key.Matches(msg, m.keys.Details):
			return m.handleDetails()

		case key.Matches(msg, m.keys.Delete):
			return m.handleDelete()
		}

	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		return m, nil

	case loadCompleteMsg:
		if !msg.committed {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = m.catalog.T(i18n.MsgFailed, msg.err.Error())
			return m, nil
		}
		m.err = nil
		return m.refilter(), nil

	case deleteCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = m.catalog.T(i18n.MsgFailed, msg.err.Error())
			return m, nil
		}
		id := m.src.id
		m.state.Remove(func(item T) bool { return id(item) == msg.id })
		m.message = m.catalog.T(i18n.MsgDeleted, m.catalog.T(m.src.noun))
		return m.refilter(), nil

	case sessionExpiredMsg:
		m.quitting = true
		m.expired = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading || m.state.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// status returns the active status filter
func (m InteractiveTable[T]) status() models.InvoiceStatus {
	if m.statusIdx == 0 || m.statusIdx > len(m.src.statuses) {
		return ""
	}
	return m.src.statuses[m.statusIdx-1]
}

// refilter rebuilds the rows from the list state and the active filters
func (m InteractiveTable[T]) refilter() InteractiveTable[T] {
	m.visible = m.src.filter(m.state.Items(), m.search.Value(), m.status())

	rows := make([]table.Row, len(m.visible))
	for i, item := range m.visible {
		rows[i] = m.itemToRow(item)
	}

	columns := m.table.Columns()
	for i, field := range m.fields {
		columns[i].Width = calculateColumnWidth(m.src.fields.displayName(field), columnValues(rows, i))
	}
	m.table.SetColumns(columns)
	m.table.SetRows(rows)

	if cursor := m.table.Cursor(); cursor >= len(rows) {
		if len(rows) == 0 {
			m.table.SetCursor(0)
		} else {
			m.table.SetCursor(len(rows) - 1)
		}
	}
	return m
}

// itemToRow converts an item to a table row
func (m InteractiveTable[T]) itemToRow(item T) table.Row {
	row := make(table.Row, len(m.fields))
	for i, field := range m.fields {
		row[i] = m.src.value(item, field)
	}
	return row
}

// selected returns the item under the cursor
func (m InteractiveTable[T]) selected() (T, bool) {
	var zero T
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return zero, false
	}
	return m.visible[cursor], true
}

// handleDetails shows the selected item
func (m InteractiveTable[T]) handleDetails() (InteractiveTable[T], tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		m.message = m.catalog.T(i18n.MsgNoData)
		return m, nil
	}
	m.err = nil
	m.message = m.src.details(item)
	return m, nil
}

// handleDelete asks to confirm deleting the selected item
func (m InteractiveTable[T]) handleDelete() (InteractiveTable[T], tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		m.message = m.catalog.T(i18n.MsgNoData)
		return m, nil
	}
	m.showDeleteConfirm = true
	m.deleteTarget = m.src.id(item)
	m.message = ""
	m.err = nil
	if m.watch != nil {
		m.watch.Pause()
	}
	return m, nil
}

// confirmDelete executes the delete operation after confirmation
func (m InteractiveTable[T]) confirmDelete() (InteractiveTable[T], tea.Cmd) {
	m.showDeleteConfirm = false
	if m.watch != nil {
		m.watch.Resume()
	}
	m.loading = true
	m.message = ""
	m.err = nil

	id, remove, ctx := m.deleteTarget, m.src.remove, m.ctx
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return deleteCompleteMsg{id: id, err: remove(ctx, id)}
		},
	)
}

// View renders the interactive table
func (m InteractiveTable[T]) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}

	if m.loading || m.state.Loading() {
		b.WriteString(fmt.Sprintf("%s Loading...\n", m.spinner.View()))
	}

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.showDeleteConfirm {
		confirmMsg := m.catalog.T(i18n.MsgDeleteConfirm, m.catalog.T(m.src.noun), strconv.FormatInt(m.deleteTarget, 10))
		b.WriteString(m.render("208", confirmMsg))
		b.WriteString("\n")
	}

	if m.message != "" {
		if m.err != nil {
			b.WriteString(m.render("196", m.message))
		} else {
			b.WriteString(m.render("82", m.message))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())

	return b.String()
}

func (m InteractiveTable[T]) render(color, s string) string {
	if !m.useColor {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// helpView returns the help view
func (m InteractiveTable[T]) helpView() string {
	help := strings.Builder{}
	help.WriteString("Help:\n")
	help.WriteString("  ↑/k         - Move up\n")
	help.WriteString("  ↓/j         - Move down\n")
	help.WriteString("  /           - Search (enter to keep, esc to clear)\n")
	if len(m.src.statuses) > 0 {
		help.WriteString("  s           - Cycle status filter\n")
	}
	help.WriteString("  r           - Reload from the server\n")
	help.WriteString("  d           - Delete selected entry\n")
	help.WriteString("  enter       - View details\n")
	help.WriteString("  ?           - Toggle help\n")
	help.WriteString("  q/ctrl+c    - Quit\n")
	return help.String()
}

// statusLine returns the status line
func (m InteractiveTable[T]) statusLine() string {
	var filter string
	if status := m.status(); status != "" {
		filter = " | " + string(status)
	}

	if len(m.visible) == 0 {
		return m.catalog.T(i18n.MsgNoData) + filter
	}

	return fmt.Sprintf("%d of %d%s | Press ? for help", m.table.Cursor()+1, len(m.visible), filter)
}

// calculateColumnWidth sizes a column from its title and a sample of its values
func calculateColumnWidth(title string, values []string) int {
	width := len([]rune(title))

	samples := len(values)
	if samples > 10 {
		samples = 10
	}

	for i := 0; i < samples; i++ {
		if n := len([]rune(values[i])); n > width {
			width = n
		}
	}

	if width < 8 {
		width = 8
	}
	if width > 40 {
		width = 40
	}

	return width
}

func columnValues(rows []table.Row, col int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values
}

// runInteractiveTable runs the interactive table until the user quits or the
// session expires
func runInteractiveTable[T any](ctx context.Context, a *app, src browseSource[T], fieldsFlag string) error {
	model, err := NewInteractiveTable(ctx, src, fieldsFlag, a.catalog, a.config.NoColor)
	if err != nil {
		return err
	}

	var p *tea.Program
	watcher := workers.NewSessionWatcher(a.sessions, sessionCheckInterval, func() {
		p.Send(sessionExpiredMsg{})
	}, a.logger)
	model.watch = watcher

	p = tea.NewProgram(*model, tea.WithAltScreen(), tea.WithContext(ctx))
	watcher.Start()
	defer watcher.Stop()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(InteractiveTable[T]); ok && m.expired {
		return api.ErrSessionExpired
	}
	return nil
}

// sessionCheckInterval is how often a running browse screen checks the token
const sessionCheckInterval = 30 * time.Second
