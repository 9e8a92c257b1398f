// Package tui is the interactive todo list: a Bubble Tea program that
// drives the store and renders its current sequence.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/Makepad-fr/tada/internal/edit"
	"github.com/Makepad-fr/tada/internal/filter"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notify"
	"github.com/Makepad-fr/tada/internal/share"
	"github.com/Makepad-fr/tada/internal/store"
)

// Options wires the program to its collaborators.
type Options struct {
	Store     *store.Store
	Notices   *notify.Queue   // optional, DefaultDuration when nil
	Mailer    share.Deliverer // optional
	Clipboard share.Deliverer // optional
	Filter    filter.Filter
	Logger    hclog.Logger
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeShare
)

// listItem adapts a todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) TitleText() string {
	box := boxUnchecked
	if i.todo.Completed {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.todo.Title)
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.TitleText() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	boxStyled := mutedStyle.Render(boxUnchecked)
	textStyled := it.todo.Title
	if it.todo.Completed {
		boxStyled = successStyle.Render(boxChecked)
		textStyled = doneStyle.Render(it.todo.Title)
	}

	line := fmt.Sprintf("%s %s", boxStyled, textStyled)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// messages produced by commands
type (
	loadedMsg struct {
		err    error
		manual bool
	}
	opMsg struct {
		op   string // add, toggle, edit, remove
		todo model.Todo
		err  error
	}
	shareMsg struct {
		via string // mail, clipboard
		err error
	}
	noticeExpiredMsg struct{}
)

// Model is the Bubble Tea model.
type Model struct {
	ctx     context.Context
	store   *store.Store
	session *edit.Session
	notices *notify.Queue
	mailer  share.Deliverer
	clip    share.Deliverer
	log     hclog.Logger

	list   list.Model
	ti     textinput.Model // shared text input model (used for add & edit)
	filter filter.Filter
	mode   mode

	inputErr  string // last add/edit validation error
	shareText string
	preview   bool

	width, height int
}

// New builds the model. The store is loaded by Init.
func New(ctx context.Context, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	notices := opts.Notices
	if notices == nil {
		notices = notify.New(notify.DefaultDuration)
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = share.Mailer{}
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = share.Clipboard{}
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	// Extend help with our bindings
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "all/active/completed")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings[:4] }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	session := &edit.Session{}
	st := opts.Store
	// An item can vanish under an open edit (removed, or dropped by a reload).
	st.Subscribe(func(ev store.Event) {
		switch ev.Kind {
		case store.Removed:
			if session.ExternalRemoval(ev.ID) {
				log.Debug("edit closed, item removed", "id", ev.ID)
			}
		case store.Loaded:
			if session.Reconcile(st.Has) {
				log.Debug("edit closed, item gone after reload")
			}
		}
	})

	m := Model{
		ctx:     ctx,
		store:   st,
		session: session,
		notices: notices,
		mailer:  mailer,
		clip:    clip,
		log:     log.Named("tui"),
		list:    l,
		ti:      ti,
		filter:  opts.Filter,
		width:   80,
		height:  24,
	}
	m.refresh()
	m.resize()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.notices.Stop()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Update and View implement Bubble Tea's Model on Model
func (m Model) Init() tea.Cmd { return m.loadCmd(false) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.syncEditMode()
		cmd := m.refresh()
		if msg.err != nil {
			return m, tea.Batch(cmd, m.fail("Failed to load todos", msg.err))
		}
		if msg.manual {
			return m, tea.Batch(cmd, m.notify(fmt.Sprintf("Loaded %d todos", m.store.Len()), notify.Success))
		}
		return m, cmd

	case opMsg:
		return m.handleOp(msg)

	case shareMsg:
		return m.handleShare(msg)

	case noticeExpiredMsg:
		// re-render only; the queue expires on its own timer
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeShare:
			return m.updateShare(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeAdd || m.mode == modeEdit {
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.SettingFilter() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.list.FilterState() == list.Unfiltered {
			return m, tea.Quit
		}
	case " ":
		if t, ok := m.selected(); ok {
			return m, m.toggleCmd(t.ID)
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.removeCmd(t.ID)
		}
		return m, nil
	case "a":
		m.openInput(modeAdd, "", "New item title...")
		return m, textinput.Blink
	case "e":
		if t, ok := m.selected(); ok {
			m.session.Start(t)
			m.openInput(modeEdit, t.Title, "Edit item title...")
			return m, textinput.Blink
		}
		return m, nil
	case "tab":
		return m, m.setFilter(m.filter.Next())
	case "1", "2", "3":
		return m, m.setFilter(filter.Filters[msg.String()[0]-'1'])
	case "r":
		return m, m.loadCmd(true)
	case "s":
		text, err := share.Build(m.store.Items())
		if err != nil {
			return m, m.notify("No todos to share!", notify.Error)
		}
		m.shareText = text
		m.preview = false
		m.mode = modeShare
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.ti.Value())
		if title == "" {
			m.inputErr = "Title cannot be empty"
			return m, nil
		}
		m.closeInput()
		return m, m.addCmd(title)
	case "esc":
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if strings.TrimSpace(m.ti.Value()) == "" {
			m.inputErr = "Title cannot be empty"
			return m, nil
		}
		_ = m.session.ChangeDraft(m.ti.Value())
		return m, m.saveCmd()
	case "esc":
		m.session.Cancel()
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	if err := m.session.ChangeDraft(m.ti.Value()); err != nil {
		// the edited item went away underneath us
		m.closeInput()
	}
	return m, cmd
}

func (m Model) updateShare(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m":
		return m, m.deliverCmd("mail", m.mailer)
	case "c":
		return m, m.deliverCmd("clipboard", m.clip)
	case "p":
		m.preview = !m.preview
		return m, nil
	case "esc", "q":
		m.mode = modeBrowse
		m.shareText = ""
		m.preview = false
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleOp(msg opMsg) (tea.Model, tea.Cmd) {
	if msg.op == "edit" && m.mode == modeEdit {
		if msg.err == nil {
			m.closeInput()
		} else {
			m.inputErr = reason(msg.err)
		}
	}
	m.syncEditMode()
	cmd := m.refresh()

	if msg.err != nil {
		return m, tea.Batch(cmd, m.fail(failText(msg.op), msg.err))
	}
	return m, tea.Batch(cmd, m.notify(successText(msg), notify.Success))
}

func (m Model) handleShare(msg shareMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.via == "mail" && msg.err == nil:
		return m, m.notify("Opening email client...", notify.Success)
	case msg.via == "mail":
		m.log.Warn("mail hand-off failed", "error", msg.err)
		return m, m.notify("Failed to open email client", notify.Error)
	case msg.err == nil:
		return m, m.notify("Todo list copied to clipboard!", notify.Success)
	default:
		m.log.Warn("clipboard write failed", "error", msg.err)
		return m, m.notify("Failed to copy to clipboard", notify.Error)
	}
}

func successText(msg opMsg) string {
	switch msg.op {
	case "add":
		return "Todo added"
	case "toggle":
		if msg.todo.Completed {
			return "Todo completed!"
		}
		return "Todo marked as active"
	case "edit":
		return "Todo updated!"
	case "remove":
		return "Todo deleted"
	}
	return "Done"
}

func failText(op string) string {
	switch op {
	case "add":
		return "Failed to add todo"
	case "edit":
		return "Failed to save todo"
	case "remove":
		return "Failed to delete todo"
	}
	return "Failed to update todo"
}

func reason(err error) string {
	switch model.Kind(err) {
	case "validation":
		return "Title cannot be empty"
	case "not-found":
		return "todo no longer exists"
	case "network":
		return "service unreachable"
	}
	return err.Error()
}

func (m Model) notify(text string, kind notify.Kind) tea.Cmd {
	m.notices.Post(text, kind)
	return tea.Tick(m.notices.Duration(), func(time.Time) tea.Msg { return noticeExpiredMsg{} })
}

func (m Model) fail(prefix string, err error) tea.Cmd {
	return m.notify(prefix+": "+reason(err), notify.Error)
}

// --- commands (tea.Cmd factories)

func (m Model) loadCmd(manual bool) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg { return loadedMsg{err: st.Load(ctx), manual: manual} }
}

func (m Model) addCmd(title string) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		t, err := st.Add(ctx, title)
		return opMsg{op: "add", todo: t, err: err}
	}
}

func (m Model) toggleCmd(id string) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		t, err := st.Toggle(ctx, id)
		return opMsg{op: "toggle", todo: t, err: err}
	}
}

func (m Model) removeCmd(id string) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		return opMsg{op: "remove", todo: model.Todo{ID: id}, err: st.Remove(ctx, id)}
	}
}

func (m Model) saveCmd() tea.Cmd {
	st, sess, ctx := m.store, m.session, m.ctx
	return func() tea.Msg {
		t, err := sess.Save(ctx, st)
		return opMsg{op: "edit", todo: t, err: err}
	}
}

func (m Model) deliverCmd(via string, d share.Deliverer) tea.Cmd {
	text, ctx := m.shareText, m.ctx
	return func() tea.Msg { return shareMsg{via: via, err: d.Deliver(ctx, text)} }
}

// --- helpers

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) setFilter(f filter.Filter) tea.Cmd {
	m.filter = f
	return m.refresh()
}

// refresh rebuilds the visible list from the store, keeping the cursor on
// the same todo when it is still visible.
func (m *Model) refresh() tea.Cmd {
	selectedID := ""
	if t, ok := m.selected(); ok {
		selectedID = t.ID
	}

	all := m.store.Items()
	visible := filter.Apply(all, m.filter)
	items := make([]list.Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, listItem{todo: t})
	}
	cmd := m.list.SetItems(items)
	if i := model.IndexOf(visible, selectedID); i >= 0 {
		m.list.Select(i)
	}

	c := filter.Count(all)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), c.Completed,
		pendingStyle.Render("•"), c.Active,
		accentStyle.Render("Total"), c.Total,
	)
	return cmd
}

func (m *Model) openInput(md mode, value, placeholder string) {
	m.mode = md
	m.inputErr = ""
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	m.ti.Placeholder = placeholder
	m.ti.Focus()
	m.resize()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

// syncEditMode leaves edit mode when the session was forced idle.
func (m *Model) syncEditMode() {
	if m.mode == modeEdit && m.session.State() == edit.Idle {
		m.closeInput()
	}
}

func (m *Model) resize() {
	// frame (2) + tabs (1) + notice (1)
	listHeight := m.height - 4
	if m.mode == modeAdd || m.mode == modeEdit {
		listHeight -= 4
	}
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabsView())
	b.WriteString("\n")
	b.WriteString(m.list.View())

	if m.mode == modeAdd || m.mode == modeEdit {
		title := "Add new item"
		if m.mode == modeEdit {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += ": " + errorStyle.Render(m.inputErr)
		}
		b.WriteString("\n")
		b.WriteString(frameStyle.Render(title + "\n" + m.ti.View()))
	}

	b.WriteString("\n")
	if n, ok := m.notices.Current(); ok {
		style := successStyle
		if n.Kind == notify.Error {
			style = errorStyle
		}
		b.WriteString(style.Render(n.Message))
	}

	if m.mode == modeShare {
		b.WriteString("\n")
		b.WriteString(m.shareView())
	}
	return frameStyle.Render(b.String())
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(filter.Filters))
	for i, f := range filter.Filters {
		label := fmt.Sprintf("%d %s", i+1, f)
		if f == m.filter {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) shareView() string {
	lines := []string{
		titleStyle.Render("Share Todo List"),
		"m  open email client",
		"c  copy to clipboard",
		"p  preview content",
		mutedStyle.Render("esc  close"),
	}
	if m.preview {
		lines = append(lines, "", m.shareText)
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}
