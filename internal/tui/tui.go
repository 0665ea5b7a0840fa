// Package tui is an interactive terminal browser for the items API.
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

	"items-api/backend/internal/items"
)

// API is the part of client.Client the UI needs.
type API interface {
	List(ctx context.Context) ([]items.Item, error)
	Create(ctx context.Context, in items.Input) (items.Item, error)
	Update(ctx context.Context, id int64, in items.Input) (items.Item, error)
	Delete(ctx context.Context, id int64) (items.Item, error)
}

const requestTimeout = 10 * time.Second

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// listItem adapts items.Item to bubbles/list.Item.
type listItem struct {
	item items.Item
}

func text(s *string) string {
	if s == nil {
		return nullText
	}
	return *s
}

func (i listItem) Title() string       { return text(i.item.Name) }
func (i listItem) Description() string { return text(i.item.Description) }
func (i listItem) FilterValue() string { return text(i.item.Name) + " " + text(i.item.Description) }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s\n", prefix,
		accentStyle.Render(fmt.Sprintf("#%d", it.item.ID)),
		it.Title(),
		mutedStyle.Render(it.Description()))
}

type itemsLoadedMsg struct{ items []items.Item }

type doneMsg struct{ status string }

type errMsg struct{ err error }

type Model struct {
	api    API
	list   list.Model
	input  textinput.Model
	mode   mode
	editID int64
	status string
	err    error
}

func New(api API) Model {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.Title = "Items"
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.SetStatusBarItemName("item", "items")
	l.SetFilteringEnabled(true)

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind := key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	extra := func() []key.Binding { return []key.Binding{addBind, editBind, delBind, refreshBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	return Model{api: api, list: l, input: ti}
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(api API) error {
	_, err := tea.NewProgram(New(api), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.load() }

func (m Model) load() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		all, err := api.List(ctx)
		if err != nil {
			return errMsg{err}
		}
		return itemsLoadedMsg{all}
	}
}

// call runs fn against the API and reports status on success.
func (m Model) call(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errMsg{err}
		}
		return doneMsg{status}
	}
}

func (m Model) selected() (items.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	return li.item, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	case itemsLoadedMsg:
		li := make([]list.Item, 0, len(msg.items))
		for _, it := range msg.items {
			li = append(li, listItem{it})
		}
		return m, m.list.SetItems(li)
	case doneMsg:
		m.status, m.err = msg.status, nil
		return m, m.load()
	case errMsg:
		m.err = msg.err
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.load()
		case "a":
			m.mode = adding
			m.input.SetValue("")
			m.input.Placeholder = "New item name..."
			m.input.Focus()
			return m, nil
		case "e":
			if it, ok := m.selected(); ok {
				m.mode = editing
				m.editID = it.ID
				m.input.SetValue("")
				if it.Name != nil {
					m.input.SetValue(*it.Name)
				}
				m.input.CursorEnd()
				m.input.Placeholder = "Item name..."
				m.input.Focus()
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				api := m.api
				return m, m.call(fmt.Sprintf("deleted #%d", it.ID), func(ctx context.Context) error {
					_, err := api.Delete(ctx, it.ID)
					return err
				})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.mode = browsing
			m.input.Blur()
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.input.Value())
			api := m.api
			var in items.Input
			if name != "" {
				in.Name = &name
			}
			var cmd tea.Cmd
			if m.mode == adding {
				cmd = m.call("added", func(ctx context.Context) error {
					_, err := api.Create(ctx, in)
					return err
				})
			} else {
				id := m.editID
				// PUT overwrites every field, so carry the description over.
				if it, ok := m.selected(); ok && it.ID == id {
					in.Description = it.Description
				}
				cmd = m.call(fmt.Sprintf("updated #%d", id), func(ctx context.Context) error {
					_, err := api.Update(ctx, id, in)
					return err
				})
			}
			m.mode = browsing
			m.input.Blur()
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	content := m.list.View()
	switch m.mode {
	case adding:
		content += "\n" + panelStyle.Render("Add item\n"+m.input.View())
	case editing:
		content += "\n" + panelStyle.Render(fmt.Sprintf("Edit item #%d\n%s", m.editID, m.input.View()))
	}
	switch {
	case m.err != nil:
		content += "\n" + Fail(m.err.Error())
	case m.status != "":
		content += "\n" + OK(m.status)
	}
	return panelStyle.Render(content)
}
