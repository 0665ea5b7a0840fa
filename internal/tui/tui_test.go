package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"items-api/backend/internal/items"
	"items-api/backend/internal/items/itemstest"
)

func str(s string) *string { return &s }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to m and returns the updated model and command.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// loaded returns a model holding the store's current items.
func loaded(t *testing.T, store *itemstest.MemoryStore) Model {
	t.Helper()
	m := New(store)
	msg := m.Init()()
	require.IsType(t, itemsLoadedMsg{}, msg)
	m, _ = step(t, m, msg)
	return m
}

func TestInitLoadsItems(t *testing.T) {
	store := itemstest.NewMemoryStore()
	ctx := context.Background()
	_, _ = store.Create(ctx, items.Input{Name: str("a")})
	_, _ = store.Create(ctx, items.Input{Name: str("b"), Description: str("bee")})

	m := loaded(t, store)
	assert.Len(t, m.list.Items(), 2)
	assert.Contains(t, m.View(), "bee")
}

func TestDeleteSelected(t *testing.T) {
	store := itemstest.NewMemoryStore()
	_, _ = store.Create(context.Background(), items.Input{Name: str("a")})
	m := loaded(t, store)

	m, cmd := step(t, m, runes("d"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, doneMsg{"deleted #1"}, msg)
	assert.Zero(t, store.Len())

	m, cmd = step(t, m, msg)
	assert.Equal(t, "deleted #1", m.status)
	m, _ = step(t, m, cmd())
	assert.Empty(t, m.list.Items())
}

func TestAddItem(t *testing.T) {
	store := itemstest.NewMemoryStore()
	m := loaded(t, store)

	m, _ = step(t, m, runes("a"))
	assert.Equal(t, adding, m.mode)
	m, _ = step(t, m, runes("milk"))
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, browsing, m.mode)
	require.NotNil(t, cmd)
	assert.Equal(t, doneMsg{"added"}, cmd())

	it, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "milk", *it.Name)
	assert.Nil(t, it.Description)
}

func TestEditKeepsDescription(t *testing.T) {
	store := itemstest.NewMemoryStore()
	_, _ = store.Create(context.Background(), items.Input{Name: str("a"), Description: str("desc")})
	m := loaded(t, store)

	m, _ = step(t, m, runes("e"))
	assert.Equal(t, editing, m.mode)
	assert.Equal(t, "a", m.input.Value())
	m, _ = step(t, m, runes("b"))
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, doneMsg{"updated #1"}, cmd())

	it, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ab", *it.Name)
	assert.Equal(t, "desc", *it.Description)
}

func TestEscCancelsInput(t *testing.T) {
	m := loaded(t, itemstest.NewMemoryStore())
	m, _ = step(t, m, runes("a"))
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browsing, m.mode)
	assert.Nil(t, cmd)
}

func TestErrorsAreShown(t *testing.T) {
	store := itemstest.NewMemoryStore()
	store.Fail(errors.New("500 Internal Server Error: db down"))
	m := New(store)

	m, _ = step(t, m, m.Init()())
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "db down")
}

func TestQuit(t *testing.T) {
	m := loaded(t, itemstest.NewMemoryStore())
	_, cmd := step(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
