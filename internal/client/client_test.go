package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpx "items-api/backend/internal/http"
	"items-api/backend/internal/items"
	"items-api/backend/internal/items/itemstest"
)

func setup(t *testing.T) (*Client, *itemstest.MemoryStore) {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	store := itemstest.NewMemoryStore()
	ts := httptest.NewServer(httpx.NewServer(store, log, httpx.Options{}).R)
	t.Cleanup(ts.Close)
	return New(ts.URL + "/"), store
}

func str(s string) *string { return &s }

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	created, err := c.Create(ctx, items.Input{Name: str("foo"), Description: str("bar")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.ID)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := c.Update(ctx, created.ID, items.Input{Name: str("baz")})
	require.NoError(t, err)
	assert.Equal(t, "baz", *updated.Name)
	assert.Nil(t, updated.Description)

	all, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []items.Item{updated}, all)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = c.Delete(ctx, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Item not found", apiErr.Message)
}

func TestClientHealth(t *testing.T) {
	ctx := context.Background()
	c, store := setup(t)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UP", h.Status)
	assert.False(t, h.Time.IsZero())

	store.Fail(errors.New("db down"))
	_, err = c.Health(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "db down", apiErr.Message)
	assert.Contains(t, err.Error(), "500 Internal Server Error")
}

func TestClientUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.List(context.Background())
	assert.Error(t, err)
}
