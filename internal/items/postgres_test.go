package items

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	sql  string
	args []any
}

// fakeQuerier records statements and answers from canned rows.
type fakeQuerier struct {
	calls []call
	rows  []Item
	err   error
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql, args})
	return pgconn.CommandTag{}, f.err
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{sql, args})
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{items: f.rows, pos: -1}, nil
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql, args})
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{item: f.rows[0]}
}

type fakeRow struct {
	item Item
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.item, dest)
}

func assign(it Item, dest []any) error {
	if len(dest) != 3 {
		return errors.New("expected 3 columns")
	}
	*dest[0].(*int64) = it.ID
	*dest[1].(**string) = it.Name
	*dest[2].(**string) = it.Description
	return nil
}

type fakeRows struct {
	items []Item
	pos   int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.items)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.items[r.pos], dest)
}

func str(s string) *string { return &s }

func TestPostgresCreate(t *testing.T) {
	q := &fakeQuerier{rows: []Item{{ID: 1, Name: str("foo"), Description: str("bar")}}}
	s := NewPostgresStore(q)

	it, err := s.Create(context.Background(), Input{Name: str("foo"), Description: str("bar")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, it.ID)
	assert.Equal(t, "foo", *it.Name)

	require.Len(t, q.calls, 1)
	assert.Equal(t, insertItem, q.calls[0].sql)
	assert.Len(t, q.calls[0].args, 2)
}

func TestPostgresCreatePassesNulls(t *testing.T) {
	q := &fakeQuerier{rows: []Item{{ID: 2}}}
	s := NewPostgresStore(q)

	it, err := s.Create(context.Background(), Input{})
	require.NoError(t, err)
	assert.Nil(t, it.Name)
	assert.Nil(t, q.calls[0].args[0].(*string))
	assert.Nil(t, q.calls[0].args[1].(*string))
}

func TestPostgresListEmptyIsNotNil(t *testing.T) {
	s := NewPostgresStore(&fakeQuerier{})

	out, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestPostgresList(t *testing.T) {
	q := &fakeQuerier{rows: []Item{{ID: 1}, {ID: 2, Name: str("b")}}}
	out, err := NewPostgresStore(q).List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.EqualValues(t, 2, out[1].ID)
	assert.Equal(t, selectAll, q.calls[0].sql)
}

func TestPostgresIDScopedNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewPostgresStore(&fakeQuerier{})

	_, err := s.Get(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, 999999, Input{Name: str("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUpdateArgOrder(t *testing.T) {
	q := &fakeQuerier{rows: []Item{{ID: 5}}}
	_, err := NewPostgresStore(q).Update(context.Background(), 5, Input{Name: str("n")})
	require.NoError(t, err)

	args := q.calls[0].args
	require.Len(t, args, 3)
	assert.Equal(t, "n", *args[0].(*string))
	assert.Nil(t, args[1].(*string))
	assert.EqualValues(t, 5, args[2])
}

func TestPostgresDriverErrorIsVerbatim(t *testing.T) {
	boom := errors.New(`relation "items" does not exist`)
	s := NewPostgresStore(&fakeQuerier{err: boom})

	_, err := s.Get(context.Background(), 1)
	assert.Equal(t, boom, err)
	_, err = s.List(context.Background())
	assert.Equal(t, boom, err)
	_, err = s.ServerTime(context.Background())
	assert.Equal(t, boom, err)
}
