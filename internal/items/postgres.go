package items

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"items-api/backend/internal/db"
)

const (
	insertItem = `insert into items (name, description) values ($1, $2) returning id, name, description`
	selectAll  = `select id, name, description from items`
	selectByID = `select id, name, description from items where id = $1`
	updateItem = `update items set name = $1, description = $2 where id = $3 returning id, name, description`
	deleteItem = `delete from items where id = $1 returning id, name, description`
)

type PostgresStore struct {
	q db.Querier
}

func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{q: q}
}

func (s *PostgresStore) Create(ctx context.Context, in Input) (Item, error) {
	return scanItem(s.q.QueryRow(ctx, insertItem, in.Name, in.Description))
}

func (s *PostgresStore) List(ctx context.Context) ([]Item, error) {
	rows, err := s.q.Query(ctx, selectAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Item, error) {
	return s.one(ctx, selectByID, id)
}

func (s *PostgresStore) Update(ctx context.Context, id int64, in Input) (Item, error) {
	return s.one(ctx, updateItem, in.Name, in.Description, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) (Item, error) {
	return s.one(ctx, deleteItem, id)
}

func (s *PostgresStore) ServerTime(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.q.QueryRow(ctx, `select now()`).Scan(&now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// one runs an id-scoped statement; zero rows maps to ErrNotFound.
// Driver errors are returned unwrapped so handlers can report them as is.
func (s *PostgresStore) one(ctx context.Context, sql string, args ...any) (Item, error) {
	it, err := scanItem(s.q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description)
	return it, err
}
