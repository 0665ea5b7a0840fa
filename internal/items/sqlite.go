package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/sqlite"
)

const sqliteSchema = `create table if not exists items (
	id integer primary key autoincrement,
	name text,
	description text
)`

const sqliteTimeLayout = "2006-01-02 15:04:05"

type sqliteRow struct {
	ID          int64          `db:"id,omitempty"`
	Name        sql.NullString `db:"name"`
	Description sql.NullString `db:"description"`
}

func (r sqliteRow) item() Item {
	it := Item{ID: r.ID}
	if r.Name.Valid {
		it.Name = &r.Name.String
	}
	if r.Description.Valid {
		it.Description = &r.Description.String
	}
	return it
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// SQLiteStore keeps items in a local file. Unlike PostgresStore it owns
// its database and creates the table on open.
type SQLiteStore struct {
	sess db.Session
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	sess, err := sqlite.Open(sqlite.ConnectionURL{Database: path})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time, or sqlite answers "database is locked"
	sess.SetMaxOpenConns(1)

	if _, err := sess.SQL().Exec(sqliteSchema); err != nil {
		sess.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &SQLiteStore{sess: sess}, nil
}

func (s *SQLiteStore) Close() error {
	return s.sess.Close()
}

func (s *SQLiteStore) items(ctx context.Context) db.Collection {
	return s.sess.WithContext(ctx).Collection("items")
}

func (s *SQLiteStore) Create(ctx context.Context, in Input) (Item, error) {
	row := sqliteRow{Name: nullString(in.Name), Description: nullString(in.Description)}
	if err := s.items(ctx).InsertReturning(&row); err != nil {
		return Item{}, err
	}
	return row.item(), nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Item, error) {
	var rows []sqliteRow
	if err := s.items(ctx).Find().All(&rows); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.item())
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (Item, error) {
	var row sqliteRow
	err := s.items(ctx).Find(db.Cond{"id": id}).One(&row)
	if errors.Is(err, db.ErrNoMoreRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return row.item(), nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, in Input) (Item, error) {
	return s.one(ctx,
		`update items set name = ?, description = ? where id = ? returning id, name, description`,
		nullString(in.Name), nullString(in.Description), id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (Item, error) {
	return s.one(ctx, `delete from items where id = ? returning id, name, description`, id)
}

func (s *SQLiteStore) ServerTime(ctx context.Context) (time.Time, error) {
	row, err := s.sess.SQL().QueryRowContext(ctx, `select current_timestamp`)
	if err != nil {
		return time.Time{}, err
	}
	var ts string
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(sqliteTimeLayout, ts, time.UTC)
}

func (s *SQLiteStore) one(ctx context.Context, query string, args ...any) (Item, error) {
	row, err := s.sess.SQL().QueryRowContext(ctx, query, args...)
	if err != nil {
		return Item{}, err
	}
	var r sqliteRow
	err = row.Scan(&r.ID, &r.Name, &r.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return r.item(), nil
}
