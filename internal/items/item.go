// Package items persists Item rows. Every Store method issues a single
// statement; the database owns all records.
package items

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("Item not found")

type Item struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Input carries the mutable fields. A nil field is stored as NULL, on
// update as well as on create.
type Input struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type Store interface {
	Create(ctx context.Context, in Input) (Item, error)
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	Update(ctx context.Context, id int64, in Input) (Item, error)
	Delete(ctx context.Context, id int64) (Item, error)

	// ServerTime round-trips to the database and returns its clock.
	ServerTime(ctx context.Context) (time.Time, error)
}
