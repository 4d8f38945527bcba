package storage

import (
	"context"
	"errors"

	"ichinichi/internal/core"
)

var ErrDuplicateID = errors.New("duplicate item id")

// ItemStore persists items. Implementations keep insertion order in List and
// return an error wrapping core.ErrNotFound for unknown ids.
type ItemStore interface {
	Insert(ctx context.Context, item core.Item) error
	Update(ctx context.Context, item core.Item) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Item, error)
	List(ctx context.Context) ([]core.Item, error)
	Close() error
}
