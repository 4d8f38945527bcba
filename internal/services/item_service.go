package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"ichinichi/internal/amqp"
	"ichinichi/internal/cache"
	"ichinichi/internal/core"
	"ichinichi/internal/cost"
	applog "ichinichi/internal/log"
	"ichinichi/internal/storage"
)

const summaryKey = "summary"

// EventPublisher announces item changes to other processes.
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, event *amqp.ItemEvent) error
}

// ItemService owns the item collection. Writes are serialized: validation,
// cost computation, persistence, cache invalidation and event publishing of
// one write finish before the next write starts. Reads do not take the lock.
type ItemService struct {
	store     storage.ItemStore
	publisher EventPublisher
	summaries cache.Store[core.SummaryData]

	mu         sync.Mutex
	generation atomic.Uint64
	flight     singleflight.Group

	now   func() time.Time
	newID func() string
}

// Option configures an ItemService.
type Option func(*ItemService)

// WithPublisher enables item change events.
func WithPublisher(p EventPublisher) Option {
	return func(s *ItemService) { s.publisher = p }
}

// WithSummaryCache caches computed summaries until the next write.
func WithSummaryCache(c cache.Store[core.SummaryData]) Option {
	return func(s *ItemService) { s.summaries = c }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ItemService) { s.now = now }
}

// WithIDGenerator overrides uuid generation, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *ItemService) { s.newID = gen }
}

func NewItemService(store storage.ItemStore, opts ...Option) *ItemService {
	s := &ItemService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, derives its cost per day and stores it under a
// new id.
func (s *ItemService) Create(ctx context.Context, in core.ItemInput) (core.Item, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item := core.Item{
		ItemInput:  in,
		ID:         s.newID(),
		CostPerDay: cost.PerDay(in),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, item); err != nil {
		return core.Item{}, fmt.Errorf("save item: %w", err)
	}

	slog.InfoContext(ctx, "Item created", itemAttrs(item, applog.OpCreate)...)
	s.afterWrite(ctx, item.ID, amqp.ActionCreated)
	return item, nil
}

// Update replaces the user supplied fields of an item. id and CreatedAt are
// kept, UpdatedAt is refreshed and CostPerDay recomputed.
func (s *ItemService) Update(ctx context.Context, id string, in core.ItemInput) (core.Item, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Item{}, err
	}
	item.ItemInput = in
	item.CostPerDay = cost.PerDay(in)
	item.UpdatedAt = s.now()

	if err := s.store.Update(ctx, item); err != nil {
		return core.Item{}, fmt.Errorf("update item: %w", err)
	}

	slog.InfoContext(ctx, "Item updated", itemAttrs(item, applog.OpUpdate)...)
	s.afterWrite(ctx, item.ID, amqp.ActionUpdated)
	return item, nil
}

// Delete removes an item. Deleting an unknown id returns an error wrapping
// core.ErrNotFound.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Item deleted",
		applog.FieldComponent, applog.ComponentItems,
		applog.FieldOperation, applog.OpDelete,
		applog.FieldItemID, id)
	s.afterWrite(ctx, id, amqp.ActionDeleted)
	return nil
}

// Import validates every input before storing any of them, then creates them
// in order. Field keys in the returned ValidationError are prefixed with the
// input index, e.g. "items[2].price".
func (s *ItemService) Import(ctx context.Context, inputs []core.ItemInput) ([]core.Item, error) {
	normalized := make([]core.ItemInput, len(inputs))
	var all core.ValidationError
	for i, in := range inputs {
		normalized[i] = in.Normalize()
		var verr *core.ValidationError
		if err := normalized[i].Validate(); errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				if all.Fields == nil {
					all.Fields = make(map[string]string)
				}
				all.Fields[fmt.Sprintf("items[%d].%s", i, field)] = msg
			}
		}
	}
	if len(all.Fields) > 0 {
		return nil, &all
	}

	created := make([]core.Item, 0, len(normalized))
	for _, in := range normalized {
		item, err := s.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("import item %q: %w", in.Name, err)
		}
		created = append(created, item)
	}
	return created, nil
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, id string) (core.Item, error) {
	return s.store.Get(ctx, id)
}

// List returns every item in insertion order.
func (s *ItemService) List(ctx context.Context) ([]core.Item, error) {
	return s.store.List(ctx)
}

// ListByCategory filters items by category. An empty category returns all
// items.
func (s *ItemService) ListByCategory(ctx context.Context, category string) ([]core.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return cost.FilterByCategory(items, category), nil
}

// Categories returns the distinct categories in use, sorted.
func (s *ItemService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return cost.Categories(items), nil
}

// Top returns the n items with the highest cost per day.
func (s *ItemService) Top(ctx context.Context, n int) ([]core.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return cost.TopItems(items, n), nil
}

// Preview validates an unsaved input and returns its normalized costs.
func (s *ItemService) Preview(in core.ItemInput) (cost.Preview, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return cost.Preview{}, err
	}
	return cost.PreviewOf(in), nil
}

// Summary returns portfolio totals, served from the cache when possible.
// Concurrent misses share one computation.
func (s *ItemService) Summary(ctx context.Context) (core.SummaryData, error) {
	if s.summaries != nil {
		v, ok, err := s.summaries.Get(ctx, summaryKey)
		if err != nil {
			slog.WarnContext(ctx, "Summary cache read failed", applog.FieldComponent, applog.ComponentCache, applog.FieldError, err)
		}
		if ok {
			return v, nil
		}
	}

	v, err, _ := s.flight.Do(summaryKey, func() (any, error) {
		gen := s.generation.Load()
		items, err := s.store.List(ctx)
		if err != nil {
			return nil, err
		}
		summary := cost.Summarize(items)
		// Only cache when no write landed while computing
		if s.summaries != nil && s.generation.Load() == gen {
			if err := s.summaries.Set(ctx, summaryKey, summary); err != nil {
				slog.WarnContext(ctx, "Summary cache write failed", applog.FieldComponent, applog.ComponentCache, applog.FieldError, err)
			}
		}
		return summary, nil
	})
	if err != nil {
		return core.SummaryData{}, fmt.Errorf("compute summary: %w", err)
	}
	return v.(core.SummaryData), nil
}

// Ping reports whether the store can serve reads.
func (s *ItemService) Ping(ctx context.Context) error {
	_, err := s.store.List(ctx)
	return err
}

func (s *ItemService) afterWrite(ctx context.Context, id string, action amqp.EventAction) {
	s.generation.Add(1)
	if s.summaries != nil {
		if err := s.summaries.Delete(ctx, summaryKey); err != nil {
			slog.WarnContext(ctx, "Summary cache invalidation failed", applog.FieldComponent, applog.ComponentCache, applog.FieldError, err)
		}
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishItemEvent(ctx, amqp.NewItemEvent(id, action)); err != nil {
		// The write is already stored; consumers catch up on the next full export
		slog.ErrorContext(ctx, "Failed to publish item event",
			applog.FieldComponent, applog.ComponentAMQP,
			applog.FieldItemID, id,
			"action", action,
			applog.FieldError, err)
	}
}

// Close closes the store and the publisher when it is closable.
func (s *ItemService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close item service: %w", errors.Join(errs...))
	}
	return nil
}

func itemAttrs(item core.Item, op string) []any {
	return applog.NewFields().
		WithComponent(applog.ComponentItems).
		WithOperation(op).
		WithItem(item.ID, item.Name, string(item.Cadence), item.CostPerDay).
		ToSlice()
}
