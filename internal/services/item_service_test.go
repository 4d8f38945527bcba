package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"ichinichi/internal/amqp"
	"ichinichi/internal/cache"
	"ichinichi/internal/core"
	"ichinichi/internal/storage/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.ItemEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishItemEvent(_ context.Context, e *amqp.ItemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

// countingStore counts List calls to observe cache hits.
type countingStore struct {
	*memory.Store
	mu    sync.Mutex
	lists int
}

func (c *countingStore) List(ctx context.Context) ([]core.Item, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.Store.List(ctx)
}

func newTestService(t *testing.T, opts ...Option) (*ItemService, *fakePublisher) {
	t.Helper()
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	seq := 0
	pub := &fakePublisher{}
	base := []Option{
		WithPublisher(pub),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("item-%d", seq)
		}),
	}
	return NewItemService(memory.New(), append(base, opts...)...), pub
}

func yearly(name string) core.ItemInput {
	return core.ItemInput{
		Name:        name,
		Price:       12000,
		Cadence:     core.Yearly,
		UsagePeriod: core.DateRange{Start: core.NewDate(2023, 1, 1), End: core.NewDate(2023, 12, 31)},
		Category:    "Cloud",
	}
}

func TestItemService_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	created, err := svc.Create(ctx, yearly("  Storage  "))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "item-1" || created.Name != "Storage" {
		t.Fatalf("unexpected item %+v", created)
	}
	if math.Abs(created.CostPerDay-12000.0/365) > 1e-9 {
		t.Fatalf("CostPerDay = %v", created.CostPerDay)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("new item timestamps differ: %v %v", created.CreatedAt, created.UpdatedAt)
	}

	in := yearly("Storage")
	in.Cadence = core.Monthly
	in.Price = 1000
	updated, err := svc.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update must keep id and createdAt: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("update must refresh updatedAt")
	}
	// 365 days of monthly billing is 13 payments
	if math.Abs(updated.CostPerDay-1000.0*13/365) > 1e-9 {
		t.Fatalf("CostPerDay not recomputed: %v", updated.CostPerDay)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}

	want := []amqp.EventAction{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %+v", pub.events)
	}
	for i, a := range want {
		if pub.events[i].Action != a || pub.events[i].ID != created.ID {
			t.Fatalf("event %d = %+v, want %s", i, pub.events[i], a)
		}
	}
}

func TestItemService_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	bad := yearly("")
	bad.Price = 0
	_, err := svc.Create(ctx, bad)
	if !errors.Is(err, core.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
	items, _ := svc.List(ctx)
	if len(items) != 0 {
		t.Fatalf("invalid input must not be stored")
	}

	if _, err := svc.Update(ctx, "missing", yearly("x")); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", bad); !errors.Is(err, core.ErrInvalidItem) {
		t.Fatalf("validation runs before lookup, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed writes must not publish: %+v", pub.events)
	}
}

func TestItemService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)
	pub.err = errors.New("broker down")

	if _, err := svc.Create(ctx, yearly("Storage")); err != nil {
		t.Fatalf("create must succeed when publishing fails: %v", err)
	}
}

func TestItemService_SummaryCache(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: memory.New()}
	lru := cache.NewLRUCache[core.SummaryData](4, time.Minute)
	svc := NewItemService(store, WithSummaryCache(lru))

	if _, err := svc.Create(ctx, yearly("A")); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.Summary(ctx); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if store.lists != 1 {
		t.Fatalf("second summary should be cached, List called %d times", store.lists)
	}
	if first.TotalCostPerYear != 12000 {
		t.Fatalf("TotalCostPerYear = %v", first.TotalCostPerYear)
	}

	if _, err := svc.Create(ctx, yearly("B")); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _ := svc.Summary(ctx)
	if second.TotalCostPerYear != 24000 {
		t.Fatalf("write must invalidate the cached summary, got %v", second.TotalCostPerYear)
	}
	if store.lists != 2 {
		t.Fatalf("List called %d times, want 2", store.lists)
	}
}

func TestItemService_Queries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cheap := yearly("Cheap")
	cheap.Price = 365
	cheap.Category = ""
	pricey := yearly("Pricey")
	pricey.Price = 36500
	pricey.Category = "Home"
	for _, in := range []core.ItemInput{cheap, yearly("Mid"), pricey} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	top, err := svc.Top(ctx, 2)
	if err != nil || len(top) != 2 || top[0].Name != "Pricey" || top[1].Name != "Mid" {
		t.Fatalf("unexpected top %v err=%v", top, err)
	}

	cats, _ := svc.Categories(ctx)
	if len(cats) != 2 || cats[0] != "Cloud" || cats[1] != "Home" {
		t.Fatalf("unexpected categories %v", cats)
	}

	unc, _ := svc.ListByCategory(ctx, core.UncategorizedLabel)
	if len(unc) != 1 || unc[0].Name != "Cheap" {
		t.Fatalf("unexpected uncategorized %v", unc)
	}

	summary, _ := svc.Summary(ctx)
	if summary.CategorySummary[0].Category != "Home" {
		t.Fatalf("highest category first, got %v", summary.CategorySummary)
	}

	got, err := svc.Get(ctx, top[0].ID)
	if err != nil || got.Name != "Pricey" {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := svc.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestItemService_Preview(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.Preview(yearly("Storage"))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if p.CostPerMonth != 1000 || p.CostPerYear != 12000 {
		t.Fatalf("unexpected preview %+v", p)
	}
	if _, err := svc.Preview(core.ItemInput{}); !errors.Is(err, core.ErrInvalidItem) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestItemService_Import(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	bad := yearly("Bad")
	bad.Price = -1
	_, err := svc.Import(ctx, []core.ItemInput{yearly("Good"), bad})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["items[1].price"]; !ok {
		t.Fatalf("expected indexed field key, got %v", verr.Fields)
	}
	if items, _ := svc.List(ctx); len(items) != 0 {
		t.Fatalf("import must be all or nothing, stored %d", len(items))
	}

	created, err := svc.Import(ctx, []core.ItemInput{yearly("One"), yearly("Two")})
	if err != nil || len(created) != 2 {
		t.Fatalf("import: %v %v", created, err)
	}
	items, _ := svc.List(ctx)
	if len(items) != 2 || items[0].Name != "One" || items[1].Name != "Two" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestItemService_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	svc := NewItemService(memory.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Create(ctx, yearly(fmt.Sprintf("item %d", i))); err != nil {
				t.Errorf("create: %v", err)
			}
		}(i)
	}
	wg.Wait()

	items, _ := svc.List(ctx)
	if len(items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(items))
	}
}

func TestItemService_Close(t *testing.T) {
	svc, pub := newTestService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatalf("publisher should be closed")
	}
	if err := NewItemService(memory.New()).Close(); err != nil {
		t.Fatalf("close without publisher: %v", err)
	}
}
