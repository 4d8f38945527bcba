// Package storagetest holds behaviour checks shared by every ItemStore.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"ichinichi/internal/core"
	"ichinichi/internal/storage"
)

// Item returns a fully populated item for store tests.
func Item(id, name string) core.Item {
	created := time.Date(2024, 3, 1, 9, 30, 0, 123000000, time.UTC)
	return core.Item{
		ItemInput: core.ItemInput{
			Name:          name,
			Price:         1980,
			Cadence:       core.Monthly,
			PaymentPeriod: &core.DateRange{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 6, 30)},
			UsagePeriod:   core.DateRange{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)},
			Category:      "Subscriptions",
		},
		ID:         id,
		CostPerDay: 1980.0 * 7 / 366,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// Run exercises the ItemStore contract against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.ItemStore) {
	t.Run("insert get list", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := Item("a", "Music")
		b := Item("b", "Video")
		b.PaymentPeriod = nil
		b.Category = ""
		b.Cadence = core.OneTime
		for _, it := range []core.Item{a, b} {
			if err := s.Insert(ctx, it); err != nil {
				t.Fatalf("insert %s: %v", it.ID, err)
			}
		}

		got, err := s.Get(ctx, "a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertItem(t, got, a)

		items, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
			t.Fatalf("expected [a b] in insertion order, got %v", ids(items))
		}
		assertItem(t, items[1], b)
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Insert(ctx, Item("a", "Music")); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.Insert(ctx, Item("a", "Other")); !errors.Is(err, storage.ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		it := Item("a", "Music")
		if err := s.Insert(ctx, it); err != nil {
			t.Fatalf("insert: %v", err)
		}
		it.Name = "Music Family"
		it.Price = 2980
		it.UpdatedAt = it.UpdatedAt.Add(time.Hour)
		if err := s.Update(ctx, it); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := s.Get(ctx, "a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertItem(t, got, it)

		if err := s.Update(ctx, Item("missing", "x")); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			if err := s.Insert(ctx, Item(id, id)); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		if err := s.Delete(ctx, "b"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Get(ctx, "b"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.Delete(ctx, "b"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
		items, _ := s.List(ctx)
		if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
			t.Fatalf("expected [a c], got %v", ids(items))
		}
	})

	t.Run("empty list", func(t *testing.T) {
		s := newStore(t)
		items, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Fatalf("expected empty non-nil list, got %#v", items)
		}
	})
}

func assertItem(t *testing.T, got, want core.Item) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Price != want.Price ||
		got.Cadence != want.Cadence || got.Category != want.Category || got.CostPerDay != want.CostPerDay {
		t.Fatalf("item mismatch:\n got  %+v\n want %+v", got, want)
	}
	if got.UsagePeriod.String() != want.UsagePeriod.String() {
		t.Fatalf("usage period = %s, want %s", got.UsagePeriod, want.UsagePeriod)
	}
	if (got.PaymentPeriod == nil) != (want.PaymentPeriod == nil) {
		t.Fatalf("payment period presence mismatch: got %v want %v", got.PaymentPeriod, want.PaymentPeriod)
	}
	if want.PaymentPeriod != nil && got.PaymentPeriod.String() != want.PaymentPeriod.String() {
		t.Fatalf("payment period = %s, want %s", got.PaymentPeriod, want.PaymentPeriod)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
}

func ids(items []core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
