package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ichinichi/internal/storage"
	"ichinichi/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.ItemStore {
		return New()
	})
}

func TestFileStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.ItemStore {
		s, err := NewFromFile(filepath.Join(t.TempDir(), DefaultFileName))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		return s
	})
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	ctx := context.Background()

	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Insert(ctx, storagetest.Item("a", "Music")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, storagetest.Item("b", "Video")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reopened, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	items, _ := reopened.List(ctx)
	if len(items) != 1 || items[0].ID != "b" || items[0].PaymentPeriod == nil {
		t.Fatalf("unexpected items after reopen: %+v", items)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected error for corrupt file")
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Insert(ctx, storagetest.Item("a", "Music"))
	items, _ := s.List(ctx)
	items[0].Name = "changed"
	got, _ := s.Get(ctx, "a")
	if got.Name != "Music" {
		t.Fatalf("List must return a copy, store saw %q", got.Name)
	}
}

func TestFileStoreFailedWriteLeavesStoreUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	ctx := context.Background()

	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Insert(ctx, storagetest.Item("a", "Music")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// A directory in place of the temp file makes every later write fail.
	if err := os.Mkdir(path+".tmp", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := s.Insert(ctx, storagetest.Item("b", "Video")); err == nil {
		t.Fatalf("insert should fail")
	}
	changed := storagetest.Item("a", "Books")
	if err := s.Update(ctx, changed); err == nil {
		t.Fatalf("update should fail")
	}
	if err := s.Delete(ctx, "a"); err == nil {
		t.Fatalf("delete should fail")
	}

	items, _ := s.List(ctx)
	if len(items) != 1 || items[0].ID != "a" || items[0].Name != "Music" {
		t.Fatalf("failed writes must not change the store, got %+v", items)
	}
}
