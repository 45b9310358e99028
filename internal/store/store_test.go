package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoadMissing(t *testing.T) {
	f := NewFile[int](filepath.Join(t.TempDir(), "absent.json"))

	doc, err := f.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("Load() = %v, want empty document", doc)
	}
}

func TestFileUpdateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	f := NewFile[string](path)

	err := f.Update(func(doc map[string]string) error {
		doc["a"] = "one"
		doc["b"] = "two"
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// A fresh store over the same path must see the written document.
	doc, err := NewFile[string](path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc["a"] != "one" || doc["b"] != "two" {
		t.Errorf("Load() = %v, want a=one b=two", doc)
	}
}

func TestFileUpdateErrorLeavesDocument(t *testing.T) {
	f := NewFile[int](filepath.Join(t.TempDir(), "doc.json"))

	if err := f.Update(func(doc map[string]int) error {
		doc["kept"] = 1
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	wantErr := fmt.Errorf("mutation failed")
	if err := f.Update(func(doc map[string]int) error {
		doc["dropped"] = 2
		return wantErr
	}); err == nil {
		t.Fatal("Update() expected error")
	}

	doc, err := f.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := doc["dropped"]; ok {
		t.Error("failed Update() persisted its mutation")
	}
	if doc["kept"] != 1 {
		t.Error("failed Update() clobbered previous document")
	}
}

func TestFileUpdateConcurrent(t *testing.T) {
	f := NewFile[int](filepath.Join(t.TempDir(), "doc.json"))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = f.Update(func(doc map[string]int) error {
				doc[fmt.Sprintf("k%d", i)] = i
				return nil
			})
		}(i)
	}
	wg.Wait()

	doc, err := f.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc) != writers {
		t.Errorf("document has %d keys, want %d (lost update)", len(doc), writers)
	}
}

func TestFileCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile[int](path).Load(); err == nil {
		t.Error("Load() expected error for corrupt document")
	}
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore(t.TempDir())

	if _, ok, err := s.Get("user1"); err != nil || ok {
		t.Fatalf("Get() on empty store = ok=%v err=%v, want absent", ok, err)
	}

	rec := Record{
		AccessToken:  "T1",
		RefreshToken: "R1",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := s.Put("user1", rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := s.Get("user1")
	if err != nil || !ok {
		t.Fatalf("Get() = ok=%v err=%v", ok, err)
	}
	if got.AccessToken != "T1" || got.RefreshToken != "R1" {
		t.Errorf("Get() = %+v, want stored record", got)
	}
	if !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, rec.ExpiresAt)
	}

	// Last write wins.
	if err := s.Put("user1", Record{AccessToken: "T2"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, _, _ = s.Get("user1")
	if got.AccessToken != "T2" || got.RefreshToken != "" {
		t.Errorf("Get() after overwrite = %+v, want replaced record", got)
	}

	if err := s.Delete("user1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get("user1"); ok {
		t.Error("Get() after Delete() found record")
	}
}

func TestGenreCache(t *testing.T) {
	c := NewGenreCache(t.TempDir())

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("Snapshot() = %v, want empty", snap)
	}

	if err := c.Merge(map[string][]string{
		"Radiohead": {"alternative", "rock"},
	}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if err := c.Merge(map[string][]string{
		"Cher": {"pop"},
	}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	snap, err = c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d artists, want 2", len(snap))
	}
	if got := snap["Radiohead"]; len(got) != 2 || got[0] != "alternative" {
		t.Errorf("Radiohead genres = %v", got)
	}
}

func TestGenreCacheMergeEmpty(t *testing.T) {
	c := NewGenreCache(t.TempDir())

	if err := c.Merge(nil); err != nil {
		t.Fatalf("Merge(nil) error = %v", err)
	}

	// An empty merge must not create the backing file.
	if _, err := os.Stat(c.file.Path()); !os.IsNotExist(err) {
		t.Error("Merge(nil) created the store file")
	}
}
