package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorePut(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	locator, err := store.Put(context.Background(), "backup_teams/Team/General/notes.pdf", []byte("content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "backup_teams", "Team", "General", "notes.pdf")
	if locator != want {
		t.Errorf("locator = %q, want %q", locator, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestLocalStoreOverwrites(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.Put(ctx, "a/file.txt", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	locator, err := store.Put(ctx, "a/file.txt", []byte("v2"))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(locator)
	if string(data) != "v2" {
		t.Errorf("repeated key must overwrite, got %q", data)
	}
}

func TestLocalStoreCanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "a/file.txt", []byte("x")); err == nil {
		t.Error("expected error on canceled context")
	}
}
