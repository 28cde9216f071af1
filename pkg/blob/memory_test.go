package blob

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, "snap", []byte("v1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := store.Load(ctx, "snap")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "v1" {
		t.Errorf("Load = %q, want %q", data, "v1")
	}

	// Overwrite.
	if err := store.Save(ctx, "snap", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	data, _ = store.Load(ctx, "snap")
	if string(data) != "v2" {
		t.Errorf("Load after overwrite = %q", data)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()
	data, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load missing key: %v", err)
	}
	if data != nil {
		t.Errorf("Load missing key = %q, want nil", data)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, "snap", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "snap"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if data, _ := store.Load(ctx, "snap"); data != nil {
		t.Error("value survived Delete")
	}

	// Deleting a missing key is fine.
	if err := store.Delete(ctx, "snap"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	buf := []byte("original")
	if err := store.Save(ctx, "snap", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	data, _ := store.Load(ctx, "snap")
	if string(data) != "original" {
		t.Errorf("store shares caller memory: %q", data)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	var closed ErrStoreClosed
	if err := store.Save(ctx, "k", nil); !errors.As(err, &closed) {
		t.Errorf("Save after Close: %v", err)
	}
	if _, err := store.Load(ctx, "k"); !errors.As(err, &closed) {
		t.Errorf("Load after Close: %v", err)
	}
	if err := store.Delete(ctx, "k"); !errors.As(err, &closed) {
		t.Errorf("Delete after Close: %v", err)
	}
}
