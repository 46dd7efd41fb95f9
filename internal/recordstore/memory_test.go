package recordstore

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryStoreAppendAndReadRecent(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, "t1", fmt.Sprintf("record-%d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := store.ReadRecent(ctx, "t1", 3)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	want := []string{"record-2", "record-3", "record-4"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, r := range records {
		if r != want[i] {
			t.Errorf("record %d = %q, want %q", i, r, want[i])
		}
	}
}

func TestMemoryStoreLogsAreIsolated(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	store.Append(ctx, "t1", "a")
	store.Append(ctx, "t2", "b")

	records, err := store.ReadRecent(ctx, "t1", 10)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(records) != 1 || records[0] != "a" {
		t.Fatalf("t1 log = %v, want [a]", records)
	}
}

func TestMemoryStoreTrimsToMaxRecords(t *testing.T) {
	store := NewMemoryStore(3)
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		store.Append(ctx, "t1", fmt.Sprintf("r%d", i))
	}
	records, err := store.ReadRecent(ctx, "t1", 100)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(records) != 3 || records[0] != "r7" || records[2] != "r9" {
		t.Fatalf("records = %v, want the last three", records)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore(0)
	store.Close()
	if err := store.Append(context.Background(), "t1", "x"); err == nil {
		t.Fatalf("Append on closed store should fail")
	}
	if _, err := store.ReadRecent(context.Background(), "t1", 1); err == nil {
		t.Fatalf("ReadRecent on closed store should fail")
	}
}

func TestFactoryRegistry(t *testing.T) {
	store, err := Create(Config{Type: "memory"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer store.Close()

	if _, err := Create(Config{Type: "tape"}); err == nil {
		t.Fatalf("Create with unregistered type should fail")
	}
	if _, err := Create(Config{}); err == nil {
		t.Fatalf("Create without a type should fail")
	}

	types := RegisteredTypes()
	seen := make(map[string]bool, len(types))
	for _, typ := range types {
		seen[typ] = true
	}
	for _, want := range []string{"memory", "redis", "dynamodb", "mysql"} {
		if !seen[want] {
			t.Errorf("factory %q is not registered (have %v)", want, types)
		}
	}
}
