package game

import (
	"sync"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Get(1); ok {
		t.Fatal("empty registry should miss")
	}

	tbl := reg.Create(1, 10, 20)
	if tbl == nil || tbl.RoomID() != 1 {
		t.Fatalf("create returned %v", tbl)
	}
	got, ok := reg.Get(1)
	if !ok || got != tbl {
		t.Fatal("get should return the created table")
	}

	same := reg.GetOrCreate(1, 50, 100)
	if same != tbl {
		t.Fatal("get-or-create must not replace a live table")
	}
	if same.BigBlind() != 20 {
		t.Fatalf("existing table keeps its blinds, got %d", same.BigBlind())
	}

	reg.Remove(1)
	if _, ok := reg.Get(1); ok {
		t.Fatal("removed table should be gone")
	}
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	reg := NewRegistry()

	const workers = 16
	tables := make([]*Table, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			tables[i] = reg.GetOrCreate(7, 10, 20)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if tables[i] != tables[0] {
			t.Fatal("get-or-create raced to distinct tables")
		}
	}
}
