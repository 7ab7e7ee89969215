package history

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-widget/internal/store"
)

type failingKV struct {
	*store.MemoryStore
	getErr error
	setErr error
}

func (f failingKV) Get(key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.MemoryStore.Get(key)
}

func (f failingKV) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(key, value)
}

// gatedKV blocks the first Set until release is closed.
type gatedKV struct {
	*store.MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedKV) Set(key, value string) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.MemoryStore.Set(key, value)
}

func TestOverlappingRecordsPersistLatestList(t *testing.T) {
	kv := &gatedKV{
		MemoryStore: store.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	h := New(kv, nil)

	doneA := make(chan struct{})
	go func() {
		_ = h.Record("A")
		close(doneA)
	}()
	<-kv.entered

	doneB := make(chan struct{})
	go func() {
		_ = h.Record("B")
		close(doneB)
	}()

	select {
	case <-doneB:
		t.Fatalf("second record finished while the first write was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(kv.release)
	<-doneA
	<-doneB

	reloaded := New(kv, nil)
	reloaded.Load()
	if got, want := reloaded.Entries(), h.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("persisted history %v differs from memory %v", got, want)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("unexpected history %v", got)
	}
}

func TestRecordDeduplicatesToFront(t *testing.T) {
	h := New(store.NewMemoryStore(), nil)
	h.Load()

	_ = h.Record("London")
	_ = h.Record("Paris")
	_ = h.Record("London")

	want := []string{"London", "Paris"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRecordSameCityTwice(t *testing.T) {
	h := New(store.NewMemoryStore(), nil)
	_ = h.Record("London")
	_ = h.Record("London")

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"London"}) {
		t.Fatalf("expected single entry, got %v", got)
	}
}

func TestRecordIsCaseSensitive(t *testing.T) {
	h := New(store.NewMemoryStore(), nil)
	_ = h.Record("london")
	_ = h.Record("London")

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"London", "london"}) {
		t.Fatalf("expected both spellings, got %v", got)
	}
}

func TestRecordTruncatesToFive(t *testing.T) {
	h := New(store.NewMemoryStore(), nil)
	for _, c := range []string{"A", "B", "C", "D", "E", "F"} {
		if err := h.Record(c); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	want := []string{"F", "E", "D", "C", "B"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRecordPersistsAndReloads(t *testing.T) {
	kv := store.NewMemoryStore()
	h := New(kv, nil)
	_ = h.Record("Oslo")
	_ = h.Record("Rome")

	raw, err := kv.Get(Key)
	if err != nil {
		t.Fatalf("expected persisted value: %v", err)
	}
	if raw != `["Rome","Oslo"]` {
		t.Fatalf("unexpected persisted value %s", raw)
	}

	reloaded := New(kv, nil)
	reloaded.Load()
	if got := reloaded.Entries(); !reflect.DeepEqual(got, []string{"Rome", "Oslo"}) {
		t.Fatalf("unexpected reloaded entries %v", got)
	}
}

func TestLoadEmptyStore(t *testing.T) {
	h := New(store.NewMemoryStore(), nil)
	h.Load()

	if got := h.Entries(); len(got) != 0 {
		t.Fatalf("expected empty history, got %v", got)
	}
}

func TestLoadMalformedValue(t *testing.T) {
	for _, raw := range []string{"not json", `{"a":1}`, `[1,2]`, ``} {
		kv := store.NewMemoryStore()
		_ = kv.Set(Key, raw)

		h := New(kv, nil)
		h.Load()
		if got := h.Entries(); len(got) != 0 {
			t.Fatalf("%q: expected empty history, got %v", raw, got)
		}
	}
}

func TestLoadNormalizesStoredList(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(Key, `["A","B","A","C","D","E","F"]`)

	h := New(kv, nil)
	h.Load()
	want := []string{"A", "B", "C", "D", "E"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadStoreError(t *testing.T) {
	h := New(failingKV{MemoryStore: store.NewMemoryStore(), getErr: errors.New("disk gone")}, nil)
	h.Load()
	if got := h.Entries(); len(got) != 0 {
		t.Fatalf("expected empty history, got %v", got)
	}
}

func TestRecordPersistFailureKeepsMemory(t *testing.T) {
	h := New(failingKV{MemoryStore: store.NewMemoryStore(), setErr: errors.New("read-only")}, nil)

	if err := h.Record("Berlin"); err == nil {
		t.Fatalf("expected persist error")
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"Berlin"}) {
		t.Fatalf("expected in-memory entry, got %v", got)
	}
}

func TestAt(t *testing.T) {
	h := New(store.NewMemoryStore(), nil)
	_ = h.Record("A")
	_ = h.Record("B")

	if c, ok := h.At(1); !ok || c != "A" {
		t.Fatalf("expected A at 1, got %q %v", c, ok)
	}
	if _, ok := h.At(2); ok {
		t.Fatalf("expected out of range")
	}
	if _, ok := h.At(-1); ok {
		t.Fatalf("expected out of range")
	}
}
