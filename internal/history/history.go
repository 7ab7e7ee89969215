// Package history keeps the list of recently searched city names and
// persists it to a key-value store.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-widget/internal/store"
)

const (
	// Key is the store key the list is persisted under.
	Key = "searchHistory"
	// MaxEntries caps the list length.
	MaxEntries = 5
)

// History is an ordered, deduplicated, most-recent-first list of city names.
type History struct {
	// writeMu is held from the in-memory update through the store write so
	// the persisted list is always the latest in-memory one.
	writeMu sync.Mutex
	mu      sync.RWMutex
	kv      store.KV
	logger  *zap.SugaredLogger
	entries []string
}

// New creates an empty History backed by kv. Call Load once to read the
// persisted list.
func New(kv store.KV, logger *zap.SugaredLogger) *History {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &History{
		kv:     kv,
		logger: logger,
	}
}

// Load reads the persisted list. A missing key or a value that does not parse
// as a JSON string array leaves the history empty; neither is an error for
// the caller.
func (h *History) Load() {
	raw, err := h.kv.Get(Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warnw("search history unreadable; starting empty", "error", err)
		}
		h.set(nil)
		return
	}

	var saved []string
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		h.logger.Warnw("search history unparsable; starting empty", "error", err)
		h.set(nil)
		return
	}

	h.set(normalize(saved))
}

// Record moves city to the front, dropping any case-sensitive duplicate and
// anything past MaxEntries, then persists the whole list. The in-memory list
// is updated even when persisting fails.
func (h *History) Record(city string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.Lock()
	next := make([]string, 0, MaxEntries)
	next = append(next, city)
	for _, c := range h.entries {
		if c != city {
			next = append(next, c)
		}
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	h.entries = next
	snapshot := append([]string(nil), next...)
	h.mu.Unlock()

	b, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode search history: %w", err)
	}
	if err := h.kv.Set(Key, string(b)); err != nil {
		h.logger.Errorw("failed to persist search history", "error", err)
		return fmt.Errorf("persist search history: %w", err)
	}
	return nil
}

// Entries returns a copy of the list, most recent first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string{}, h.entries...)
}

// At returns the entry at index i.
func (h *History) At(i int) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}

func (h *History) set(entries []string) {
	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
}

// normalize drops duplicates (keeping the first) and truncates a list read
// back from storage, which may have been written by something else.
func normalize(in []string) []string {
	out := make([]string, 0, MaxEntries)
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
