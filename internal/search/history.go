// Package search keeps the shopper's recent search terms: deduplicated,
// newest first, capped, and mirrored to the "search_history" storage key.
package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/KyoTung/camera-store-client/internal/storage"
)

// MaxEntries is the number of recent terms kept.
const MaxEntries = 10

// History is the search-history store.
type History struct {
	mu      sync.Mutex
	entries []string
	storage storage.Store
	logger  *slog.Logger
}

// New creates a history hydrated from storage; absent or malformed data
// starts an empty history.
func New(ctx context.Context, st storage.Store, logger *slog.Logger) *History {
	h := &History{entries: []string{}, storage: st, logger: logger}

	raw, err := st.Get(ctx, storage.KeySearchHistory)
	if err != nil {
		return h
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.WarnContext(ctx, "discarding unparsable search history",
			slog.String("error", err.Error()),
		)
		return h
	}
	if entries != nil {
		h.entries = entries
	}
	return h
}

// Add records a search term. The term is trimmed; empty terms are ignored.
// A repeated term moves to the front rather than duplicating, and the list
// is capped at MaxEntries.
func (h *History) Add(ctx context.Context, term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]string, 0, len(h.entries)+1)
	next = append(next, term)
	for _, e := range h.entries {
		if e != term {
			next = append(next, e)
		}
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	h.entries = next

	h.persist(ctx)
}

// Remove deletes one term from the history. Unknown terms are a no-op.
func (h *History) Remove(ctx context.Context, term string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.entries[:0]
	for _, e := range h.entries {
		if e != term {
			next = append(next, e)
		}
	}
	h.entries = next

	h.persist(ctx)
}

// Clear empties the history.
func (h *History) Clear(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = []string{}
	h.persist(ctx)
}

// Entries returns the terms, newest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// persist mirrors the history to storage. Callers hold the mutex.
func (h *History) persist(ctx context.Context) {
	data, err := json.Marshal(h.entries)
	if err != nil {
		h.logger.ErrorContext(ctx, "marshal search history", slog.String("error", err.Error()))
		return
	}
	if err := h.storage.Set(ctx, storage.KeySearchHistory, string(data)); err != nil {
		h.logger.ErrorContext(ctx, "persist search history", slog.String("error", err.Error()))
	}
}
