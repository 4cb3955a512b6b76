package timeline

import (
	"context"
	"sync"
	"time"

	"tidepool/internal/metrics"
	"tidepool/internal/model"
)

// PageSource fetches one page of statuses older than maxID (all newer than
// any cursor when maxID is empty). Both the home and account timelines fit
// this shape.
type PageSource func(ctx context.Context, maxID string, limit int) ([]model.Status, error)

// FetchState is the three-state result of the most recent page load.
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchPending
	FetchSuccess
	FetchFailure
)

// Feed reconciles cursor-paginated history with live events into one
// consistently ordered, deduplicated view. Historical pages are appended at
// the back, live updates become single-element pages prepended at the front,
// and deletes become tombstones consulted only at render time. Live events
// and page fetches are structurally the same thing (a page of statuses), so
// one data structure and one rendering rule cover both.
type Feed struct {
	source PageSource
	limit  int

	mu         sync.Mutex
	pages      [][]model.Status
	tombstones map[string]struct{}
	cursor     string // cursorKey of the last element of the last fetched page
	exhausted  bool
	loading    bool
	lastState  FetchState
	lastErr    error
}

func NewFeed(source PageSource, limit int) *Feed {
	return &Feed{
		source:     source,
		limit:      limit,
		tombstones: make(map[string]struct{}),
	}
}

// LoadMore fetches the next historical page and appends it. At most one
// request is outstanding at a time: a call that overlaps an in-flight load
// is a no-op, as is any call after the source returned an empty page
// (pagination exhausted — a terminal state, not an error). A load whose
// context is cancelled reports the error without touching the pages.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.exhausted || f.loading {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	f.lastState = FetchPending
	maxID := f.cursor
	f.mu.Unlock()

	start := time.Now()
	page, err := f.source(ctx, maxID, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.lastState = FetchFailure
		f.lastErr = err
		return err
	}
	f.lastState = FetchSuccess
	f.lastErr = nil
	metrics.ObservePageLoad(start)
	if len(page) == 0 {
		f.exhausted = true
		return nil
	}
	f.cursor = page[len(page)-1].CursorKey()
	f.pages = append(f.pages, page)
	return nil
}

// OnEvent folds one live event into the feed. An update is prepended as its
// own single-element page, which preserves recency ordering without touching
// existing pages; a delete only marks a tombstone.
func (f *Feed) OnEvent(e model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch ev := e.(type) {
	case model.UpdateEvent:
		f.pages = append([][]model.Status{{ev.Status}}, f.pages...)
	case model.DeleteEvent:
		f.tombstones[ev.TargetID] = struct{}{}
	}
}

// Render concatenates the pages in order and filters tombstoned ids. Pure
// read of current state; the result is recomputed on every call.
func (f *Feed) Render() []model.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.pages {
		n += len(p)
	}
	out := make([]model.Status, 0, n)
	for _, p := range f.pages {
		for _, s := range p {
			if _, dead := f.tombstones[s.ID]; !dead {
				out = append(out, s)
			}
		}
	}
	return out
}

// Exhausted reports whether pagination reached the end of history.
func (f *Feed) Exhausted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exhausted
}

// LastFetch returns the state of the most recent load and, for a failure,
// its error.
func (f *Feed) LastFetch() (FetchState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastState, f.lastErr
}
