package analytics

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proveit-app/proveit/app/store"
)

// BiasResolver supplies a bias rating for a known source name. Implemented
// by the source registry; optional.
type BiasResolver interface {
	Rating(source string) (BiasRating, bool)
}

// Staleness threshold for the report-sending feature.
const reportStaleAfter = 30 * 24 * time.Hour

// Tracker owns the read-event ledger, the preferences record, the session
// markers, and the derived statistics. All mutations are serialized by a
// process-local mutex; every mutation rewrites the persisted history blob
// whole and synchronously recomputes and re-caches the stats. Concurrent
// instances sharing one store can still clobber each other's writes; that
// is an accepted limitation.
type Tracker struct {
	mu       sync.Mutex
	store    store.Store
	codec    store.Codec
	resolver BiasResolver
	now      func() time.Time

	events []ReadEvent
	prefs  Preferences
	stats  DerivedStats
}

// NewTracker loads persisted state (reverting to defaults when records are
// absent or unreadable), records the login, and eagerly recomputes stats.
func NewTracker(s store.Store, c store.Codec, resolver BiasResolver) (*Tracker, error) {
	t := &Tracker{
		store:    s,
		codec:    c,
		resolver: resolver,
		now:      time.Now,
	}

	prefs, err := store.GetRecord[Preferences](s, c, KeyPreferences)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		t.prefs = DefaultPreferences()
		if err := store.SetRecord(s, c, KeyPreferences, t.prefs); err != nil {
			return nil, err
		}
	} else {
		t.prefs = prefs.merge(PreferencesUpdate{})
	}

	events, err := store.GetRecord[[]ReadEvent](s, c, KeyHistory)
	if err != nil {
		return nil, err
	}
	if events != nil {
		t.events = *events
	}

	if err := t.touchLogin(); err != nil {
		return nil, err
	}

	// The persisted stats cache exists for fast initial paint elsewhere;
	// it is recomputed from the ledger here regardless
	if err := t.recompute(); err != nil {
		return nil, err
	}

	slog.Info("Tracker initialized", "events", len(t.events), "retention_days", t.prefs.RetentionDays)

	return t, nil
}

// Track appends a read event to the ledger. When tracking is disabled it
// silently skips: no event, no persistence write, no error.
func (t *Tracker) Track(req TrackRequest) (*ReadEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.prefs.TrackingEnabled {
		slog.Debug("Tracking disabled, skipping event", "source", req.Source)
		return nil, nil
	}

	event := t.buildEvent(req)

	// Newest-first ordering is an invariant of the ledger
	t.events = append([]ReadEvent{event}, t.events...)

	if err := t.persistHistory(); err != nil {
		return nil, err
	}
	if err := t.recompute(); err != nil {
		return nil, err
	}

	return &event, nil
}

func (t *Tracker) buildEvent(req TrackRequest) ReadEvent {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Unknown"
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "Unknown"
	}

	var bias BiasRating
	if req.Bias == "" && t.resolver != nil {
		if resolved, ok := t.resolver.Rating(source); ok {
			bias = resolved
		} else {
			bias = BiasCenter
		}
	} else {
		bias = ParseBiasRating(req.Bias)
	}

	timestamp := t.now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	return ReadEvent{
		ID:        newEventID(t.now()),
		Title:     title,
		Source:    source,
		URL:       req.URL,
		Bias:      bias,
		Weight:    bias.Weight(),
		Timestamp: timestamp,
	}
}

// newEventID combines the creation instant with a random suffix so imports
// can merge idempotently on ID.
func newEventID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// Clear deletes history by window. "all" wipes the ledger and the cached
// stats record outright. A bounded window removes the events newer than
// now minus the window and keeps the older ones, so "24 hours" clears the
// most recent day of history.
func (t *Tracker) Clear(window string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if window == ClearWindowAll {
		t.events = nil
		if err := t.store.Delete(KeyHistory); err != nil {
			return err
		}
		if err := t.store.Delete(KeyStats); err != nil {
			return err
		}
		t.stats = emptyStats()
		slog.Info("History cleared", "window", window)
		return nil
	}

	d, ok := clearWindows[window]
	if !ok {
		return fmt.Errorf("unknown clear window %q", window)
	}

	cutoff := t.now().Add(-d)
	kept := make([]ReadEvent, 0, len(t.events))
	for _, e := range t.events {
		if !e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := len(t.events) - len(kept)
	t.events = kept

	if err := t.persistHistory(); err != nil {
		return err
	}
	if err := t.recompute(); err != nil {
		return err
	}

	slog.Info("History cleared", "window", window, "removed", removed, "kept", len(kept))
	return nil
}

// ImportEvents merges externally supplied events into the ledger, skipping
// IDs already present, and re-sorts the merged list newest-first. Importing
// the same payload twice adds nothing.
func (t *Tracker) ImportEvents(items []ReadEvent) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing := make(map[string]bool, len(t.events))
	for _, e := range t.events {
		existing[e.ID] = true
	}

	added := 0
	for _, item := range items {
		if item.ID == "" || existing[item.ID] {
			continue
		}
		existing[item.ID] = true

		if strings.TrimSpace(item.Title) == "" {
			item.Title = "Unknown"
		}
		if strings.TrimSpace(item.Source) == "" {
			item.Source = "Unknown"
		}
		item.Bias = ParseBiasRating(string(item.Bias))

		t.events = append(t.events, item)
		added++
	}

	if added > 0 {
		sort.SliceStable(t.events, func(i, j int) bool {
			return t.events[i].Timestamp.After(t.events[j].Timestamp)
		})

		if err := t.persistHistory(); err != nil {
			return 0, err
		}
		if err := t.recompute(); err != nil {
			return 0, err
		}
	}

	return added, nil
}

// Events returns a copy of the ledger, newest first.
func (t *Tracker) Events() []ReadEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := make([]ReadEvent, len(t.events))
	copy(events, t.events)
	return events
}

// Stats returns the current derived statistics.
func (t *Tracker) Stats() DerivedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Preferences returns the current preferences record.
func (t *Tracker) Preferences() Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prefs
}

// UpdatePreferences shallow-merges the patch, persists the whole record,
// and recomputes stats since the retention window may have changed.
func (t *Tracker) UpdatePreferences(u PreferencesUpdate) (Preferences, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prefs = t.prefs.merge(u)

	if err := store.SetRecord(t.store, t.codec, KeyPreferences, t.prefs); err != nil {
		return Preferences{}, err
	}
	if err := t.recompute(); err != nil {
		return Preferences{}, err
	}

	return t.prefs, nil
}

// LastLogin returns the recorded last-login instant, if any.
func (t *Tracker) LastLogin() *time.Time {
	return t.readMarker(KeyLastLogin)
}

// LastReportSent returns the instant the last report was sent, if any.
func (t *Tracker) LastReportSent() *time.Time {
	return t.readMarker(KeyLastReport)
}

// MarkReportSent records that a report was sent now, resetting staleness.
func (t *Tracker) MarkReportSent() error {
	return store.SetRecord(t.store, t.codec, KeyLastReport, t.now().UTC().Format(time.RFC3339))
}

// IsStale reports whether more than 30 days have passed since the last
// report was sent. Never having sent one counts as stale.
func (t *Tracker) IsStale() bool {
	last := t.LastReportSent()
	if last == nil {
		return true
	}
	return t.now().Sub(*last) > reportStaleAfter
}

func (t *Tracker) touchLogin() error {
	return store.SetRecord(t.store, t.codec, KeyLastLogin, t.now().UTC().Format(time.RFC3339))
}

func (t *Tracker) readMarker(key string) *time.Time {
	raw, err := store.GetRecord[string](t.store, t.codec, key)
	if err != nil || raw == nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func (t *Tracker) persistHistory() error {
	return store.SetRecord(t.store, t.codec, KeyHistory, t.events)
}

// recompute refreshes the derived stats and rewrites the stats cache. The
// cache write is redundant for this process but kept for any external
// reader of the stats record.
func (t *Tracker) recompute() error {
	t.stats = Compute(t.events, t.prefs.RetentionDays, t.now())
	return store.SetRecord(t.store, t.codec, KeyStats, t.stats)
}
