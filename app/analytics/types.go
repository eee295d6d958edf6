package analytics

import (
	"time"
)

// Record keys in the persistent store. Each holds one JSON document after
// the codec is reversed.
const (
	KeyHistory     = "proveit_history"
	KeyStats       = "proveit_stats"
	KeyPreferences = "proveit_preferences"
	KeyLastReport  = "proveit_last_report"
	KeyLastLogin   = "proveit_last_login"
)

// BiasRating is the editorial-lean label attached to a source, one of seven
// ordered buckets from far-left to far-right.
type BiasRating string

const (
	BiasFarLeft   BiasRating = "far-left"
	BiasLeft      BiasRating = "left"
	BiasLeanLeft  BiasRating = "lean-left"
	BiasCenter    BiasRating = "center"
	BiasLeanRight BiasRating = "lean-right"
	BiasRight     BiasRating = "right"
	BiasFarRight  BiasRating = "far-right"
)

var biasWeights = map[BiasRating]int{
	BiasFarLeft:   -3,
	BiasLeft:      -2,
	BiasLeanLeft:  -1,
	BiasCenter:    0,
	BiasLeanRight: 1,
	BiasRight:     2,
	BiasFarRight:  3,
}

// ParseBiasRating maps a raw label to a known rating. Unrecognized values
// fall back to center.
func ParseBiasRating(s string) BiasRating {
	rating := BiasRating(s)
	if _, ok := biasWeights[rating]; ok {
		return rating
	}
	return BiasCenter
}

// Weight returns the signed integer weight for the rating.
func (b BiasRating) Weight() int {
	return biasWeights[b]
}

// ReadEvent is one tracked article view. Weight is resolved from the bias
// rating at creation time and never recomputed afterwards, even if the
// weighting table changes.
type ReadEvent struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Source    string     `json:"source"`
	URL       string     `json:"url"`
	Bias      BiasRating `json:"biasRating"`
	Weight    int        `json:"weight"`
	Timestamp time.Time  `json:"timestamp"`
}

// TrackRequest carries the caller-supplied fields for a new read event.
type TrackRequest struct {
	Title     string     `json:"title"`
	Source    string     `json:"source"`
	URL       string     `json:"url"`
	Bias      string     `json:"biasRating"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Preferences is the singleton configuration record, persisted whole.
type Preferences struct {
	Theme           string `json:"theme"`
	TrackingEnabled bool   `json:"trackingEnabled"`
	RetentionDays   int    `json:"retentionDays"`
	FontSize        string `json:"fontSize"`
}

// MaxRetentionDays bounds the statistics window.
const MaxRetentionDays = 30

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:           "light",
		TrackingEnabled: true,
		RetentionDays:   MaxRetentionDays,
		FontSize:        "medium",
	}
}

// PreferencesUpdate is a shallow-merge patch; nil fields are left unchanged.
type PreferencesUpdate struct {
	Theme           *string `json:"theme,omitempty"`
	TrackingEnabled *bool   `json:"trackingEnabled,omitempty"`
	RetentionDays   *int    `json:"retentionDays,omitempty"`
	FontSize        *string `json:"fontSize,omitempty"`
}

func (p Preferences) merge(u PreferencesUpdate) Preferences {
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.TrackingEnabled != nil {
		p.TrackingEnabled = *u.TrackingEnabled
	}
	if u.RetentionDays != nil {
		p.RetentionDays = *u.RetentionDays
	}
	if u.FontSize != nil {
		p.FontSize = *u.FontSize
	}
	if p.RetentionDays < 1 {
		p.RetentionDays = 1
	}
	if p.RetentionDays > MaxRetentionDays {
		p.RetentionDays = MaxRetentionDays
	}
	return p
}

// SourceCount is one entry of the top-sources list.
type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DerivedStats is the aggregate view over the retention window. It is
// recomputed after every ledger change and also persisted as a cache for
// fast initial paint; the cache is never authoritative.
type DerivedStats struct {
	LeanScore        float64            `json:"leanScore"`
	TotalReads       int                `json:"totalReads"`
	BiasDistribution map[BiasRating]int `json:"biasDistribution"`
	SourceDiversity  int                `json:"sourceDiversity"`
	TopSources       []SourceCount      `json:"topSources"`
	WeeklyTrend      []float64          `json:"weeklyTrend"`
}

// Clear windows accepted by Ledger.Clear. Bounded windows remove the events
// newer than now minus the window; "all" wipes the ledger and stats cache.
const ClearWindowAll = "all"

var clearWindows = map[string]time.Duration{
	"12 hours": 12 * time.Hour,
	"24 hours": 24 * time.Hour,
	"7 days":   7 * 24 * time.Hour,
	"30 days":  30 * 24 * time.Hour,
}

// ClearWindows lists the accepted bounded window labels plus "all".
func ClearWindows() []string {
	return []string{"12 hours", "24 hours", "7 days", "30 days", ClearWindowAll}
}
