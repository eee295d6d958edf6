package report

import (
	"time"

	"github.com/proveit-app/proveit/app/analytics"
)

// PayloadVersion identifies the export format.
const PayloadVersion = "1.0"

// ExportHistoryCap bounds the number of history rows embedded in an export.
// Imports must tolerate payloads larger or smaller than this cap.
const ExportHistoryCap = 1000

// ReportHistoryRows is the number of recent reads shown in the HTML report.
const ReportHistoryRows = 20

// TrackerInterface is the slice of the analytics tracker the portability
// layer needs.
type TrackerInterface interface {
	Events() []analytics.ReadEvent
	Stats() analytics.DerivedStats
	Preferences() analytics.Preferences
	UpdatePreferences(analytics.PreferencesUpdate) (analytics.Preferences, error)
	ImportEvents([]analytics.ReadEvent) (int, error)
}

var _ TrackerInterface = (*analytics.Tracker)(nil)

// Summary is the headline numbers embedded in exports and import results.
type Summary struct {
	TotalReads      int     `json:"totalReads"`
	LeanScore       float64 `json:"leanScore"`
	SourceDiversity int     `json:"sourceDiversity"`
}

// Payload is the export file shape. Import accepts the same shape.
type Payload struct {
	Version     string                 `json:"version"`
	ExportDate  time.Time              `json:"exportDate"`
	Preferences *analytics.Preferences `json:"preferences,omitempty"`
	Stats       *analytics.DerivedStats `json:"stats,omitempty"`
	History     []analytics.ReadEvent  `json:"history"`
	Summary     Summary                `json:"summary"`
}

// ImportResult is the structured outcome of an import. Failures are
// reported here, never as panics past the portability boundary.
type ImportResult struct {
	Success  bool    `json:"success"`
	Imported int     `json:"imported,omitempty"`
	Skipped  int     `json:"skipped,omitempty"`
	Summary  *Summary `json:"summary,omitempty"`
	Error    string  `json:"error,omitempty"`
}
