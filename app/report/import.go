package report

import (
	"encoding/json"

	"github.com/proveit-app/proveit/app/analytics"
)

// importPayload mirrors Payload with pointer fields so missing keys can be
// told apart from empty ones during validation.
type importPayload struct {
	Version     *string                      `json:"version"`
	Preferences *analytics.PreferencesUpdate `json:"preferences"`
	History     *[]analytics.ReadEvent       `json:"history"`
}

// Import validates and merges an export payload. The payload must carry
// both a version and a history array; anything else is a structured
// failure and leaves the ledger untouched. Preferences, when present, go
// through the normal update path. Re-importing the same payload is a no-op.
func (p *Porter) Import(data []byte) ImportResult {
	var payload importPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ImportResult{Success: false, Error: "invalid JSON payload"}
	}

	if payload.Version == nil {
		return ImportResult{Success: false, Error: "missing required field: version"}
	}
	if payload.History == nil {
		return ImportResult{Success: false, Error: "missing required field: history"}
	}

	if payload.Preferences != nil {
		if _, err := p.tracker.UpdatePreferences(*payload.Preferences); err != nil {
			return ImportResult{Success: false, Error: "failed to apply preferences: " + err.Error()}
		}
	}

	imported, err := p.tracker.ImportEvents(*payload.History)
	if err != nil {
		return ImportResult{Success: false, Error: "failed to merge history: " + err.Error()}
	}

	stats := p.tracker.Stats()
	return ImportResult{
		Success:  true,
		Imported: imported,
		Skipped:  len(*payload.History) - imported,
		Summary: &Summary{
			TotalReads:      stats.TotalReads,
			LeanScore:       stats.LeanScore,
			SourceDiversity: stats.SourceDiversity,
		},
	}
}
