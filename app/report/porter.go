package report

import (
	"fmt"
	"time"
)

// Porter moves tracked state in and out of the process: JSON exports,
// import merges, and rendered HTML reports. Export and render are pure
// reads over current state; only Import mutates.
type Porter struct {
	tracker TrackerInterface
	now     func() time.Time
}

func NewPorter(tracker TrackerInterface) *Porter {
	return &Porter{
		tracker: tracker,
		now:     time.Now,
	}
}

// Export builds the downloadable payload: preferences, stats, the first
// 1000 history rows newest-first, and a summary.
func (p *Porter) Export() Payload {
	prefs := p.tracker.Preferences()
	stats := p.tracker.Stats()

	history := p.tracker.Events()
	if len(history) > ExportHistoryCap {
		history = history[:ExportHistoryCap]
	}

	return Payload{
		Version:     PayloadVersion,
		ExportDate:  p.now().UTC(),
		Preferences: &prefs,
		Stats:       &stats,
		History:     history,
		Summary: Summary{
			TotalReads:      stats.TotalReads,
			LeanScore:       stats.LeanScore,
			SourceDiversity: stats.SourceDiversity,
		},
	}
}

// ExportFilename stamps the export artifact with the current date.
func (p *Porter) ExportFilename() string {
	return fmt.Sprintf("proveit-export-%s.json", p.now().UTC().Format("2006-01-02"))
}

// ReportFilename stamps the HTML report artifact with the current date.
func (p *Porter) ReportFilename() string {
	return fmt.Sprintf("proveit-report-%s.html", p.now().UTC().Format("2006-01-02"))
}
