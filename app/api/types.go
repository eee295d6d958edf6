package api

import (
	"context"
	"time"

	"github.com/proveit-app/proveit/app/analytics"
	"github.com/proveit-app/proveit/app/headlines"
	"github.com/proveit-app/proveit/app/report"
	"github.com/proveit-app/proveit/app/sources"
	"github.com/proveit-app/proveit/app/verdict"
)

type TrackerInterface interface {
	Track(req analytics.TrackRequest) (*analytics.ReadEvent, error)
	Events() []analytics.ReadEvent
	Stats() analytics.DerivedStats
	Clear(window string) error
	Preferences() analytics.Preferences
	UpdatePreferences(u analytics.PreferencesUpdate) (analytics.Preferences, error)
	LastLogin() *time.Time
	LastReportSent() *time.Time
	MarkReportSent() error
	IsStale() bool
}

var _ TrackerInterface = (*analytics.Tracker)(nil)

type PorterInterface interface {
	Export() report.Payload
	ExportFilename() string
	Import(data []byte) report.ImportResult
	RenderHTML(autoPrint bool) (string, error)
}

var _ PorterInterface = (*report.Porter)(nil)

type HeadlinesInterface interface {
	Fetch(ctx context.Context, category string) []headlines.Article
}

var _ HeadlinesInterface = (*headlines.Service)(nil)

type VerdictInterface interface {
	Enabled() bool
	Check(ctx context.Context, claim string) (*verdict.Verdict, error)
}

var _ VerdictInterface = (*verdict.Client)(nil)

type Handler struct {
	tracker   TrackerInterface
	porter    PorterInterface
	headlines HeadlinesInterface
	verdict   VerdictInterface
	registry  *sources.Registry
}
