package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/proveit-app/proveit/app/analytics"
)

type reportData struct {
	GeneratedAt  string
	LeanScore    float64
	LeanLabel    string
	LeanPercent  int
	TotalReads   int
	Diversity    int
	Retention    int
	Distribution []distributionRow
	TopSources   []analytics.SourceCount
	History      []historyRow
	AutoPrint    bool
}

type distributionRow struct {
	Label   string
	Count   int
	Percent int
}

type historyRow struct {
	Title  string
	Source string
	Bias   string
	Read   string
}

// RenderHTML renders the current state into a self-contained document:
// inline styles only, renderable with scripts disabled (the print button is
// the single non-essential inline script). autoPrint adds an onload print
// call for the print flow. Pure render, no mutation.
func (p *Porter) RenderHTML(autoPrint bool) (string, error) {
	stats := p.tracker.Stats()
	prefs := p.tracker.Preferences()

	data := reportData{
		GeneratedAt: p.now().UTC().Format("January 2, 2006 15:04 MST"),
		LeanScore:   stats.LeanScore,
		LeanLabel:   leanLabel(stats.LeanScore),
		LeanPercent: leanPercent(stats.LeanScore),
		TotalReads:  stats.TotalReads,
		Diversity:   stats.SourceDiversity,
		Retention:   prefs.RetentionDays,
		TopSources:  stats.TopSources,
		AutoPrint:   autoPrint,
	}

	maxCount := 0
	for _, count := range stats.BiasDistribution {
		if count > maxCount {
			maxCount = count
		}
	}
	for _, rating := range []analytics.BiasRating{
		analytics.BiasFarLeft, analytics.BiasLeft, analytics.BiasLeanLeft,
		analytics.BiasCenter,
		analytics.BiasLeanRight, analytics.BiasRight, analytics.BiasFarRight,
	} {
		count, ok := stats.BiasDistribution[rating]
		if !ok {
			continue
		}
		percent := 0
		if maxCount > 0 {
			percent = count * 100 / maxCount
		}
		data.Distribution = append(data.Distribution, distributionRow{
			Label:   string(rating),
			Count:   count,
			Percent: percent,
		})
	}

	events := p.tracker.Events()
	if len(events) > ReportHistoryRows {
		events = events[:ReportHistoryRows]
	}
	for _, e := range events {
		data.History = append(data.History, historyRow{
			Title:  e.Title,
			Source: e.Source,
			Bias:   string(e.Bias),
			Read:   e.Timestamp.UTC().Format("Jan 2, 2006 15:04"),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// leanPercent maps a lean score on the [-10, +10] scale to a gauge
// position in [0, 100].
func leanPercent(score float64) int {
	offset := (score + 10) / 20
	return int(offset * 100)
}

func leanLabel(score float64) string {
	switch {
	case score <= -6:
		return "Strong left lean"
	case score <= -2:
		return "Left lean"
	case score < 2:
		return "Balanced"
	case score < 6:
		return "Right lean"
	default:
		return "Strong right lean"
	}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ProveIt Reading Report</title>
<style>
  body { font-family: Georgia, 'Times New Roman', serif; color: #1f2430; margin: 0; background: #f5f3ee; }
  .page { max-width: 760px; margin: 0 auto; padding: 32px 24px; }
  header { border-bottom: 3px solid #1f2430; padding-bottom: 12px; margin-bottom: 24px; }
  header h1 { margin: 0; font-size: 28px; letter-spacing: 1px; }
  header p { margin: 4px 0 0; color: #6b6f7b; font-size: 13px; }
  section { background: #fff; border: 1px solid #e0ddd4; border-radius: 6px; padding: 20px; margin-bottom: 18px; }
  h2 { margin: 0 0 12px; font-size: 16px; text-transform: uppercase; letter-spacing: 2px; color: #3a3f4e; }
  .gauge { position: relative; height: 18px; border-radius: 9px; background: linear-gradient(90deg, #2b5ea7, #8a93a6 50%, #b23a3a); }
  .gauge-marker { position: absolute; top: -5px; width: 4px; height: 28px; background: #1f2430; border-radius: 2px; }
  .lean-value { font-size: 34px; font-weight: bold; margin: 10px 0 2px; }
  .lean-label { color: #6b6f7b; margin-bottom: 10px; }
  .metrics { display: flex; gap: 24px; }
  .metric { flex: 1; text-align: center; }
  .metric .num { font-size: 26px; font-weight: bold; }
  .metric .cap { font-size: 12px; color: #6b6f7b; text-transform: uppercase; letter-spacing: 1px; }
  .bar-row { display: flex; align-items: center; margin: 6px 0; font-size: 13px; }
  .bar-row .lbl { width: 90px; color: #3a3f4e; }
  .bar-row .bar { flex: 1; background: #eceae3; border-radius: 4px; height: 14px; }
  .bar-row .fill { height: 14px; border-radius: 4px; background: #4a5578; }
  .bar-row .cnt { width: 36px; text-align: right; color: #6b6f7b; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th { text-align: left; border-bottom: 2px solid #e0ddd4; padding: 6px 8px; color: #3a3f4e; }
  td { border-bottom: 1px solid #eceae3; padding: 6px 8px; }
  .print-btn { display: inline-block; border: 1px solid #1f2430; background: #fff; padding: 8px 18px; font-size: 13px; cursor: pointer; border-radius: 4px; }
  footer { text-align: center; color: #9a9da8; font-size: 12px; margin-top: 12px; }
  @media print { .print-btn { display: none; } body { background: #fff; } }
</style>
</head>
<body{{if .AutoPrint}} onload="window.print()"{{end}}>
<div class="page">
  <header>
    <h1>ProveIt Reading Report</h1>
    <p>Generated {{.GeneratedAt}} &middot; last {{.Retention}} days</p>
  </header>

  <section>
    <h2>Lean Score</h2>
    <div class="lean-value">{{printf "%+.1f" .LeanScore}}</div>
    <div class="lean-label">{{.LeanLabel}} (scale -10 to +10)</div>
    <div class="gauge"><div class="gauge-marker" style="left: {{.LeanPercent}}%"></div></div>
  </section>

  <section>
    <h2>Summary</h2>
    <div class="metrics">
      <div class="metric"><div class="num">{{.TotalReads}}</div><div class="cap">Articles read</div></div>
      <div class="metric"><div class="num">{{.Diversity}}%</div><div class="cap">Source diversity</div></div>
      <div class="metric"><div class="num">{{len .TopSources}}</div><div class="cap">Leading sources</div></div>
    </div>
  </section>

  <section>
    <h2>Bias Distribution</h2>
    {{if .Distribution}}{{range .Distribution}}
    <div class="bar-row">
      <div class="lbl">{{.Label}}</div>
      <div class="bar"><div class="fill" style="width: {{.Percent}}%"></div></div>
      <div class="cnt">{{.Count}}</div>
    </div>
    {{end}}{{else}}<p>No reads recorded in the current window.</p>{{end}}
  </section>

  <section>
    <h2>Top Sources</h2>
    {{if .TopSources}}
    <table>
      <tr><th>Source</th><th>Articles</th></tr>
      {{range .TopSources}}<tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>
      {{end}}
    </table>
    {{else}}<p>No sources tracked yet.</p>{{end}}
  </section>

  <section>
    <h2>Recent History</h2>
    {{if .History}}
    <table>
      <tr><th>Title</th><th>Source</th><th>Bias</th><th>Read</th></tr>
      {{range .History}}<tr><td>{{.Title}}</td><td>{{.Source}}</td><td>{{.Bias}}</td><td>{{.Read}}</td></tr>
      {{end}}
    </table>
    {{else}}<p>No reading history.</p>{{end}}
  </section>

  <footer>
    <button class="print-btn" onclick="window.print()">Print this report</button>
    <p>ProveIt &mdash; personal news-bias tracker</p>
  </footer>
</div>
</body>
</html>`))
