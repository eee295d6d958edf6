package analytics

import (
	"testing"
	"time"
)

func eventAt(source string, bias BiasRating, ts time.Time) ReadEvent {
	return ReadEvent{
		ID:        ts.Format(time.RFC3339Nano) + "-" + source,
		Title:     "Article from " + source,
		Source:    source,
		Bias:      bias,
		Weight:    bias.Weight(),
		Timestamp: ts,
	}
}

func TestCompute_EmptyLedger(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	stats := Compute(nil, 30, now)

	if stats.LeanScore != 0 {
		t.Errorf("Expected lean score 0, got %v", stats.LeanScore)
	}
	if stats.TotalReads != 0 {
		t.Errorf("Expected 0 total reads, got %d", stats.TotalReads)
	}
	if len(stats.BiasDistribution) != 0 {
		t.Errorf("Expected empty distribution, got %v", stats.BiasDistribution)
	}
	if stats.SourceDiversity != 0 {
		t.Errorf("Expected 0 diversity, got %d", stats.SourceDiversity)
	}
	if len(stats.TopSources) != 0 {
		t.Errorf("Expected no top sources, got %v", stats.TopSources)
	}
	if len(stats.WeeklyTrend) != 5 {
		t.Fatalf("Expected 5 trend buckets, got %d", len(stats.WeeklyTrend))
	}
	for i, v := range stats.WeeklyTrend {
		if v != 0 {
			t.Errorf("Expected trend bucket %d to be 0, got %v", i, v)
		}
	}
}

func TestCompute_BalancedTriple(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	events := []ReadEvent{
		eventAt("The Nation", BiasLeft, now.Add(-1*time.Hour)),
		eventAt("Associated Press", BiasCenter, now.Add(-2*time.Hour)),
		eventAt("National Review", BiasRight, now.Add(-3*time.Hour)),
	}

	stats := Compute(events, 30, now)

	if stats.LeanScore != 0 {
		t.Errorf("Expected lean score 0 for balanced reads, got %v", stats.LeanScore)
	}
	if stats.TotalReads != 3 {
		t.Errorf("Expected 3 total reads, got %d", stats.TotalReads)
	}
	expected := map[BiasRating]int{BiasLeft: 1, BiasCenter: 1, BiasRight: 1}
	for rating, count := range expected {
		if stats.BiasDistribution[rating] != count {
			t.Errorf("Expected distribution[%s]=%d, got %d", rating, count, stats.BiasDistribution[rating])
		}
	}
	if len(stats.BiasDistribution) != 3 {
		t.Errorf("Expected 3 distribution keys, got %d", len(stats.BiasDistribution))
	}
}

func TestCompute_RetentionBoundaryExcluded(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-7 * 24 * time.Hour)

	events := []ReadEvent{
		eventAt("Inside", BiasRight, cutoff.Add(time.Second)),
		eventAt("Boundary", BiasLeft, cutoff),
		eventAt("Outside", BiasLeft, cutoff.Add(-time.Second)),
	}

	stats := Compute(events, 7, now)

	if stats.TotalReads != 1 {
		t.Fatalf("Expected exactly 1 event in window, got %d", stats.TotalReads)
	}
	if stats.BiasDistribution[BiasLeft] != 0 {
		t.Error("Boundary and older events must be excluded from the window")
	}
	if stats.BiasDistribution[BiasRight] != 1 {
		t.Error("Event strictly inside the window must be counted")
	}
}

func TestCompute_LeanScoreScaledAndClamped(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// All far-right: average weight 3, scaled to 9, inside the bound
	var events []ReadEvent
	for i := 0; i < 10; i++ {
		events = append(events, eventAt("Breitbart", BiasFarRight, now.Add(-time.Duration(i+1)*time.Hour)))
	}

	stats := Compute(events, 30, now)
	if stats.LeanScore != 9 {
		t.Errorf("Expected lean score 9 for all far-right, got %v", stats.LeanScore)
	}

	// Mixed set: 2x right (2), 1x lean-left (-1) => avg 1, scaled 3
	mixed := []ReadEvent{
		eventAt("A", BiasRight, now.Add(-time.Hour)),
		eventAt("B", BiasRight, now.Add(-2*time.Hour)),
		eventAt("C", BiasLeanLeft, now.Add(-3*time.Hour)),
	}
	stats = Compute(mixed, 30, now)
	if stats.LeanScore != 3 {
		t.Errorf("Expected lean score 3, got %v", stats.LeanScore)
	}
	if stats.LeanScore < -10 || stats.LeanScore > 10 {
		t.Errorf("Lean score out of bounds: %v", stats.LeanScore)
	}
}

func TestCompute_LeanScoreRounding(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// 1x left (-2), 2x center (0): avg -2/3, scaled -2 => -2.0 exactly;
	// use 1x far-left (-3) + 2x center: avg -1, scaled -3; instead build a
	// non-terminating average: 2 events weight sum 1 => avg 0.5, scaled 1.5
	events := []ReadEvent{
		eventAt("A", BiasLeanRight, now.Add(-time.Hour)),
		eventAt("B", BiasCenter, now.Add(-2*time.Hour)),
		eventAt("C", BiasCenter, now.Add(-3*time.Hour)),
	}

	stats := Compute(events, 30, now)
	if stats.LeanScore != 1.0 {
		t.Errorf("Expected lean score 1.0, got %v", stats.LeanScore)
	}

	// sum 1 over 3 events: avg 1/3, scaled 1.0; sum 2 over 3: avg 2/3,
	// scaled 2.0; sum 1 over 7 events: 3/7 = 0.428... => 0.4
	var seven []ReadEvent
	seven = append(seven, eventAt("X", BiasLeanRight, now.Add(-time.Hour)))
	for i := 0; i < 6; i++ {
		seven = append(seven, eventAt("Y", BiasCenter, now.Add(-time.Duration(i+2)*time.Hour)))
	}
	stats = Compute(seven, 30, now)
	if stats.LeanScore != 0.4 {
		t.Errorf("Expected lean score 0.4, got %v", stats.LeanScore)
	}
}

func TestCompute_SourceDiversity(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// Every event a distinct source: diversity 100
	distinct := []ReadEvent{
		eventAt("A", BiasCenter, now.Add(-time.Hour)),
		eventAt("B", BiasCenter, now.Add(-2*time.Hour)),
		eventAt("C", BiasCenter, now.Add(-3*time.Hour)),
	}
	stats := Compute(distinct, 30, now)
	if stats.SourceDiversity != 100 {
		t.Errorf("Expected diversity 100 for all-distinct sources, got %d", stats.SourceDiversity)
	}

	// One source repeated four times: 1/4 => 25
	same := []ReadEvent{
		eventAt("A", BiasCenter, now.Add(-time.Hour)),
		eventAt("A", BiasCenter, now.Add(-2*time.Hour)),
		eventAt("A", BiasCenter, now.Add(-3*time.Hour)),
		eventAt("A", BiasCenter, now.Add(-4*time.Hour)),
	}
	stats = Compute(same, 30, now)
	if stats.SourceDiversity != 25 {
		t.Errorf("Expected diversity 25, got %d", stats.SourceDiversity)
	}

	// 2 distinct over 3 events: 66.67 => 67
	two := []ReadEvent{
		eventAt("A", BiasCenter, now.Add(-time.Hour)),
		eventAt("A", BiasCenter, now.Add(-2*time.Hour)),
		eventAt("B", BiasCenter, now.Add(-3*time.Hour)),
	}
	stats = Compute(two, 30, now)
	if stats.SourceDiversity != 67 {
		t.Errorf("Expected diversity 67, got %d", stats.SourceDiversity)
	}

	if stats.SourceDiversity < 0 || stats.SourceDiversity > 100 {
		t.Errorf("Diversity out of bounds: %d", stats.SourceDiversity)
	}
}

func TestCompute_TopSources(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	var events []ReadEvent
	counts := map[string]int{"A": 5, "B": 4, "C": 3, "D": 2, "E": 2, "F": 1}
	hour := 0
	for source, n := range counts {
		for i := 0; i < n; i++ {
			hour++
			events = append(events, eventAt(source, BiasCenter, now.Add(-time.Duration(hour)*time.Minute)))
		}
	}

	stats := Compute(events, 30, now)

	if len(stats.TopSources) != 5 {
		t.Fatalf("Expected top 5 sources, got %d", len(stats.TopSources))
	}
	if stats.TopSources[0].Name != "A" || stats.TopSources[0].Count != 5 {
		t.Errorf("Expected A(5) first, got %+v", stats.TopSources[0])
	}
	if stats.TopSources[1].Name != "B" || stats.TopSources[1].Count != 4 {
		t.Errorf("Expected B(4) second, got %+v", stats.TopSources[1])
	}
	for _, sc := range stats.TopSources {
		if sc.Name == "F" {
			t.Error("Sixth source should not appear in top 5")
		}
	}
}

func TestCompute_WeeklyTrend(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	events := []ReadEvent{
		// Most recent week [now-1w, now): two rights => avg 2
		eventAt("A", BiasRight, now.Add(-2*24*time.Hour)),
		eventAt("B", BiasRight, now.Add(-3*24*time.Hour)),
		// Two weeks back [now-2w, now-1w): one far-left => avg -3
		eventAt("C", BiasFarLeft, now.Add(-10*24*time.Hour)),
		// Four weeks back [now-4w, now-3w): left and center => avg -1
		eventAt("D", BiasLeft, now.Add(-22*24*time.Hour)),
		eventAt("E", BiasCenter, now.Add(-23*24*time.Hour)),
	}

	stats := Compute(events, 30, now)

	expected := []float64{0, -1, 0, -3, 2}
	if len(stats.WeeklyTrend) != len(expected) {
		t.Fatalf("Expected %d buckets, got %d", len(expected), len(stats.WeeklyTrend))
	}
	for i, want := range expected {
		if stats.WeeklyTrend[i] != want {
			t.Errorf("Bucket %d: expected %v, got %v (trend %v)", i, want, stats.WeeklyTrend[i], stats.WeeklyTrend)
		}
	}
}

func TestParseBiasRating(t *testing.T) {
	cases := map[string]BiasRating{
		"far-left":   BiasFarLeft,
		"lean-right": BiasLeanRight,
		"center":     BiasCenter,
		"":           BiasCenter,
		"extreme":    BiasCenter,
		"LEFT":       BiasCenter, // labels are case-sensitive
	}

	for input, want := range cases {
		if got := ParseBiasRating(input); got != want {
			t.Errorf("ParseBiasRating(%q): expected %s, got %s", input, want, got)
		}
	}
}

func TestBiasWeights(t *testing.T) {
	expected := map[BiasRating]int{
		BiasFarLeft:   -3,
		BiasLeft:      -2,
		BiasLeanLeft:  -1,
		BiasCenter:    0,
		BiasLeanRight: 1,
		BiasRight:     2,
		BiasFarRight:  3,
	}

	for rating, weight := range expected {
		if rating.Weight() != weight {
			t.Errorf("Weight(%s): expected %d, got %d", rating, weight, rating.Weight())
		}
	}
}
