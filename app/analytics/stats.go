package analytics

import (
	"math"
	"sort"
	"time"
)

const trendWeeks = 5

// Compute derives aggregate statistics from the events that fall inside the
// retention window ending at now. It is a pure function: it never mutates
// its input and touches no storage.
func Compute(events []ReadEvent, retentionDays int, now time.Time) DerivedStats {
	if retentionDays < 1 {
		retentionDays = 1
	}
	if retentionDays > MaxRetentionDays {
		retentionDays = MaxRetentionDays
	}

	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)

	windowed := make([]ReadEvent, 0, len(events))
	for _, e := range events {
		// Strictly newer than the cutoff; a boundary event is excluded
		if e.Timestamp.After(cutoff) {
			windowed = append(windowed, e)
		}
	}

	if len(windowed) == 0 {
		return emptyStats()
	}

	weightSum := 0
	distribution := make(map[BiasRating]int)
	sourceCounts := make(map[string]int)
	for _, e := range windowed {
		weightSum += e.Weight
		distribution[e.Bias]++
		sourceCounts[e.Source]++
	}

	// The x3 factor stretches the raw [-3,3] average onto more of the
	// [-10,10] display range
	lean := float64(weightSum) / float64(len(windowed)) * 3
	lean = round1(clamp(lean, -10, 10))

	diversity := int(math.Round(float64(len(sourceCounts)) / float64(len(windowed)) * 100))

	return DerivedStats{
		LeanScore:        lean,
		TotalReads:       len(windowed),
		BiasDistribution: distribution,
		SourceDiversity:  diversity,
		TopSources:       topSources(sourceCounts, 5),
		WeeklyTrend:      weeklyTrend(windowed, now),
	}
}

func emptyStats() DerivedStats {
	return DerivedStats{
		LeanScore:        0,
		TotalReads:       0,
		BiasDistribution: map[BiasRating]int{},
		SourceDiversity:  0,
		TopSources:       []SourceCount{},
		WeeklyTrend:      make([]float64, trendWeeks),
	}
}

func topSources(counts map[string]int, limit int) []SourceCount {
	sources := make([]SourceCount, 0, len(counts))
	for name, count := range counts {
		sources = append(sources, SourceCount{Name: name, Count: count})
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Count != sources[j].Count {
			return sources[i].Count > sources[j].Count
		}
		return sources[i].Name < sources[j].Name
	})

	if len(sources) > limit {
		sources = sources[:limit]
	}
	return sources
}

// weeklyTrend buckets events into five trailing weeks, oldest first. Each
// bucket covers [now-(i+1)w, now-iw) and reports the average weight of its
// events; an empty bucket reports 0.
func weeklyTrend(events []ReadEvent, now time.Time) []float64 {
	trend := make([]float64, trendWeeks)

	for bucket := 0; bucket < trendWeeks; bucket++ {
		i := trendWeeks - 1 - bucket
		start := now.Add(-time.Duration(i+1) * 7 * 24 * time.Hour)
		end := now.Add(-time.Duration(i) * 7 * 24 * time.Hour)

		sum, count := 0, 0
		for _, e := range events {
			if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
				sum += e.Weight
				count++
			}
		}

		if count > 0 {
			trend[bucket] = round1(float64(sum) / float64(count))
		}
	}

	return trend
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
