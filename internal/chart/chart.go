// Package chart renders aggregated monthly tables as terminal output and
// as an Excel workbook with native charts. It consumes Aggregator rows
// only; nothing here reaches back into raw payloads.
package chart

import (
	"math"
	"sort"

	"github.com/lmarchal/worklens/internal/aggregate"
)

// Chart is one renderable view over an aggregate result.
type Chart struct {
	Title string
	Unit  string
	Kind  string // "line" or "col"
	Rows  []aggregate.Row
}

// Scale returns a copy of rows with every value multiplied by factor, e.g.
// 1/3600 to render seconds as hours.
func Scale(rows []aggregate.Row, factor float64) []aggregate.Row {
	out := make([]aggregate.Row, len(rows))
	for i, r := range rows {
		r.Value = r.Value * factor
		out[i] = r
	}
	return out
}

// Grid is an aggregate result pivoted into a bucket-by-subject matrix.
// When several rows share a (bucket, subject) cell, as running totals do,
// the last row in order wins, which leaves the end-of-month value.
type Grid struct {
	Buckets  []string
	Subjects []string
	cells    map[string]map[string]float64
	present  map[string]map[string]bool
}

func Pivot(rows []aggregate.Row) Grid {
	g := Grid{
		cells:   make(map[string]map[string]float64),
		present: make(map[string]map[string]bool),
	}
	seenBucket := make(map[string]bool)
	seenSubject := make(map[string]bool)

	for _, r := range rows {
		if !seenBucket[r.Bucket] {
			seenBucket[r.Bucket] = true
			g.Buckets = append(g.Buckets, r.Bucket)
		}
		if !seenSubject[r.Subject] {
			seenSubject[r.Subject] = true
			g.Subjects = append(g.Subjects, r.Subject)
		}
		if g.cells[r.Bucket] == nil {
			g.cells[r.Bucket] = make(map[string]float64)
			g.present[r.Bucket] = make(map[string]bool)
		}
		g.cells[r.Bucket][r.Subject] = r.Value
		g.present[r.Bucket][r.Subject] = true
	}

	sort.Strings(g.Buckets)
	sort.Strings(g.Subjects)
	return g
}

// Value returns the cell for (bucket, subject) and whether it is present.
func (g Grid) Value(bucket, subject string) (float64, bool) {
	return g.cells[bucket][subject], g.present[bucket][subject]
}

// Series returns one value per bucket for a subject, NaN for months
// without data. Graphs render those as gaps: only real points are plotted.
func (g Grid) Series(subject string) []float64 {
	series := make([]float64, len(g.Buckets))
	for i, bucket := range g.Buckets {
		if v, ok := g.Value(bucket, subject); ok {
			series[i] = v
		} else {
			series[i] = math.NaN()
		}
	}
	return series
}

// SeriesFilled carries the previous value forward through months without
// data. Only running totals use it: a missing month there means no new
// effort, so the total genuinely holds.
func (g Grid) SeriesFilled(subject string) []float64 {
	series := make([]float64, len(g.Buckets))
	last := math.NaN()
	for i, bucket := range g.Buckets {
		if v, ok := g.Value(bucket, subject); ok {
			last = v
		}
		series[i] = last
	}
	return series
}
