// Package aggregate groups flat records by subject and calendar month and
// computes summary statistics over them. Records arrive as generic maps
// read back from persisted JSON artifacts; the coercion policy here decides
// which values take part in a computation.
package aggregate

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
)

type Statistic string

const (
	Mean          Statistic = "mean"
	Sum           Statistic = "sum"
	DistinctCount Statistic = "distinct_count"
	CumulativeSum Statistic = "cumulative_sum"
)

// Record is one flat record as decoded from a persisted artifact.
type Record map[string]any

// Options names the fields a computation reads. An empty GroupField groups
// by time bucket alone.
type Options struct {
	Statistic     Statistic
	GroupField    string
	TimeField     string
	ValueField    string
	DistinctField string
}

// Row is one computed statistic for a (subject, month) pair. Rows are
// recomputed wholesale on every run and never mutated.
type Row struct {
	Subject   string
	Bucket    string
	Statistic Statistic
	Value     float64
}

// Aggregate applies the coercion policy, buckets each record into its
// calendar month and computes the requested statistic per group. Records
// whose value or timestamp cannot be coerced are excluded, never zeroed.
// An empty post-coercion input yields an empty result.
func Aggregate(records []Record, opt Options) []Row {
	switch opt.Statistic {
	case CumulativeSum:
		return cumulativeSum(records, opt)
	case DistinctCount:
		return distinctCount(records, opt)
	default:
		return groupedStat(records, opt)
	}
}

type groupKey struct {
	subject string
	bucket  string
}

func groupedStat(records []Record, opt Options) []Row {
	groups := make(map[groupKey][]float64)
	for _, r := range records {
		key, ok := keyOf(r, opt)
		if !ok {
			continue
		}
		value, ok := coerce(r[opt.ValueField])
		if !ok {
			continue
		}
		groups[key] = append(groups[key], value)
	}

	rows := make([]Row, 0, len(groups))
	for key, values := range groups {
		var v float64
		switch opt.Statistic {
		case Mean:
			v = stat.Mean(values, nil)
		case Sum:
			for _, x := range values {
				v += x
			}
		}
		rows = append(rows, Row{Subject: key.subject, Bucket: key.bucket, Statistic: opt.Statistic, Value: v})
	}
	sortRows(rows)
	return rows
}

func distinctCount(records []Record, opt Options) []Row {
	groups := make(map[groupKey]map[string]struct{})
	for _, r := range records {
		key, ok := keyOf(r, opt)
		if !ok {
			continue
		}
		secondary, ok := stringField(r, opt.DistinctField)
		if !ok {
			continue
		}
		if groups[key] == nil {
			groups[key] = make(map[string]struct{})
		}
		groups[key][secondary] = struct{}{}
	}

	rows := make([]Row, 0, len(groups))
	for key, set := range groups {
		rows = append(rows, Row{Subject: key.subject, Bucket: key.bucket, Statistic: DistinctCount, Value: float64(len(set))})
	}
	sortRows(rows)
	return rows
}

// cumulativeSum emits one running-total row per record, per subject, over
// records sorted chronologically. The sort is stable: records sharing a
// timestamp keep their input order.
func cumulativeSum(records []Record, opt Options) []Row {
	type point struct {
		subject string
		at      time.Time
		bucket  string
		value   float64
	}

	var points []point
	for _, r := range records {
		at, ok := parseTime(r[opt.TimeField])
		if !ok {
			continue
		}
		value, ok := coerce(r[opt.ValueField])
		if !ok {
			continue
		}
		subject := ""
		if opt.GroupField != "" {
			subject, ok = stringField(r, opt.GroupField)
			if !ok {
				continue
			}
		}
		points = append(points, point{subject: subject, at: at, bucket: bucketOf(at), value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].subject != points[j].subject {
			return points[i].subject < points[j].subject
		}
		return points[i].at.Before(points[j].at)
	})

	rows := make([]Row, 0, len(points))
	running := make(map[string]float64)
	for _, p := range points {
		running[p.subject] += p.value
		rows = append(rows, Row{Subject: p.subject, Bucket: p.bucket, Statistic: CumulativeSum, Value: running[p.subject]})
	}
	return rows
}

func keyOf(r Record, opt Options) (groupKey, bool) {
	at, ok := parseTime(r[opt.TimeField])
	if !ok {
		return groupKey{}, false
	}
	key := groupKey{bucket: bucketOf(at)}
	if opt.GroupField != "" {
		key.subject, ok = stringField(r, opt.GroupField)
		if !ok {
			return groupKey{}, false
		}
	}
	return key, true
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Bucket != rows[j].Bucket {
			return rows[i].Bucket < rows[j].Bucket
		}
		return rows[i].Subject < rows[j].Subject
	})
}

// coerce converts a raw field to a float. Non-numeric values, NaN and both
// infinities are excluded from computations rather than read as zero.
func coerce(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringField(r Record, field string) (string, bool) {
	s, ok := r[field].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Accepted timestamp layouts: Jira worklog starts, SonarQube dates (both
// with RFC 822 style zone offsets), RFC 3339, and bare dates.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// bucketOf renders the calendar month of a timestamp after normalizing to
// UTC, so bucket assignment is independent of the embedded offset.
func bucketOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
