package sonarqube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMeasures(t *testing.T) {
	payload := &MetricsHistoryPayload{
		Project: "alpha",
		MetricsHistory: map[string][]Measure{
			"bugs": {
				{
					Metric: "bugs",
					History: []HistoryEntry{
						{Date: "2024-01-15T00:00:00+0100", Value: "3"},
						{Date: "2024-02-15T00:00:00+0100", Value: "1"},
					},
				},
			},
			"coverage": {
				{
					Metric:  "coverage",
					History: []HistoryEntry{{Date: "2024-01-15T00:00:00+0100", Value: "81.4"}},
				},
			},
		},
	}

	records := ExtractMeasures(payload)
	require.Len(t, records, 3)

	// coverage precedes bugs in the canonical metric order
	assert.Equal(t, "coverage", records[0].Metric)
	assert.Equal(t, "81.4", records[0].Value)
	assert.Equal(t, "bugs", records[1].Metric)
	assert.Equal(t, "alpha", records[1].Project)
	assert.Equal(t, "2024-02-15T00:00:00+0100", records[2].Date)

	assert.Equal(t, records, ExtractMeasures(payload), "extraction is deterministic")
}

func TestExtractMeasuresEmpty(t *testing.T) {
	assert.Empty(t, ExtractMeasures(nil))
	assert.Empty(t, ExtractMeasures(&MetricsHistoryPayload{Project: "alpha"}))
}

func TestExtractIssueEfforts(t *testing.T) {
	payload := &IssuesPayload{
		Issues: []IssueDetail{
			{Key: "AB-1", Effort: "2h 15min", CreationDate: "2024-01-10T12:00:00+0100"},
			{Key: "AB-2", Effort: "", CreationDate: "2024-01-11T12:00:00+0100"},
			{Key: "AB-3", Effort: "30min", CreationDate: ""},
			{Key: "AB-4", Effort: "1h", CreationDate: "2024-02-01T09:30:00+0100"},
		},
	}

	records := ExtractIssueEfforts("alpha", payload)
	require.Len(t, records, 2, "issues missing effort or creation date are skipped")

	assert.Equal(t, "AB-1", records[0].IssueKey)
	assert.Equal(t, 135, records[0].EffortMinutes)
	assert.Equal(t, "alpha", records[0].Project)
	assert.Equal(t, "AB-4", records[1].IssueKey)
	assert.Equal(t, 60, records[1].EffortMinutes)
}
