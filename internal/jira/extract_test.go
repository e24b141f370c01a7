package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestExtractWorklogs(t *testing.T) {
	payload := &SearchResponse{
		Issues: []Issue{
			{
				ID:  "10001",
				Key: "PROJ-1",
				Fields: IssueFields{
					Worklog: &WorklogContainer{
						Worklogs: []Worklog{
							{
								ID:               "501",
								Author:           Author{DisplayName: "Jane Doe", EmailAddress: "jane.doe@corp.example"},
								TimeSpentSeconds: int64p(3600),
								Started:          "2024-01-05T10:00:00.000+0100",
							},
							{
								ID:               "502",
								Author:           Author{DisplayName: "Jane Doe", EmailAddress: "jane.doe@corp.example"},
								TimeSpentSeconds: int64p(1800),
								Started:          "2024-01-06T10:00:00.000+0100",
							},
						},
					},
					Timetracking: &Timetracking{
						OriginalEstimateSeconds:  int64p(7200),
						RemainingEstimateSeconds: int64p(1800),
						TimeSpentSeconds:         int64p(5400),
					},
				},
			},
		},
	}

	records := ExtractWorklogs(payload)
	require.Len(t, records, 2)

	assert.Equal(t, "PROJ-1", records[0].IssueKey)
	assert.Equal(t, "501", records[0].WorklogID)
	assert.Nil(t, records[0].OriginalEstimateSeconds, "only the last record gets estimate fields")
	assert.Equal(t, int64(3600), *records[0].TimeSpentSeconds)

	require.NotNil(t, records[1].OriginalEstimateSeconds)
	assert.Equal(t, int64(7200), *records[1].OriginalEstimateSeconds)
	assert.Equal(t, int64(1800), *records[1].RemainingEstimateSeconds)
	assert.Equal(t, int64(5400), *records[1].TimeSpentSeconds,
		"issue-level total overwrites the last worklog's seconds")
}

func TestExtractWorklogsMissingFields(t *testing.T) {
	payload := &SearchResponse{
		Issues: []Issue{
			{ID: "10002", Key: "PROJ-2"},
			{
				ID:  "10003",
				Key: "PROJ-3",
				Fields: IssueFields{
					Worklog: &WorklogContainer{
						Worklogs: []Worklog{{ID: "601"}},
					},
				},
			},
		},
	}

	records := ExtractWorklogs(payload)
	require.Len(t, records, 1, "issue without worklogs yields no records")
	assert.Equal(t, "PROJ-3", records[0].IssueKey)
	assert.Nil(t, records[0].TimeSpentSeconds)
	assert.Empty(t, records[0].UserName)
}

func TestExtractWorklogsTimetrackingWithoutWorklogs(t *testing.T) {
	payload := &SearchResponse{
		Issues: []Issue{
			{
				ID:  "10004",
				Key: "PROJ-4",
				Fields: IssueFields{
					Worklog: &WorklogContainer{
						Worklogs: []Worklog{{ID: "701", TimeSpentSeconds: int64p(600)}},
					},
				},
			},
			{
				ID:  "10005",
				Key: "PROJ-5",
				Fields: IssueFields{
					Timetracking: &Timetracking{TimeSpentSeconds: int64p(9999)},
				},
			},
		},
	}

	records := ExtractWorklogs(payload)
	require.Len(t, records, 1)
	assert.Equal(t, int64(600), *records[0].TimeSpentSeconds,
		"a later issue's timetracking must not leak onto the previous issue")
	assert.Nil(t, records[0].OriginalEstimateSeconds)
}

func TestExtractWorklogsNilPayload(t *testing.T) {
	assert.Empty(t, ExtractWorklogs(nil))
}

func TestExtractWorklogsDeterministic(t *testing.T) {
	payload := &SearchResponse{
		Issues: []Issue{
			{
				ID:  "1",
				Key: "A-1",
				Fields: IssueFields{
					Worklog: &WorklogContainer{Worklogs: []Worklog{
						{ID: "1", TimeSpentSeconds: int64p(60)},
						{ID: "2", TimeSpentSeconds: int64p(120)},
					}},
				},
			},
		},
	}

	first := ExtractWorklogs(payload)
	second := ExtractWorklogs(payload)
	assert.Equal(t, first, second)
}
