package jira

import "github.com/lmarchal/worklens/internal/record"

// ExtractWorklogs flattens a search payload into one record per worklog
// entry. Extraction never fails: missing fields stay at their zero or nil
// value and the aggregation side excludes them.
func ExtractWorklogs(payload *SearchResponse) []record.WorklogRecord {
	var records []record.WorklogRecord
	if payload == nil {
		return records
	}

	for _, issue := range payload.Issues {
		first := len(records)

		if issue.Fields.Worklog != nil {
			for _, wl := range issue.Fields.Worklog.Worklogs {
				records = append(records, record.WorklogRecord{
					UserName:         wl.Author.DisplayName,
					UserEmail:        wl.Author.EmailAddress,
					IssueKey:         issue.Key,
					IssueID:          issue.ID,
					WorklogID:        wl.ID,
					TimeSpentSeconds: wl.TimeSpentSeconds,
					WorklogStart:     wl.Started,
				})
			}
		}

		if issue.Fields.Timetracking != nil && len(records) > first {
			augmentLastWorklog(&records[len(records)-1], issue.Fields.Timetracking)
		}
	}

	return records
}

// augmentLastWorklog copies the issue-level timetracking totals onto the
// last worklog record of an issue. Only that one record receives them, and
// its per-worklog seconds are overwritten by the issue-level total. The
// upstream feed behaves this way and the monthly charts are calibrated
// against it, so it is kept as-is.
func augmentLastWorklog(r *record.WorklogRecord, tt *Timetracking) {
	r.OriginalEstimateSeconds = tt.OriginalEstimateSeconds
	r.RemainingEstimateSeconds = tt.RemainingEstimateSeconds
	r.TimeSpentSeconds = tt.TimeSpentSeconds
}
