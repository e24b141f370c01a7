package sonarqube

import (
	"github.com/lmarchal/worklens/internal/effort"
	"github.com/lmarchal/worklens/internal/record"
)

// ExtractMeasures flattens a metrics-history payload into one record per
// history point, metrics in their canonical order.
func ExtractMeasures(payload *MetricsHistoryPayload) []record.MeasureRecord {
	var records []record.MeasureRecord
	if payload == nil {
		return records
	}

	for _, metric := range MetricNames() {
		measures := payload.MetricsHistory[metric]
		for _, m := range measures {
			for _, entry := range m.History {
				records = append(records, record.MeasureRecord{
					Project: payload.Project,
					Metric:  metric,
					Date:    entry.Date,
					Value:   entry.Value,
				})
			}
		}
	}

	return records
}

// ExtractIssueEfforts flattens an issues-search payload into one record per
// issue that carries both an effort and a creation date. Issues missing
// either are skipped, not errors.
func ExtractIssueEfforts(project string, payload *IssuesPayload) []record.IssueEffortRecord {
	var records []record.IssueEffortRecord
	if payload == nil {
		return records
	}

	for _, issue := range payload.Issues {
		if issue.Effort == "" || issue.CreationDate == "" {
			continue
		}
		records = append(records, record.IssueEffortRecord{
			Project:       project,
			IssueKey:      issue.Key,
			EffortMinutes: effort.ParseMinutes(issue.Effort),
			CreationDate:  issue.CreationDate,
		})
	}

	return records
}
