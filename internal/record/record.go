package record

// WorklogRecord is one flattened Jira worklog entry. One record is emitted
// per worklog; the estimate fields only appear on the last record of an
// issue that carries a timetracking block.
type WorklogRecord struct {
	UserName                 string `json:"user_name"`
	UserEmail                string `json:"user_email"`
	IssueKey                 string `json:"issue_key"`
	IssueID                  string `json:"issue_id"`
	WorklogID                string `json:"worklog_id"`
	TimeSpentSeconds         *int64 `json:"time_spent_seconds"`
	WorklogStart             string `json:"worklog_start"`
	OriginalEstimateSeconds  *int64 `json:"original_estimate_seconds,omitempty"`
	RemainingEstimateSeconds *int64 `json:"remaining_estimate_seconds,omitempty"`
}

// MeasureRecord is one point of a SonarQube metric history.
type MeasureRecord struct {
	Project string `json:"project"`
	Metric  string `json:"metric"`
	Date    string `json:"date"`
	Value   string `json:"value"`
}

// IssueEffortRecord is one SonarQube issue with a parseable remediation effort.
type IssueEffortRecord struct {
	Project       string `json:"project"`
	IssueKey      string `json:"issue_key"`
	EffortMinutes int    `json:"effort_minutes"`
	CreationDate  string `json:"creation_date"`
}
