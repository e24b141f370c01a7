// Package worklens wires configuration, clients, store and presenters into
// the fetch and plot runs driven by the CLI.
package worklens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmarchal/worklens/internal/aggregate"
	"github.com/lmarchal/worklens/internal/chart"
	"github.com/lmarchal/worklens/internal/config"
	"github.com/lmarchal/worklens/internal/jira"
	"github.com/lmarchal/worklens/internal/record"
	"github.com/lmarchal/worklens/internal/sonarqube"
	"github.com/lmarchal/worklens/internal/store"
	"github.com/lmarchal/worklens/internal/timewindow"
)

// Query-kind names used in persisted payload artifact paths.
const (
	KindMeasuresComponent = "measures_component"
	KindMetricsHistory    = "metrics_history"
	KindIssuesDetailed    = "issues_detailed"
)

type App struct {
	Config *config.Config
	Roster *config.Roster
	Logger *slog.Logger
	Store  *store.Store
}

func New(cfg *config.Config, roster *config.Roster, verbose bool) *App {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return &App{
		Config: cfg,
		Roster: roster,
		Logger: logger,
		Store:  store.New(cfg.DataDir, logger),
	}
}

// FetchJira runs one query-extract-persist triple per (window, tester)
// pair, strictly in order. A failed fetch is logged and that pair is
// skipped; the run is successful when the iteration completes.
func (a *App) FetchJira(ctx context.Context, monthsBack int) error {
	windows, err := timewindow.Generate(monthsBack)
	if err != nil {
		return err
	}

	a.Logger.Info("fetching worklogs",
		"months_back", monthsBack,
		"windows", len(windows),
		"testers", len(a.Roster.Testers),
	)

	client := jira.NewClient(a.Config.Jira.SearchURL, a.Config.Jira.PAT, a.Config.CertPath, a.Logger)

	for _, w := range windows {
		for _, tester := range a.Roster.Testers {
			email, err := tester.Email(a.Roster.Domain, a.Roster.ExtDomain)
			if err != nil {
				a.Logger.Error("skipping tester", "tester", tester.Name, "error", err)
				continue
			}

			payload, err := client.SearchWorklogs(ctx, email, w)
			if err != nil {
				a.Logger.Error("failed to fetch worklogs",
					"tester", tester.Name, "window_end", w.EndDate(), "error", err)
				continue
			}

			records := jira.ExtractWorklogs(payload)
			a.Logger.Debug("worklogs extracted",
				"tester", tester.Name, "window_end", w.EndDate(), "count", len(records))
			if len(records) == 0 {
				continue
			}

			if err := a.Store.SaveRecords(w.EndDate(), tester.Trigram, records); err != nil {
				a.Logger.Error("failed to persist records",
					"tester", tester.Name, "window_end", w.EndDate(), "error", err)
			}
		}
	}

	return nil
}

// FetchSonar runs the three query kinds per project against SonarQube and
// persists the raw payloads. The trailing period approximates a month as
// 30 days, matching the from/createdAfter parameters the APIs take.
func (a *App) FetchSonar(ctx context.Context, monthsBack int) error {
	from := time.Now().AddDate(0, 0, -30*monthsBack).Format("2006-01-02")

	a.Logger.Info("fetching project metrics",
		"months_back", monthsBack,
		"from", from,
		"projects", len(a.Roster.Projects),
	)

	client := sonarqube.NewClient(a.Config.Sonar.BaseURL, a.Config.Sonar.Token, a.Config.CertPath, a.Logger)

	for _, project := range a.Roster.Projects {
		if raw, err := client.ComponentMeasures(ctx, project); err != nil {
			a.Logger.Error("failed to fetch measures", "project", project, "error", err)
		} else if err := a.Store.SavePayload(project, KindMeasuresComponent, raw); err != nil {
			a.Logger.Error("failed to persist measures", "project", project, "error", err)
		}

		if payload, err := client.MetricsHistory(ctx, project, from); err != nil {
			a.Logger.Error("failed to fetch metric history", "project", project, "error", err)
		} else if err := a.Store.SavePayload(project, KindMetricsHistory, payload); err != nil {
			a.Logger.Error("failed to persist metric history", "project", project, "error", err)
		}

		if raw, err := client.IssuesSearch(ctx, project, from); err != nil {
			a.Logger.Error("failed to fetch issues", "project", project, "error", err)
		} else if err := a.Store.SavePayload(project, KindIssuesDetailed, raw); err != nil {
			a.Logger.Error("failed to persist issues", "project", project, "error", err)
		}
	}

	return nil
}

// PlotJira recomputes the monthly worklog aggregates from the persisted
// artifacts and renders them.
func (a *App) PlotJira(out io.Writer) error {
	records, err := a.Store.LoadRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Warn("no worklog artifacts found, nothing to plot", "data_dir", a.Config.DataDir)
		return nil
	}

	perTester := aggregate.Options{
		GroupField: "user_name",
		TimeField:  "worklog_start",
		ValueField: "time_spent_seconds",
	}

	meanOpts := perTester
	meanOpts.Statistic = aggregate.Mean
	sumOpts := perTester
	sumOpts.Statistic = aggregate.Sum
	overallOpts := aggregate.Options{
		Statistic:  aggregate.Mean,
		TimeField:  "worklog_start",
		ValueField: "time_spent_seconds",
	}

	const secondsPerHour = 3600.0
	charts := []chart.Chart{
		{
			Title: "Average time spent per issue by tester",
			Unit:  "hours",
			Kind:  "line",
			Rows:  chart.Scale(aggregate.Aggregate(records, meanOpts), 1/secondsPerHour),
		},
		{
			Title: "Total time spent per tester by month",
			Unit:  "hours",
			Kind:  "col",
			Rows:  chart.Scale(aggregate.Aggregate(records, sumOpts), 1/secondsPerHour),
		},
		{
			Title: "Issues handled per tester by month",
			Kind:  "line",
			Rows: aggregate.Aggregate(records, aggregate.Options{
				Statistic:     aggregate.DistinctCount,
				GroupField:    "user_name",
				TimeField:     "worklog_start",
				DistinctField: "issue_key",
			}),
		},
		{
			Title: "Average time spent each month, all testers",
			Unit:  "hours",
			Kind:  "line",
			Rows:  chart.Scale(aggregate.Aggregate(records, overallOpts), 1/secondsPerHour),
		},
	}

	return a.render(out, "jira", charts)
}

// PlotSonar re-extracts the persisted raw payloads and renders the metric
// evolution and issue effort aggregates.
func (a *App) PlotSonar(out io.Writer) error {
	var measures []aggregate.Record
	var efforts []aggregate.Record

	for _, project := range a.Roster.Projects {
		raw, err := a.Store.LoadPayload(project, KindMetricsHistory)
		if err != nil {
			return err
		}
		if raw != nil {
			var payload sonarqube.MetricsHistoryPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				a.Logger.Warn("skipping unreadable payload", "project", project, "kind", KindMetricsHistory, "error", err)
			} else {
				measures = append(measures, measureRecords(sonarqube.ExtractMeasures(&payload))...)
			}
		}

		raw, err = a.Store.LoadPayload(project, KindIssuesDetailed)
		if err != nil {
			return err
		}
		if raw != nil {
			var payload sonarqube.IssuesPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				a.Logger.Warn("skipping unreadable payload", "project", project, "kind", KindIssuesDetailed, "error", err)
			} else {
				efforts = append(efforts, effortRecords(sonarqube.ExtractIssueEfforts(project, &payload))...)
			}
		}
	}

	if len(measures) == 0 && len(efforts) == 0 {
		a.Logger.Warn("no project artifacts found, nothing to plot", "data_dir", a.Config.DataDir)
		return nil
	}

	var charts []chart.Chart
	for _, metric := range sonarqube.MetricNames() {
		var perMetric []aggregate.Record
		for _, r := range measures {
			if r["metric"] == metric {
				perMetric = append(perMetric, r)
			}
		}
		charts = append(charts, chart.Chart{
			Title: fmt.Sprintf("Evolution of %s by project", metric),
			Kind:  "line",
			Rows: aggregate.Aggregate(perMetric, aggregate.Options{
				Statistic:  aggregate.Mean,
				GroupField: "project",
				TimeField:  "date",
				ValueField: "value",
			}),
		})
	}

	charts = append(charts,
		chart.Chart{
			Title: "Issue resolution effort per project by month",
			Unit:  "minutes",
			Kind:  "col",
			Rows: aggregate.Aggregate(efforts, aggregate.Options{
				Statistic:  aggregate.Sum,
				GroupField: "project",
				TimeField:  "creation_date",
				ValueField: "effort_minutes",
			}),
		},
		chart.Chart{
			Title: "Cumulative effort over time",
			Unit:  "minutes",
			Kind:  "line",
			Rows: aggregate.Aggregate(efforts, aggregate.Options{
				Statistic:  aggregate.CumulativeSum,
				GroupField: "project",
				TimeField:  "creation_date",
				ValueField: "effort_minutes",
			}),
		},
	)

	return a.render(out, "sonarqube", charts)
}

func (a *App) render(out io.Writer, source string, charts []chart.Chart) error {
	presenter := chart.NewTerminalPresenter(out)
	nonEmpty := 0
	for _, c := range charts {
		presenter.Render(c)
		if len(c.Rows) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		a.Logger.Warn("all aggregates empty after coercion, skipping workbook", "source", source)
		return nil
	}

	if err := os.MkdirAll(a.Config.PlotDir, 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	path, err := chart.NewExcelPresenter(a.Config.PlotDir).Export(source, charts)
	if err != nil {
		return err
	}
	a.Logger.Info("workbook exported", "path", path)
	fmt.Fprintf(out, "Charts saved to %s\n", path)
	return nil
}

func measureRecords(records []record.MeasureRecord) []aggregate.Record {
	out := make([]aggregate.Record, 0, len(records))
	for _, r := range records {
		out = append(out, aggregate.Record{
			"project": r.Project,
			"metric":  r.Metric,
			"date":    r.Date,
			"value":   r.Value,
		})
	}
	return out
}

func effortRecords(records []record.IssueEffortRecord) []aggregate.Record {
	out := make([]aggregate.Record, 0, len(records))
	for _, r := range records {
		out = append(out, aggregate.Record{
			"project":        r.Project,
			"issue_key":      r.IssueKey,
			"effort_minutes": r.EffortMinutes,
			"creation_date":  r.CreationDate,
		})
	}
	return out
}
