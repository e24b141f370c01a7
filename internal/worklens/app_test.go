package worklens

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmarchal/worklens/internal/config"
	"github.com/lmarchal/worklens/internal/record"
	"github.com/lmarchal/worklens/internal/store"
)

func newTestApp(t *testing.T, cfg *config.Config, roster *config.Roster) *App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &App{
		Config: cfg,
		Roster: roster,
		Logger: logger,
		Store:  store.New(cfg.DataDir, logger),
	}
}

func testRoster() *config.Roster {
	return &config.Roster{
		Domain:    "@corp.example",
		ExtDomain: "@ext.corp.example",
		Testers: []config.Tester{
			{Name: "Jane Doe", Trigram: "jdo"},
			{Name: "Max Muster", Trigram: "mmu", Ext: true},
		},
		Projects: []string{"alpha"},
	}
}

const searchFixture = `{"issues": [{"id": "1", "key": "PROJ-1", "fields": {"worklog": {"worklogs": [
	{"id": "9", "author": {"displayName": "Jane Doe", "emailAddress": "jane.doe@corp.example"},
	 "timeSpentSeconds": 1200, "started": "2024-01-02T09:00:00.000+0100"}
]}}}]}`

func TestFetchJiraPersistsPerWindowAndTester(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("jql"))
		w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Jira:    config.JiraConfig{PAT: "p", SearchURL: srv.URL},
		DataDir: t.TempDir(),
		PlotDir: t.TempDir(),
	}
	app := newTestApp(t, cfg, testRoster())

	require.NoError(t, app.FetchJira(context.Background(), 1))

	// 2 windows x 2 testers, in window-major order
	require.Len(t, queries, 4)
	assert.Contains(t, queries[0], `assignee="jane.doe@corp.example"`)
	assert.Contains(t, queries[1], `assignee="max.muster@ext.corp.example"`)

	entries, err := os.ReadDir(cfg.DataDir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "one folder per window end date")

	files, err := os.ReadDir(filepath.Join(cfg.DataDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Len(t, files, 2, "one artifact per tester")
}

func TestFetchJiraSkipsFailedPairs(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Jira:    config.JiraConfig{PAT: "p", SearchURL: srv.URL},
		DataDir: t.TempDir(),
	}
	app := newTestApp(t, cfg, testRoster())

	require.NoError(t, app.FetchJira(context.Background(), 0),
		"a failed pair never fails the run")
	assert.Equal(t, 2, calls, "iteration continues past the failure")
}

func TestFetchJiraRejectsNegativeMonths(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	app := newTestApp(t, cfg, testRoster())
	assert.Error(t, app.FetchJira(context.Background(), -1))
}

func TestPlotJiraRendersAndExports(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), PlotDir: t.TempDir()}
	app := newTestApp(t, cfg, testRoster())

	seconds := int64(3600)
	records := []record.WorklogRecord{
		{UserName: "Jane Doe", IssueKey: "PROJ-1", WorklogID: "1", TimeSpentSeconds: &seconds, WorklogStart: "2024-01-05T10:00:00.000+0100"},
		{UserName: "Jane Doe", IssueKey: "PROJ-2", WorklogID: "2", TimeSpentSeconds: &seconds, WorklogStart: "2024-02-05T10:00:00.000+0100"},
	}
	require.NoError(t, app.Store.SaveRecords("2024-02-29", "jdo", records))

	var out bytes.Buffer
	require.NoError(t, app.PlotJira(&out))

	assert.Contains(t, out.String(), "Average time spent per issue by tester")
	assert.Contains(t, out.String(), "2024-01")
	assert.Contains(t, out.String(), "Charts saved to")

	files, err := os.ReadDir(cfg.PlotDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "jira_charts_")
}

func TestPlotJiraNoArtifacts(t *testing.T) {
	cfg := &config.Config{DataDir: filepath.Join(t.TempDir(), "empty"), PlotDir: t.TempDir()}
	app := newTestApp(t, cfg, testRoster())

	var out bytes.Buffer
	require.NoError(t, app.PlotJira(&out))
	assert.Empty(t, out.String(), "nothing rendered when there is no data")
}

func TestPlotSonarFromPersistedPayloads(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), PlotDir: t.TempDir()}
	app := newTestApp(t, cfg, testRoster())

	history := map[string]any{
		"project": "alpha",
		"metrics_history": map[string]any{
			"bugs": []map[string]any{
				{"metric": "bugs", "history": []map[string]string{
					{"date": "2024-01-15T00:00:00+0100", "value": "3"},
					{"date": "2024-02-15T00:00:00+0100", "value": "1"},
				}},
			},
		},
	}
	require.NoError(t, app.Store.SavePayload("alpha", KindMetricsHistory, history))

	issues := map[string]any{
		"issues": []map[string]string{
			{"key": "AB-1", "effort": "2h", "creationDate": "2024-01-10T12:00:00+0100"},
			{"key": "AB-2", "effort": "30min", "creationDate": "2024-02-10T12:00:00+0100"},
		},
	}
	require.NoError(t, app.Store.SavePayload("alpha", KindIssuesDetailed, issues))

	var out bytes.Buffer
	require.NoError(t, app.PlotSonar(&out))

	assert.Contains(t, out.String(), "Evolution of bugs by project")
	assert.Contains(t, out.String(), "Cumulative effort over time")
	// coverage has no data, its chart is skipped with a notice
	assert.Contains(t, out.String(), "skipping")

	files, err := os.ReadDir(cfg.PlotDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "sonarqube_charts_")
}
