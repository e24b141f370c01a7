package sonarqube

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/lmarchal/worklens/internal/httpx"
)

// Metrics tracked for every project.
const Metrics = "coverage,bugs,vulnerabilities,code_smells,ncloc,sqale_index"

// MetricNames returns the tracked metrics in canonical order.
func MetricNames() []string {
	return strings.Split(Metrics, ",")
}

// MaxIssueResults is the single-page cap of the issues search. Results
// beyond it are truncated; the client warns when a page comes back full.
const MaxIssueResults = 500

type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(baseURL, token, certPath string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(token+":")),
		httpClient: httpx.NewClient(certPath),
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     logger,
	}
}

// MetricsHistoryPayload is the persisted shape of a metrics-history fetch:
// one history slice per metric, keyed by metric name.
type MetricsHistoryPayload struct {
	Project        string               `json:"project"`
	MetricsHistory map[string][]Measure `json:"metrics_history"`
}

type Measure struct {
	Metric  string         `json:"metric"`
	History []HistoryEntry `json:"history"`
}

type HistoryEntry struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// IssuesPayload is the slice of an issues-search payload the extractor
// cares about; persisted artifacts keep the full raw document.
type IssuesPayload struct {
	Issues []IssueDetail `json:"issues"`
}

type IssueDetail struct {
	Key          string `json:"key"`
	Effort       string `json:"effort"`
	CreationDate string `json:"creationDate"`
}

// ComponentMeasures fetches the current values of all tracked metrics for a
// project. The raw document is persisted untouched.
func (c *Client) ComponentMeasures(ctx context.Context, project string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("component", project)
	params.Set("metricKeys", Metrics)
	return c.get(ctx, "/api/measures/component", params)
}

// MetricsHistory fetches the per-metric history since the given date. A
// metric that fails to fetch is logged and left out; the remaining metrics
// still produce a payload.
func (c *Client) MetricsHistory(ctx context.Context, project, from string) (*MetricsHistoryPayload, error) {
	payload := &MetricsHistoryPayload{
		Project:        project,
		MetricsHistory: make(map[string][]Measure),
	}

	for _, metric := range MetricNames() {
		params := url.Values{}
		params.Set("component", project)
		params.Set("metrics", metric)
		params.Set("from", from)

		raw, err := c.get(ctx, "/api/measures/search_history", params)
		if err != nil {
			c.logger.Error("failed to fetch metric history",
				"project", project, "metric", metric, "error", err)
			continue
		}

		var resp struct {
			Measures []Measure `json:"measures"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			c.logger.Error("failed to decode metric history",
				"project", project, "metric", metric, "error", err)
			continue
		}
		payload.MetricsHistory[metric] = resp.Measures
	}

	return payload, nil
}

// IssuesSearch fetches open issues created after the given date. The raw
// document is persisted untouched and flattened later at plot time.
func (c *Client) IssuesSearch(ctx context.Context, project, createdAfter string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("componentKeys", project)
	params.Set("createdAfter", createdAfter)
	params.Set("statuses", "OPEN,CONFIRMED,REOPENED")
	params.Set("additionalFields", "_all")
	params.Set("ps", fmt.Sprint(MaxIssueResults))

	raw, err := c.get(ctx, "/api/issues/search", params)
	if err != nil {
		return nil, err
	}

	var page IssuesPayload
	if err := json.Unmarshal(raw, &page); err == nil && len(page.Issues) == MaxIssueResults {
		c.logger.Warn("issues page full, results may be truncated",
			"project", project, "max_results", MaxIssueResults)
	}

	return raw, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, httpx.ClassifyTransport(c.baseURL+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpx.ClassifyStatus(c.baseURL+path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return json.RawMessage(body), nil
}
