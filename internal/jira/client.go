package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/lmarchal/worklens/internal/httpx"
	"github.com/lmarchal/worklens/internal/timewindow"
)

// MaxSearchResults caps a search at a single page. There is no follow-up
// pagination: a window that matches more worklogs than this is silently
// truncated, and the client only warns when the page comes back full.
const MaxSearchResults = 1000

type Client struct {
	searchURL  string
	pat        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(searchURL, pat, certPath string, logger *slog.Logger) *Client {
	return &Client{
		searchURL:  searchURL,
		pat:        pat,
		httpClient: httpx.NewClient(certPath),
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     logger,
	}
}

type SearchResponse struct {
	Issues []Issue `json:"issues"`
}

type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type IssueFields struct {
	Worklog      *WorklogContainer `json:"worklog"`
	Timetracking *Timetracking     `json:"timetracking"`
}

type WorklogContainer struct {
	Worklogs []Worklog `json:"worklogs"`
}

type Worklog struct {
	ID               string `json:"id"`
	Author           Author `json:"author"`
	TimeSpentSeconds *int64 `json:"timeSpentSeconds"`
	Started          string `json:"started"`
}

type Author struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type Timetracking struct {
	OriginalEstimateSeconds  *int64 `json:"originalEstimateSeconds"`
	RemainingEstimateSeconds *int64 `json:"remainingEstimateSeconds"`
	TimeSpentSeconds         *int64 `json:"timeSpentSeconds"`
}

// SearchWorklogs fetches the issues carrying worklogs by the given assignee
// inside the window, both bounds inclusive.
func (c *Client) SearchWorklogs(ctx context.Context, email string, w timewindow.Window) (*SearchResponse, error) {
	jql := fmt.Sprintf("assignee=%q AND worklogDate >= '%s' AND worklogDate <= '%s'",
		email, w.StartDate(), w.EndDate())

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("fields", "timetracking,worklog")
	params.Set("maxResults", fmt.Sprint(MaxSearchResults))
	reqURL := c.searchURL + "?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.pat)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, httpx.ClassifyTransport(c.searchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpx.ClassifyStatus(c.searchURL, resp.StatusCode)
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Issues) == MaxSearchResults {
		c.logger.Warn("search page full, results may be truncated",
			"assignee", email, "window_end", w.EndDate(), "max_results", MaxSearchResults)
	}

	return &result, nil
}
