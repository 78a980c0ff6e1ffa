package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"testadmin/internal/metrics"

	"go.uber.org/zap"
)

// Result is one submission record as the results service reports it.
type Result map[string]any

// ResultsClient proxies read-only queries to the results service. Failures
// degrade to empty answers.
type ResultsClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewResultsClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ResultsClient {
	return &ResultsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *ResultsClient) ResultsForTest(ctx context.Context, testID, bearerToken string) []Result {
	return c.list(ctx, "/results/test/"+url.PathEscape(testID), bearerToken)
}

func (c *ResultsClient) HistoryForCandidate(ctx context.Context, candidateID, bearerToken string) []Result {
	return c.list(ctx, "/results/candidate/"+url.PathEscape(candidateID), bearerToken)
}

// ExportCSV returns the CSV export for a test, or an empty string.
func (c *ResultsClient) ExportCSV(ctx context.Context, testID, bearerToken string) string {
	body, err := c.get(ctx, "/results/export?testId="+url.QueryEscape(testID), bearerToken)
	if err != nil {
		c.fail("export", err)
		return ""
	}
	metrics.UpstreamRequests.WithLabelValues("results", "ok").Inc()
	return string(body)
}

func (c *ResultsClient) list(ctx context.Context, path, bearerToken string) []Result {
	body, err := c.get(ctx, path, bearerToken)
	if err != nil {
		c.fail(path, err)
		return []Result{}
	}

	out := []Result{}
	if err := json.Unmarshal(body, &out); err != nil {
		// the results service may also wrap lists in {"data": [...]}
		var wrapped struct {
			Data []Result `json:"data"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			c.fail(path, err)
			return []Result{}
		}
		out = wrapped.Data
	}
	if out == nil {
		out = []Result{}
	}
	metrics.UpstreamRequests.WithLabelValues("results", "ok").Inc()
	return out
}

func (c *ResultsClient) get(ctx context.Context, path, bearerToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results service returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *ResultsClient) fail(op string, err error) {
	c.logger.Warn("Results service unavailable", zap.String("op", op), zap.Error(err))
	metrics.UpstreamRequests.WithLabelValues("results", "error").Inc()
}
