package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"testadmin/internal/metrics"
	"testadmin/internal/models"

	"go.uber.org/zap"
)

// DirectoryClient resolves candidates through the auth service's user listing.
type DirectoryClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewDirectoryClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DirectoryClient {
	return &DirectoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type userListResponse struct {
	Message string                 `json:"message"`
	Data    []models.CandidateInfo `json:"data"`
}

// FetchCandidates returns every user keyed by id. Any failure yields an empty map.
func (c *DirectoryClient) FetchCandidates(ctx context.Context, bearerToken string) map[string]models.CandidateInfo {
	out := map[string]models.CandidateInfo{}

	users, err := c.fetch(ctx, bearerToken)
	if err != nil {
		c.logger.Warn("Candidate directory unavailable", zap.Error(err))
		metrics.UpstreamRequests.WithLabelValues("directory", "error").Inc()
		return out
	}
	metrics.UpstreamRequests.WithLabelValues("directory", "ok").Inc()

	for _, u := range users {
		if u.ID == "" {
			continue
		}
		out[u.ID] = u
	}
	return out
}

func (c *DirectoryClient) fetch(ctx context.Context, bearerToken string) ([]models.CandidateInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned %d", resp.StatusCode)
	}

	var body userListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	return body.Data, nil
}
