package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/matchapp-io/match-service/internal/domain/model"
)

// Client fetches profile summaries from the remote users service. One
// call resolves a whole id set; the service may omit ids it cannot
// resolve, which is a partial result, not an error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetProfiles returns the resolved profiles keyed by user id. An empty
// id set short-circuits to an empty map without a network call.
func (c *Client) GetProfiles(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error) {
	if len(userIDs) == 0 {
		return map[int64]model.Profile{}, nil
	}
	if c.httpClient == nil {
		return nil, fmt.Errorf("users http client is nil")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("users base url is empty")
	}

	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id <= 0 {
			return nil, fmt.Errorf("invalid user id %d in profile lookup", id)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	url := c.baseURL + "/api/v1/users?ids=" + strings.Join(ids, ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build profiles request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call users service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("users service returned status %d", resp.StatusCode)
	}

	var payload []model.Profile
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode profiles response: %w", err)
	}

	profiles := make(map[int64]model.Profile, len(payload))
	for _, profile := range payload {
		if profile.UserID <= 0 {
			continue
		}
		profiles[profile.UserID] = profile
	}

	return profiles, nil
}
