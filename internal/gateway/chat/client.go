package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client provisions chat rooms on the remote chat service. Calls are
// bounded by the injected http client's timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type createChatRequest struct {
	User1ID int64 `json:"user1_id"`
	User2ID int64 `json:"user2_id"`
}

type createChatResponse struct {
	ChatID int64 `json:"chat_id"`
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// CreateChat asks the chat service for a room for the pair and returns
// its id. Any transport or non-2xx failure is an error; the caller
// decides whether to absorb it.
func (c *Client) CreateChat(ctx context.Context, user1ID, user2ID int64) (int64, error) {
	if c.httpClient == nil {
		return 0, fmt.Errorf("chat http client is nil")
	}
	if c.baseURL == "" {
		return 0, fmt.Errorf("chat base url is empty")
	}
	if user1ID <= 0 || user2ID <= 0 {
		return 0, fmt.Errorf("invalid chat pair")
	}

	body, err := json.Marshal(createChatRequest{User1ID: user1ID, User2ID: user2ID})
	if err != nil {
		return 0, fmt.Errorf("marshal create chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chats", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call chat service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("chat service returned status %d", resp.StatusCode)
	}

	var payload createChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode create chat response: %w", err)
	}
	if payload.ChatID <= 0 {
		return 0, fmt.Errorf("chat service returned invalid chat id %d", payload.ChatID)
	}

	return payload.ChatID, nil
}
