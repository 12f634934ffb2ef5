package placeholder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Dan9191/etl-pipeline/internal/config"
	"github.com/sirupsen/logrus"
)

// Client handles integration with the JSONPlaceholder demo API
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new demo API client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.APIBase,
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		log: log,
	}
}

// FetchCollection retrieves a JSON collection by resource name and returns
// its elements as raw messages, preserving each row exactly as received.
func (c *Client) FetchCollection(resource string) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, resource)

	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("API response for %s: %s", resource, string(body))

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON list: %w", err)
	}

	return rows, nil
}
