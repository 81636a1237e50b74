package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts the login form to the gateway. The response body is drained
// and discarded; whether the action worked is decided by probing afterwards.
type Client struct {
	URL    string
	Client *http.Client
}

func NewClient(loginURL string, timeout time.Duration) *Client {
	return &Client{
		URL:    loginURL,
		Client: &http.Client{Timeout: timeout},
	}
}

// Submit sends the form and returns the HTTP status. Only transport
// failures are errors; any status code is accepted.
func (c *Client) Submit(ctx context.Context, data PostData) (int, error) {
	body := data.Form().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build portal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("portal post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
