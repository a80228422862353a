package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spacesedan/newscard/internal/models"
)

// WebhookClient delivers finished posts to the downstream scheduler.
type WebhookClient struct {
	Client     *http.Client
	URL        string
	AuthHeader string
	AuthToken  string
}

func NewWebhookClient(url, authHeader, authToken string) *WebhookClient {
	return &WebhookClient{
		Client:     &http.Client{Timeout: HTTP_TIMEOUT},
		URL:        url,
		AuthHeader: authHeader,
		AuthToken:  authToken,
	}
}

func (w *WebhookClient) Send(ctx context.Context, post models.WebhookPost) error {
	body, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("[WebhookClient] failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	if w.AuthHeader != "" && w.AuthToken != "" {
		req.Header.Set(w.AuthHeader, w.AuthToken)
	}

	res, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("[WebhookClient] request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, MAX_ERROR_BODY))
		return fmt.Errorf("[WebhookClient] status %d: %s: %w", res.StatusCode, string(b), ErrUpstreamStatus)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
