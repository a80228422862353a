package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

// UploadClient pushes a finished graphic to the image host using an unsigned
// upload preset and returns the hosted HTTPS URL.
type UploadClient struct {
	Client *http.Client
	URL    string
	APIKey string
	Preset string
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func NewUploadClient(url, apiKey, preset string) *UploadClient {
	return &UploadClient{
		Client: &http.Client{Timeout: HTTP_TIMEOUT},
		URL:    url,
		APIKey: apiKey,
		Preset: preset,
	}
}

// Upload sends dataURI as the multipart "file" field.
func (u *UploadClient) Upload(ctx context.Context, dataURI string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := [][2]string{
		{"file", dataURI},
		{"api_key", u.APIKey},
		{"upload_preset", u.Preset},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("[UploadClient] failed to build form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("[UploadClient] failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("User-Agent", USER_AGENT)

	res, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[UploadClient] request failed: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("[UploadClient] failed to read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("[UploadClient] status %d: %s: %w",
			res.StatusCode, truncate(string(respBody), MAX_ERROR_BODY), ErrUpstreamStatus)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("[UploadClient] failed to parse JSON response: %w", err)
	}
	if parsed.SecureURL == "" {
		return "", errors.New("[UploadClient] response has no secure_url")
	}

	slog.Info("[UploadClient] Uploaded graphic", slog.String("url", parsed.SecureURL))
	return parsed.SecureURL, nil
}
