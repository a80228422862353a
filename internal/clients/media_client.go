package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MAX_MEDIA_BYTES caps downloaded images and fonts.
const MAX_MEDIA_BYTES = 20 << 20

// MediaFetcher downloads a binary resource and reports its content type.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// MediaClient is the plain HTTP MediaFetcher used for article photos, fonts
// and overlay images.
type MediaClient struct {
	Client *http.Client
}

func NewMediaClient() *MediaClient {
	return &MediaClient{Client: &http.Client{Timeout: HTTP_TIMEOUT}}
}

func (m *MediaClient) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("[MediaClient] invalid request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	res, err := m.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("[MediaClient] fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, MAX_ERROR_BODY))
		return nil, "", fmt.Errorf("[MediaClient] fetch %s: status %d: %w", url, res.StatusCode, ErrUpstreamStatus)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, MAX_MEDIA_BYTES+1))
	if err != nil {
		return nil, "", fmt.Errorf("[MediaClient] read %s: %w", url, err)
	}
	if len(data) > MAX_MEDIA_BYTES {
		return nil, "", fmt.Errorf("[MediaClient] %s exceeds %d bytes", url, MAX_MEDIA_BYTES)
	}

	contentType := res.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
