package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/newscard/internal/models"
)

const (
	NEWSDATA_PAGE_SIZE  = 10
	newsDataTimeLayout  = "2006-01-02 15:04:05"
	newsDataPaidOnlyTag = "ONLY AVAILABLE IN PAID PLANS"
	newsDataStatusOK    = "success"
)

// NewsDataClient fetches the latest articles for one upstream category.
type NewsDataClient struct {
	Client   *http.Client
	APIKey   string
	Endpoint string
	Country  string
	Language string
}

func NewNewsDataClient(apiKey, endpoint, country, language string) *NewsDataClient {
	return &NewsDataClient{
		Client:   &http.Client{Timeout: HTTP_TIMEOUT},
		APIKey:   apiKey,
		Endpoint: endpoint,
		Country:  country,
		Language: language,
	}
}

// FetchLatest returns up to NEWSDATA_PAGE_SIZE articles with images for the
// given category key, in the order the API returned them.
func (n *NewsDataClient) FetchLatest(ctx context.Context, category string) ([]models.Article, error) {
	if n.APIKey == "" {
		return nil, fmt.Errorf("[NewsDataClient] API key is missing")
	}

	u, err := url.Parse(n.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("[NewsDataClient] invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("apikey", n.APIKey)
	q.Set("category", category)
	q.Set("size", strconv.Itoa(NEWSDATA_PAGE_SIZE))
	q.Set("image", "1")
	if n.Country != "" {
		q.Set("country", n.Country)
	}
	if n.Language != "" {
		q.Set("language", n.Language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	slog.Debug("[NewsDataClient] Fetching latest articles", slog.String("category", category))
	res, err := n.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[NewsDataClient] request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("[NewsDataClient] failed to read response body: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("[NewsDataClient] invalid API key, check credentials: %w", ErrUpstreamStatus)
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("[NewsDataClient] rate limit exceeded: %w", ErrUpstreamStatus)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, fmt.Errorf("[NewsDataClient] unexpected status %d: %s: %w",
			res.StatusCode, truncate(string(body), MAX_ERROR_BODY), ErrUpstreamStatus)
	}

	var response models.NewsDataResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("[NewsDataClient] failed to parse JSON response: %w", err)
	}

	if response.Status != newsDataStatusOK {
		var apiErr models.NewsDataError
		_ = json.Unmarshal(response.Results, &apiErr)
		return nil, fmt.Errorf("[NewsDataClient] status %q: %s: %w", response.Status, apiErr.Message, ErrUpstreamStatus)
	}

	var raw []models.NewsDataArticle
	if len(response.Results) > 0 && string(response.Results) != "null" {
		if err := json.Unmarshal(response.Results, &raw); err != nil {
			return nil, fmt.Errorf("[NewsDataClient] failed to parse results: %w", err)
		}
	}

	articles := make([]models.Article, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, normalizeArticle(r))
	}

	slog.Info("[NewsDataClient] Fetched latest articles",
		slog.String("category", category),
		slog.Int("count", len(articles)))
	return articles, nil
}

// normalizeArticle maps the NewsData shape onto models.Article. Paid-plan
// placeholders count as missing text and unparsable dates as the zero time.
func normalizeArticle(r models.NewsDataArticle) models.Article {
	published, err := time.Parse(newsDataTimeLayout, r.PubDate)
	if err != nil {
		published = time.Time{}
	}

	source := r.SourceName
	if source == "" {
		source = r.SourceID
	}

	return models.Article{
		ID:          r.ArticleID,
		Title:       strings.TrimSpace(r.Title),
		Link:        r.Link,
		Description: cleanText(r.Description),
		Content:     cleanText(r.Content),
		PublishedAt: published.UTC(),
		ImageURL:    strings.TrimSpace(r.ImageURL),
		SourceName:  source,
	}
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, newsDataPaidOnlyTag) {
		return ""
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
