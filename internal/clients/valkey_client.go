package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_ASSET_PREFIX = "newscard:asset:"
	VALKEY_ASSET_TTL    = 24 * time.Hour
	valkeyRetries       = 3
)

// ErrCacheMiss is returned by AssetCache.Get when nothing is stored under a key.
var ErrCacheMiss = errors.New("cache miss")

// AssetCache stores fetched media by URL.
type AssetCache interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
	Set(ctx context.Context, url string, data []byte, contentType string, ttl time.Duration) error
}

type ValkeyClient struct {
	Client valkey.Client
}

func NewValkeyClient(ctx context.Context, addr, password string, useTLS bool) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			addr,
		},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("addr", addr))
	return &ValkeyClient{Client: client}, nil
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error()
}

func (vc *ValkeyClient) Close() {
	if vc != nil && vc.Client != nil {
		vc.Client.Close()
	}
}

func (vc *ValkeyClient) Get(ctx context.Context, url string) ([]byte, string, error) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Hgetall().Key(assetKey(url)).Build().Pin(), valkeyRetries)
	fields, err := res.AsStrMap()
	if err != nil {
		return nil, "", err
	}
	data, ok := fields["data"]
	if !ok {
		return nil, "", ErrCacheMiss
	}
	return []byte(data), fields["content_type"], nil
}

func (vc *ValkeyClient) Set(ctx context.Context, url string, data []byte, contentType string, ttl time.Duration) error {
	key := assetKey(url)
	completed := []valkey.Completed{
		vc.Client.B().Hset().Key(key).FieldValue().
			FieldValue("content_type", contentType).
			FieldValue("data", valkey.BinaryString(data)).
			Build().Pin(),
		vc.Client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build().Pin(),
	}

	for _, res := range vc.DoMultiWithRetry(ctx, completed, valkeyRetries) {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

// DoWithRetry and DoMultiWithRetry resend the same commands, so callers must
// pass pinned commands.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func assetKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return VALKEY_ASSET_PREFIX + hex.EncodeToString(sum[:])
}

// CachedMediaFetcher serves media from an AssetCache and falls through to Next
// on a miss. Cache errors never fail a fetch.
type CachedMediaFetcher struct {
	Next  MediaFetcher
	Cache AssetCache
	TTL   time.Duration
}

func (c *CachedMediaFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	data, contentType, err := c.Cache.Get(ctx, url)
	if err == nil {
		slog.Debug("[CachedMediaFetcher] Cache hit", slog.String("url", url))
		return data, contentType, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("[CachedMediaFetcher] Cache read failed", slog.String("url", url), slog.String("error", err.Error()))
	}

	data, contentType, err = c.Next.Fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = VALKEY_ASSET_TTL
	}
	if err := c.Cache.Set(ctx, url, data, contentType, ttl); err != nil {
		slog.Warn("[CachedMediaFetcher] Cache write failed", slog.String("url", url), slog.String("error", err.Error()))
	}
	return data, contentType, nil
}
