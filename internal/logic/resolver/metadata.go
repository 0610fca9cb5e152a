package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/pkg/logger"
)

// OffChainFetcher 拉取 metadata.URI 指向的 off-chain JSON。
// 单个 token 的拉取/解析失败不是错误，返回 nil 即可。
type OffChainFetcher interface {
	Fetch(ctx context.Context, uri string) *core.OffChainMetadata
}

const (
	offchainKeyPrefix  = "offchain:uri"
	offchainTTL        = 30 * time.Minute
	offchainNegTTL     = 5 * time.Minute
	offchainTimeout    = 10 * time.Second
	offchainMaxBodyLen = 1 << 20 // 1MB，防御异常响应体
)

// 负缓存哨兵值，避免对坏 URI 反复发起请求
const offchainNegMarker = "!"

// HTTPOffChainFetcher 通过 HTTP GET 拉取 off-chain JSON，结果写入 Redis 缓存。
// rdb 为 nil 时退化为直连拉取（不缓存）。
type HTTPOffChainFetcher struct {
	client *http.Client
	rdb    *redis.Client
}

func NewHTTPOffChainFetcher(rdb *redis.Client) *HTTPOffChainFetcher {
	return &HTTPOffChainFetcher{
		client: &http.Client{Timeout: offchainTimeout},
		rdb:    rdb,
	}
}

func offchainKey(uri string) string {
	return fmt.Sprintf("%s:%s", offchainKeyPrefix, uri)
}

// Fetch 任何失败路径都返回 nil，不向上传播
func (f *HTTPOffChainFetcher) Fetch(ctx context.Context, uri string) *core.OffChainMetadata {
	if uri == "" {
		return nil
	}

	if f.rdb != nil {
		cached, err := f.rdb.Get(ctx, offchainKey(uri)).Result()
		if err == nil {
			if cached == offchainNegMarker {
				return nil
			}
			var md core.OffChainMetadata
			if json.Unmarshal([]byte(cached), &md) == nil {
				return &md
			}
		} else if err != redis.Nil {
			logger.Warnf("redis get off-chain metadata failed: uri=%s err=%v", uri, err)
		}
	}

	md, raw := f.fetchRemote(ctx, uri)

	if f.rdb != nil {
		if md != nil {
			if err := f.rdb.Set(ctx, offchainKey(uri), raw, offchainTTL).Err(); err != nil {
				logger.Warnf("redis set off-chain metadata failed: uri=%s err=%v", uri, err)
			}
		} else {
			// 失败也记负缓存，TTL 较短
			_ = f.rdb.Set(ctx, offchainKey(uri), offchainNegMarker, offchainNegTTL).Err()
		}
	}
	return md
}

func (f *HTTPOffChainFetcher) fetchRemote(ctx context.Context, uri string) (*core.OffChainMetadata, []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		logger.Warnf("build off-chain metadata request failed: uri=%s err=%v", uri, err)
		return nil, nil
	}
	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warnf("fetch off-chain metadata failed: uri=%s err=%v", uri, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warnf("fetch off-chain metadata unexpected status: uri=%s status=%d", uri, resp.StatusCode)
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, offchainMaxBodyLen))
	if err != nil {
		logger.Warnf("read off-chain metadata body failed: uri=%s err=%v", uri, err)
		return nil, nil
	}
	var md core.OffChainMetadata
	if err := json.Unmarshal(raw, &md); err != nil {
		logger.Warnf("parse off-chain metadata failed: uri=%s err=%v", uri, err)
		return nil, nil
	}
	return &md, raw
}
