package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/pkg/types"
)

// AccountCache 是批量取数层的短 TTL 读穿缓存：同一次页面交互中反复解析
// 同一批账户时避免重复 RPC。TTL 很短，跨解析趟次的新鲜度仍由链上数据保证。
type AccountCache struct {
	mu    sync.Mutex
	store *lru.Cache[types.Pubkey, accountEntry]
	ttl   time.Duration
}

type accountEntry struct {
	raw       *chain.RawAccount // nil 表示"确认不存在"，同样可缓存
	expiresAt time.Time
}

// NewAccountCache 创建缓存；maxEntries <= 0 或 ttl <= 0 时返回 nil（禁用）。
// 对 nil 接收者的 Get/Put 均为 no-op，调用方不需要判空。
func NewAccountCache(maxEntries int, ttl time.Duration) *AccountCache {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}
	store, err := lru.New[types.Pubkey, accountEntry](maxEntries)
	if err != nil {
		return nil
	}
	return &AccountCache{store: store, ttl: ttl}
}

func (c *AccountCache) Get(addr types.Pubkey, now time.Time) (*chain.RawAccount, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store.Get(addr)
	if !ok {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		c.store.Remove(addr)
		return nil, false
	}
	return entry.raw, true
}

func (c *AccountCache) Put(addr types.Pubkey, raw *chain.RawAccount, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Add(addr, accountEntry{raw: raw, expiresAt: now.Add(c.ttl)})
}
