package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/pkg/types"
)

func TestAccountCache_HitAndExpire(t *testing.T) {
	c := NewAccountCache(10, time.Minute)
	require.NotNil(t, c)

	addr := types.Pubkey{1}
	raw := &chain.RawAccount{Address: addr, Data: []byte{0xAA}}
	now := time.Now()

	c.Put(addr, raw, now)

	got, ok := c.Get(addr, now.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, raw, got)

	// TTL 过期后失效
	_, ok = c.Get(addr, now.Add(2*time.Minute))
	assert.False(t, ok)
}

func TestAccountCache_NegativeEntry(t *testing.T) {
	c := NewAccountCache(10, time.Minute)
	addr := types.Pubkey{2}
	now := time.Now()

	// "账户不存在"同样可缓存，命中时返回 nil + true
	c.Put(addr, nil, now)
	got, ok := c.Get(addr, now)
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestAccountCache_DisabledIsNoop(t *testing.T) {
	var c *AccountCache
	addr := types.Pubkey{3}

	// nil 接收者不 panic，Get 始终 miss
	c.Put(addr, nil, time.Now())
	_, ok := c.Get(addr, time.Now())
	assert.False(t, ok)

	assert.Nil(t, NewAccountCache(0, time.Minute))
	assert.Nil(t, NewAccountCache(10, 0))
}
