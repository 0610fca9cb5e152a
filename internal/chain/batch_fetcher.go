package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/pkg/logger"
	"rental-market-sol/internal/pkg/types"
	"rental-market-sol/internal/pkg/utils"
)

// AccountCacheStore 是取数层可选的读穿缓存
type AccountCacheStore interface {
	Get(addr types.Pubkey, now time.Time) (*RawAccount, bool)
	Put(addr types.Pubkey, raw *RawAccount, now time.Time)
}

// FetchResult 一次批量查询的结果。
// Accounts 以地址为 key；查询成功但账户不存在时值为 nil。
// Failed 中的地址所在分片 RPC 失败，语义上与"不存在"区分开，由调用方决定如何降级。
type FetchResult struct {
	Accounts map[types.Pubkey]*RawAccount
	Failed   map[types.Pubkey]struct{}
}

// FailedCount 返回因 RPC 失败而缺失的地址数
func (r *FetchResult) FailedCount() int {
	return len(r.Failed)
}

// Get 按地址取账户；不存在或查询失败时返回 nil
func (r *FetchResult) Get(addr types.Pubkey) *RawAccount {
	return r.Accounts[addr]
}

// BatchFetcher 将任意数量的地址去重、切分为 RPC 允许的分片并发查询。
// 单个分片失败只影响该分片内的地址（计入 Failed），全部分片失败才返回 error。
type BatchFetcher struct {
	client        Client
	cache         AccountCacheStore
	maxBatch      int
	maxConcurrent int
}

type FetcherOption struct {
	MaxBatchAccounts    int
	MaxConcurrentChunks int
	Cache               AccountCacheStore
}

func NewBatchFetcher(client Client, opt FetcherOption) *BatchFetcher {
	maxBatch := opt.MaxBatchAccounts
	if maxBatch <= 0 || maxBatch > consts.MaxBatchAccounts {
		maxBatch = consts.MaxBatchAccounts
	}
	maxConcurrent := opt.MaxConcurrentChunks
	if maxConcurrent <= 0 {
		maxConcurrent = consts.MaxConcurrentChunks
	}
	return &BatchFetcher{
		client:        client,
		cache:         opt.Cache,
		maxBatch:      maxBatch,
		maxConcurrent: maxConcurrent,
	}
}

type chunkResult struct {
	addrs    []types.Pubkey
	accounts []*RawAccount
	err      error
}

// FetchMany 查询一批地址。入参允许重复和 nil（nil 直接跳过）；
// 结果按去重后的地址 key 化，调用方用原始地址回查即可。
func (f *BatchFetcher) FetchMany(ctx context.Context, addrs []*types.Pubkey) (*FetchResult, error) {
	result := &FetchResult{
		Accounts: make(map[types.Pubkey]*RawAccount),
		Failed:   make(map[types.Pubkey]struct{}),
	}

	unique := types.DedupPubkeys(addrs)
	if len(unique) == 0 {
		return result, nil
	}

	// 读穿缓存命中的地址不再发起 RPC
	now := time.Now()
	toFetch := unique[:0:0]
	for _, addr := range unique {
		if f.cache != nil {
			if raw, ok := f.cache.Get(addr, now); ok {
				result.Accounts[addr] = raw
				continue
			}
		}
		toFetch = append(toFetch, addr)
	}
	if len(toFetch) == 0 {
		return result, nil
	}

	chunks := utils.ChunkSlice(toFetch, f.maxBatch)

	var wg sync.WaitGroup
	sem := make(chan struct{}, f.maxConcurrent)
	resultCh := make(chan chunkResult, len(chunks))

	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []types.Pubkey) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			accounts, err := f.client.AccountsInfo(ctx, chunk)
			resultCh <- chunkResult{addrs: chunk, accounts: accounts, err: err}
		}(chunk)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	failedChunks := 0
	var lastErr error
	now = time.Now()
	for res := range resultCh {
		if res.err != nil {
			failedChunks++
			lastErr = res.err
			logger.Warnf("[BatchFetcher] 分片查询失败 (%d 地址): %v", len(res.addrs), res.err)
			for _, addr := range res.addrs {
				result.Failed[addr] = struct{}{}
			}
			continue
		}
		for i, addr := range res.addrs {
			raw := res.accounts[i]
			result.Accounts[addr] = raw
			if f.cache != nil {
				f.cache.Put(addr, raw, now)
			}
		}
	}

	if failedChunks == len(chunks) && len(result.Accounts) == 0 {
		return nil, fmt.Errorf("all %d account chunks failed: %w", failedChunks, lastErr)
	}
	return result, nil
}
