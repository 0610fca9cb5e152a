package resolver

import (
	"context"
	"sort"
	"sync"

	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/logic/filter"
	"rental-market-sol/internal/pkg/logger"
	"rental-market-sol/internal/pkg/types"
)

// TokenLister 按钱包列出 SPL Token 账户（chain.Client 的窄化子集）
type TokenLister interface {
	TokenAccountsByOwner(ctx context.Context, owner types.Pubkey) ([]chain.OwnedTokenAccount, error)
}

// AccountFetcher 批量账户查询（chain.BatchFetcher 的窄化子集）
type AccountFetcher interface {
	FetchMany(ctx context.Context, addrs []*types.Pubkey) (*chain.FetchResult, error)
}

// Decoder 批量账户解码（accountdecoder.Registry 的窄化子集）
type Decoder interface {
	DecodeAll(raws map[types.Pubkey]*chain.RawAccount) map[types.Pubkey]*core.DecodedRecord
}

// Config 解析器配置
type Config struct {
	// Cluster 为 "devnet" 时放宽 creators 过滤的 verified 要求
	Cluster string

	// DefaultUpdateAuthority 非空时，最终只保留该 update authority 下的 token
	DefaultUpdateAuthority string

	// DisallowedMints 黑名单 mint，命中即丢弃
	DisallowedMints []string

	// OffChainConcurrency off-chain JSON 拉取的并发上限，<=0 取默认值
	OffChainConcurrency int
}

const defaultOffChainConcurrency = 8

// Options 单次解析的选项
type Options struct {
	Filter        *filter.Spec
	FetchMetadata bool // 是否拉取 off-chain JSON
}

// Resolver 是 Join Engine：以钱包的 token account 为根，分轮批量拉取并
// 解码关联账户（metadata / delegate / 租赁图 / mint / edition），拼接为
// CompositeTokenRecord。轮与轮严格串行，轮内并发由 fetcher 控制。
type Resolver struct {
	lister   TokenLister
	fetcher  AccountFetcher
	registry Decoder
	offchain OffChainFetcher

	defaultUpdateAuthority *types.Pubkey
	disallowedMints        map[types.Pubkey]struct{}
	requireVerified        bool
	offchainConcurrency    int
}

func NewResolver(lister TokenLister, fetcher AccountFetcher, registry Decoder,
	offchain OffChainFetcher, cfg Config) *Resolver {
	r := &Resolver{
		lister:              lister,
		fetcher:             fetcher,
		registry:            registry,
		offchain:            offchain,
		disallowedMints:     make(map[types.Pubkey]struct{}, len(cfg.DisallowedMints)),
		requireVerified:     cfg.Cluster != consts.ClusterDevnet,
		offchainConcurrency: cfg.OffChainConcurrency,
	}
	if r.offchainConcurrency <= 0 {
		r.offchainConcurrency = defaultOffChainConcurrency
	}
	if cfg.DefaultUpdateAuthority != "" {
		authority := types.PubkeyFromBase58(cfg.DefaultUpdateAuthority)
		r.defaultUpdateAuthority = &authority
	}
	for _, s := range cfg.DisallowedMints {
		if mint, err := types.TryPubkeyFromBase58(s); err == nil {
			r.disallowedMints[mint] = struct{}{}
		} else {
			logger.Warnf("skip invalid disallowed mint: %s", s)
		}
	}
	return r
}

// Resolve 解析钱包名下全部 token 的组合视图。
// wallet 为 nil（未连接钱包）是常态而非错误，直接返回空结果。
func (r *Resolver) Resolve(ctx context.Context, wallet *types.Pubkey, opt Options) ([]*core.CompositeTokenRecord, error) {
	if wallet == nil {
		return []*core.CompositeTokenRecord{}, nil
	}

	tokenAccounts, err := r.listTokenAccounts(ctx, *wallet)
	if err != nil {
		return nil, err
	}
	if len(tokenAccounts) == 0 {
		return []*core.CompositeTokenRecord{}, nil
	}

	// 第 1 轮：metadata PDA
	metadataByToken, err := r.fetchMetadata(ctx, tokenAccounts)
	if err != nil {
		return nil, err
	}

	if opt.Filter != nil && opt.Filter.Kind == filter.KindCreators {
		values := opt.Filter.ValueSet()
		tokenAccounts = filterTokenAccounts(tokenAccounts, func(ta chain.OwnedTokenAccount) bool {
			return filter.MatchCreators(metadataByToken[ta.Address], values, r.requireVerified)
		})
	}

	// 第 2 轮：delegate
	delegateRecords, err := r.fetchDelegates(ctx, tokenAccounts)
	if err != nil {
		return nil, err
	}

	if opt.Filter != nil && opt.Filter.Kind == filter.KindIssuer {
		values := opt.Filter.ValueSet()
		tokenAccounts = filterTokenAccounts(tokenAccounts, func(ta chain.OwnedTokenAccount) bool {
			return filter.MatchIssuer(ownedToTokenAccount(ta), delegateRentalManager(delegateRecords, ta), values)
		})
	}

	// 第 3 轮：mint + edition + 租赁图扇出
	accountsByID, editionIDs, err := r.fetchFanout(ctx, tokenAccounts, delegateRecords)
	if err != nil {
		return nil, err
	}

	var offchain map[types.Pubkey]*core.OffChainMetadata
	if opt.FetchMetadata && r.offchain != nil {
		offchain = r.fetchOffChain(ctx, tokenAccounts, metadataByToken)
	}

	records := r.assemble(tokenAccounts, metadataByToken, accountsByID, editionIDs, offchain)

	if r.defaultUpdateAuthority != nil {
		records = keepRecords(records, func(record *core.CompositeTokenRecord) bool {
			return record.Metadata != nil && record.Metadata.UpdateAuthority.Equals(*r.defaultUpdateAuthority)
		})
	}

	// creators / issuer 已在分轮阶段应用，其余过滤种类在 join 完成后应用
	if opt.Filter != nil && opt.Filter.Kind != filter.KindCreators && opt.Filter.Kind != filter.KindIssuer {
		records = filter.Apply(records, opt.Filter)
	}
	return records, nil
}

// listTokenAccounts 列出余额非零且不在黑名单内的 token 账户，按地址排序
func (r *Resolver) listTokenAccounts(ctx context.Context, wallet types.Pubkey) ([]chain.OwnedTokenAccount, error) {
	all, err := r.lister.TokenAccountsByOwner(ctx, wallet)
	if err != nil {
		return nil, err
	}
	kept := make([]chain.OwnedTokenAccount, 0, len(all))
	for _, ta := range all {
		if ta.Amount == 0 {
			continue
		}
		if _, banned := r.disallowedMints[ta.Mint]; banned {
			continue
		}
		kept = append(kept, ta)
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Address.String() < kept[j].Address.String()
	})
	return kept, nil
}

// fetchMetadata 拉取并解码各 token 的 metadata PDA，按 token account 地址键化
func (r *Resolver) fetchMetadata(ctx context.Context, tokenAccounts []chain.OwnedTokenAccount) (map[types.Pubkey]*core.MetadataData, error) {
	metadataIDs := make(map[types.Pubkey]types.Pubkey, len(tokenAccounts)) // tokenAccount → metadata PDA
	addrs := make([]*types.Pubkey, 0, len(tokenAccounts))
	for _, ta := range tokenAccounts {
		pda, err := findMetadataAddress(ta.Mint)
		if err != nil {
			logger.Warnf("derive metadata pda failed: mint=%s err=%v", ta.Mint, err)
			continue
		}
		metadataIDs[ta.Address] = pda
		addr := pda
		addrs = append(addrs, &addr)
	}

	result, err := r.fetcher.FetchMany(ctx, addrs)
	if err != nil {
		return nil, err
	}
	decoded := r.registry.DecodeAll(result.Accounts)

	metadataByToken := make(map[types.Pubkey]*core.MetadataData, len(tokenAccounts))
	for tokenAddr, pda := range metadataIDs {
		if record, ok := decoded[pda]; ok && record.Type == core.RecordMetadata {
			metadataByToken[tokenAddr] = record.Metadata
		}
	}
	return metadataByToken, nil
}

// fetchDelegates 拉取并解码全部 delegate 账户
func (r *Resolver) fetchDelegates(ctx context.Context, tokenAccounts []chain.OwnedTokenAccount) (map[types.Pubkey]*core.DecodedRecord, error) {
	addrs := make([]*types.Pubkey, len(tokenAccounts))
	for i, ta := range tokenAccounts {
		addrs[i] = ta.Delegate // nil 表示无委托，fetcher 会跳过
	}
	result, err := r.fetcher.FetchMany(ctx, addrs)
	if err != nil {
		return nil, err
	}
	return r.registry.DecodeAll(result.Accounts), nil
}

// fetchFanout 拉取 mint、edition 以及租赁图（claimApprover / recipient /
// invalidators），与 delegate 解码结果合并为统一的地址索引。
// 返回的 editionIDs 与 tokenAccounts 下标对齐。
func (r *Resolver) fetchFanout(ctx context.Context, tokenAccounts []chain.OwnedTokenAccount,
	delegateRecords map[types.Pubkey]*core.DecodedRecord) (map[types.Pubkey]*core.DecodedRecord, []types.Pubkey, error) {

	addrs := make([]*types.Pubkey, 0, len(tokenAccounts)*3)
	editionIDs := make([]types.Pubkey, len(tokenAccounts))
	for i, ta := range tokenAccounts {
		mint := ta.Mint
		addrs = append(addrs, &mint)
		pda, err := findEditionAddress(ta.Mint)
		if err != nil {
			logger.Warnf("derive edition pda failed: mint=%s err=%v", ta.Mint, err)
			continue
		}
		editionIDs[i] = pda
		edition := pda
		addrs = append(addrs, &edition)
	}
	for _, record := range delegateRecords {
		if record.Type != core.RecordRentalManager {
			continue
		}
		rm := record.RentalManager
		if rm.ClaimApprover != nil {
			approver := *rm.ClaimApprover
			addrs = append(addrs, &approver)
		}
		if !rm.RecipientTokenAccount.IsZero() {
			recipient := rm.RecipientTokenAccount
			addrs = append(addrs, &recipient)
		}
		for _, invalidator := range rm.Invalidators {
			inv := invalidator
			addrs = append(addrs, &inv)
		}
	}

	result, err := r.fetcher.FetchMany(ctx, addrs)
	if err != nil {
		return nil, nil, err
	}

	accountsByID := r.registry.DecodeAll(result.Accounts)
	for addr, record := range delegateRecords {
		accountsByID[addr] = record
	}
	return accountsByID, editionIDs, nil
}

// fetchOffChain 并发拉取各 token 的 off-chain JSON，单 token 失败置 nil
func (r *Resolver) fetchOffChain(ctx context.Context, tokenAccounts []chain.OwnedTokenAccount,
	metadataByToken map[types.Pubkey]*core.MetadataData) map[types.Pubkey]*core.OffChainMetadata {

	results := make([]*core.OffChainMetadata, len(tokenAccounts))
	sem := make(chan struct{}, r.offchainConcurrency)
	var wg sync.WaitGroup
	for i, ta := range tokenAccounts {
		md := metadataByToken[ta.Address]
		if md == nil || md.URI == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, uri string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.offchain.Fetch(ctx, uri)
		}(i, md.URI)
	}
	wg.Wait()

	offchain := make(map[types.Pubkey]*core.OffChainMetadata, len(tokenAccounts))
	for i, ta := range tokenAccounts {
		if results[i] != nil {
			offchain[ta.Address] = results[i]
		}
	}
	return offchain
}

// assemble 把各轮解码结果按 delegate → rentalManager 链路拼回每个 token。
// delegate 不是租赁管理账户的 token，租赁相关字段全部留空。
func (r *Resolver) assemble(tokenAccounts []chain.OwnedTokenAccount,
	metadataByToken map[types.Pubkey]*core.MetadataData,
	accountsByID map[types.Pubkey]*core.DecodedRecord,
	editionIDs []types.Pubkey,
	offchain map[types.Pubkey]*core.OffChainMetadata) []*core.CompositeTokenRecord {

	records := make([]*core.CompositeTokenRecord, 0, len(tokenAccounts))
	for i, ta := range tokenAccounts {
		record := &core.CompositeTokenRecord{
			TokenAccount:     ownedToTokenAccount(ta),
			Metadata:         metadataByToken[ta.Address],
			OffChainMetadata: offchain[ta.Address],
		}
		if mint, ok := accountsByID[ta.Mint]; ok && mint.Type == core.RecordMint {
			record.Mint = mint.Mint
		}
		if !editionIDs[i].IsZero() {
			if edition, ok := accountsByID[editionIDs[i]]; ok && edition.Type == core.RecordEdition {
				record.Edition = edition.Edition
			}
		}

		rm := delegateRentalManager(accountsByID, ta)
		if rm == nil {
			records = append(records, record)
			continue
		}
		record.RentalManager = rm
		if rm.ClaimApprover != nil {
			if approver, ok := accountsByID[*rm.ClaimApprover]; ok && approver.Type == core.RecordClaimApprover {
				record.ClaimApprover = approver.ClaimApprover
			}
		}
		if !rm.RecipientTokenAccount.IsZero() {
			if recipient, ok := accountsByID[rm.RecipientTokenAccount]; ok && recipient.Type == core.RecordTokenAccount {
				record.RecipientTokenAccount = recipient.TokenAccount
			}
		}
		// invalidators 中取第一个解码为对应类型的
		for _, invalidator := range rm.Invalidators {
			inv, ok := accountsByID[invalidator]
			if !ok {
				continue
			}
			if record.TimeInvalidator == nil && inv.Type == core.RecordTimeInvalidator {
				record.TimeInvalidator = inv.TimeInvalidator
			}
			if record.UseInvalidator == nil && inv.Type == core.RecordUseInvalidator {
				record.UseInvalidator = inv.UseInvalidator
			}
		}
		records = append(records, record)
	}
	return records
}

// delegateRentalManager 返回 token 的 delegate 解码出的租赁管理账户，无则 nil
func delegateRentalManager(records map[types.Pubkey]*core.DecodedRecord, ta chain.OwnedTokenAccount) *core.RentalManagerData {
	if ta.Delegate == nil {
		return nil
	}
	record, ok := records[*ta.Delegate]
	if !ok || record.Type != core.RecordRentalManager {
		return nil
	}
	return record.RentalManager
}

func ownedToTokenAccount(ta chain.OwnedTokenAccount) *core.TokenAccountData {
	return &core.TokenAccountData{
		Address:  ta.Address,
		Mint:     ta.Mint,
		Owner:    ta.Owner,
		Amount:   ta.Amount,
		Delegate: ta.Delegate,
		State:    ta.State,
	}
}

func filterTokenAccounts(tokenAccounts []chain.OwnedTokenAccount, keep func(chain.OwnedTokenAccount) bool) []chain.OwnedTokenAccount {
	kept := make([]chain.OwnedTokenAccount, 0, len(tokenAccounts))
	for _, ta := range tokenAccounts {
		if keep(ta) {
			kept = append(kept, ta)
		}
	}
	return kept
}

func keepRecords(records []*core.CompositeTokenRecord, keep func(*core.CompositeTokenRecord) bool) []*core.CompositeTokenRecord {
	kept := make([]*core.CompositeTokenRecord, 0, len(records))
	for _, record := range records {
		if keep(record) {
			kept = append(kept, record)
		}
	}
	return kept
}
