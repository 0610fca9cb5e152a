package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/logic/filter"
	"rental-market-sol/internal/pkg/types"
)

func pk(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	return p
}

func pkPtr(b byte) *types.Pubkey {
	p := pk(b)
	return &p
}

type fakeLister struct {
	accounts []chain.OwnedTokenAccount
	calls    int
}

func (f *fakeLister) TokenAccountsByOwner(ctx context.Context, owner types.Pubkey) ([]chain.OwnedTokenAccount, error) {
	f.calls++
	return f.accounts, nil
}

type fakeFetcher struct {
	existing map[types.Pubkey]struct{}
	calls    int
}

func (f *fakeFetcher) FetchMany(ctx context.Context, addrs []*types.Pubkey) (*chain.FetchResult, error) {
	f.calls++
	result := &chain.FetchResult{
		Accounts: make(map[types.Pubkey]*chain.RawAccount),
		Failed:   make(map[types.Pubkey]struct{}),
	}
	for _, addr := range addrs {
		if addr == nil {
			continue
		}
		if _, ok := f.existing[*addr]; ok {
			result.Accounts[*addr] = &chain.RawAccount{Address: *addr, Data: []byte{1}}
		} else {
			result.Accounts[*addr] = nil
		}
	}
	return result, nil
}

type fakeDecoder struct {
	records map[types.Pubkey]*core.DecodedRecord
}

func (d *fakeDecoder) DecodeAll(raws map[types.Pubkey]*chain.RawAccount) map[types.Pubkey]*core.DecodedRecord {
	result := make(map[types.Pubkey]*core.DecodedRecord)
	for addr, raw := range raws {
		if raw == nil {
			continue
		}
		if record, ok := d.records[addr]; ok {
			result[addr] = record
		}
	}
	return result
}

type fakeOffChain struct {
	byURI map[string]*core.OffChainMetadata
}

func (f *fakeOffChain) Fetch(ctx context.Context, uri string) *core.OffChainMetadata {
	return f.byURI[uri]
}

// fixture 构造两 token 的标准场景：
// tokenA 处于租赁中（delegate → rentalManager，含 claimApprover / recipient /
// time+use invalidator），tokenB 无委托。
type fixture struct {
	lister  *fakeLister
	fetcher *fakeFetcher
	decoder *fakeDecoder

	wallet    types.Pubkey
	tokenA    types.Pubkey
	tokenB    types.Pubkey
	mintA     types.Pubkey
	mintB     types.Pubkey
	issuer    types.Pubkey
	creatorA  types.Pubkey
	creatorB  types.Pubkey
	authority types.Pubkey
	claimer   types.Pubkey

	metadataA types.Pubkey
	editionA  types.Pubkey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		wallet:    pk(0x01),
		tokenA:    pk(0x0A),
		tokenB:    pk(0x0B),
		mintA:     pk(0x1A),
		mintB:     pk(0x1B),
		issuer:    pk(0x30),
		creatorA:  pk(0x41),
		creatorB:  pk(0x42),
		authority: pk(0x50),
		claimer:   pk(0x60),
	}
	delegate := pk(0x20)
	claimApprover := pk(0x21)
	recipient := pk(0x22)
	timeInvalidator := pk(0x23)
	useInvalidator := pk(0x24)

	metadataA, err := findMetadataAddress(fx.mintA)
	require.NoError(t, err)
	metadataB, err := findMetadataAddress(fx.mintB)
	require.NoError(t, err)
	editionA, err := findEditionAddress(fx.mintA)
	require.NoError(t, err)
	fx.metadataA, fx.editionA = metadataA, editionA

	fx.lister = &fakeLister{accounts: []chain.OwnedTokenAccount{
		{Address: fx.tokenA, Mint: fx.mintA, Owner: fx.wallet, Amount: 1, Delegate: &delegate},
		{Address: fx.tokenB, Mint: fx.mintB, Owner: fx.wallet, Amount: 1},
		{Address: pk(0x0C), Mint: pk(0x1C), Owner: fx.wallet, Amount: 0}, // 零余额，丢弃
	}}

	fx.fetcher = &fakeFetcher{existing: map[types.Pubkey]struct{}{
		metadataA: {}, metadataB: {}, editionA: {},
		fx.mintA: {}, fx.mintB: {},
		delegate: {}, claimApprover: {}, recipient: {},
		timeInvalidator: {}, useInvalidator: {},
	}}

	fx.decoder = &fakeDecoder{records: map[types.Pubkey]*core.DecodedRecord{
		metadataA: {Address: metadataA, Type: core.RecordMetadata, Metadata: &core.MetadataData{
			Address:         metadataA,
			UpdateAuthority: fx.authority,
			Mint:            fx.mintA,
			URI:             "https://meta.test/a.json",
			Creators:        []core.Creator{{Address: fx.creatorA, Verified: true, Share: 100}},
		}},
		metadataB: {Address: metadataB, Type: core.RecordMetadata, Metadata: &core.MetadataData{
			Address:         metadataB,
			UpdateAuthority: pk(0x51),
			Mint:            fx.mintB,
			URI:             "https://meta.test/b.json",
			Creators:        []core.Creator{{Address: fx.creatorB, Verified: false, Share: 100}},
		}},
		editionA: {Address: editionA, Type: core.RecordEdition, Edition: &core.EditionData{Address: editionA}},
		fx.mintA: {Address: fx.mintA, Type: core.RecordMint, Mint: &core.MintData{Address: fx.mintA, Supply: 1}},
		fx.mintB: {Address: fx.mintB, Type: core.RecordMint, Mint: &core.MintData{Address: fx.mintB, Supply: 1}},
		delegate: {Address: delegate, Type: core.RecordRentalManager, RentalManager: &core.RentalManagerData{
			Address:               delegate,
			Issuer:                fx.issuer,
			Mint:                  fx.mintA,
			State:                 core.StateClaimed,
			RecipientTokenAccount: recipient,
			ClaimApprover:         &claimApprover,
			Invalidators:          []types.Pubkey{timeInvalidator, useInvalidator},
		}},
		claimApprover: {Address: claimApprover, Type: core.RecordClaimApprover, ClaimApprover: &core.ClaimApproverData{
			Address: claimApprover, RentalManager: delegate,
		}},
		recipient: {Address: recipient, Type: core.RecordTokenAccount, TokenAccount: &core.TokenAccountData{
			Address: recipient, Mint: fx.mintA, Owner: fx.claimer, Amount: 1,
		}},
		timeInvalidator: {Address: timeInvalidator, Type: core.RecordTimeInvalidator, TimeInvalidator: &core.TimeInvalidatorData{
			Address: timeInvalidator, RentalManager: delegate,
		}},
		useInvalidator: {Address: useInvalidator, Type: core.RecordUseInvalidator, UseInvalidator: &core.UseInvalidatorData{
			Address: useInvalidator, RentalManager: delegate,
		}},
	}}
	return fx
}

func (fx *fixture) resolver(cfg Config, offchain OffChainFetcher) *Resolver {
	return NewResolver(fx.lister, fx.fetcher, fx.decoder, offchain, cfg)
}

func (fx *fixture) find(records []*core.CompositeTokenRecord, addr types.Pubkey) *core.CompositeTokenRecord {
	for _, record := range records {
		if record.TokenAccount.Address == addr {
			return record
		}
	}
	return nil
}

func TestResolveNoWallet(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{}, nil)

	records, err := r.Resolve(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, fx.lister.calls)
	assert.Zero(t, fx.fetcher.calls)
}

func TestResolveEmptyWallet(t *testing.T) {
	fx := newFixture(t)
	fx.lister.accounts = []chain.OwnedTokenAccount{
		{Address: pk(0x0C), Mint: pk(0x1C), Owner: fx.wallet, Amount: 0},
	}
	r := fx.resolver(Config{}, nil)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
	// 没有任何后续 fetch 轮
	assert.Zero(t, fx.fetcher.calls)
}

func TestResolveJoinsRentalGraph(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{}, nil)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 输出按地址 base58 排序
	assert.Less(t, records[0].TokenAccount.Address.String(), records[1].TokenAccount.Address.String())

	rented := fx.find(records, fx.tokenA)
	require.NotNil(t, rented)
	assert.True(t, rented.Rented())
	require.NotNil(t, rented.RentalManager)
	assert.Equal(t, fx.issuer, rented.RentalManager.Issuer)
	assert.NotNil(t, rented.ClaimApprover)
	assert.NotNil(t, rented.TimeInvalidator)
	assert.NotNil(t, rented.UseInvalidator)
	require.NotNil(t, rented.RecipientTokenAccount)
	assert.Equal(t, fx.claimer, rented.RecipientTokenAccount.Owner)
	require.NotNil(t, rented.Claimer())
	assert.Equal(t, fx.claimer, *rented.Claimer())
	assert.NotNil(t, rented.Mint)
	assert.NotNil(t, rented.Edition)
	require.NotNil(t, rented.Metadata)
	assert.Equal(t, fx.authority, rented.Metadata.UpdateAuthority)

	// 无委托的 token：租赁相关字段全空
	unrented := fx.find(records, fx.tokenB)
	require.NotNil(t, unrented)
	assert.False(t, unrented.Rented())
	assert.Nil(t, unrented.ClaimApprover)
	assert.Nil(t, unrented.TimeInvalidator)
	assert.Nil(t, unrented.UseInvalidator)
	assert.Nil(t, unrented.RecipientTokenAccount)
	assert.NotNil(t, unrented.Mint)
}

func TestResolveCreatorsFilter(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{Cluster: "mainnet"}, nil)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{
		Filter: &filter.Spec{Kind: filter.KindCreators, Values: []string{fx.creatorA.String()}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fx.tokenA, records[0].TokenAccount.Address)

	// mainnet 上未 verified 的创作者不计入
	records, err = r.Resolve(context.Background(), &fx.wallet, Options{
		Filter: &filter.Spec{Kind: filter.KindCreators, Values: []string{fx.creatorB.String()}},
	})
	require.NoError(t, err)
	assert.Empty(t, records)

	// devnet 放宽 verified 要求
	devnet := fx.resolver(Config{Cluster: "devnet"}, nil)
	records, err = devnet.Resolve(context.Background(), &fx.wallet, Options{
		Filter: &filter.Spec{Kind: filter.KindCreators, Values: []string{fx.creatorB.String()}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fx.tokenB, records[0].TokenAccount.Address)
}

func TestResolveIssuerFilter(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{}, nil)

	// issuer 命中 rentalManager.issuer
	records, err := r.Resolve(context.Background(), &fx.wallet, Options{
		Filter: &filter.Spec{Kind: filter.KindIssuer, Values: []string{fx.issuer.String()}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fx.tokenA, records[0].TokenAccount.Address)

	// issuer 命中 token owner 时两个都保留
	records, err = r.Resolve(context.Background(), &fx.wallet, Options{
		Filter: &filter.Spec{Kind: filter.KindIssuer, Values: []string{fx.wallet.String()}},
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestResolveStateFilterPostJoin(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{}, nil)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{
		Filter: &filter.Spec{Kind: filter.KindState, Values: []string{"claimed"}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fx.tokenA, records[0].TokenAccount.Address)
}

func TestResolveOffChainMetadata(t *testing.T) {
	fx := newFixture(t)
	offchain := &fakeOffChain{byURI: map[string]*core.OffChainMetadata{
		"https://meta.test/a.json": {Name: "Degen Ape #42"},
		// b.json 缺失，模拟单 token 拉取失败
	}}
	r := fx.resolver(Config{}, offchain)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{FetchMetadata: true})
	require.NoError(t, err)
	require.Len(t, records, 2)

	rented := fx.find(records, fx.tokenA)
	require.NotNil(t, rented.OffChainMetadata)
	assert.Equal(t, "Degen Ape #42", rented.OffChainMetadata.Name)
	assert.Nil(t, fx.find(records, fx.tokenB).OffChainMetadata)
}

func TestResolveDefaultUpdateAuthority(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{DefaultUpdateAuthority: fx.authority.String()}, nil)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fx.tokenA, records[0].TokenAccount.Address)
}

func TestResolveDisallowedMints(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver(Config{DisallowedMints: []string{fx.mintA.String()}}, nil)

	records, err := r.Resolve(context.Background(), &fx.wallet, Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fx.tokenB, records[0].TokenAccount.Address)
}
