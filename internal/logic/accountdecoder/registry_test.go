package accountdecoder

import (
	"encoding/binary"
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/pkg/types"
)

func pk(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	return p
}

// buildTokenAccountData 手工构造 165 字节 SPL Token 账户布局
func buildTokenAccountData(mint, owner types.Pubkey, amount uint64, delegate *types.Pubkey) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	if delegate != nil {
		binary.LittleEndian.PutUint32(data[72:76], 1)
		copy(data[76:108], delegate[:])
	}
	data[108] = 1 // state = initialized
	return data
}

// buildMintData 手工构造 82 字节 Mint 账户布局
func buildMintData(supply uint64, decimals uint8) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1 // isInitialized
	return data
}

func TestDecodeTokenAccount(t *testing.T) {
	registry := NewRegistry()
	addr, mint, owner, delegate := pk(1), pk(2), pk(3), pk(4)

	record, ok := registry.Decode(&chain.RawAccount{
		Address: addr,
		Owner:   consts.TokenProgram,
		Data:    buildTokenAccountData(mint, owner, 1, &delegate),
	})
	require.True(t, ok)
	require.Equal(t, core.RecordTokenAccount, record.Type)

	ta := record.TokenAccount
	require.NotNil(t, ta)
	assert.Equal(t, addr, ta.Address)
	assert.Equal(t, mint, ta.Mint)
	assert.Equal(t, owner, ta.Owner)
	assert.Equal(t, uint64(1), ta.Amount)
	require.NotNil(t, ta.Delegate)
	assert.Equal(t, delegate, *ta.Delegate)
}

func TestDecodeMint(t *testing.T) {
	registry := NewRegistry()
	addr := pk(1)

	record, ok := registry.Decode(&chain.RawAccount{
		Address: addr,
		Owner:   consts.TokenProgram,
		Data:    buildMintData(1, 0),
	})
	require.True(t, ok)
	require.Equal(t, core.RecordMint, record.Type)
	assert.Equal(t, uint64(1), record.Mint.Supply)
	assert.Equal(t, uint8(0), record.Mint.Decimals)
}

func TestDecodeMetadata(t *testing.T) {
	registry := NewRegistry()
	addr, authority, mint, creator := pk(1), pk(2), pk(3), pk(4)

	layout := metadataLayout{
		Key:             metaplexKeyMetadataV1,
		UpdateAuthority: authority,
		Mint:            mint,
		Data: metadataDataLayout{
			// 定容量缓冲的尾部补零要被去掉
			Name:   "Degen Ape #42\x00\x00\x00",
			Symbol: "APE\x00",
			URI:    "https://arweave.net/abc\x00\x00",
			Creators: &[]creatorLayout{
				{Address: creator, Verified: true, Share: 100},
			},
		},
	}
	data, err := borsh.Serialize(layout)
	require.NoError(t, err)

	record, ok := registry.Decode(&chain.RawAccount{
		Address: addr,
		Owner:   consts.TokenMetaProgram,
		Data:    data,
	})
	require.True(t, ok)
	require.Equal(t, core.RecordMetadata, record.Type)

	md := record.Metadata
	assert.Equal(t, authority, md.UpdateAuthority)
	assert.Equal(t, "Degen Ape #42", md.Name)
	assert.Equal(t, "APE", md.Symbol)
	assert.Equal(t, "https://arweave.net/abc", md.URI)
	require.Len(t, md.Creators, 1)
	assert.Equal(t, creator, md.Creators[0].Address)
	assert.True(t, md.Creators[0].Verified)
}

func TestDecodeRentalManager(t *testing.T) {
	registry := NewRegistry()
	addr, issuer, mint, recipient := pk(1), pk(2), pk(3), pk(4)
	approver, inv1, inv2 := pk(5), pk(6), pk(7)

	layout := rentalManagerLayout{
		Version:               1,
		NumInvalidators:       2,
		Issuer:                issuer,
		Mint:                  mint,
		Amount:                1,
		State:                 uint8(core.StateClaimed),
		StateChangedAt:        1700000000,
		RecipientTokenAccount: recipient,
		ClaimApprover:         &approver,
		Invalidators:          []types.Pubkey{inv1, inv2},
	}
	body, err := borsh.Serialize(layout)
	require.NoError(t, err)
	data := append(append([]byte{}, rentalManagerDiscriminator...), body...)

	record, ok := registry.Decode(&chain.RawAccount{
		Address: addr,
		Owner:   consts.RentalManagerProgram,
		Data:    data,
	})
	require.True(t, ok)
	require.Equal(t, core.RecordRentalManager, record.Type)

	rm := record.RentalManager
	assert.Equal(t, issuer, rm.Issuer)
	assert.Equal(t, core.StateClaimed, rm.State)
	assert.Equal(t, recipient, rm.RecipientTokenAccount)
	require.NotNil(t, rm.ClaimApprover)
	assert.Equal(t, approver, *rm.ClaimApprover)
	assert.Equal(t, []types.Pubkey{inv1, inv2}, rm.Invalidators)
}

func TestDecodeTimeInvalidator(t *testing.T) {
	registry := NewRegistry()
	addr, manager := pk(1), pk(2)
	expiration := int64(1700000000)

	layout := timeInvalidatorLayout{
		RentalManager: manager,
		Expiration:    &expiration,
	}
	body, err := borsh.Serialize(layout)
	require.NoError(t, err)
	data := append(append([]byte{}, timeInvalidatorDiscriminator...), body...)

	record, ok := registry.Decode(&chain.RawAccount{
		Address: addr,
		Owner:   consts.TimeInvalidatorProgram,
		Data:    data,
	})
	require.True(t, ok)
	require.Equal(t, core.RecordTimeInvalidator, record.Type)
	require.NotNil(t, record.TimeInvalidator.Expiration)
	assert.Equal(t, expiration, *record.TimeInvalidator.Expiration)
}

func TestDecode_UnknownOwnerDropped(t *testing.T) {
	registry := NewRegistry()

	// owner 不在注册表内 → undecodable，而非 error
	_, ok := registry.Decode(&chain.RawAccount{
		Address: pk(1),
		Owner:   pk(0xEE),
		Data:    buildTokenAccountData(pk(2), pk(3), 1, nil),
	})
	assert.False(t, ok)
}

func TestDecode_MalformedDropped(t *testing.T) {
	registry := NewRegistry()

	// 长度对不上任何布局
	_, ok := registry.Decode(&chain.RawAccount{
		Address: pk(1),
		Owner:   consts.TokenProgram,
		Data:    []byte{1, 2, 3},
	})
	assert.False(t, ok)

	// discriminator 不匹配
	_, ok = registry.Decode(&chain.RawAccount{
		Address: pk(1),
		Owner:   consts.RentalManagerProgram,
		Data:    append(append([]byte{}, useInvalidatorDiscriminator...), 0, 0, 0),
	})
	assert.False(t, ok)

	// nil 账户
	_, ok = registry.Decode(nil)
	assert.False(t, ok)
}

func TestDecodeAll_SkipsUndecodable(t *testing.T) {
	registry := NewRegistry()
	good, bad := pk(1), pk(2)

	records := registry.DecodeAll(map[types.Pubkey]*chain.RawAccount{
		good: {Address: good, Owner: consts.TokenProgram, Data: buildMintData(1, 0)},
		bad:  {Address: bad, Owner: pk(0xEE), Data: []byte{1}},
		pk(3): nil,
	})
	require.Len(t, records, 1)
	assert.Equal(t, core.RecordMint, records[good].Type)
}
