package accountdecoder

import (
	sdktoken "github.com/blocto/solana-go-sdk/program/token"

	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/pkg/types"
)

// SPL Token 账户定长布局
const (
	tokenAccountDataLen = 165
	mintAccountDataLen  = 82
)

// decodeSPLToken 按数据长度区分 token account / mint，解析交给 SDK 布局
func decodeSPLToken(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	switch len(data) {
	case tokenAccountDataLen:
		return decodeTokenAccount(addr, data)
	case mintAccountDataLen:
		return decodeMint(addr, data)
	default:
		return nil, false
	}
}

func decodeTokenAccount(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	acc, err := sdktoken.TokenAccountFromData(data)
	if err != nil {
		return nil, false
	}
	mint, err := types.PubkeyFromBytes(acc.Mint.Bytes())
	if err != nil {
		return nil, false
	}
	owner, err := types.PubkeyFromBytes(acc.Owner.Bytes())
	if err != nil {
		return nil, false
	}

	out := &core.TokenAccountData{
		Address: addr,
		Mint:    mint,
		Owner:   owner,
		Amount:  acc.Amount,
		State:   uint8(acc.State),
	}
	if acc.Delegate != nil {
		if delegate, err := types.PubkeyFromBytes(acc.Delegate.Bytes()); err == nil {
			out.Delegate = &delegate
		}
	}
	return &core.DecodedRecord{
		Address:      addr,
		Type:         core.RecordTokenAccount,
		TokenAccount: out,
	}, true
}

func decodeMint(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	mint, err := sdktoken.MintAccountFromData(data)
	if err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordMint,
		Mint: &core.MintData{
			Address:  addr,
			Supply:   mint.Supply,
			Decimals: mint.Decimals,
		},
	}, true
}
