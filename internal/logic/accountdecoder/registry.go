package accountdecoder

import (
	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/pkg/types"
)

// DecodeFunc 尝试把账户原始字节解码为某一变体；解不出时返回 (nil, false)，
// 不抛 error —— "不是这种账户"是稳态行为而非异常。
type DecodeFunc func(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool)

type entry struct {
	owner  types.Pubkey
	decode DecodeFunc
}

// Registry 按 (owner program → decodeFn) 的显式优先序分发解码。
// owner 不在表内、或字节布局解析失败的账户一律视为 undecodable 丢弃。
type Registry struct {
	entries []entry
}

// NewRegistry 注册全部已知程序的解码逻辑
func NewRegistry() *Registry {
	return &Registry{entries: []entry{
		{consts.TokenProgram, decodeSPLToken},
		{consts.TokenProgram2022, decodeSPLToken},
		{consts.TokenMetaProgram, decodeMetaplex},
		{consts.RentalManagerProgram, decodeRentalManager},
		{consts.ClaimApproverProgram, decodeClaimApprover},
		{consts.TimeInvalidatorProgram, decodeTimeInvalidator},
		{consts.UseInvalidatorProgram, decodeUseInvalidator},
	}}
}

// Decode 解码单个账户；raw 为 nil（账户不存在）时直接返回 false
func (r *Registry) Decode(raw *chain.RawAccount) (*core.DecodedRecord, bool) {
	if raw == nil || len(raw.Data) == 0 {
		return nil, false
	}
	for _, e := range r.entries {
		if e.owner != raw.Owner {
			continue
		}
		if record, ok := e.decode(raw.Address, raw.Data); ok {
			return record, true
		}
	}
	return nil, false
}

// DecodeAll 批量解码，undecodable 的账户被静默跳过；结果按地址 key 化
func (r *Registry) DecodeAll(raws map[types.Pubkey]*chain.RawAccount) map[types.Pubkey]*core.DecodedRecord {
	result := make(map[types.Pubkey]*core.DecodedRecord, len(raws))
	for addr, raw := range raws {
		if record, ok := r.Decode(raw); ok {
			result[addr] = record
		}
	}
	return result
}
