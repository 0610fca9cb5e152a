package chain

import (
	"context"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rental-market-sol/internal/pkg/types"
)

// RawAccount 是账户查询返回的原始单元：owner + 原始字节，由上层解码。
type RawAccount struct {
	Address types.Pubkey
	Owner   types.Pubkey
	Data    []byte
}

// OwnedTokenAccount 按钱包列出的 SPL Token 账户（RPC 已解析）
type OwnedTokenAccount struct {
	Address  types.Pubkey
	Mint     types.Pubkey
	Owner    types.Pubkey
	Amount   uint64
	Delegate *types.Pubkey
	State    uint8
}

// Blockhash 交易时效标记，签名与确认共用
type Blockhash struct {
	Hash                 string
	LastValidBlockHeight uint64
}

// Client 是链上 RPC 的协作方接口。实现必须可被多个在途调用并发使用；
// 本层不做重试，失败原样上抛。
type Client interface {
	// LatestBlockhash 获取最新 blockhash
	LatestBlockhash(ctx context.Context) (Blockhash, error)

	// AccountsInfo 一次查询多个账户，与入参按下标对齐；
	// 不存在的账户对应 nil。入参数量不得超过 RPC 单次上限。
	AccountsInfo(ctx context.Context, addrs []types.Pubkey) ([]*RawAccount, error)

	// TokenAccountsByOwner 列出钱包名下全部 SPL Token 账户
	TokenAccountsByOwner(ctx context.Context, owner types.Pubkey) ([]OwnedTokenAccount, error)

	// SendSignedTransaction 广播已签名交易，返回交易签名
	SendSignedTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)

	// ConfirmTransaction 阻塞等待交易确认；未确认或链上执行失败时返回 error
	ConfirmTransaction(ctx context.Context, txid string) error
}
