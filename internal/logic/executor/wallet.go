package executor

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Wallet 签名方：对整批交易一次性签名，暴露稳定的公钥地址。
// 实现必须可被多个在途调用并发使用。
type Wallet interface {
	PublicKey() common.PublicKey
	SignAll(txs []sdktypes.Transaction) ([]sdktypes.Transaction, error)
}

// LocalWallet 持有进程内密钥对的签名方
type LocalWallet struct {
	account sdktypes.Account
}

func NewLocalWallet(account sdktypes.Account) *LocalWallet {
	return &LocalWallet{account: account}
}

// LocalWalletFromBase58 从 base58 私钥恢复签名方
func LocalWalletFromBase58(key string) (*LocalWallet, error) {
	account, err := sdktypes.AccountFromBase58(key)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet key: %w", err)
	}
	return &LocalWallet{account: account}, nil
}

func (w *LocalWallet) PublicKey() common.PublicKey {
	return w.account.PublicKey
}

// SignAll 逐笔签名，整批中任何一笔失败则整体失败
func (w *LocalWallet) SignAll(txs []sdktypes.Transaction) ([]sdktypes.Transaction, error) {
	for i := range txs {
		data, err := txs[i].Message.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serialize message %d: %w", i, err)
		}
		if err := txs[i].AddSignature(w.account.Sign(data)); err != nil {
			return nil, fmt.Errorf("sign transaction %d: %w", i, err)
		}
	}
	return txs, nil
}
