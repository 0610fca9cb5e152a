package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/pkg/types"
)

const (
	confirmPollInterval = 500 * time.Millisecond
	confirmTimeout      = 60 * time.Second
)

// RpcClient 基于 solana-go-sdk 的 Client 实现
type RpcClient struct {
	cli *client.Client
}

func NewRpcClient(endpoint string) *RpcClient {
	return &RpcClient{cli: client.NewClient(endpoint)}
}

func (c *RpcClient) LatestBlockhash(ctx context.Context) (Blockhash, error) {
	value, err := c.cli.GetLatestBlockhash(ctx)
	if err != nil {
		return Blockhash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	return Blockhash{
		Hash:                 value.Blockhash,
		LastValidBlockHeight: value.LatestValidBlockHeight,
	}, nil
}

func (c *RpcClient) AccountsInfo(ctx context.Context, addrs []types.Pubkey) ([]*RawAccount, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.String()
	}

	infos, err := c.cli.GetMultipleAccounts(ctx, strs)
	if err != nil {
		return nil, fmt.Errorf("getMultipleAccounts failed: %w", err)
	}
	if len(infos) != len(addrs) {
		return nil, fmt.Errorf("getMultipleAccounts: got %d accounts, want %d", len(infos), len(addrs))
	}

	result := make([]*RawAccount, len(addrs))
	for i, info := range infos {
		// 账户不存在时 RPC 返回空槽位
		if len(info.Data) == 0 {
			continue
		}
		owner, err := types.PubkeyFromBytes(info.Owner.Bytes())
		if err != nil {
			continue
		}
		result[i] = &RawAccount{
			Address: addrs[i],
			Owner:   owner,
			Data:    info.Data,
		}
	}
	return result, nil
}

func (c *RpcClient) TokenAccountsByOwner(ctx context.Context, owner types.Pubkey) ([]OwnedTokenAccount, error) {
	accounts, err := c.cli.GetTokenAccountsByOwnerByProgram(ctx, owner.String(), consts.TokenProgramStr)
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner failed: %w", err)
	}

	result := make([]OwnedTokenAccount, 0, len(accounts))
	for _, acc := range accounts {
		address, err := types.PubkeyFromBytes(acc.PublicKey.Bytes())
		if err != nil {
			continue
		}
		mint, err := types.PubkeyFromBytes(acc.Mint.Bytes())
		if err != nil {
			continue
		}
		accOwner, err := types.PubkeyFromBytes(acc.Owner.Bytes())
		if err != nil {
			continue
		}
		out := OwnedTokenAccount{
			Address: address,
			Mint:    mint,
			Owner:   accOwner,
			Amount:  acc.Amount,
			State:   uint8(acc.State),
		}
		if acc.Delegate != nil {
			if delegate, err := types.PubkeyFromBytes(acc.Delegate.Bytes()); err == nil {
				out.Delegate = &delegate
			}
		}
		result = append(result, out)
	}
	return result, nil
}

func (c *RpcClient) SendSignedTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error) {
	txid, err := c.cli.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	return txid, nil
}

// ConfirmTransaction 轮询签名状态直到 confirmed/finalized。
// 链上执行失败（status.Err 非空）同样按 error 上抛。
func (c *RpcClient) ConfirmTransaction(ctx context.Context, txid string) error {
	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		status, err := c.cli.GetSignatureStatus(ctx, txid)
		if err == nil && status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", txid, status.Err)
			}
			if status.ConfirmationStatus != nil &&
				(*status.ConfirmationStatus == rpc.CommitmentConfirmed ||
					*status.ConfirmationStatus == rpc.CommitmentFinalized) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			// 文案与错误分类表中的超时条目保持可匹配
			return fmt.Errorf("Transaction was not confirmed in %v. It is unknown if it succeeded or failed. Check signature %s", confirmTimeout, txid)
		case <-ticker.C:
		}
	}
}
