package executor

import (
	"context"
	"errors"
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/logic/errmap"
	"rental-market-sol/internal/notify"
	"rental-market-sol/internal/pkg/logger"
)

const defaultMaxInFlight = 8

// Prepared 一笔待提交的交易：指令序列 + 该笔专属的额外签名人。
// feePayer 与 blockhash 由执行器在提交时统一盖章。
type Prepared struct {
	Instructions []sdktypes.Instruction
	Signers      []sdktypes.Account
}

// Result 单笔交易的提交结果，TxID 与 Error 恰好一个非空
type Result struct {
	TxID  string `json:"txid,omitempty"`
	Error string `json:"error,omitempty"`
}

// NotificationConfig 批量提交过程中的通知文案
type NotificationConfig struct {
	IndividualSuccesses bool   // 每笔成功单独通知
	Message             string // 成功通知的前缀文案
	ErrorMessage        string // 非空时覆盖分类器产出的失败文案
	Description         string // 汇总通知的描述
}

// Config 一次批量提交的配置
type Config struct {
	// PreTx 不为空时先行提交并完整确认，之后才碰其余交易；
	// 其结果置于输出序列之首
	PreTx *Prepared

	// ThrowIndividualError 任何一笔失败即让整个调用立刻报错
	ThrowIndividualError bool

	// MaxInFlight 其余交易的并发上限，<=0 取默认值
	MaxInFlight int

	Notification *NotificationConfig

	// Callback 每次 SubmitAll 恰好回调一次（空批除外），入参表示是否全部成功
	Callback func(success bool)
}

// Executor 交易提交管线：统一盖章 blockhash 与 feePayer、整批一次签名、
// 广播并确认，逐笔隔离成败，失败经错误分类器转为可读文案。
type Executor struct {
	chain    chain.Client
	wallet   Wallet
	tables   []errmap.ProgramTable
	notifier notify.Notifier
}

func NewExecutor(chainClient chain.Client, wallet Wallet, tables []errmap.ProgramTable, notifier notify.Notifier) *Executor {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Executor{chain: chainClient, wallet: wallet, tables: tables, notifier: notifier}
}

// SubmitAll 批量提交。输出序列保持输入顺序：[preTx 结果?, 各笔结果...]。
// 空批直接返回空序列，不触碰 RPC 与签名方，也不回调。
func (e *Executor) SubmitAll(ctx context.Context, txs []Prepared, cfg Config) ([]Result, error) {
	all := txs
	if cfg.PreTx != nil {
		all = append([]Prepared{*cfg.PreTx}, txs...)
	}
	if len(all) == 0 {
		return []Result{}, nil
	}

	blockhash, err := e.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	unsigned := make([]sdktypes.Transaction, len(all))
	for i, p := range all {
		unsigned[i] = sdktypes.Transaction{
			Message: sdktypes.NewMessage(sdktypes.NewMessageParam{
				FeePayer:        e.wallet.PublicKey(),
				RecentBlockhash: blockhash.Hash,
				Instructions:    p.Instructions,
			}),
		}
	}

	// 整批一次签名，拒签属于批量级失败
	signed, err := e.wallet.SignAll(unsigned)
	if err != nil {
		return nil, fmt.Errorf("sign transactions: %w", err)
	}

	results := make([]Result, len(all))
	total := len(all)
	success := true
	defer func() {
		if cfg.Callback != nil {
			cfg.Callback(success)
		}
	}()

	rest := signed
	restOffset := 0
	if cfg.PreTx != nil {
		txid, err := e.submitOne(ctx, signed[0], cfg.PreTx.Signers)
		if err != nil {
			// preTx 失败：其余交易一律不提交
			message := e.classify(err)
			e.notifyError(ctx, cfg.Notification, message)
			results[0] = Result{Error: message}
			for i := 1; i < len(results); i++ {
				results[i] = Result{Error: fmt.Sprintf("pre-transaction failed: %s", message)}
			}
			success = false
			return results, nil
		}
		results[0] = Result{TxID: txid}
		rest = signed[1:]
		restOffset = 1
	}

	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	doneCh := make(chan string, len(rest))
	sem := make(chan struct{}, maxInFlight)
	for i := range rest {
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem }()

			txid, err := e.submitOne(ctx, rest[i], all[restOffset+i].Signers)
			if err == nil {
				results[restOffset+i] = Result{TxID: txid}
				if cfg.Notification != nil && cfg.Notification.IndividualSuccesses {
					e.notifier.Notify(ctx, notify.Notification{
						Message:     fmt.Sprintf("%s %d/%d", cfg.Notification.Message, restOffset+i+1, total),
						Description: cfg.Notification.Message,
						TxID:        txid,
						Severity:    notify.SeverityInfo,
					})
				}
				doneCh <- ""
				return
			}

			message := e.classify(err)
			logger.Warnf("[executor] transaction %d failed: %s", restOffset+i, message)
			if cfg.Notification != nil {
				description := cfg.Notification.ErrorMessage
				if description == "" {
					description = message
				}
				e.notifier.Notify(ctx, notify.Notification{
					Message:     fmt.Sprintf("Failed transaction %d/%d", restOffset+i+1, total),
					Description: description,
					Severity:    notify.SeverityError,
				})
				message = description
			}
			results[restOffset+i] = Result{Error: message}
			doneCh <- message
		}(i)
	}

	// 首个失败在 ThrowIndividualError 下立刻终止调用；
	// 已在途的提交不取消、也不再等待
	for range rest {
		if errMessage := <-doneCh; errMessage != "" {
			success = false
			if cfg.ThrowIndividualError {
				return nil, errors.New(errMessage)
			}
		}
	}

	successes := 0
	for _, r := range results {
		if r.TxID != "" {
			successes++
		}
	}
	if cfg.Notification != nil && successes > 0 {
		e.notifier.Notify(ctx, notify.Notification{
			Message:     fmt.Sprintf("%s %d/%d", cfg.Notification.Message, successes, total),
			Description: cfg.Notification.Description,
			Severity:    notify.SeverityInfo,
		})
	}
	return results, nil
}

// SingleConfig 单笔提交的配置
type SingleConfig struct {
	// Silent 失败时不向上抛错，只记结果
	Silent       bool
	Signers      []sdktypes.Account
	Notification *NotificationConfig
	Callback     func()
}

// Execute 提交并确认单笔交易，返回交易签名。
// 失败文案经分类器转换后作为错误返回（Silent 时吞掉）。
func (e *Executor) Execute(ctx context.Context, tx Prepared, cfg SingleConfig) (string, error) {
	if cfg.Callback != nil {
		defer cfg.Callback()
	}

	blockhash, err := e.chain.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}
	unsigned := sdktypes.Transaction{
		Message: sdktypes.NewMessage(sdktypes.NewMessageParam{
			FeePayer:        e.wallet.PublicKey(),
			RecentBlockhash: blockhash.Hash,
			Instructions:    tx.Instructions,
		}),
	}
	signed, err := e.wallet.SignAll([]sdktypes.Transaction{unsigned})
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	txid, err := e.submitOne(ctx, signed[0], append(cfg.Signers, tx.Signers...))
	if err != nil {
		message := e.classify(err)
		e.notifyError(ctx, cfg.Notification, message)
		if cfg.Silent {
			return "", nil
		}
		return "", errors.New(message)
	}

	if cfg.Notification != nil {
		e.notifier.Notify(ctx, notify.Notification{
			Message:     "Successful transaction",
			Description: cfg.Notification.Message,
			TxID:        txid,
			Severity:    notify.SeverityInfo,
		})
	}
	return txid, nil
}

// submitOne 附加额外签名、广播并等待确认
func (e *Executor) submitOne(ctx context.Context, tx sdktypes.Transaction, extraSigners []sdktypes.Account) (string, error) {
	if len(extraSigners) > 0 {
		data, err := tx.Message.Serialize()
		if err != nil {
			return "", fmt.Errorf("serialize message: %w", err)
		}
		for _, signer := range extraSigners {
			if err := tx.AddSignature(signer.Sign(data)); err != nil {
				return "", fmt.Errorf("partial sign: %w", err)
			}
		}
	}

	txid, err := e.chain.SendSignedTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	if err := e.chain.ConfirmTransaction(ctx, txid); err != nil {
		return "", err
	}
	return txid, nil
}

func (e *Executor) classify(err error) string {
	return errmap.Classify(errmap.FromError(err), e.tables, err.Error())
}

func (e *Executor) notifyError(ctx context.Context, cfg *NotificationConfig, message string) {
	if cfg == nil {
		return
	}
	description := cfg.ErrorMessage
	if description == "" {
		description = message
	}
	e.notifier.Notify(ctx, notify.Notification{
		Message:     "Failed transaction",
		Description: description,
		Severity:    notify.SeverityError,
	})
}
