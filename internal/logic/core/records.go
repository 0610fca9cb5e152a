package core

import (
	"rental-market-sol/internal/pkg/types"
)

// RecordType 表示解码后的账户变体，一个 DecodedRecord 只激活一个变体
type RecordType uint8

const (
	RecordUnknown RecordType = iota
	RecordTokenAccount
	RecordMint
	RecordEdition
	RecordMetadata
	RecordRentalManager
	RecordClaimApprover
	RecordTimeInvalidator
	RecordUseInvalidator
)

func (t RecordType) String() string {
	switch t {
	case RecordTokenAccount:
		return "tokenAccount"
	case RecordMint:
		return "mint"
	case RecordEdition:
		return "edition"
	case RecordMetadata:
		return "metadata"
	case RecordRentalManager:
		return "rentalManager"
	case RecordClaimApprover:
		return "claimApprover"
	case RecordTimeInvalidator:
		return "timeInvalidator"
	case RecordUseInvalidator:
		return "useInvalidator"
	default:
		return "unknown"
	}
}

// RentalState 表示租赁生命周期状态，枚举值与链上程序一致
type RentalState uint8

const (
	StateInitialized RentalState = 0
	StateIssued      RentalState = 1
	StateClaimed     RentalState = 2
	StateInvalidated RentalState = 3
)

func (s RentalState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateIssued:
		return "issued"
	case StateClaimed:
		return "claimed"
	case StateInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// DecodedRecord 是账户解码结果的 tagged union：Type 指示激活的变体字段，
// 解码完成后只读，各层共享同一实例，不做二次修改。
type DecodedRecord struct {
	Address types.Pubkey
	Type    RecordType

	TokenAccount    *TokenAccountData
	Mint            *MintData
	Edition         *EditionData
	Metadata        *MetadataData
	RentalManager   *RentalManagerData
	ClaimApprover   *ClaimApproverData
	TimeInvalidator *TimeInvalidatorData
	UseInvalidator  *UseInvalidatorData
}

// TokenAccountData SPL Token 账户
type TokenAccountData struct {
	Address  types.Pubkey
	Mint     types.Pubkey
	Owner    types.Pubkey
	Amount   uint64
	Delegate *types.Pubkey // 为 nil 表示无委托（即未进入租赁）
	State    uint8
}

// MintData SPL Mint 账户
type MintData struct {
	Address  types.Pubkey
	Supply   uint64
	Decimals uint8
}

// EditionData Metaplex Edition / MasterEdition
type EditionData struct {
	Address   types.Pubkey
	Key       uint8
	Parent    types.Pubkey // 仅 Edition 有效
	Edition   uint64       // 仅 Edition 有效
	Supply    uint64       // 仅 MasterEdition 有效
	MaxSupply *uint64      // 仅 MasterEdition 有效
}

// Creator 链上 metadata 中登记的创作者
type Creator struct {
	Address  types.Pubkey
	Verified bool
	Share    uint8
}

// MetadataData Metaplex Metadata 账户（off-chain JSON 的指针）
type MetadataData struct {
	Address         types.Pubkey
	UpdateAuthority types.Pubkey
	Mint            types.Pubkey
	Name            string
	Symbol          string
	URI             string
	Creators        []Creator
}

// RentalManagerData 租赁管理账户（token-manager 程序）
type RentalManagerData struct {
	Address               types.Pubkey
	Issuer                types.Pubkey
	Mint                  types.Pubkey
	Amount                uint64
	Kind                  uint8
	State                 RentalState
	StateChangedAt        int64
	InvalidationType      uint8
	RecipientTokenAccount types.Pubkey // 未被 claim 时为零值
	ClaimApprover         *types.Pubkey
	Invalidators          []types.Pubkey
}

// ClaimApproverData 付费认领审批账户
type ClaimApproverData struct {
	Address       types.Pubkey
	RentalManager types.Pubkey
	PaymentAmount uint64
	PaymentMint   types.Pubkey
	Collector     types.Pubkey
}

// TimeInvalidatorData 按时间失效的租约条件
type TimeInvalidatorData struct {
	Address                  types.Pubkey
	RentalManager            types.Pubkey
	Expiration               *int64
	DurationSeconds          *int64
	MaxExpiration            *int64
	ExtensionPaymentAmount   *uint64
	ExtensionDurationSeconds *uint64
	ExtensionPaymentMint     *types.Pubkey
}

// UseInvalidatorData 按使用次数失效的租约条件
type UseInvalidatorData struct {
	Address       types.Pubkey
	RentalManager types.Pubkey
	Usages        uint64
	MaxUsages     *uint64
	UseAuthority  *types.Pubkey
}

// OffChainMetadata 从 metadata.URI 拉取的 off-chain JSON（解析失败时为 nil）
type OffChainMetadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Attributes  []AttributeKeyVal `json:"attributes"`
}

type AttributeKeyVal struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// CompositeTokenRecord 是 Join Engine 的输出单元：以 token account 为根、
// 通过 delegate → rentalManager 链路拼接出的单 token 视图。
// 不变式：RentalManager 及其派生字段（ClaimApprover / TimeInvalidator /
// UseInvalidator / RecipientTokenAccount）只有在 delegate 解码为租赁管理
// 账户时才非 nil；全 nil 表示该 token 未处于租赁中。
type CompositeTokenRecord struct {
	TokenAccount *TokenAccountData
	Mint         *MintData
	Edition      *EditionData
	Metadata     *MetadataData

	OffChainMetadata *OffChainMetadata

	RentalManager         *RentalManagerData
	ClaimApprover         *ClaimApproverData
	TimeInvalidator       *TimeInvalidatorData
	UseInvalidator        *UseInvalidatorData
	RecipientTokenAccount *TokenAccountData
}

// Rented 返回该 token 是否处于租赁管理之下
func (r *CompositeTokenRecord) Rented() bool {
	return r.RentalManager != nil
}

// Claimer 返回当前租用者（recipient token account 的 owner）；未被租用时返回 nil
func (r *CompositeTokenRecord) Claimer() *types.Pubkey {
	if r.RecipientTokenAccount == nil {
		return nil
	}
	owner := r.RecipientTokenAccount.Owner
	return &owner
}
