package accountdecoder

import (
	"bytes"
	"crypto/sha256"

	"github.com/near/borsh-go"

	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/pkg/types"
)

// 租赁程序的账户是 anchor 账户：8 字节 discriminator + borsh 布局
const anchorDiscriminatorLen = 8

var (
	rentalManagerDiscriminator   = anchorDiscriminator("TokenManager")
	claimApproverDiscriminator   = anchorDiscriminator("PaidClaimApprover")
	timeInvalidatorDiscriminator = anchorDiscriminator("TimeInvalidator")
	useInvalidatorDiscriminator  = anchorDiscriminator("UseInvalidator")
)

// anchorDiscriminator 计算 anchor 账户判别码：sha256("account:<Name>")[0:8]
func anchorDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:anchorDiscriminatorLen]
}

func stripDiscriminator(data, want []byte) ([]byte, bool) {
	if len(data) <= anchorDiscriminatorLen {
		return nil, false
	}
	if !bytes.Equal(data[:anchorDiscriminatorLen], want) {
		return nil, false
	}
	return data[anchorDiscriminatorLen:], true
}

type rentalManagerLayout struct {
	Version               uint8
	Bump                  uint8
	Count                 uint64
	NumInvalidators       uint8
	Issuer                types.Pubkey
	Mint                  types.Pubkey
	Amount                uint64
	Kind                  uint8
	State                 uint8
	StateChangedAt        int64
	InvalidationType      uint8
	RecipientTokenAccount types.Pubkey
	ReceiptMint           *types.Pubkey
	ClaimApprover         *types.Pubkey
	TransferAuthority     *types.Pubkey
	Invalidators          []types.Pubkey
}

func decodeRentalManager(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	body, ok := stripDiscriminator(data, rentalManagerDiscriminator)
	if !ok {
		return nil, false
	}
	var layout rentalManagerLayout
	if err := borsh.Deserialize(&layout, body); err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordRentalManager,
		RentalManager: &core.RentalManagerData{
			Address:               addr,
			Issuer:                layout.Issuer,
			Mint:                  layout.Mint,
			Amount:                layout.Amount,
			Kind:                  layout.Kind,
			State:                 core.RentalState(layout.State),
			StateChangedAt:        layout.StateChangedAt,
			InvalidationType:      layout.InvalidationType,
			RecipientTokenAccount: layout.RecipientTokenAccount,
			ClaimApprover:         layout.ClaimApprover,
			Invalidators:          layout.Invalidators,
		},
	}, true
}

type claimApproverLayout struct {
	Bump          uint8
	RentalManager types.Pubkey
	PaymentAmount uint64
	PaymentMint   types.Pubkey
	Collector     types.Pubkey
}

func decodeClaimApprover(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	body, ok := stripDiscriminator(data, claimApproverDiscriminator)
	if !ok {
		return nil, false
	}
	var layout claimApproverLayout
	if err := borsh.Deserialize(&layout, body); err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordClaimApprover,
		ClaimApprover: &core.ClaimApproverData{
			Address:       addr,
			RentalManager: layout.RentalManager,
			PaymentAmount: layout.PaymentAmount,
			PaymentMint:   layout.PaymentMint,
			Collector:     layout.Collector,
		},
	}, true
}

type timeInvalidatorLayout struct {
	Bump                     uint8
	RentalManager            types.Pubkey
	Expiration               *int64
	DurationSeconds          *int64
	ExtensionPaymentAmount   *uint64
	ExtensionDurationSeconds *uint64
	ExtensionPaymentMint     *types.Pubkey
	MaxExpiration            *int64
}

func decodeTimeInvalidator(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	body, ok := stripDiscriminator(data, timeInvalidatorDiscriminator)
	if !ok {
		return nil, false
	}
	var layout timeInvalidatorLayout
	if err := borsh.Deserialize(&layout, body); err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordTimeInvalidator,
		TimeInvalidator: &core.TimeInvalidatorData{
			Address:                  addr,
			RentalManager:            layout.RentalManager,
			Expiration:               layout.Expiration,
			DurationSeconds:          layout.DurationSeconds,
			MaxExpiration:            layout.MaxExpiration,
			ExtensionPaymentAmount:   layout.ExtensionPaymentAmount,
			ExtensionDurationSeconds: layout.ExtensionDurationSeconds,
			ExtensionPaymentMint:     layout.ExtensionPaymentMint,
		},
	}, true
}

type useInvalidatorLayout struct {
	Bump          uint8
	RentalManager types.Pubkey
	Usages        uint64
	MaxUsages     *uint64
	UseAuthority  *types.Pubkey
}

func decodeUseInvalidator(addr types.Pubkey, data []byte) (*core.DecodedRecord, bool) {
	body, ok := stripDiscriminator(data, useInvalidatorDiscriminator)
	if !ok {
		return nil, false
	}
	var layout useInvalidatorLayout
	if err := borsh.Deserialize(&layout, body); err != nil {
		return nil, false
	}
	return &core.DecodedRecord{
		Address: addr,
		Type:    core.RecordUseInvalidator,
		UseInvalidator: &core.UseInvalidatorData{
			Address:       addr,
			RentalManager: layout.RentalManager,
			Usages:        layout.Usages,
			MaxUsages:     layout.MaxUsages,
			UseAuthority:  layout.UseAuthority,
		},
	}, true
}
