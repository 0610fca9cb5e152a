package consts

import (
	"rental-market-sol/internal/pkg/types"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对、性能优化等场景。
var (
	// Programs
	TokenProgram     types.Pubkey
	TokenProgram2022 types.Pubkey
	TokenMetaProgram types.Pubkey

	// 租赁相关 Programs
	RentalManagerProgram   types.Pubkey
	ClaimApproverProgram   types.Pubkey
	TimeInvalidatorProgram types.Pubkey
	UseInvalidatorProgram  types.Pubkey
	PaymentManagerProgram  types.Pubkey

	// 基础报价币
	WSOLMint types.Pubkey
	USDCMint types.Pubkey
)

// init 自动将 base58 字符串地址转换为 types.Pubkey
func init() {
	TokenProgram = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022 = types.PubkeyFromBase58(TokenProgram2022Str)
	TokenMetaProgram = types.PubkeyFromBase58(TokenMetaProgramIdStr)

	RentalManagerProgram = types.PubkeyFromBase58(RentalManagerProgramStr)
	ClaimApproverProgram = types.PubkeyFromBase58(ClaimApproverProgramStr)
	TimeInvalidatorProgram = types.PubkeyFromBase58(TimeInvalidatorProgramStr)
	UseInvalidatorProgram = types.PubkeyFromBase58(UseInvalidatorProgramStr)
	PaymentManagerProgram = types.PubkeyFromBase58(PaymentManagerProgramStr)

	WSOLMint = types.PubkeyFromBase58(WSOLMintStr)
	USDCMint = types.PubkeyFromBase58(USDCMintStr)
}
