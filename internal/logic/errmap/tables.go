package errmap

import (
	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/pkg/types"
)

// CodeMessage 程序错误表中的一条：anchor 数值错误码 → 可读文案
type CodeMessage struct {
	Code    uint64
	Message string
}

// ProgramTable 某个链上程序的错误表，进程级只读常量
type ProgramTable struct {
	Program types.Pubkey
	Errors  []CodeMessage
}

// lookup 按数值码精确查找
func (t *ProgramTable) lookup(code uint64) string {
	for _, e := range t.Errors {
		if e.Code == code {
			return e.Message
		}
	}
	return ""
}

// Rule 通用账本错误表中的一条：code 既可能是数值码，也可能是错误文本片段
type Rule struct {
	Code    string
	Message string
}

// DefaultTables 返回按优先级排列的程序错误表：
// token-manager → use-invalidator → claim-approver → time-invalidator → payment-manager
func DefaultTables() []ProgramTable {
	return []ProgramTable{
		{Program: consts.RentalManagerProgram, Errors: []CodeMessage{
			{6000, "Token account not owned by issuer"},
			{6001, "Invalid token account"},
			{6002, "Invalid rental manager state for this instruction"},
			{6003, "Invalid issuer"},
			{6004, "Invalid invalidator"},
			{6005, "Invalid mint"},
			{6006, "Rental has not been claimed"},
			{6007, "Invalid recipient token account"},
			{6008, "Invalid claim authority"},
			{6009, "Invalid transfer authority"},
		}},
		{Program: consts.UseInvalidatorProgram, Errors: []CodeMessage{
			{6000, "Invalid payment token account"},
			{6001, "Invalid rental manager for this use invalidator"},
			{6002, "Usages at the maximum"},
			{6003, "Invalid use authority"},
			{6004, "Insufficient usages remaining"},
		}},
		{Program: consts.ClaimApproverProgram, Errors: []CodeMessage{
			{6000, "Invalid payer token account"},
			{6001, "Invalid payment token account"},
			{6002, "Invalid rental manager for this claim approver"},
			{6003, "Invalid collector"},
		}},
		{Program: consts.TimeInvalidatorProgram, Errors: []CodeMessage{
			{6000, "Rental has not expired"},
			{6001, "Invalid rental manager for this time invalidator"},
			{6002, "Invalid expiration"},
			{6003, "Invalid extension payment amount"},
			{6004, "Extension exceeds max expiration"},
		}},
		{Program: consts.PaymentManagerProgram, Errors: []CodeMessage{
			{6000, "Invalid fee collector"},
			{6001, "Invalid payment mint"},
			{6002, "Royalties exceed total payment amount"},
		}},
	}
}

// nativeErrors 通用账本错误表。表内顺序即扫描顺序：靠后登记的条目优先命中，
// 与条目声明相反（声明顺序从通用到具体，init 时整体反转）。
var nativeErrors = []Rule{
	{"WalletSignTransactionError", "User rejected the request."},
	{"failed to get recent blockhash", "Solana is experiencing degrading performance. You transaction failed to execute."},
	{"Blockhash not found", "Solana is experiencing degrading performance. Transaction may or may not have gone through."},
	{"Transaction was not confirmed in", "Transaction timed out waiting on confirmation from Solana. It may or may not have gone through."},
	{"Attempt to debit an account but found no record of a prior credit", "Wallet has never had any sol before. Try adding sol first."},
	{"Provided owner is not allowed", "Token account is already created for this user"},
	{"0x3", "Account not associated with this Mint"},
	// token program 错误
	{"insufficient lamports", "Insufficient funds. User does not have enough balance of token to complete the transaction"},
	{"91", "Token is not ellgible for rent"},
	// anchor 框架错误
	{"100", "InstructionMissing: 8 byte instruction identifier not provided"},
	{"101", "InstructionFallbackNotFound: Fallback functions are not supported"},
	{"102", "InstructionDidNotDeserialize: The program could not deserialize the given instruction"},
	{"103", "InstructionDidNotSerialize: The program could not serialize the given instruction"},
	{"1000", "IdlInstructionStub: The program was compiled without idl instructions"},
	{"1001", "IdlInstructionInvalidProgram: Invalid program given to the IDL instruction"},
	{"2000", "ConstraintMut: A mut constraint was violated"},
	{"2001", "ConstraintHasOne: A has one constraint was violated"},
	{"2002", "ConstraintSigner: A signer constraint as violated"},
	{"2003", "ConstraintRaw: A raw constraint was violated"},
	{"2004", "ConstraintOwner: An owner constraint was violated"},
	{"2005", "ConstraintRentExempt: A rent exemption constraint was violated"},
	{"2006", "ConstraintSeeds: A seeds constraint was violated"},
	{"2007", "ConstraintExecutable: An executable constraint was violated"},
	{"2008", "ConstraintState: A state constraint was violated"},
	{"2009", "ConstraintAssociated: An associated constraint was violated"},
	{"2010", "ConstraintAssociatedInit: An associated init constraint was violated"},
	{"2011", "ConstraintClose: A close constraint was violated"},
	{"2012", "ConstraintAddress: An address constraint was violated"},
	{"2013", "ConstraintZero: Expected zero account discriminant"},
	{"2014", "ConstraintTokenMint: A token mint constraint was violated"},
	{"2015", "ConstraintTokenOwner: A token owner constraint was violated"},
	{"2016", "ConstraintMintMintAuthority: A mint mint authority constraint was violated"},
	{"2017", "ConstraintMintFreezeAuthority: A mint freeze authority constraint was violated"},
	{"2018", "ConstraintMintDecimals: A mint decimals constraint was violated"},
	{"2019", "ConstraintSpace: A space constraint was violated"},
	{"3000", "AccountDiscriminatorAlreadySet: The account discriminator was already set on this account"},
	{"3001", "AccountDiscriminatorNotFound: No 8 byte discriminator was found on the account"},
	{"3002", "AccountDiscriminatorMismatch: 8 byte discriminator did not match what was expected"},
	{"3003", "AccountDidNotDeserialize: Failed to deserialize the account"},
	{"3004", "AccountDidNotSerialize: Failed to serialize the account"},
	{"3005", "AccountNotEnoughKeys: Not enough account keys given to the instruction"},
	{"3006", "AccountNotMutable: The given account is not mutable"},
	{"3007", "AccountNotProgramOwned: The given account is not owned by the executing program"},
	{"3008", "InvalidProgramId: Program ID was not as expected"},
	{"3009", "InvalidProgramExecutable: Program account is not executable"},
	{"3010", "AccountNotSigner: The given account did not sign"},
	{"3011", "AccountNotSystemOwned: The given account is not owned by the system program"},
	{"3012", "AccountNotInitialized: The program expected this account to be already initialized"},
	{"3013", "AccountNotProgramData: The given account is not a program data account"},
	{"3014", "AccountNotAssociatedTokenAccount: The given account is not the associated token account"},
	{"4000", "StateInvalidAddress: The given state account does not have the correct address"},
	{"5000", "Deprecated: The API being used is deprecated and should no longer be used"},
}

func init() {
	for i, j := 0, len(nativeErrors)-1; i < j; i, j = i+1, j-1 {
		nativeErrors[i], nativeErrors[j] = nativeErrors[j], nativeErrors[i]
	}
}
