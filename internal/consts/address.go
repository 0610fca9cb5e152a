package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	TokenProgramStr       = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str   = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	TokenMetaProgramIdStr = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

	// 租赁相关 Programs（token-manager 及其配套程序）
	RentalManagerProgramStr   = "mgr99QFMYByTqGPWmNqunV7vBLmWWXdSrHUfV8Jf3JM"
	ClaimApproverProgramStr   = "pcaBwhJ1YHp7UDA7HASpQsRUmUNwzgYaLQto2kSj1fR"
	TimeInvalidatorProgramStr = "tmeEDp1RgoDtZFtx6qod3HkbQmv9LMe36uqKVvsLTDE"
	UseInvalidatorProgramStr  = "useZ65tbyvWpdYCLDJaegGK34Lnsi8S3jZdwx8122qp"
	PaymentManagerProgramStr  = "pmvYY6Wgvpe3DEj3UX1FcRpMx43kMLHLT2y4FqFrEvn"

	// 基础报价币
	WSOLMintStr = "So11111111111111111111111111111111111111112"
	USDCMintStr = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)
