package consts

const (
	// MaxBatchAccounts 单次 getMultipleAccounts 允许的最大地址数（RPC 上限 100）
	MaxBatchAccounts = 100

	// MaxConcurrentChunks 批量查账户时同时在途的 RPC 请求数上限
	MaxConcurrentChunks = 4

	// ClusterDevnet 开发网标识，creators 过滤在该网络放宽 verified 校验
	ClusterDevnet = "devnet"
)
