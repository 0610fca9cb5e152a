package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"

	"rental-market-sol/internal/pkg/logger"
	"rental-market-sol/internal/pkg/mq"
)

type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// ChainConfig 链上 RPC 配置
type ChainConfig struct {
	Endpoint string `yaml:"endpoint"` // RPC 节点地址
	Cluster  string `yaml:"cluster"`  // mainnet / devnet / testnet
}

// FetcherConfig 批量账户查询配置
type FetcherConfig struct {
	MaxBatchAccounts    int `yaml:"max_batch_accounts"`    // 单次 RPC 的地址上限
	MaxConcurrentChunks int `yaml:"max_concurrent_chunks"` // 分片并发上限
}

// AccountCacheConfig 账户原始字节的进程内缓存
type AccountCacheConfig struct {
	MaxEntries int `yaml:"max_entries"` // 0 表示关闭缓存
	TTLSeconds int `yaml:"ttl_seconds"`
}

func (c *AccountCacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// MetadataConfig off-chain JSON 拉取配置
type MetadataConfig struct {
	RedisAddr        string `yaml:"redis_addr"`        // 为空时不启用 Redis 缓存
	FetchConcurrency int    `yaml:"fetch_concurrency"` // 并发拉取上限
}

// ResolverConfig Join Engine 配置
type ResolverConfig struct {
	DefaultUpdateAuthority string   `yaml:"default_update_authority"` // 为空时不启用系列过滤
	DisallowedMints        []string `yaml:"disallowed_mints"`
}

// NotifyConfig Kafka 通知配置
type NotifyConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Brokers    string `yaml:"brokers"`
	Topic      string `yaml:"topic"`
	Partitions int    `yaml:"partitions"`
	BatchSize  int    `yaml:"batch_size"`
	LingerMs   int    `yaml:"linger_ms"`
}

func (c *NotifyConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics: []struct {
			Topic      string
			Partitions int
		}{
			{Topic: c.Topic, Partitions: c.Partitions},
		},
	}
}

// WalletConfig 运营方钱包。私钥为空时交易提交能力不可用，只读接口不受影响。
type WalletConfig struct {
	PrivateKey string `yaml:"private_key"` // base58 私钥
}

// ApiConfig 是主配置结构体，驱动 API 服务
type ApiConfig struct {
	rest.RestConf `yaml:",inline"`

	LogConf      LogConfig          `yaml:"logger"`
	ChainConf    ChainConfig        `yaml:"chain"`
	FetcherConf  FetcherConfig      `yaml:"fetcher"`
	CacheConf    AccountCacheConfig `yaml:"account_cache"`
	MetadataConf MetadataConfig     `yaml:"metadata"`
	ResolverConf ResolverConfig     `yaml:"resolver"`
	NotifyConf   NotifyConfig       `yaml:"notify"`
	WalletConf   WalletConfig       `yaml:"wallet"`
}
