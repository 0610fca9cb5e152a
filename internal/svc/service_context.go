package svc

import (
	"github.com/redis/go-redis/v9"

	"rental-market-sol/internal/cache"
	"rental-market-sol/internal/chain"
	"rental-market-sol/internal/config"
	"rental-market-sol/internal/logic/accountdecoder"
	"rental-market-sol/internal/logic/errmap"
	"rental-market-sol/internal/logic/executor"
	"rental-market-sol/internal/logic/resolver"
	"rental-market-sol/internal/notify"
	"rental-market-sol/internal/pkg/logger"
)

// ServiceContext 汇集 API 服务的全部长生命周期资源
type ServiceContext struct {
	Config   config.ApiConfig
	Chain    *chain.RpcClient
	Fetcher  *chain.BatchFetcher
	Registry *accountdecoder.Registry
	Resolver *resolver.Resolver
	Notifier notify.Notifier

	// Executor 仅在配置了运营方钱包时可用
	Executor *executor.Executor

	rdb           *redis.Client
	kafkaNotifier *notify.KafkaNotifier
}

// NewServiceContext 创建 API 服务上下文
func NewServiceContext(c config.ApiConfig) (*ServiceContext, error) {
	rpcClient := chain.NewRpcClient(c.ChainConf.Endpoint)

	accountCache := cache.NewAccountCache(c.CacheConf.MaxEntries, c.CacheConf.TTL())
	fetcher := chain.NewBatchFetcher(rpcClient, chain.FetcherOption{
		MaxBatchAccounts:    c.FetcherConf.MaxBatchAccounts,
		MaxConcurrentChunks: c.FetcherConf.MaxConcurrentChunks,
		Cache:               accountCache,
	})

	registry := accountdecoder.NewRegistry()

	var rdb *redis.Client
	if c.MetadataConf.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.MetadataConf.RedisAddr})
	}
	offchain := resolver.NewHTTPOffChainFetcher(rdb)

	tokenResolver := resolver.NewResolver(rpcClient, fetcher, registry, offchain, resolver.Config{
		Cluster:                c.ChainConf.Cluster,
		DefaultUpdateAuthority: c.ResolverConf.DefaultUpdateAuthority,
		DisallowedMints:        c.ResolverConf.DisallowedMints,
		OffChainConcurrency:    c.MetadataConf.FetchConcurrency,
	})

	var notifier notify.Notifier = notify.NopNotifier{}
	var kafkaNotifier *notify.KafkaNotifier
	if c.NotifyConf.Enabled {
		var err error
		kafkaNotifier, err = notify.NewKafkaNotifier(c.NotifyConf.ToKafkaOption(), c.NotifyConf.Topic, c.NotifyConf.Partitions)
		if err != nil {
			logger.Errorf("Kafka notifier 初始化失败: %v", err)
			return nil, err
		}
		notifier = kafkaNotifier
	}

	svcCtx := &ServiceContext{
		Config:        c,
		Chain:         rpcClient,
		Fetcher:       fetcher,
		Registry:      registry,
		Resolver:      tokenResolver,
		Notifier:      notifier,
		rdb:           rdb,
		kafkaNotifier: kafkaNotifier,
	}

	if c.WalletConf.PrivateKey != "" {
		wallet, err := executor.LocalWalletFromBase58(c.WalletConf.PrivateKey)
		if err != nil {
			logger.Errorf("运营方钱包加载失败: %v", err)
			return nil, err
		}
		svcCtx.Executor = executor.NewExecutor(rpcClient, wallet, errmap.DefaultTables(), notifier)
	}

	logger.Infof("API 服务上下文初始化完成")
	return svcCtx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.kafkaNotifier != nil {
		ctx.kafkaNotifier.Close()
	}
	if ctx.rdb != nil {
		_ = ctx.rdb.Close()
	}
}
