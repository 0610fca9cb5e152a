package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"rental-market-sol/internal/svc"
)

// RegisterHandlers 注册全部 HTTP 路由
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes([]rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/v1/wallets/:wallet/tokens",
			Handler: WalletTokensHandler(svcCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/healthz",
			Handler: HealthHandler(),
		},
	})
}

// HealthHandler 存活探针
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
