package handler

import (
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/rest/httpx"

	"rental-market-sol/internal/consts"
	"rental-market-sol/internal/logic/core"
	"rental-market-sol/internal/logic/filter"
	"rental-market-sol/internal/logic/resolver"
	"rental-market-sol/internal/pkg/types"
	"rental-market-sol/internal/svc"
)

// WalletTokensRequest 查询钱包名下 token 组合视图
type WalletTokensRequest struct {
	Wallet        string `path:"wallet"`
	FilterKind    string `form:"filter,optional"` // creators / issuer / state / owner / claimer
	FilterValues  string `form:"values,optional"` // 逗号分隔
	FetchMetadata bool   `form:"metadata,optional"`
}

// RentalView 租赁侧字段，仅在 token 处于租赁中时返回
type RentalView struct {
	RentalManager string  `json:"rentalManager"`
	Issuer        string  `json:"issuer"`
	State         string  `json:"state"`
	Claimer       string  `json:"claimer,omitempty"`
	PaymentAmount uint64  `json:"paymentAmount,omitempty"`
	PaymentMint   string  `json:"paymentMint,omitempty"`
	PaymentToken  string  `json:"paymentToken,omitempty"`
	Expiration    *int64  `json:"expiration,omitempty"`
	MaxExpiration *int64  `json:"maxExpiration,omitempty"`
	Usages        *uint64 `json:"usages,omitempty"`
	MaxUsages     *uint64 `json:"maxUsages,omitempty"`
}

// TokenView 单个 token 的响应视图
type TokenView struct {
	TokenAccount string `json:"tokenAccount"`
	Mint         string `json:"mint"`
	Owner        string `json:"owner"`
	Amount       uint64 `json:"amount"`

	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	URI    string `json:"uri,omitempty"`
	Image  string `json:"image,omitempty"`

	Rental *RentalView `json:"rental,omitempty"`
}

type WalletTokensResponse struct {
	Wallet string      `json:"wallet"`
	Tokens []TokenView `json:"tokens"`
}

// WalletTokensHandler 解析钱包的 token 组合视图并按查询参数过滤
func WalletTokensHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WalletTokensRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		wallet, err := types.TryPubkeyFromBase58(req.Wallet)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		var spec *filter.Spec
		if req.FilterKind != "" {
			spec = &filter.Spec{
				Kind:            filter.Kind(req.FilterKind),
				Values:          splitValues(req.FilterValues),
				RequireVerified: svcCtx.Config.ChainConf.Cluster != consts.ClusterDevnet,
			}
		}

		records, err := svcCtx.Resolver.Resolve(r.Context(), &wallet, resolver.Options{
			Filter:        spec,
			FetchMetadata: req.FetchMetadata,
		})
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		resp := WalletTokensResponse{
			Wallet: req.Wallet,
			Tokens: make([]TokenView, 0, len(records)),
		}
		for _, record := range records {
			resp.Tokens = append(resp.Tokens, toTokenView(record))
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func splitValues(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// paymentTokenSymbol 常见付费币种的展示符号，未知 mint 返回空串
func paymentTokenSymbol(mint types.Pubkey) string {
	switch mint {
	case consts.WSOLMint:
		return "SOL"
	case consts.USDCMint:
		return "USDC"
	}
	return ""
}

func toTokenView(record *core.CompositeTokenRecord) TokenView {
	view := TokenView{
		TokenAccount: record.TokenAccount.Address.String(),
		Mint:         record.TokenAccount.Mint.String(),
		Owner:        record.TokenAccount.Owner.String(),
		Amount:       record.TokenAccount.Amount,
	}
	if record.Metadata != nil {
		view.Name = record.Metadata.Name
		view.Symbol = record.Metadata.Symbol
		view.URI = record.Metadata.URI
	}
	if record.OffChainMetadata != nil {
		view.Image = record.OffChainMetadata.Image
		if record.OffChainMetadata.Name != "" {
			view.Name = record.OffChainMetadata.Name
		}
	}
	if record.RentalManager == nil {
		return view
	}

	rental := &RentalView{
		RentalManager: record.RentalManager.Address.String(),
		Issuer:        record.RentalManager.Issuer.String(),
		State:         record.RentalManager.State.String(),
	}
	if claimer := record.Claimer(); claimer != nil {
		rental.Claimer = claimer.String()
	}
	if record.ClaimApprover != nil {
		rental.PaymentAmount = record.ClaimApprover.PaymentAmount
		rental.PaymentMint = record.ClaimApprover.PaymentMint.String()
		rental.PaymentToken = paymentTokenSymbol(record.ClaimApprover.PaymentMint)
	}
	if record.TimeInvalidator != nil {
		rental.Expiration = record.TimeInvalidator.Expiration
		rental.MaxExpiration = record.TimeInvalidator.MaxExpiration
	}
	if record.UseInvalidator != nil {
		usages := record.UseInvalidator.Usages
		rental.Usages = &usages
		rental.MaxUsages = record.UseInvalidator.MaxUsages
	}
	view.Rental = rental
	return view
}
