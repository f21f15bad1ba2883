package port

import (
	"context"

	"wallet_core/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PriceSource fetches spot prices of the native coin in local currencies.
type PriceSource interface {
	// NativePrices returns the price of one native unit for each requested currency.
	NativePrices(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error)
}

// RateService keeps local-currency rates and prices tokens with them.
type RateService interface {
	Refresh(ctx context.Context) error
	Apply(currency string, tokens []entity.Token) []entity.Token
}

// AccountBalances is an account's token list together with the network and build
// of the client set it was read from.
type AccountBalances struct {
	Network entity.NetworkConfig
	BuildID string
	Tokens  []entity.Token
}

// BalanceService assembles an account's token list.
type BalanceService interface {
	// AccountTokens returns the native token first, followed by the indexer's
	// token holdings, priced in currency when a rate is known.
	AccountTokens(ctx context.Context, address, currency string) (AccountBalances, error)
}
