package service

import (
	"context"
	"fmt"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

// balanceServiceImpl implements port.BalanceService.
type balanceServiceImpl struct {
	registry port.ClientRegistry
	rates    port.RateService
	logger   port.Logger
}

// NewBalanceService creates a balance service. rates may be nil.
func NewBalanceService(registry port.ClientRegistry, rates port.RateService, l port.Logger) port.BalanceService {
	return &balanceServiceImpl{
		registry: registry,
		rates:    rates,
		logger:   l,
	}
}

// AccountTokens captures the current client set once, so both lookups run
// against the same network even if it is switched meanwhile.
func (s *balanceServiceImpl) AccountTokens(ctx context.Context, address, currency string) (port.AccountBalances, error) {
	clients := s.registry.Current()
	network := clients.Network().DisplayName()

	var (
		native entity.DecimalAmount
		held   []entity.Token
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balance, err := clients.Node().GetBalance(gctx, address)
		if err != nil {
			return fmt.Errorf("native balance: %w", err)
		}
		native = balance
		return nil
	})
	g.Go(func() error {
		tokens, err := clients.Indexer().GetTokenBalances(gctx, address)
		if err != nil {
			return fmt.Errorf("token balances: %w", err)
		}
		held = tokens
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to fetch account tokens", "address", address, "network", network, "error", err)
		return port.AccountBalances{}, err
	}

	tokens := make([]entity.Token, 0, len(held)+1)
	tokens = append(tokens, entity.NativeTokenWithAmount(native))
	tokens = append(tokens, held...)

	if currency != "" && s.rates != nil {
		tokens = s.rates.Apply(currency, tokens)
	}

	s.logger.Debug("Fetched account tokens",
		"address", address,
		"network", network,
		"buildID", clients.BuildID(),
		"tokens", len(tokens))
	return port.AccountBalances{
		Network: clients.Network(),
		BuildID: clients.BuildID(),
		Tokens:  tokens,
	}, nil
}
