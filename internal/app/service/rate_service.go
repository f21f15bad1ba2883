package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// NativeRateService implements port.RateService. Only the native coin is priced;
// contract tokens keep a zero rate.
type NativeRateService struct {
	source     port.PriceSource
	currencies []string
	rates      *cache.Cache
	logger     port.Logger
}

var _ port.RateService = (*NativeRateService)(nil)

// NewRateService creates a rate service that keeps fetched rates for ttl.
func NewRateService(source port.PriceSource, currencies []string, ttl time.Duration, l port.Logger) *NativeRateService {
	normalized := make([]string, 0, len(currencies))
	for _, c := range currencies {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(c)))
	}
	return &NativeRateService{
		source:     source,
		currencies: normalized,
		rates:      cache.New(ttl, 2*ttl),
		logger:     l,
	}
}

// Refresh fetches the native price in every configured currency.
func (s *NativeRateService) Refresh(ctx context.Context) error {
	prices, err := s.source.NativePrices(ctx, s.currencies)
	if err != nil {
		return fmt.Errorf("refresh native rates: %w", err)
	}
	for currency, price := range prices {
		s.rates.Set(currency, price, cache.DefaultExpiration)
	}
	s.logger.Debug("Native rates refreshed", "currencies", len(prices))
	return nil
}

// Rate returns the cached native rate for currency.
func (s *NativeRateService) Rate(currency string) (decimal.Decimal, bool) {
	v, ok := s.rates.Get(strings.ToLower(currency))
	if !ok {
		return decimal.Zero, false
	}
	return v.(decimal.Decimal), true
}

// Apply returns tokens with the native token priced in currency. The input slice
// is not modified. Without a cached rate the tokens are returned unpriced.
func (s *NativeRateService) Apply(currency string, tokens []entity.Token) []entity.Token {
	out := make([]entity.Token, len(tokens))
	copy(out, tokens)

	rate, ok := s.Rate(currency)
	if !ok {
		return out
	}
	for i, t := range out {
		if t.IsNative() {
			out[i] = t.WithLocalCurrencyRate(rate)
		}
	}
	return out
}

// Run refreshes rates every interval until ctx is done. Refresh failures are
// logged and the previous rates stay cached until they expire.
func (s *NativeRateService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("Rate refresh failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
