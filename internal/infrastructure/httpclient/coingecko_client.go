package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"wallet_core/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CoinGeckoClient fetches native coin prices from the CoinGecko simple price API.
type CoinGeckoClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	coinID  string
	timeout time.Duration
	logger  *zap.Logger
}

var _ port.PriceSource = (*CoinGeckoClient)(nil)

// NewCoinGeckoClient creates a new instance of CoinGeckoClient.
func NewCoinGeckoClient(baseURL, apiKey, coinID string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		coinID:  coinID,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// NativePrices returns the price of one native coin in each of currencies.
// Currencies CoinGecko does not quote are left out of the result.
func (c *CoinGeckoClient) NativePrices(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error) {
	if len(currencies) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	query := url.Values{}
	query.Set("ids", c.coinID)
	query.Set("vs_currencies", strings.ToLower(strings.Join(currencies, ",")))
	requestURL := c.baseURL + "/simple/price?" + query.Encode()

	c.logger.Debug("Requesting prices from CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("CoinGecko API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(rawBody, &prices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CoinGecko response from %s: %w", requestURL, err)
	}

	quoted := prices[c.coinID]
	out := make(map[string]decimal.Decimal, len(quoted))
	for currency, price := range quoted {
		out[strings.ToLower(currency)] = price
	}
	return out, nil
}
