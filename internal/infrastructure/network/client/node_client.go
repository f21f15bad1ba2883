package client

import (
	"context"
	"fmt"
	"math/big"
	"net/url"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"

	"go.uber.org/zap"
)

const nodeClientName = "node"

// nodeClient reads account state through the node RPC.
type nodeClient struct {
	transport *Transport
	endpoint  *url.URL
	logger    *zap.Logger
}

var _ port.NodeClient = (*nodeClient)(nil)

func newNodeClient(transport *Transport, endpoint *url.URL, logger *zap.Logger) *nodeClient {
	return &nodeClient{
		transport: transport,
		endpoint:  endpoint,
		logger:    logger.Named("NodeClient"),
	}
}

func (c *nodeClient) contractURL(address string, elem ...string) *url.URL {
	parts := append([]string{"chains", "main", "blocks", "head", "context", "contracts", address}, elem...)
	return endpointURL(c.endpoint, nil, parts...)
}

// GetBalance returns the spendable balance in mutez as an amount at the native scale.
func (c *nodeClient) GetBalance(ctx context.Context, address string) (entity.DecimalAmount, error) {
	var raw string
	if err := c.transport.GetJSON(ctx, nodeClientName, "balance", c.contractURL(address, "balance"), &raw); err != nil {
		return entity.DecimalAmount{}, err
	}

	mutez, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return entity.DecimalAmount{}, fmt.Errorf("node balance of %s: %w: %q", address, entity.ErrMalformedAmount, raw)
	}

	c.logger.Debug("Fetched native balance", zap.String("address", address), zap.String("mutez", raw))
	return entity.NewDecimalAmount(mutez, entity.NativeDecimalPlaces), nil
}

// GetManagerKey returns the account's revealed public key.
func (c *nodeClient) GetManagerKey(ctx context.Context, address string) (string, bool, error) {
	var key *string
	if err := c.transport.GetJSON(ctx, nodeClientName, "manager_key", c.contractURL(address, "manager_key"), &key); err != nil {
		return "", false, err
	}
	if key == nil || *key == "" {
		return "", false, nil
	}
	return *key, true, nil
}

func (c *nodeClient) Endpoint() *url.URL {
	u := *c.endpoint
	return &u
}

func (c *nodeClient) BuildID() string {
	return c.transport.BuildID()
}
