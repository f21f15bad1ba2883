package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"

	"go.uber.org/zap"
)

var (
	// ErrUnknownIdentityProvider is returned for a login flow the network has no redirect for.
	ErrUnknownIdentityProvider = errors.New("unknown identity provider")
	// ErrKeyNotRevealed is returned when an account has not revealed its public key.
	ErrKeyNotRevealed = errors.New("public key not revealed")
)

// identityClient computes login redirect targets for the network it was built
// for and resolves account keys through the node client of the same build.
type identityClient struct {
	network   entity.NetworkIdentifier
	redirects entity.IdentityRedirects
	node      *nodeClient
	logger    *zap.Logger
}

var _ port.IdentityClient = (*identityClient)(nil)

func newIdentityClient(
	network entity.NetworkIdentifier,
	node *nodeClient,
	redirects entity.IdentityRedirects,
	logger *zap.Logger,
) *identityClient {
	return &identityClient{
		network:   network,
		redirects: redirects,
		node:      node,
		logger:    logger.Named("IdentityClient"),
	}
}

func (c *identityClient) redirectFor(provider port.IdentityProvider) (string, error) {
	switch provider {
	case port.IdentityProviderNative:
		return c.redirects.NativeRedirect, nil
	case port.IdentityProviderGoogle:
		return c.redirects.Web.Google, nil
	case port.IdentityProviderBrowser:
		return c.redirects.Web.BrowserFallback, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIdentityProvider, provider)
	}
}

// LoginRequest returns the redirect target for provider with state and the
// network identifier attached as query parameters.
func (c *identityClient) LoginRequest(provider port.IdentityProvider, state string) (port.LoginRequest, error) {
	target, err := c.redirectFor(provider)
	if err != nil {
		return port.LoginRequest{}, err
	}

	u, err := url.Parse(target)
	if err != nil {
		return port.LoginRequest{}, fmt.Errorf("%w: redirect %q: %v", entity.ErrInvalidNetworkConfig, target, err)
	}
	query := u.Query()
	query.Set("network", string(c.network))
	if state != "" {
		query.Set("state", state)
	}
	u.RawQuery = query.Encode()

	return port.LoginRequest{
		Provider:    provider,
		Network:     string(c.network),
		RedirectURI: u.String(),
		State:       state,
	}, nil
}

// ResolvePublicKey returns the account's revealed public key.
func (c *identityClient) ResolvePublicKey(ctx context.Context, address string) (string, error) {
	key, revealed, err := c.node.GetManagerKey(ctx, address)
	if err != nil {
		return "", err
	}
	if !revealed {
		return "", fmt.Errorf("%w: %s", ErrKeyNotRevealed, address)
	}
	c.logger.Debug("Resolved public key", zap.String("address", address))
	return key, nil
}

func (c *identityClient) Network() entity.NetworkIdentifier {
	return c.network
}

func (c *identityClient) BuildID() string {
	return c.node.BuildID()
}
