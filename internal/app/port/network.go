package port

import (
	"context"
	"net/url"

	"wallet_core/internal/domain/entity"
)

// NodeClient talks to a network node's RPC interface.
type NodeClient interface {
	// GetBalance fetches the native balance of an account at the native scale.
	GetBalance(ctx context.Context, address string) (entity.DecimalAmount, error)

	// GetManagerKey fetches the revealed public key of an account. The second
	// return value is false when the key has not been revealed yet.
	GetManagerKey(ctx context.Context, address string) (string, bool, error)

	Endpoint() *url.URL
	BuildID() string
}

// ContractMetadata is the descriptive metadata of a token contract.
type ContractMetadata struct {
	Address  string
	Alias    string
	Name     string
	Symbol   string
	Standard entity.StandardVersion
	IconURI  string
}

// MetadataClient resolves contract metadata.
type MetadataClient interface {
	GetContractMetadata(ctx context.Context, contract string) (ContractMetadata, error)
	BuildID() string
}

// IndexerClient lists token holdings through a network indexer.
type IndexerClient interface {
	// GetTokenBalances returns every non-native token with a positive balance
	// held by address. NFTs are grouped per contract.
	GetTokenBalances(ctx context.Context, address string) ([]entity.Token, error)
	BuildID() string
}

// IdentityProvider names a login flow.
type IdentityProvider string

const (
	IdentityProviderNative  IdentityProvider = "native"
	IdentityProviderGoogle  IdentityProvider = "google"
	IdentityProviderBrowser IdentityProvider = "browser"
)

// LoginRequest is a computed identity-provider login redirect.
type LoginRequest struct {
	Provider    IdentityProvider `json:"provider"`
	Network     string           `json:"network"`
	RedirectURI string           `json:"redirectUri"`
	State       string           `json:"state"`
}

// IdentityClient computes identity login targets and resolves account keys.
type IdentityClient interface {
	LoginRequest(provider IdentityProvider, state string) (LoginRequest, error)
	ResolvePublicKey(ctx context.Context, address string) (string, error)
	Network() entity.NetworkIdentifier
	BuildID() string
}

// ClientSet is one coherent generation of downstream clients. Every client in a
// set was built from the same NetworkConfig and carries the same build id.
type ClientSet interface {
	Node() NodeClient
	Metadata() MetadataClient
	Indexer() IndexerClient
	Identity() IdentityClient
	Network() entity.NetworkConfig
	BuildID() string
}

// ClientRegistry publishes the active ClientSet and swaps it on reconfiguration.
type ClientRegistry interface {
	// Current returns the active set. A caller keeps using the set it got for the
	// whole of an operation, even if a reconfiguration publishes a new one.
	Current() ClientSet

	// Reconfigure builds a new set from cfg and publishes it atomically. On error
	// the active set is left untouched.
	Reconfigure(cfg entity.NetworkConfig) error
}

// NetworkDefinitionProvider resolves the network configurations known to the
// application.
type NetworkDefinitionProvider interface {
	All() []entity.NetworkConfig
	// Lookup finds a network by identifier or by name, case-insensitively.
	Lookup(nameOrIdentifier string) (entity.NetworkConfig, bool)
}
