package networkdefinition

import (
	"fmt"
	"strings"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"
)

// NetworkDefinitionProvider provides the built-in networks plus any custom ones
// supplied by configuration.
type NetworkDefinitionProvider struct {
	logger      port.Logger
	definitions []entity.NetworkConfig
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Mainnet = entity.NetworkConfig{
		Identifier:       entity.NetworkMainnet,
		Name:             "Mainnet",
		NodeEndpoint:     "https://mainnet.api.tez.ie",
		IndexerEndpoint:  "https://api.tzkt.io",
		MetadataEndpoint: "https://api.tzkt.io",
		Identity: entity.IdentityRedirects{
			NativeRedirect: "walletcore://auth/callback",
			Web: entity.WebRedirectTargets{
				Google:          "https://auth.walletcore.dev/google/callback",
				BrowserFallback: "https://auth.walletcore.dev/browser/callback",
			},
		},
	}
	Ghostnet = entity.NetworkConfig{
		Identifier:       entity.NetworkTestnet,
		Name:             "Ghostnet",
		NodeEndpoint:     "https://ghostnet.ecadinfra.com",
		IndexerEndpoint:  "https://api.ghostnet.tzkt.io",
		MetadataEndpoint: "https://api.ghostnet.tzkt.io",
		Identity: entity.IdentityRedirects{
			NativeRedirect: "walletcore-testnet://auth/callback",
			Web: entity.WebRedirectTargets{
				Google:          "https://auth.testnet.walletcore.dev/google/callback",
				BrowserFallback: "https://auth.testnet.walletcore.dev/browser/callback",
			},
		},
	}
)

// NewNetworkDefinitionProvider creates a provider over the built-in networks and
// custom. Invalid custom networks and name clashes are logged and skipped.
func NewNetworkDefinitionProvider(log port.Logger, custom []entity.NetworkConfig) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:      log,
		definitions: []entity.NetworkConfig{Mainnet, Ghostnet},
	}

	for _, cfg := range custom {
		if cfg.Identifier == "" {
			cfg.Identifier = entity.NetworkCustom
		}
		if err := cfg.Validate(); err != nil {
			p.logger.Warn("Skipping invalid custom network", "name", cfg.Name, "error", err)
			continue
		}
		if cfg.Name == "" {
			p.logger.Warn("Skipping custom network without a name", "node", cfg.NodeEndpoint)
			continue
		}
		if _, exists := p.Lookup(cfg.Name); exists {
			p.logger.Warn(fmt.Sprintf("Duplicate network name %q. Skipping.", cfg.Name))
			continue
		}
		p.definitions = append(p.definitions, cfg)
		p.logger.Debug("Custom network registered", "name", cfg.Name, "node", cfg.NodeEndpoint)
	}

	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Known networks: %d", len(p.definitions)))
	return p
}

// All returns every known network, built-in ones first.
func (p *NetworkDefinitionProvider) All() []entity.NetworkConfig {
	if p == nil {
		return []entity.NetworkConfig{}
	}
	defsCopy := make([]entity.NetworkConfig, len(p.definitions))
	copy(defsCopy, p.definitions)
	return defsCopy
}

// Lookup matches nameOrIdentifier against names first, then identifiers, so a
// custom network can be selected by its name even though all customs share one
// identifier.
func (p *NetworkDefinitionProvider) Lookup(nameOrIdentifier string) (entity.NetworkConfig, bool) {
	if p == nil {
		return entity.NetworkConfig{}, false
	}
	key := strings.TrimSpace(nameOrIdentifier)
	for _, def := range p.definitions {
		if strings.EqualFold(def.Name, key) {
			return def, true
		}
	}
	for _, def := range p.definitions {
		if strings.EqualFold(string(def.Identifier), key) {
			return def, true
		}
	}
	return entity.NetworkConfig{}, false
}
