package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// NetworkIdentifier names the network environment a config targets.
type NetworkIdentifier string

const (
	NetworkMainnet NetworkIdentifier = "mainnet"
	NetworkTestnet NetworkIdentifier = "testnet"
	NetworkCustom  NetworkIdentifier = "custom"
)

// Valid reports whether id is one of the known identifiers.
func (id NetworkIdentifier) Valid() bool {
	switch id {
	case NetworkMainnet, NetworkTestnet, NetworkCustom:
		return true
	}
	return false
}

// WebRedirectTargets are the browser-side identity redirect URIs.
type WebRedirectTargets struct {
	Google          string `json:"google" yaml:"google"`
	BrowserFallback string `json:"browserFallback" yaml:"browserFallback"`
}

// IdentityRedirects holds the identity-provider redirect parameters of a network.
type IdentityRedirects struct {
	NativeRedirect string             `json:"nativeRedirect" yaml:"nativeRedirect"`
	Web            WebRedirectTargets `json:"web" yaml:"web"`
}

// NetworkConfig describes one network environment and its service endpoints.
// It is a plain value: copies never alias each other, so a config handed to the
// client registry cannot change underneath it.
type NetworkConfig struct {
	Identifier       NetworkIdentifier `json:"identifier" yaml:"identifier"`
	Name             string            `json:"name" yaml:"name"`
	NodeEndpoint     string            `json:"nodeEndpoint" yaml:"nodeEndpoint"`
	IndexerEndpoint  string            `json:"indexerEndpoint" yaml:"indexerEndpoint"`
	MetadataEndpoint string            `json:"metadataEndpoint" yaml:"metadataEndpoint"`
	Identity         IdentityRedirects `json:"identity" yaml:"identity"`
}

// NetworkEndpoints are the parsed service endpoints of a validated NetworkConfig.
type NetworkEndpoints struct {
	Node     *url.URL
	Indexer  *url.URL
	Metadata *url.URL
}

// Validate checks the config's structure without contacting any endpoint.
func (c NetworkConfig) Validate() error {
	_, err := c.Endpoints()
	return err
}

// Endpoints validates the config and returns its parsed service endpoints.
// Any structural problem yields ErrInvalidNetworkConfig.
func (c NetworkConfig) Endpoints() (NetworkEndpoints, error) {
	if !c.Identifier.Valid() {
		return NetworkEndpoints{}, fmt.Errorf("%w: unknown network identifier %q", ErrInvalidNetworkConfig, c.Identifier)
	}

	node, err := parseServiceEndpoint("node", c.NodeEndpoint)
	if err != nil {
		return NetworkEndpoints{}, err
	}
	indexer, err := parseServiceEndpoint("indexer", c.IndexerEndpoint)
	if err != nil {
		return NetworkEndpoints{}, err
	}
	metadata, err := parseServiceEndpoint("metadata", c.MetadataEndpoint)
	if err != nil {
		return NetworkEndpoints{}, err
	}

	if err := validateRedirect("identity native redirect", c.Identity.NativeRedirect, false); err != nil {
		return NetworkEndpoints{}, err
	}
	if err := validateRedirect("identity google redirect", c.Identity.Web.Google, true); err != nil {
		return NetworkEndpoints{}, err
	}
	if err := validateRedirect("identity browser fallback redirect", c.Identity.Web.BrowserFallback, true); err != nil {
		return NetworkEndpoints{}, err
	}

	return NetworkEndpoints{Node: node, Indexer: indexer, Metadata: metadata}, nil
}

// DisplayName returns Name, falling back to the identifier.
func (c NetworkConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.Identifier)
}

func parseServiceEndpoint(field, raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s endpoint is empty", ErrInvalidNetworkConfig, field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s endpoint %q: %v", ErrInvalidNetworkConfig, field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s endpoint %q must use http or https", ErrInvalidNetworkConfig, field, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %s endpoint %q has no host", ErrInvalidNetworkConfig, field, raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// validateRedirect accepts any absolute URI (native redirects use app schemes);
// web redirects must be http(s).
func validateRedirect(field, raw string, web bool) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidNetworkConfig, field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidNetworkConfig, field, raw, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: %s %q is not an absolute URI", ErrInvalidNetworkConfig, field, raw)
	}
	if web && (u.Scheme != "http" && u.Scheme != "https" || u.Host == "") {
		return fmt.Errorf("%w: %s %q must be an http(s) URL", ErrInvalidNetworkConfig, field, raw)
	}
	return nil
}
