package client

import (
	"context"
	"net/url"
	"time"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	metadataClientName      = "metadata"
	defaultMetadataCacheTTL = 30 * time.Minute
)

type contractResponse struct {
	Address  string   `json:"address"`
	Alias    string   `json:"alias"`
	Tzips    []string `json:"tzips"`
	Metadata struct {
		Name         string `json:"name"`
		Symbol       string `json:"symbol"`
		ThumbnailURI string `json:"thumbnailUri"`
	} `json:"metadata"`
}

func (r contractResponse) standard() entity.StandardVersion {
	for _, tzip := range r.Tzips {
		if v := entity.ParseStandardVersion(tzip); v != entity.StandardUnknown {
			return v
		}
	}
	return entity.StandardUnknown
}

// metadataClient resolves contract metadata, memoizing results for the lifetime
// of its build.
type metadataClient struct {
	transport *Transport
	endpoint  *url.URL
	cache     *cache.Cache
	group     singleflight.Group
	logger    *zap.Logger
}

var _ port.MetadataClient = (*metadataClient)(nil)

func newMetadataClient(transport *Transport, endpoint *url.URL, ttl time.Duration, logger *zap.Logger) *metadataClient {
	if ttl <= 0 {
		ttl = defaultMetadataCacheTTL
	}
	return &metadataClient{
		transport: transport,
		endpoint:  endpoint,
		cache:     cache.New(ttl, 2*ttl),
		logger:    logger.Named("MetadataClient"),
	}
}

// GetContractMetadata returns the metadata of contract. Concurrent lookups of the
// same contract share one request.
func (c *metadataClient) GetContractMetadata(ctx context.Context, contract string) (port.ContractMetadata, error) {
	if cached, ok := c.cache.Get(contract); ok {
		return cached.(port.ContractMetadata), nil
	}

	v, err, shared := c.group.Do(contract, func() (any, error) {
		var resp contractResponse
		u := endpointURL(c.endpoint, nil, "v1", "contracts", contract)
		if err := c.transport.GetJSON(ctx, metadataClientName, "contract", u, &resp); err != nil {
			return nil, err
		}

		md := port.ContractMetadata{
			Address:  contract,
			Alias:    resp.Alias,
			Name:     resp.Metadata.Name,
			Symbol:   resp.Metadata.Symbol,
			Standard: resp.standard(),
			IconURI:  resp.Metadata.ThumbnailURI,
		}
		c.cache.Set(contract, md, cache.DefaultExpiration)
		return md, nil
	})
	if err != nil {
		return port.ContractMetadata{}, err
	}

	c.logger.Debug("Resolved contract metadata", zap.String("contract", contract), zap.Bool("shared", shared))
	return v.(port.ContractMetadata), nil
}

func (c *metadataClient) BuildID() string {
	return c.transport.BuildID()
}
