package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"sync"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"

	"github.com/samber/lo"
	"go.openly.dev/pointy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	indexerClientName        = "indexer"
	defaultIndexerPageSize   = 100
	defaultMetadataBatchSize = 8
	maxIndexerPages          = 50
)

// ErrListingTruncated is returned when an account holds more token balances than
// the indexer client pages through.
var ErrListingTruncated = errors.New("token balance listing truncated")

type tokenBalanceResponse struct {
	Balance string `json:"balance"`
	Token   struct {
		TokenID  string `json:"tokenId"`
		Standard string `json:"standard"`
		Contract struct {
			Address string `json:"address"`
			Alias   string `json:"alias"`
		} `json:"contract"`
		Metadata struct {
			Name         string `json:"name"`
			Symbol       string `json:"symbol"`
			Decimals     string `json:"decimals"`
			Description  string `json:"description"`
			ArtifactURI  string `json:"artifactUri"`
			DisplayURI   string `json:"displayUri"`
			ThumbnailURI string `json:"thumbnailUri"`
		} `json:"metadata"`
	} `json:"token"`
}

func (r tokenBalanceResponse) decimals() uint8 {
	d, err := strconv.ParseUint(r.Token.Metadata.Decimals, 10, 8)
	if err != nil {
		return 0
	}
	return uint8(d)
}

// nonFungible reports whether the balance is an NFT edition: no decimals and
// media attached.
func (r tokenBalanceResponse) nonFungible() bool {
	md := r.Token.Metadata
	return r.decimals() == 0 && (md.ArtifactURI != "" || md.DisplayURI != "")
}

func (r tokenBalanceResponse) amount(scale uint8) (entity.DecimalAmount, error) {
	m, ok := new(big.Int).SetString(r.Balance, 10)
	if !ok {
		return entity.DecimalAmount{}, fmt.Errorf("%w: token %s/%s balance %q",
			entity.ErrMalformedAmount, r.Token.Contract.Address, r.Token.TokenID, r.Balance)
	}
	return entity.NewDecimalAmount(m, scale), nil
}

// indexerClient lists account token holdings and names them through the
// metadata client of the same build.
type indexerClient struct {
	transport *Transport
	endpoint  *url.URL
	metadata  port.MetadataClient
	pageSize  int
	batchSize int
	maxPages  int
	logger    *zap.Logger
}

var _ port.IndexerClient = (*indexerClient)(nil)

func newIndexerClient(
	transport *Transport,
	endpoint *url.URL,
	metadata port.MetadataClient,
	pageSize, batchSize int,
	logger *zap.Logger,
) *indexerClient {
	if pageSize <= 0 {
		pageSize = defaultIndexerPageSize
	}
	if batchSize <= 0 {
		batchSize = defaultMetadataBatchSize
	}
	return &indexerClient{
		transport: transport,
		endpoint:  endpoint,
		metadata:  metadata,
		pageSize:  pageSize,
		batchSize: batchSize,
		maxPages:  maxIndexerPages,
		logger:    logger.Named("IndexerClient"),
	}
}

func (c *indexerClient) fetchBalances(ctx context.Context, address string) ([]tokenBalanceResponse, error) {
	var all []tokenBalanceResponse
	for page := 0; page < c.maxPages; page++ {
		query := url.Values{}
		query.Set("account", address)
		query.Set("balance.gt", "0")
		query.Set("sort.asc", "id")
		query.Set("limit", strconv.Itoa(c.pageSize))
		query.Set("offset", strconv.Itoa(page*c.pageSize))

		var batch []tokenBalanceResponse
		u := endpointURL(c.endpoint, query, "v1", "tokens", "balances")
		if err := c.transport.GetJSON(ctx, indexerClientName, "token_balances", u, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < c.pageSize {
			return all, nil
		}
	}

	c.logger.Warn("Token balance listing truncated", zap.String("address", address), zap.Int("pages", c.maxPages))
	return nil, fmt.Errorf("%w: %s has more than %d balances", ErrListingTruncated, address, c.maxPages*c.pageSize)
}

// resolveNames looks up metadata for contracts the indexer returned without a
// name or alias. Lookups run in batches; a failed lookup leaves the contract
// unnamed instead of failing the listing.
func (c *indexerClient) resolveNames(ctx context.Context, contracts []string) map[string]port.ContractMetadata {
	resolved := make(map[string]port.ContractMetadata, len(contracts))
	var mu sync.Mutex

	for _, batch := range lo.Chunk(lo.Uniq(contracts), c.batchSize) {
		g, gctx := errgroup.WithContext(ctx)
		for _, contract := range batch {
			contract := contract
			g.Go(func() error {
				md, err := c.metadata.GetContractMetadata(gctx, contract)
				if err != nil {
					c.logger.Warn("Contract metadata lookup failed", zap.String("contract", contract), zap.Error(err))
					return nil
				}
				mu.Lock()
				resolved[contract] = md
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}
	return resolved
}

// GetTokenBalances pages through the account's positive token balances. Fungible
// balances become fungible tokens; NFT editions are grouped per contract, in the
// order the indexer first lists them.
func (c *indexerClient) GetTokenBalances(ctx context.Context, address string) ([]entity.Token, error) {
	balances, err := c.fetchBalances(ctx, address)
	if err != nil {
		return nil, err
	}

	var unnamed []string
	for _, b := range balances {
		if b.Token.Contract.Alias != "" {
			continue
		}
		if b.nonFungible() || b.Token.Metadata.Name == "" {
			unnamed = append(unnamed, b.Token.Contract.Address)
		}
	}
	names := c.resolveNames(ctx, unnamed)

	contractName := func(b tokenBalanceResponse) string {
		if b.Token.Contract.Alias != "" {
			return b.Token.Contract.Alias
		}
		if md, ok := names[b.Token.Contract.Address]; ok {
			if md.Name != "" {
				return md.Name
			}
			if md.Alias != "" {
				return md.Alias
			}
		}
		return b.Token.Contract.Address
	}

	var (
		tokens     []entity.Token
		nftOrder   []string
		nftItems   = make(map[string][]entity.TokenItem)
		nftSources = make(map[string]tokenBalanceResponse)
	)

	for _, b := range balances {
		contract := b.Token.Contract.Address

		if b.nonFungible() {
			amount, err := b.amount(0)
			if err != nil {
				return nil, err
			}
			if _, seen := nftItems[contract]; !seen {
				nftOrder = append(nftOrder, contract)
				nftSources[contract] = b
			}
			md := b.Token.Metadata
			nftItems[contract] = append(nftItems[contract], entity.TokenItem{
				TokenID:      b.Token.TokenID,
				Name:         md.Name,
				Description:  md.Description,
				ArtifactURI:  md.ArtifactURI,
				DisplayURI:   md.DisplayURI,
				ThumbnailURI: md.ThumbnailURI,
				Amount:       amount,
			})
			continue
		}

		amount, err := b.amount(b.decimals())
		if err != nil {
			return nil, err
		}
		name := b.Token.Metadata.Name
		if name == "" {
			name = contractName(b)
		}
		standard := entity.ParseStandardVersion(b.Token.Standard)

		cfg := entity.TokenConfig{
			Name:            name,
			Kind:            entity.TokenKindFungible,
			StandardVersion: &standard,
			Balance:         amount,
			ContractAddress: pointy.String(contract),
		}
		if b.Token.Metadata.Symbol != "" {
			cfg.Symbol = pointy.String(b.Token.Metadata.Symbol)
		}
		if b.Token.Metadata.ThumbnailURI != "" {
			cfg.IconSourceURI = pointy.String(b.Token.Metadata.ThumbnailURI)
		}

		token, err := entity.NewToken(cfg)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	for _, contract := range nftOrder {
		source := nftSources[contract]
		token, err := entity.NewNonFungibleToken(contractName(source), contract,
			entity.ParseStandardVersion(source.Token.Standard), nftItems[contract])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	c.logger.Debug("Fetched token balances",
		zap.String("address", address),
		zap.Int("balances", len(balances)),
		zap.Int("tokens", len(tokens)))
	return tokens, nil
}

func (c *indexerClient) BuildID() string {
	return c.transport.BuildID()
}
