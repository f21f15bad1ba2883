package client

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"
	"wallet_core/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures every client set a registry builds.
type Options struct {
	Transport         TransportOptions
	MetadataCacheTTL  time.Duration
	IndexerPageSize   int
	MetadataBatchSize int
}

// invalidNetworkLabel replaces identifiers outside the known set in metric labels.
const invalidNetworkLabel = "invalid"

func networkLabel(id entity.NetworkIdentifier) string {
	if !id.Valid() {
		return invalidNetworkLabel
	}
	return string(id)
}

// Snapshot is one immutable generation of clients. All four clients share the
// transport and build id of the Build call that produced them.
type Snapshot struct {
	buildID  string
	network  entity.NetworkConfig
	node     *nodeClient
	metadata *metadataClient
	indexer  *indexerClient
	identity *identityClient
}

var _ port.ClientSet = (*Snapshot)(nil)

// Build validates cfg and wires a new client set. It performs no network I/O, so
// an unreachable endpoint is not an error here.
func Build(cfg entity.NetworkConfig, opts Options, logger *zap.Logger) (*Snapshot, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		metrics.CollectRegistryBuild(networkLabel(cfg.Identifier), err)
		return nil, err
	}

	buildID := uuid.NewString()
	log := logger.With(zap.String("network", cfg.DisplayName()), zap.String("buildID", buildID))

	// order matters: each client captures the ones built before it
	transport := NewTransport(opts.Transport, buildID, log)
	node := newNodeClient(transport, endpoints.Node, log)
	metadata := newMetadataClient(transport, endpoints.Metadata, opts.MetadataCacheTTL, log)
	indexer := newIndexerClient(transport, endpoints.Indexer, metadata, opts.IndexerPageSize, opts.MetadataBatchSize, log)
	identity := newIdentityClient(cfg.Identifier, node, cfg.Identity, log)

	metrics.CollectRegistryBuild(networkLabel(cfg.Identifier), nil)
	log.Debug("Built client set")

	return &Snapshot{
		buildID:  buildID,
		network:  cfg,
		node:     node,
		metadata: metadata,
		indexer:  indexer,
		identity: identity,
	}, nil
}

func (s *Snapshot) Node() port.NodeClient { return s.node }
func (s *Snapshot) Metadata() port.MetadataClient { return s.metadata }
func (s *Snapshot) Indexer() port.IndexerClient { return s.indexer }
func (s *Snapshot) Identity() port.IdentityClient { return s.identity }
func (s *Snapshot) Network() entity.NetworkConfig { return s.network }
func (s *Snapshot) BuildID() string { return s.buildID }

// ClientRegistry holds the active Snapshot. Readers never lock; Reconfigure builds
// a complete snapshot before publishing it with a single atomic store. When two
// reconfigurations race, the last publish wins.
type ClientRegistry struct {
	current   atomic.Pointer[Snapshot]
	// publishMu orders swaps with the active-network gauge; readers never take it.
	publishMu sync.Mutex
	opts      Options
	logger    *zap.Logger
}

var _ port.ClientRegistry = (*ClientRegistry)(nil)

// NewClientRegistry builds the initial snapshot from cfg.
func NewClientRegistry(cfg entity.NetworkConfig, opts Options, logger *zap.Logger) (*ClientRegistry, error) {
	r := &ClientRegistry{
		opts:   opts,
		logger: logger.Named("ClientRegistry"),
	}
	if err := r.Reconfigure(cfg); err != nil {
		return nil, fmt.Errorf("initial client set: %w", err)
	}
	return r, nil
}

// Current returns the active client set.
func (r *ClientRegistry) Current() port.ClientSet {
	return r.current.Load()
}

// Snapshot returns the active snapshot with its concrete type.
func (r *ClientRegistry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Reconfigure builds a fresh snapshot for cfg, sharing nothing with the current
// one, and publishes it. On error the current snapshot stays active.
func (r *ClientRegistry) Reconfigure(cfg entity.NetworkConfig) error {
	next, err := Build(cfg, r.opts, r.logger)
	if err != nil {
		r.logger.Warn("Rejected network configuration",
			zap.String("network", cfg.DisplayName()),
			zap.Error(err))
		return err
	}

	r.publishMu.Lock()
	previous := r.current.Swap(next)
	var previousNetwork string
	if previous != nil {
		previousNetwork = string(previous.network.Identifier)
	}
	metrics.CollectPublish(previousNetwork, string(cfg.Identifier))
	r.publishMu.Unlock()

	r.logger.Info("Published client set",
		zap.String("network", cfg.DisplayName()),
		zap.String("from", previousNetwork),
		zap.String("buildID", next.buildID))
	return nil
}
