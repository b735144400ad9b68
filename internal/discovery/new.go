package discovery

import (
	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/ledger"
	"github.com/hansardlabs/streamdigest/internal/logger"
)

type implDiscoverer struct {
	sources []ChannelSource
	ledger  ledger.Ledger
	cfg     config.DiscoveryConfig
	logger  logger.Logger
}

// New creates a Discoverer over the given channel sources.
func New(sources []ChannelSource, led ledger.Ledger, cfg config.DiscoveryConfig, log logger.Logger) Discoverer {
	return &implDiscoverer{
		sources: sources,
		ledger:  led,
		cfg:     cfg,
		logger:  log,
	}
}
