package discovery

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// ChannelSource lists recent streams for one configured source channel.
// Implementations talk to the streaming platform; how they do it is not the
// pipeline's concern.
type ChannelSource interface {
	Name() string
	List(ctx context.Context) ([]domain.StreamCandidate, error)
}

// Discoverer produces the candidates one run should process: merged across
// channels, deduplicated against the ledger, ordered, and capped.
type Discoverer interface {
	Discover(ctx context.Context) ([]domain.StreamCandidate, error)
}
