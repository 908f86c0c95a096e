package bidledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"auctionmart/internal/bus"
	"auctionmart/internal/contracts"

	"go.uber.org/zap"
)

// Consumers populates the local replica from directory lifecycle events.
// The ledger consumes nothing else about auctions; a missing replica is
// covered by the synchronous fallback at bid time.
type Consumers struct {
	replicas ReplicaStore
}

func NewConsumers(replicas ReplicaStore) *Consumers {
	return &Consumers{replicas: replicas}
}

// HandleAuctionCreated upserts the minimal replica. The record is replaced
// whole; a replica already marked finished stays finished so a redelivered
// create cannot resurrect an ended auction.
func (c *Consumers) HandleAuctionCreated(ctx context.Context, data []byte) error {
	var evt contracts.AuctionCreated
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: auction created: %v", bus.ErrMalformed, err)
	}

	finished := evt.Status != contracts.StatusLive
	if prev, err := c.replicas.Get(ctx, evt.ID); err == nil {
		finished = finished || prev.Finished
	} else if !errors.Is(err, ErrReplicaNotFound) {
		return err
	}

	rep := &Replica{
		ID:           evt.ID,
		Seller:       evt.Seller,
		ReservePrice: evt.ReservePrice,
		AuctionEnd:   evt.AuctionEnd,
		Finished:     finished,
	}
	if err := c.replicas.Put(ctx, rep); err != nil {
		return err
	}

	zap.L().Debug("bidledger.replica_upserted", zap.String("auction_id", evt.ID))
	return nil
}
