package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"auctionmart/internal/bus"
	"auctionmart/internal/contracts"

	"go.uber.org/zap"
)

// Consumers adapts bus messages onto the directory service. Handlers are
// idempotent: redelivered messages hit guarded UPDATEs that change nothing
// the second time.
type Consumers struct {
	svc IDirectoryService
}

func NewConsumers(svc IDirectoryService) *Consumers {
	return &Consumers{svc: svc}
}

// HandleAuctionFinished applies the finalize operation for the ended auction.
func (c *Consumers) HandleAuctionFinished(ctx context.Context, data []byte) error {
	var evt contracts.AuctionFinished
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: auction finished: %v", bus.ErrMalformed, err)
	}
	zap.L().Info("directory.auction_finished",
		zap.String("auction_id", evt.AuctionID), zap.Bool("item_sold", evt.ItemSold))
	return c.svc.Finalize(ctx, evt.AuctionID, evt.ItemSold, evt.Winner, evt.Amount)
}

// HandleBidPlaced refreshes the informational current-high-bid field for
// accepted outcomes. The monotonic guard in the UPDATE keeps out-of-order
// and duplicate deliveries harmless.
func (c *Consumers) HandleBidPlaced(ctx context.Context, data []byte) error {
	var evt contracts.BidPlaced
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: bid placed: %v", bus.ErrMalformed, err)
	}
	switch evt.BidStatus {
	case contracts.BidAccepted, contracts.BidAcceptedBelowReserve:
		return c.svc.RaiseHighBid(ctx, evt.AuctionID, evt.Amount)
	}
	return nil
}
