package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"auctionmart/internal/bus"
	"auctionmart/internal/contracts"
)

// Attach bridges the event bus into the hub. The consumers are ephemeral,
// deliver-new: the hub never replays and keeps no cursor, so viewers treat
// the feed as a hint and reconcile with on-demand reads.
func Attach(ctx context.Context, b *bus.Bus, hub *Hub) error {
	wire := func(subject, event string) error {
		_, err := b.ConsumeNew(ctx, subject, func(ctx context.Context, data []byte) error {
			frame, err := json.Marshal(Envelope{Event: event, Body: data})
			if err != nil {
				return fmt.Errorf("%w: %v", bus.ErrMalformed, err)
			}
			hub.Broadcast(frame)
			return nil
		})
		return err
	}

	if err := wire(contracts.SubjectAuctionCreated, EventAuctionCreated); err != nil {
		return err
	}
	if err := wire(contracts.SubjectAuctionFinished, EventAuctionFinished); err != nil {
		return err
	}
	return wire(contracts.SubjectBidPlaced, EventBidPlaced)
}
