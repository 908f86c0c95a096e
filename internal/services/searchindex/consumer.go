package searchindex

import (
	"context"
	"encoding/json"
	"fmt"

	"auctionmart/internal/bus"
	"auctionmart/internal/contracts"

	"go.uber.org/zap"
)

// Consumers is the projection's entire write path.
type Consumers struct {
	svc ISearchService
}

func NewConsumers(svc ISearchService) *Consumers {
	return &Consumers{svc: svc}
}

func (c *Consumers) HandleAuctionCreated(ctx context.Context, data []byte) error {
	var evt contracts.AuctionCreated
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: auction created: %v", bus.ErrMalformed, err)
	}

	item := &Item{
		ID:             evt.ID,
		Seller:         evt.Seller,
		Make:           evt.Make,
		Model:          evt.Model,
		Color:          evt.Color,
		Year:           evt.Year,
		Mileage:        evt.Mileage,
		ImageURL:       evt.ImageURL,
		CurrentHighBid: evt.CurrentHighBid,
		Status:         evt.Status,
		UpdatedAt:      evt.UpdatedAt,
	}
	zap.L().Debug("searchindex.upsert", zap.String("id", evt.ID))
	return c.svc.Upsert(ctx, item)
}

func (c *Consumers) HandleAuctionFinished(ctx context.Context, data []byte) error {
	var evt contracts.AuctionFinished
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: auction finished: %v", bus.ErrMalformed, err)
	}
	return c.svc.ApplyFinished(ctx, evt.AuctionID, evt.Winner, evt.Amount, evt.ItemSold)
}

func (c *Consumers) HandleAuctionDeleted(ctx context.Context, data []byte) error {
	var evt contracts.AuctionDeleted
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("%w: auction deleted: %v", bus.ErrMalformed, err)
	}
	zap.L().Debug("searchindex.delete", zap.String("id", evt.ID))
	return c.svc.Remove(ctx, evt.ID)
}
