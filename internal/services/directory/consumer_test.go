package directory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"auctionmart/internal/auctionrpc"
	"auctionmart/internal/bus"
	"auctionmart/internal/contracts"

	"github.com/stretchr/testify/require"
)

type fakeDirectoryService struct {
	IDirectoryService

	finalized []string
	raised    []int64
}

func (f *fakeDirectoryService) Finalize(_ context.Context, id string, _ bool, _ string, _ *int64) error {
	f.finalized = append(f.finalized, id)
	return nil
}

func (f *fakeDirectoryService) RaiseHighBid(_ context.Context, _ string, amount int64) error {
	f.raised = append(f.raised, amount)
	return nil
}

func (f *fakeDirectoryService) Lookup(_ context.Context, _ string) (*auctionrpc.Auction, error) {
	return nil, auctionrpc.ErrNotFound
}

func TestHandleAuctionFinished(t *testing.T) {
	svc := &fakeDirectoryService{}
	cons := NewConsumers(svc)

	amount := int64(25000)
	data, err := json.Marshal(contracts.AuctionFinished{
		ItemSold:  true,
		AuctionID: "auc-1",
		Winner:    "bob",
		Seller:    "seller-1",
		Amount:    &amount,
	})
	require.NoError(t, err)

	require.NoError(t, cons.HandleAuctionFinished(context.Background(), data))
	require.Equal(t, []string{"auc-1"}, svc.finalized)
}

func TestHandleAuctionFinished_Malformed(t *testing.T) {
	cons := NewConsumers(&fakeDirectoryService{})
	err := cons.HandleAuctionFinished(context.Background(), []byte("{oops"))
	require.ErrorIs(t, err, bus.ErrMalformed)
}

func TestHandleBidPlaced_OnlyAcceptedOutcomesRaise(t *testing.T) {
	svc := &fakeDirectoryService{}
	cons := NewConsumers(svc)

	for _, tc := range []struct {
		status string
		amount int64
		raised bool
	}{
		{contracts.BidAccepted, 25000, true},
		{contracts.BidAcceptedBelowReserve, 15000, true},
		{contracts.BidTooLow, 22000, false},
		{contracts.BidFinished, 30000, false},
	} {
		data, err := json.Marshal(contracts.BidPlaced{
			ID:        "bid-1",
			AuctionID: "auc-1",
			Bidder:    "alice",
			BidTime:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Amount:    tc.amount,
			BidStatus: tc.status,
		})
		require.NoError(t, err)
		require.NoError(t, cons.HandleBidPlaced(context.Background(), data))
	}

	require.Equal(t, []int64{25000, 15000}, svc.raised)
}
