// Package bidledger accepts bid attempts, resolves just-in-time auction
// facts from its local replica (or the synchronous directory fallback), runs
// the acceptance algorithm and records every attempt that survives the hard
// checks. The persisted bid history, not a mutable pointer, is the source
// of truth for the current high bid.
package bidledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionmart/internal/auctionrpc"
	"auctionmart/internal/contracts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrAuctionUnavailable: neither the replica nor the fallback could
	// resolve the auction. Nothing is recorded.
	ErrAuctionUnavailable = errors.New("cannot accept bids on this auction at this time")
	// ErrSelfBid: the seller tried to bid on their own auction.
	ErrSelfBid = errors.New("cannot bid on your own auction")

	ErrReplicaNotFound = errors.New("auction replica not found")
)

// Replica is the minimal projection of directory facts the acceptance
// algorithm needs. It is replaced whole, never merged field by field.
type Replica struct {
	ID           string
	Seller       string
	ReservePrice int64
	AuctionEnd   time.Time
	Finished     bool
}

// Bid is immutable once persisted.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
	Status    string    `json:"status"`
}

type ReplicaStore interface {
	Get(ctx context.Context, id string) (*Replica, error)
	Put(ctx context.Context, r *Replica) error
	MarkFinished(ctx context.Context, id string) error
}

type BidStore interface {
	Insert(ctx context.Context, b *Bid) error
	// HighestAmount returns the top amount among recorded bids for the
	// auction, regardless of outcome label, and whether any bid exists.
	HighestAmount(ctx context.Context, auctionID string) (int64, bool, error)
	ListByAuction(ctx context.Context, auctionID string) ([]Bid, error)
	// WinningBid is the highest Accepted bid, nil when there is none.
	WinningBid(ctx context.Context, auctionID string) (*Bid, error)
}

// DirectoryClient is the synchronous fallback lookup.
type DirectoryClient interface {
	GetAuction(ctx context.Context, id string) (*auctionrpc.Auction, error)
}

type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

type IBidLedgerService interface {
	PlaceBid(ctx context.Context, auctionID, bidder string, amount int64) (*Bid, error)
	ListBids(ctx context.Context, auctionID string) ([]Bid, error)
	FinishAuction(ctx context.Context, auctionID string) error
}

type bidLedgerService struct {
	replicas ReplicaStore
	bids     BidStore
	dir      DirectoryClient
	pub      Publisher
	locks    keyedMutex
	now      func() time.Time
}

func NewBidLedgerService(replicas ReplicaStore, bids BidStore, dir DirectoryClient, pub Publisher) IBidLedgerService {
	return &bidLedgerService{
		replicas: replicas,
		bids:     bids,
		dir:      dir,
		pub:      pub,
		now:      time.Now,
	}
}

// PlaceBid runs the acceptance state machine. Attempts on the same auction
// id are serialized so the "highest prior amount" read stays coherent;
// different auctions proceed in parallel.
func (svc *bidLedgerService) PlaceBid(ctx context.Context, auctionID, bidder string, amount int64) (*Bid, error) {
	unlock := svc.locks.Lock(auctionID)
	defer unlock()

	rep, err := svc.resolveAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if bidder == rep.Seller {
		return nil, ErrSelfBid
	}

	bid := &Bid{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		Bidder:    bidder,
		Amount:    amount,
		PlacedAt:  svc.now().UTC(),
	}

	if rep.Finished || !rep.AuctionEnd.After(bid.PlacedAt) {
		// auction already over: recorded for audit, cannot win
		bid.Status = contracts.BidFinished
	} else {
		high, exists, err := svc.bids.HighestAmount(ctx, auctionID)
		if err != nil {
			return nil, fmt.Errorf("read high bid for %s: %w", auctionID, err)
		}
		switch {
		case exists && amount <= high:
			bid.Status = contracts.BidTooLow
		case amount > rep.ReservePrice:
			bid.Status = contracts.BidAccepted
		default:
			bid.Status = contracts.BidAcceptedBelowReserve
		}
	}

	if err := svc.bids.Insert(ctx, bid); err != nil {
		return nil, fmt.Errorf("persist bid: %w", err)
	}

	svc.publishPlaced(ctx, bid)
	return bid, nil
}

func (svc *bidLedgerService) ListBids(ctx context.Context, auctionID string) ([]Bid, error) {
	return svc.bids.ListByAuction(ctx, auctionID)
}

// FinishAuction closes out an ended auction: it derives the winner from the
// recorded bid history and announces the outcome. Safe to trigger more than
// once; a finished replica short-circuits.
func (svc *bidLedgerService) FinishAuction(ctx context.Context, auctionID string) error {
	unlock := svc.locks.Lock(auctionID)
	defer unlock()

	rep, err := svc.replicas.Get(ctx, auctionID)
	if errors.Is(err, ErrReplicaNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rep.Finished {
		return nil
	}

	win, err := svc.bids.WinningBid(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("derive winner for %s: %w", auctionID, err)
	}

	evt := contracts.AuctionFinished{
		ItemSold:  win != nil,
		AuctionID: auctionID,
		Seller:    rep.Seller,
	}
	if win != nil {
		evt.Winner = win.Bidder
		amount := win.Amount
		evt.Amount = &amount
	}

	// publish before marking so a failed publish is retried on the next
	// trigger instead of silently lost
	if err := svc.pub.Publish(ctx, contracts.SubjectAuctionFinished, evt); err != nil {
		return fmt.Errorf("publish auction finished: %w", err)
	}

	if err := svc.replicas.MarkFinished(ctx, auctionID); err != nil {
		return err
	}

	zap.L().Info("bidledger.auction_finished",
		zap.String("auction_id", auctionID), zap.Bool("item_sold", evt.ItemSold))
	return nil
}

// resolveAuction serves the replica when present and falls back to the
// synchronous directory lookup otherwise, caching the answer for future
// bids on the same auction.
func (svc *bidLedgerService) resolveAuction(ctx context.Context, auctionID string) (*Replica, error) {
	rep, err := svc.replicas.Get(ctx, auctionID)
	if err == nil {
		return rep, nil
	}
	if !errors.Is(err, ErrReplicaNotFound) {
		return nil, fmt.Errorf("read replica %s: %w", auctionID, err)
	}

	a, err := svc.dir.GetAuction(ctx, auctionID)
	if err != nil {
		// not found, timeout and transport errors all land here
		return nil, ErrAuctionUnavailable
	}

	rep = &Replica{
		ID:           a.ID,
		Seller:       a.Seller,
		ReservePrice: a.ReservePrice,
		AuctionEnd:   a.AuctionEnd,
	}
	if err := svc.replicas.Put(ctx, rep); err != nil {
		zap.L().Warn("bidledger.cache_replica_failed", zap.String("auction_id", auctionID), zap.Error(err))
	}
	return rep, nil
}

func (svc *bidLedgerService) publishPlaced(ctx context.Context, b *Bid) {
	evt := contracts.BidPlaced{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		Bidder:    b.Bidder,
		BidTime:   b.PlacedAt,
		Amount:    b.Amount,
		BidStatus: b.Status,
	}
	if err := svc.pub.Publish(ctx, contracts.SubjectBidPlaced, evt); err != nil {
		zap.L().Error("bidledger.publish_failed", zap.String("bid_id", b.ID), zap.Error(err))
	}
}
