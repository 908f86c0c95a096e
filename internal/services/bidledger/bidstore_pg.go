package bidledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	insertBidQ = `INSERT INTO bids (id, auction_id, bidder, amount, placed_at, status)
	      VALUES ($1,$2,$3,$4,$5,$6)
	 ON CONFLICT (id) DO NOTHING`

	highestAmountQ = `SELECT COALESCE(MAX(amount), 0), COUNT(*) FROM bids WHERE auction_id = $1`

	listBidsQ = `SELECT id, auction_id, bidder, amount, placed_at, status
	        FROM bids WHERE auction_id = $1 ORDER BY placed_at DESC`

	winningBidQ = `SELECT id, auction_id, bidder, amount, placed_at, status
	        FROM bids WHERE auction_id = $1 AND status = 'Accepted'
	    ORDER BY amount DESC LIMIT 1`
)

type pgBidStore struct {
	db *sql.DB
}

func NewPgBidStore(db *sql.DB) BidStore {
	return &pgBidStore{db: db}
}

// EnsureBidSchema creates the bids table if it is missing.
func EnsureBidSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bids (
		id         TEXT PRIMARY KEY,
		auction_id TEXT NOT NULL,
		bidder     TEXT NOT NULL,
		amount     BIGINT NOT NULL,
		placed_at  TIMESTAMPTZ NOT NULL,
		status     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bids_auction_id ON bids(auction_id)`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *pgBidStore) Insert(ctx context.Context, b *Bid) error {
	_, err := s.db.ExecContext(ctx, insertBidQ,
		b.ID, b.AuctionID, b.Bidder, b.Amount, b.PlacedAt, b.Status)
	if err != nil {
		return fmt.Errorf("insert bid %s: %w", b.ID, err)
	}
	return nil
}

func (s *pgBidStore) HighestAmount(ctx context.Context, auctionID string) (int64, bool, error) {
	var (
		high  int64
		count int
	)
	err := s.db.QueryRowContext(ctx, highestAmountQ, auctionID).Scan(&high, &count)
	if err != nil {
		return 0, false, err
	}
	return high, count > 0, nil
}

func (s *pgBidStore) ListByAuction(ctx context.Context, auctionID string) ([]Bid, error) {
	rows, err := s.db.QueryContext(ctx, listBidsQ, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Bid, 0)
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.Bidder, &b.Amount, &b.PlacedAt, &b.Status); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (s *pgBidStore) WinningBid(ctx context.Context, auctionID string) (*Bid, error) {
	var b Bid
	err := s.db.QueryRowContext(ctx, winningBidQ, auctionID).
		Scan(&b.ID, &b.AuctionID, &b.Bidder, &b.Amount, &b.PlacedAt, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
