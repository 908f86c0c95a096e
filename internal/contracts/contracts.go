// Package contracts holds the event schemas exchanged on the bus. The types
// are append-only: a published shape is never revised in place, and every
// event carries enough data for a consumer to update its own projection
// without a secondary query.
package contracts

import "time"

// Bus subjects, one per event type.
const (
	SubjectAuctionCreated  = "auctions.created"
	SubjectAuctionFinished = "auctions.finished"
	SubjectAuctionDeleted  = "auctions.deleted"
	SubjectBidPlaced       = "bids.placed"
)

// Auction lifecycle statuses.
const (
	StatusLive          = "Live"
	StatusFinished      = "Finished"
	StatusReserveNotMet = "ReserveNotMet"
)

// Bid outcome statuses.
const (
	BidAccepted             = "Accepted"
	BidAcceptedBelowReserve = "AcceptedBelowReserve"
	BidTooLow               = "TooLow"
	BidFinished             = "Finished"
)

// AuctionCreated carries the full auction+item snapshot.
type AuctionCreated struct {
	ID             string    `json:"id"`
	ReservePrice   int64     `json:"reserve_price"`
	Seller         string    `json:"seller"`
	Winner         string    `json:"winner,omitempty"`
	SoldAmount     int64     `json:"sold_amount,omitempty"`
	CurrentHighBid int64     `json:"current_high_bid,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	AuctionEnd     time.Time `json:"auction_end"`
	Status         string    `json:"status"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Color          string    `json:"color"`
	Mileage        int       `json:"mileage"`
	ImageURL       string    `json:"image_url"`
}

// AuctionFinished announces the outcome of an ended auction. Amount is nil
// when the item did not sell.
type AuctionFinished struct {
	ItemSold  bool   `json:"item_sold"`
	AuctionID string `json:"auction_id"`
	Winner    string `json:"winner,omitempty"`
	Seller    string `json:"seller"`
	Amount    *int64 `json:"amount,omitempty"`
}

// AuctionDeleted carries only the id; consumers tombstone by id.
type AuctionDeleted struct {
	ID string `json:"id"`
}

// BidPlaced carries the full persisted bid record.
type BidPlaced struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	Bidder    string    `json:"bidder"`
	BidTime   time.Time `json:"bid_time"`
	Amount    int64     `json:"amount"`
	BidStatus string    `json:"bid_status"`
}
