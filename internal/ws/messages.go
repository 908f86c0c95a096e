package ws

import "encoding/json"

// Envelope wraps every pushed frame. Body carries the bus event verbatim.
type Envelope struct {
	Event string          `json:"event"` // "AuctionCreated" | "AuctionFinished" | "BidPlaced"
	Body  json.RawMessage `json:"body,omitempty"`
}

// Push event names, mirroring the bus contracts.
const (
	EventAuctionCreated  = "AuctionCreated"
	EventAuctionFinished = "AuctionFinished"
	EventBidPlaced       = "BidPlaced"
)
