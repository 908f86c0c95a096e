// Package auctionrpc is the synchronous point lookup the Bid Ledger uses
// when its local replica has not yet seen an auction. It rides NATS
// request/reply; a timeout or transport error is reported the same way as
// "not found" so the caller fails safely instead of guessing.
package auctionrpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	subject    = "directory.auctions.get"
	queueGroup = "directory"

	requestTimeout = 2 * time.Second
)

var ErrNotFound = errors.New("auction not found")

// Auction is the read shape returned by the lookup: just the facts the bid
// acceptance algorithm needs.
type Auction struct {
	ID           string    `json:"id"`
	Seller       string    `json:"seller"`
	ReservePrice int64     `json:"reserve_price"`
	AuctionEnd   time.Time `json:"auction_end"`
}

type request struct {
	ID string `json:"id"`
}

type response struct {
	Found   bool     `json:"found"`
	Auction *Auction `json:"auction,omitempty"`
}

// Client performs lookups against the directory responder.
type Client struct {
	nc *nats.Conn
}

func NewClient(nc *nats.Conn) *Client { return &Client{nc: nc} }

// GetAuction resolves one auction or returns ErrNotFound. Transport errors
// and timeouts collapse into ErrNotFound; the caller rejects the bid either way.
func (c *Client) GetAuction(ctx context.Context, id string) (*Auction, error) {
	data, err := json.Marshal(request{ID: id})
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	msg, err := c.nc.RequestWithContext(rctx, subject, data)
	if err != nil {
		zap.L().Warn("auctionrpc.request_failed", zap.String("id", id), zap.Error(err))
		return nil, ErrNotFound
	}

	var resp response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return nil, ErrNotFound
	}
	if !resp.Found || resp.Auction == nil {
		return nil, ErrNotFound
	}
	return resp.Auction, nil
}

// Source answers lookups on the responder side. The directory service
// implements it over its authoritative store.
type Source interface {
	Lookup(ctx context.Context, id string) (*Auction, error)
}

// Serve registers the queue-subscribed responder. Multiple directory
// instances share the queue group; each request is answered once.
func Serve(nc *nats.Conn, src Source) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var req request
		resp := response{}
		if err := json.Unmarshal(msg.Data, &req); err == nil && req.ID != "" {
			if a, err := src.Lookup(ctx, req.ID); err == nil {
				resp.Found = true
				resp.Auction = a
			} else if !errors.Is(err, ErrNotFound) {
				zap.L().Warn("auctionrpc.lookup_failed", zap.String("id", req.ID), zap.Error(err))
			}
		}

		data, err := json.Marshal(resp)
		if err != nil {
			return
		}
		if err := msg.Respond(data); err != nil {
			zap.L().Warn("auctionrpc.respond_failed", zap.Error(err))
		}
	})
}
