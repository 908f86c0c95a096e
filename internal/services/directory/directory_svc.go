// Package directory owns auction identity, timing, seller and reserve price.
// It is the only writer of those facts; every other service sees them through
// the events published here or the synchronous point lookup.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auctionmart/internal/auctionrpc"
	"auctionmart/internal/contracts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("auction not found")
	ErrForbidden = errors.New("requester is not the seller")
)

// Publisher is the slice of the bus the directory needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

type Item struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Color    string `json:"color"`
	Mileage  int    `json:"mileage"`
	ImageURL string `json:"image_url"`
}

type Auction struct {
	ID             string    `json:"id"`
	Seller         string    `json:"seller"`
	ReservePrice   int64     `json:"reserve_price"`
	Winner         string    `json:"winner,omitempty"`
	SoldAmount     *int64    `json:"sold_amount,omitempty"`
	CurrentHighBid *int64    `json:"current_high_bid,omitempty"`
	AuctionEnd     time.Time `json:"auction_end"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Item           Item      `json:"item"`
}

type CreateParams struct {
	Make         string
	Model        string
	Year         int
	Color        string
	Mileage      int
	ImageURL     string
	ReservePrice int64
	AuctionEnd   time.Time
}

// UpdateParams carries the seller-editable item fields; nil means unchanged.
type UpdateParams struct {
	Make    *string
	Model   *string
	Year    *int
	Color   *string
	Mileage *int
}

type IDirectoryService interface {
	Create(ctx context.Context, p CreateParams, seller string) (*Auction, error)
	GetByID(ctx context.Context, id string) (*Auction, error)
	List(ctx context.Context, updatedAfter *time.Time) ([]Auction, error)
	Update(ctx context.Context, id string, p UpdateParams, requester string) (*Auction, error)
	Delete(ctx context.Context, id string, requester string) error
	Finalize(ctx context.Context, id string, itemSold bool, winner string, amount *int64) error
	RaiseHighBid(ctx context.Context, id string, amount int64) error

	auctionrpc.Source
}

type directoryService struct {
	db  *sql.DB
	pub Publisher
	now func() time.Time
}

func NewDirectoryService(db *sql.DB, pub Publisher) IDirectoryService {
	return &directoryService{db: db, pub: pub, now: time.Now}
}

const auctionCols = `id, seller, reserve_price, winner, sold_amount, current_high_bid,
	       auction_end, status, created_at, updated_at,
	       make, model, year, color, mileage, image_url`

const (
	insertAuctionQ = `INSERT INTO auctions (id, seller, reserve_price, auction_end, status,
	                       created_at, updated_at, make, model, year, color, mileage, image_url)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	getAuctionQ = `SELECT ` + auctionCols + ` FROM auctions WHERE id = $1`

	listAuctionsQ = `SELECT ` + auctionCols + ` FROM auctions ORDER BY make`

	listAuctionsAfterQ = `SELECT ` + auctionCols + ` FROM auctions WHERE updated_at > $1 ORDER BY make`

	getSellerQ = `SELECT seller FROM auctions WHERE id = $1`

	updateAuctionQ = `UPDATE auctions
	       SET make    = COALESCE($2::text, make),
	           model   = COALESCE($3::text, model),
	           year    = COALESCE($4::int, year),
	           color   = COALESCE($5::text, color),
	           mileage = COALESCE($6::int, mileage),
	           updated_at = $7
	     WHERE id = $1`

	deleteAuctionQ = `DELETE FROM auctions WHERE id = $1`

	finalizeAuctionQ = `UPDATE auctions
	       SET winner = $2, sold_amount = $3, status = $4, updated_at = $5
	     WHERE id = $1 AND status = 'Live'`

	raiseHighBidQ = `UPDATE auctions
	       SET current_high_bid = $2, updated_at = $3
	     WHERE id = $1 AND (current_high_bid IS NULL OR current_high_bid < $2)`

	lookupAuctionQ = `SELECT id, seller, reserve_price, auction_end FROM auctions WHERE id = $1`
)

// EnsureSchema creates the auctions table if it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS auctions (
		id               TEXT PRIMARY KEY,
		seller           TEXT NOT NULL,
		reserve_price    BIGINT NOT NULL DEFAULT 0,
		winner           TEXT,
		sold_amount      BIGINT,
		current_high_bid BIGINT,
		auction_end      TIMESTAMPTZ NOT NULL,
		status           TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		make             TEXT NOT NULL,
		model            TEXT NOT NULL,
		year             INT NOT NULL,
		color            TEXT NOT NULL,
		mileage          INT NOT NULL,
		image_url        TEXT NOT NULL
	)`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (svc *directoryService) Create(ctx context.Context, p CreateParams, seller string) (*Auction, error) {
	now := svc.now().UTC()
	a := &Auction{
		ID:           uuid.NewString(),
		Seller:       seller,
		ReservePrice: p.ReservePrice,
		AuctionEnd:   p.AuctionEnd.UTC(),
		Status:       contracts.StatusLive,
		CreatedAt:    now,
		UpdatedAt:    now,
		Item: Item{
			Make:     p.Make,
			Model:    p.Model,
			Year:     p.Year,
			Color:    p.Color,
			Mileage:  p.Mileage,
			ImageURL: p.ImageURL,
		},
	}

	_, err := svc.db.ExecContext(ctx, insertAuctionQ,
		a.ID, a.Seller, a.ReservePrice, a.AuctionEnd, a.Status,
		a.CreatedAt, a.UpdatedAt,
		a.Item.Make, a.Item.Model, a.Item.Year, a.Item.Color, a.Item.Mileage, a.Item.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert auction: %w", err)
	}

	svc.publish(ctx, contracts.SubjectAuctionCreated, snapshot(a))
	return a, nil
}

func (svc *directoryService) GetByID(ctx context.Context, id string) (*Auction, error) {
	row := svc.db.QueryRowContext(ctx, getAuctionQ, id)
	return scanAuction(row)
}

func (svc *directoryService) List(ctx context.Context, updatedAfter *time.Time) ([]Auction, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if updatedAfter != nil {
		rows, err = svc.db.QueryContext(ctx, listAuctionsAfterQ, updatedAfter.UTC())
	} else {
		rows, err = svc.db.QueryContext(ctx, listAuctionsQ)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func (svc *directoryService) Update(ctx context.Context, id string, p UpdateParams, requester string) (*Auction, error) {
	if err := svc.authorize(ctx, id, requester); err != nil {
		return nil, err
	}

	_, err := svc.db.ExecContext(ctx, updateAuctionQ, id,
		nullStr(p.Make), nullStr(p.Model), nullInt(p.Year), nullStr(p.Color), nullInt(p.Mileage),
		svc.now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("update auction %s: %w", id, err)
	}
	return svc.GetByID(ctx, id)
}

func (svc *directoryService) Delete(ctx context.Context, id string, requester string) error {
	if err := svc.authorize(ctx, id, requester); err != nil {
		return err
	}

	if _, err := svc.db.ExecContext(ctx, deleteAuctionQ, id); err != nil {
		return fmt.Errorf("delete auction %s: %w", id, err)
	}

	svc.publish(ctx, contracts.SubjectAuctionDeleted, contracts.AuctionDeleted{ID: id})
	return nil
}

// Finalize flips a live auction to Finished or ReserveNotMet. Re-finalizing
// is a no-op: the status guard in the UPDATE makes redelivery safe.
func (svc *directoryService) Finalize(ctx context.Context, id string, itemSold bool, winner string, amount *int64) error {
	a, err := svc.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil // deleted before the finish event arrived
	}
	if err != nil {
		return err
	}
	if a.Status != contracts.StatusLive {
		return nil
	}

	var (
		w  sql.NullString
		sa sql.NullInt64
	)
	status := contracts.StatusReserveNotMet
	if itemSold {
		w = sql.NullString{String: winner, Valid: true}
		if amount != nil {
			sa = sql.NullInt64{Int64: *amount, Valid: true}
			if *amount > a.ReservePrice {
				status = contracts.StatusFinished
			}
		}
	}

	if _, err := svc.db.ExecContext(ctx, finalizeAuctionQ, id, w, sa, status, svc.now().UTC()); err != nil {
		return fmt.Errorf("finalize auction %s: %w", id, err)
	}
	return nil
}

// RaiseHighBid records a higher accepted bid on the informational
// current-high-bid field. Lower or duplicate amounts are filtered by the
// monotonic guard in the query.
func (svc *directoryService) RaiseHighBid(ctx context.Context, id string, amount int64) error {
	if _, err := svc.db.ExecContext(ctx, raiseHighBidQ, id, amount, svc.now().UTC()); err != nil {
		return fmt.Errorf("raise high bid %s: %w", id, err)
	}
	return nil
}

// Lookup answers the synchronous fallback RPC with the bid-path read shape.
func (svc *directoryService) Lookup(ctx context.Context, id string) (*auctionrpc.Auction, error) {
	a := &auctionrpc.Auction{}
	err := svc.db.QueryRowContext(ctx, lookupAuctionQ, id).
		Scan(&a.ID, &a.Seller, &a.ReservePrice, &a.AuctionEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auctionrpc.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (svc *directoryService) authorize(ctx context.Context, id, requester string) error {
	var seller string
	err := svc.db.QueryRowContext(ctx, getSellerQ, id).Scan(&seller)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if seller != requester {
		return ErrForbidden
	}
	return nil
}

// publish is best effort after the authoritative write; a failed publish is
// logged and the write stands.
func (svc *directoryService) publish(ctx context.Context, subject string, v any) {
	if err := svc.pub.Publish(ctx, subject, v); err != nil {
		zap.L().Error("directory.publish_failed", zap.String("subject", subject), zap.Error(err))
	}
}

func snapshot(a *Auction) contracts.AuctionCreated {
	evt := contracts.AuctionCreated{
		ID:           a.ID,
		ReservePrice: a.ReservePrice,
		Seller:       a.Seller,
		Winner:       a.Winner,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		AuctionEnd:   a.AuctionEnd,
		Status:       a.Status,
		Make:         a.Item.Make,
		Model:        a.Item.Model,
		Year:         a.Item.Year,
		Color:        a.Item.Color,
		Mileage:      a.Item.Mileage,
		ImageURL:     a.Item.ImageURL,
	}
	if a.SoldAmount != nil {
		evt.SoldAmount = *a.SoldAmount
	}
	if a.CurrentHighBid != nil {
		evt.CurrentHighBid = *a.CurrentHighBid
	}
	return evt
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*Auction, error) {
	a := &Auction{}
	var (
		winner sql.NullString
		sold   sql.NullInt64
		high   sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Seller, &a.ReservePrice, &winner, &sold, &high,
		&a.AuctionEnd, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		&a.Item.Make, &a.Item.Model, &a.Item.Year, &a.Item.Color, &a.Item.Mileage, &a.Item.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Winner = winner.String
	if sold.Valid {
		a.SoldAmount = &sold.Int64
	}
	if high.Valid {
		a.CurrentHighBid = &high.Int64
	}
	return a, nil
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
