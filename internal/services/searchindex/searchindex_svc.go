// Package searchindex maintains the denormalized browse projection. Its
// only write path is the three lifecycle consumers; queries never touch the
// directory or the bid ledger.
package searchindex

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auctionmart/internal/contracts"
)

type Item struct {
	ID             string    `json:"id"`
	Seller         string    `json:"seller"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Color          string    `json:"color"`
	Year           int       `json:"year"`
	Mileage        int       `json:"mileage"`
	ImageURL       string    `json:"image_url"`
	CurrentHighBid int64     `json:"current_high_bid"`
	Winner         string    `json:"winner,omitempty"`
	SoldAmount     *int64    `json:"sold_amount,omitempty"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Query filters and pages the projection. OrderBy is "make" (default) or
// "new" for most recently updated first.
type Query struct {
	Term     string
	Page     int
	PageSize int
	OrderBy  string
}

type ISearchService interface {
	Upsert(ctx context.Context, item *Item) error
	ApplyFinished(ctx context.Context, id, winner string, soldAmount *int64, itemSold bool) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) ([]Item, error)
}

type searchService struct {
	db *sql.DB
}

func NewSearchService(db *sql.DB) ISearchService {
	return &searchService{db: db}
}

const searchCols = `id, seller, make, model, color, year, mileage, image_url,
	       current_high_bid, winner, sold_amount, status, updated_at`

const (
	upsertItemQ = `INSERT INTO items (id, seller, make, model, color, year, mileage, image_url,
	                    current_high_bid, status, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	 ON CONFLICT (id) DO UPDATE
	        SET seller           = EXCLUDED.seller,
	            make             = EXCLUDED.make,
	            model            = EXCLUDED.model,
	            color            = EXCLUDED.color,
	            year             = EXCLUDED.year,
	            mileage          = EXCLUDED.mileage,
	            image_url        = EXCLUDED.image_url,
	            current_high_bid = EXCLUDED.current_high_bid,
	            status           = EXCLUDED.status,
	            updated_at       = EXCLUDED.updated_at`

	applyFinishedQ = `UPDATE items
	       SET status = $2, winner = $3, sold_amount = $4, updated_at = $5
	     WHERE id = $1`

	deleteItemQ = `DELETE FROM items WHERE id = $1`

	matchClause = ` WHERE make ILIKE '%' || $1 || '%'
	    OR model ILIKE '%' || $1 || '%'
	    OR color ILIKE '%' || $1 || '%'`
)

// EnsureSchema creates the items table if it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS items (
		id               TEXT PRIMARY KEY,
		seller           TEXT NOT NULL,
		make             TEXT NOT NULL,
		model            TEXT NOT NULL,
		color            TEXT NOT NULL,
		year             INT NOT NULL,
		mileage          INT NOT NULL,
		image_url        TEXT NOT NULL,
		current_high_bid BIGINT NOT NULL DEFAULT 0,
		winner           TEXT,
		sold_amount      BIGINT,
		status           TEXT NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Upsert replays safely: a duplicate delivery overwrites the row with the
// same data.
func (svc *searchService) Upsert(ctx context.Context, item *Item) error {
	_, err := svc.db.ExecContext(ctx, upsertItemQ,
		item.ID, item.Seller, item.Make, item.Model, item.Color,
		item.Year, item.Mileage, item.ImageURL,
		item.CurrentHighBid, item.Status, item.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// ApplyFinished refreshes status and outcome. A missing row is not an
// error; the projection may simply never have seen the create.
func (svc *searchService) ApplyFinished(ctx context.Context, id, winner string, soldAmount *int64, itemSold bool) error {
	status := contracts.StatusReserveNotMet
	var (
		w  sql.NullString
		sa sql.NullInt64
	)
	if itemSold {
		w = sql.NullString{String: winner, Valid: true}
		if soldAmount != nil {
			sa = sql.NullInt64{Int64: *soldAmount, Valid: true}
		}
		status = contracts.StatusFinished
	}

	_, err := svc.db.ExecContext(ctx, applyFinishedQ, id, status, w, sa, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("apply finished %s: %w", id, err)
	}
	return nil
}

// Remove tombstones by id. Deleting an absent row is a no-op, so duplicate
// deletes and deletes racing ahead of the create both succeed.
func (svc *searchService) Remove(ctx context.Context, id string) error {
	if _, err := svc.db.ExecContext(ctx, deleteItemQ, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func (svc *searchService) Search(ctx context.Context, q Query) ([]Item, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	offset := (q.Page - 1) * q.PageSize

	order := ` ORDER BY make, model`
	if q.OrderBy == "new" {
		order = ` ORDER BY updated_at DESC`
	}

	base := `SELECT ` + searchCols + ` FROM items`
	var (
		rows *sql.Rows
		err  error
	)
	if q.Term != "" {
		rows, err = svc.db.QueryContext(ctx, base+matchClause+order+` LIMIT $2 OFFSET $3`,
			q.Term, q.PageSize, offset)
	} else {
		rows, err = svc.db.QueryContext(ctx, base+order+` LIMIT $1 OFFSET $2`,
			q.PageSize, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Item, 0, q.PageSize)
	for rows.Next() {
		var (
			it     Item
			winner sql.NullString
			sold   sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &it.Seller, &it.Make, &it.Model, &it.Color,
			&it.Year, &it.Mileage, &it.ImageURL,
			&it.CurrentHighBid, &winner, &sold, &it.Status, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.Winner = winner.String
		if sold.Valid {
			it.SoldAmount = &sold.Int64
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
