package bidledger

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPgBidStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	placedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(insertBidQ)).
		WithArgs("bid-1", "auc-1", "alice", int64(25000), placedAt, "Accepted").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPgBidStore(db)
	err = store.Insert(context.Background(), &Bid{
		ID:        "bid-1",
		AuctionID: "auc-1",
		Bidder:    "alice",
		Amount:    25000,
		PlacedAt:  placedAt,
		Status:    "Accepted",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBidStore_HighestAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(highestAmountQ)).
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce", "count"}).AddRow(25000, 3))

	store := NewPgBidStore(db)
	high, exists, err := store.HighestAmount(context.Background(), "auc-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, int64(25000), high)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBidStore_HighestAmountNoBids(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(highestAmountQ)).
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce", "count"}).AddRow(0, 0))

	store := NewPgBidStore(db)
	_, exists, err := store.HighestAmount(context.Background(), "auc-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBidStore_ListByAuction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	placedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "auction_id", "bidder", "amount", "placed_at", "status"}).
		AddRow("bid-2", "auc-1", "bob", 25000, placedAt.Add(time.Minute), "Accepted").
		AddRow("bid-1", "auc-1", "alice", 15000, placedAt, "AcceptedBelowReserve")
	mock.ExpectQuery(regexp.QuoteMeta(listBidsQ)).
		WithArgs("auc-1").
		WillReturnRows(rows)

	store := NewPgBidStore(db)
	bids, err := store.ListByAuction(context.Background(), "auc-1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, "bid-2", bids[0].ID)
	require.Equal(t, "bid-1", bids[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBidStore_WinningBidNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(winningBidQ)).
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "auction_id", "bidder", "amount", "placed_at", "status"}))

	store := NewPgBidStore(db)
	win, err := store.WinningBid(context.Background(), "auc-1")
	require.NoError(t, err)
	require.Nil(t, win)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBidStore_WinningBid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	placedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(winningBidQ)).
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "auction_id", "bidder", "amount", "placed_at", "status"}).
			AddRow("bid-2", "auc-1", "bob", 25000, placedAt, "Accepted"))

	store := NewPgBidStore(db)
	win, err := store.WinningBid(context.Background(), "auc-1")
	require.NoError(t, err)
	require.NotNil(t, win)
	require.Equal(t, "bob", win.Bidder)
	require.Equal(t, int64(25000), win.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}
