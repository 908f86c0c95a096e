package bidledger

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func newMockedReplicaStore(t *testing.T, now time.Time) (*redisReplicaStore, redismock.ClientMock) {
	t.Helper()
	rdc, mock := redismock.NewClientMock()
	return &redisReplicaStore{rdc: rdc, now: func() time.Time { return now }}, mock
}

func TestRedisReplicaStore_Get(t *testing.T) {
	store, mock := newMockedReplicaStore(t, testNow)

	mock.ExpectHGetAll("auc:auc-1").SetVal(map[string]string{
		"sid": "seller-1",
		"rp":  "20000",
		"ea":  "1785589200",
		"fin": "0",
	})

	rep, err := store.Get(context.Background(), "auc-1")
	require.NoError(t, err)
	require.Equal(t, "auc-1", rep.ID)
	require.Equal(t, "seller-1", rep.Seller)
	require.Equal(t, int64(20000), rep.ReservePrice)
	require.Equal(t, testNow.Add(time.Hour), rep.AuctionEnd)
	require.False(t, rep.Finished)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReplicaStore_GetMissing(t *testing.T) {
	store, mock := newMockedReplicaStore(t, testNow)

	mock.ExpectHGetAll("auc:nope").SetVal(map[string]string{})

	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrReplicaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReplicaStore_PutArmsTimer(t *testing.T) {
	store, mock := newMockedReplicaStore(t, testNow)

	end := testNow.Add(time.Hour)
	mock.ExpectHSet("auc:auc-1",
		"sid", "seller-1",
		"rp", "20000",
		"ea", "1785589200",
		"fin", "0",
	).SetVal(4)
	mock.ExpectSetNX("auc_t:auc-1", "1", time.Hour).SetVal(true)

	err := store.Put(context.Background(), &Replica{
		ID:           "auc-1",
		Seller:       "seller-1",
		ReservePrice: 20000,
		AuctionEnd:   end,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReplicaStore_PutFinishedSkipsTimer(t *testing.T) {
	store, mock := newMockedReplicaStore(t, testNow)

	end := testNow.Add(time.Hour)
	mock.ExpectHSet("auc:auc-1",
		"sid", "seller-1",
		"rp", "20000",
		"ea", "1785589200",
		"fin", "1",
	).SetVal(4)

	err := store.Put(context.Background(), &Replica{
		ID:           "auc-1",
		Seller:       "seller-1",
		ReservePrice: 20000,
		AuctionEnd:   end,
		Finished:     true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReplicaStore_PutPastEndSkipsTimer(t *testing.T) {
	store, mock := newMockedReplicaStore(t, testNow)

	end := testNow.Add(-time.Minute)
	mock.ExpectHSet("auc:auc-1",
		"sid", "seller-1",
		"rp", "20000",
		"ea", "1785585540",
		"fin", "0",
	).SetVal(4)

	err := store.Put(context.Background(), &Replica{
		ID:           "auc-1",
		Seller:       "seller-1",
		ReservePrice: 20000,
		AuctionEnd:   end,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReplicaStore_MarkFinished(t *testing.T) {
	store, mock := newMockedReplicaStore(t, testNow)

	mock.ExpectHSet("auc:auc-1", "fin", "1").SetVal(0)
	mock.ExpectDel("auc_t:auc-1").SetVal(1)

	require.NoError(t, store.MarkFinished(context.Background(), "auc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
