package directoryhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auctionmart/internal/auctionrpc"
	"auctionmart/internal/services/directory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	auction   *directory.Auction
	getErr    error
	updateErr error
	deleteErr error
	listAfter *time.Time
}

func (f *fakeDirectory) Create(_ context.Context, p directory.CreateParams, seller string) (*directory.Auction, error) {
	return &directory.Auction{
		ID:           "auc-1",
		Seller:       seller,
		ReservePrice: p.ReservePrice,
		AuctionEnd:   p.AuctionEnd,
		Status:       "Live",
		Item: directory.Item{
			Make:  p.Make,
			Model: p.Model,
		},
	}, nil
}

func (f *fakeDirectory) GetByID(_ context.Context, _ string) (*directory.Auction, error) {
	return f.auction, f.getErr
}

func (f *fakeDirectory) List(_ context.Context, updatedAfter *time.Time) ([]directory.Auction, error) {
	f.listAfter = updatedAfter
	return []directory.Auction{}, nil
}

func (f *fakeDirectory) Update(_ context.Context, _ string, _ directory.UpdateParams, _ string) (*directory.Auction, error) {
	return f.auction, f.updateErr
}

func (f *fakeDirectory) Delete(_ context.Context, _ string, _ string) error {
	return f.deleteErr
}

func (f *fakeDirectory) Finalize(_ context.Context, _ string, _ bool, _ string, _ *int64) error {
	return nil
}

func (f *fakeDirectory) RaiseHighBid(_ context.Context, _ string, _ int64) error { return nil }

func (f *fakeDirectory) Lookup(_ context.Context, _ string) (*auctionrpc.Auction, error) {
	return nil, auctionrpc.ErrNotFound
}

func newTestRouter(svc directory.IDirectoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	New(svc).Register(engine)
	return engine
}

const createBody = `{"make":"Ford","model":"GT","year":2020,"color":"White",` +
	`"mileage":50000,"image_url":"https://img.example/gt.png",` +
	`"reserve_price":20000,"auction_end":"2026-10-01T16:00:00Z"}`

func TestCreateAuction(t *testing.T) {
	router := newTestRouter(&fakeDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/auctions", strings.NewReader(createBody))
	req.Header.Set("X-User-Id", "seller-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var a directory.Auction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	require.Equal(t, "seller-1", a.Seller)
	require.Equal(t, "Ford", a.Item.Make)
}

func TestCreateAuction_MissingCaller(t *testing.T) {
	router := newTestRouter(&fakeDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/auctions", strings.NewReader(createBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAuction_NotFound(t *testing.T) {
	router := newTestRouter(&fakeDirectory{getErr: directory.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/auctions/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAuctions_DateFilter(t *testing.T) {
	svc := &fakeDirectory{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auctions?date=2026-08-01T00:00:00Z", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.listAfter)
	require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), svc.listAfter.UTC())
}

func TestListAuctions_BadDate(t *testing.T) {
	router := newTestRouter(&fakeDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/auctions?date=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAuction_Forbidden(t *testing.T) {
	router := newTestRouter(&fakeDirectory{updateErr: directory.ErrForbidden})

	req := httptest.NewRequest(http.MethodPut, "/auctions/auc-1", strings.NewReader(`{"color":"Red"}`))
	req.Header.Set("X-User-Id", "intruder")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteAuction(t *testing.T) {
	router := newTestRouter(&fakeDirectory{})

	req := httptest.NewRequest(http.MethodDelete, "/auctions/auc-1", nil)
	req.Header.Set("X-User-Id", "seller-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
}
