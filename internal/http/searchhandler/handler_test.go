package searchhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"auctionmart/internal/services/searchindex"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeSearch struct {
	lastQuery searchindex.Query
	items     []searchindex.Item
}

func (f *fakeSearch) Upsert(_ context.Context, _ *searchindex.Item) error { return nil }

func (f *fakeSearch) ApplyFinished(_ context.Context, _, _ string, _ *int64, _ bool) error {
	return nil
}

func (f *fakeSearch) Remove(_ context.Context, _ string) error { return nil }

func (f *fakeSearch) Search(_ context.Context, q searchindex.Query) ([]searchindex.Item, error) {
	f.lastQuery = q
	return f.items, nil
}

func newTestRouter(svc searchindex.ISearchService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	New(svc).Register(engine)
	return engine
}

func TestSearch_PassesQuery(t *testing.T) {
	svc := &fakeSearch{items: []searchindex.Item{{ID: "auc-1", Make: "Ford"}}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/search?term=ford&page=2&pageSize=10&orderBy=new", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, searchindex.Query{Term: "ford", Page: 2, PageSize: 10, OrderBy: "new"}, svc.lastQuery)

	var items []searchindex.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
}

func TestSearch_Defaults(t *testing.T) {
	svc := &fakeSearch{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, searchindex.Query{Page: 1, PageSize: 20}, svc.lastQuery)
}

func TestSearch_RejectsUnknownOrder(t *testing.T) {
	router := newTestRouter(&fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/search?orderBy=price", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
