// Package searchhandler serves the read-model query endpoint.
package searchhandler

import (
	"net/http"

	"auctionmart/internal/services/searchindex"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc searchindex.ISearchService
}

func New(svc searchindex.ISearchService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	items, err := h.svc.Search(c.Request.Context(), searchindex.Query{
		Term:     q.Term,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}
