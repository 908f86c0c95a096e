// Package bidhandler exposes bid placement and history over HTTP.
// Authentication happens upstream; the gateway passes the resolved caller
// identity in the X-User-Id header.
package bidhandler

import (
	"errors"
	"net/http"

	"auctionmart/internal/services/bidledger"

	"github.com/gin-gonic/gin"
)

const callerHeader = "X-User-Id"

type Handler struct {
	svc bidledger.IBidLedgerService
}

func New(svc bidledger.IBidLedgerService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/bids", h.place)
	r.GET("/bids/:auctionId", h.list)
}

func (h *Handler) place(c *gin.Context) {
	caller := c.GetHeader(callerHeader)
	if caller == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing caller identity"})
		return
	}

	var body PlaceBidBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	bid, err := h.svc.PlaceBid(c.Request.Context(), body.AuctionID, caller, body.Amount)
	if err != nil {
		status(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

func (h *Handler) list(c *gin.Context) {
	bids, err := h.svc.ListBids(c.Request.Context(), c.Param("auctionId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, bids)
}

func status(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bidledger.ErrSelfBid),
		errors.Is(err, bidledger.ErrAuctionUnavailable):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
