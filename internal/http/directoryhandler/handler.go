// Package directoryhandler is the thin HTTP surface over the directory
// service. Authentication happens upstream; the gateway passes the resolved
// caller identity in the X-User-Id header.
package directoryhandler

import (
	"errors"
	"net/http"
	"time"

	"auctionmart/internal/services/directory"

	"github.com/gin-gonic/gin"
)

const callerHeader = "X-User-Id"

type Handler struct {
	svc directory.IDirectoryService
}

func New(svc directory.IDirectoryService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/auctions", h.list)
	r.GET("/auctions/:id", h.get)
	r.POST("/auctions", h.create)
	r.PUT("/auctions/:id", h.update)
	r.DELETE("/auctions/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	caller := c.GetHeader(callerHeader)
	if caller == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing caller identity"})
		return
	}

	var body CreateAuctionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	a, err := h.svc.Create(c.Request.Context(), directory.CreateParams{
		Make:         body.Make,
		Model:        body.Model,
		Year:         body.Year,
		Color:        body.Color,
		Mileage:      body.Mileage,
		ImageURL:     body.ImageURL,
		ReservePrice: body.ReservePrice,
		AuctionEnd:   body.AuctionEnd,
	}, caller)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) list(c *gin.Context) {
	var q ListAuctionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var updatedAfter *time.Time
	if q.Date != "" {
		t, err := time.Parse(time.RFC3339, q.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be RFC3339"})
			return
		}
		updatedAfter = &t
	}

	out, err := h.svc.List(c.Request.Context(), updatedAfter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) update(c *gin.Context) {
	caller := c.GetHeader(callerHeader)
	if caller == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing caller identity"})
		return
	}

	var body UpdateAuctionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), directory.UpdateParams{
		Make:    body.Make,
		Model:   body.Model,
		Year:    body.Year,
		Color:   body.Color,
		Mileage: body.Mileage,
	}, caller)
	if err != nil {
		status(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) delete(c *gin.Context) {
	caller := c.GetHeader(callerHeader)
	if caller == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing caller identity"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		status(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func status(c *gin.Context, err error) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, directory.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
