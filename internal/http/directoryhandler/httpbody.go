package directoryhandler

import "time"

type CreateAuctionBody struct {
	Make         string    `json:"make"          binding:"required"`
	Model        string    `json:"model"         binding:"required"`
	Year         int       `json:"year"          binding:"required"`
	Color        string    `json:"color"         binding:"required"`
	Mileage      int       `json:"mileage"       binding:"required"`
	ImageURL     string    `json:"image_url"     binding:"required"`
	ReservePrice int64     `json:"reserve_price" binding:"gte=0"`
	AuctionEnd   time.Time `json:"auction_end"   binding:"required" example:"2026-10-01T16:00:00Z"`
} // @name CreateAuctionRequest

type UpdateAuctionBody struct {
	Make    *string `json:"make"`
	Model   *string `json:"model"`
	Year    *int    `json:"year"`
	Color   *string `json:"color"`
	Mileage *int    `json:"mileage"`
} // @name UpdateAuctionRequest

type ListAuctionsQuery struct {
	Date string `form:"date" binding:"omitempty"`
} // @name ListAuctionsQuery

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
