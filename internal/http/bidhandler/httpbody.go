package bidhandler

type PlaceBidBody struct {
	AuctionID string `json:"auction_id" binding:"required,uuid" example:"b9e9a3c2-51f0-4d3e-8a44-0f6a4f9a7f21"`
	Amount    int64  `json:"amount"     binding:"required,gt=0"  example:"25000"`
} // @name PlaceBidRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
