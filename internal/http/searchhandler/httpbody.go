package searchhandler

type SearchQuery struct {
	Term     string `form:"term"     binding:"omitempty"`
	Page     int    `form:"page,default=1"      binding:"gte=0"`
	PageSize int    `form:"pageSize,default=20" binding:"gte=0,lte=100"`
	OrderBy  string `form:"orderBy"  binding:"omitempty,oneof=make new"`
} // @name SearchQuery

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
