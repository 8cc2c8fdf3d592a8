package dto

// ErrorResponse is the structured error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// ProductID names the under-stocked product.
	ProductID *int64 `json:"product_id,omitempty"`
}
