package controllers

// MessageResponse is the standard envelope for status-only responses.
type MessageResponse struct {
	Message string `json:"message" example:"anonymization_created"`
}

// CreatedResponse is returned when a catalog entity was created.
type CreatedResponse struct {
	Message string `json:"message" example:"Database was created successfully"`
	ID      uint   `json:"id" example:"1"`
}

// StandardErrorResponse is returned for malformed requests.
type StandardErrorResponse struct {
	Error string `json:"error" example:"invalid id parameter"`
}

// PageResponse is the pagination envelope for catalog listings.
type PageResponse struct {
	CurrentPage int         `json:"current_page" example:"1"`
	TotalItems  int64       `json:"total_items" example:"42"`
	TotalPages  int         `json:"total_pages" example:"5"`
	Items       interface{} `json:"items"`
}
