package dto

// SetStatusRequest represents PUT /api/bots/:id/status
type SetStatusRequest struct {
	Status string `json:"status"`
}
