package models

// ErrorResponse is the common error envelope returned by all handlers.
type ErrorResponse struct {
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse mirrors the original API's `{success:true}` delete replies.
type SuccessResponse struct {
	Success bool `json:"success"`
}
