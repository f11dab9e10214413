package dto

import "time"

// SuccessResponse wraps every successful API answer.
type SuccessResponse struct {
	Timestamp time.Time   `json:"timestamp"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

// NewSuccess stamps a success envelope.
func NewSuccess(status int, message string, data interface{}) SuccessResponse {
	return SuccessResponse{Timestamp: time.Now(), Status: status, Message: message, Data: data}
}

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
