package dto

// ErrorResponse is the JSON error envelope of the API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Item    *int   `json:"item,omitempty"` // offending line index, when known
}
