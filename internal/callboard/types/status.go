package types

// ReplaceResponse acknowledges a successful whole-document write.
// Items is the number of top-level keys in the stored document, which
// the operator UI shows as "saved N records".
type ReplaceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Items   int    `json:"items"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
