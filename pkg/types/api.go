package types

// GenerateRequest is the payload for POST /generate and POST /debug.
type GenerateRequest struct {
	// Required prompt text. For /debug it describes the statement to repair.
	// example: Q: list the names of users older than 30
	Prompt string `json:"prompt" example:"Q: list the names of users older than 30"`
}

// GenerateResponse carries the backend's answer.
type GenerateResponse struct {
	// The generated statement. The checkpoint backend always returns exactly
	// one statement ending in ';'; the other backends return text verbatim.
	// example: SELECT name FROM users WHERE age > 30;
	Statement string `json:"statement" example:"SELECT name FROM users WHERE age > 30;"`
	// Backend that produced the statement.
	// example: checkpoint
	Backend string `json:"backend,omitempty" example:"checkpoint"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
