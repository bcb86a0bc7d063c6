package meta

// APIError is the single error kind the Graph API surfaces through this
// client. Auth expiry, rate limiting, validation and not-found all arrive as
// the same shape; callers that need finer detail must parse response bodies
// themselves.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorEnvelope is the Graph API error payload.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
