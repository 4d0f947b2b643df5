package models

// EmailJob is one queued outbound email, pushed onto the redis email queue
// and drained by the worker pool.
type EmailJob struct {
	Type  string `json:"type"` // "verification" | "lesson-started"
	To    string `json:"to"`
	Token string `json:"token,omitempty"` // verification jobs
	With  string `json:"with,omitempty"`  // lesson-started jobs: the other participant
}

// WSMessage is the envelope pushed to websocket clients.
type WSMessage struct {
	Type    string      `json:"type"` // "message" | "lesson-started" | "lesson-expired"
	Payload interface{} `json:"payload"`
}

// API error response shape shared by all handlers.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
