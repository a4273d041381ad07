package domain

// SendEmailRequest represents a request to send a single templated email
type SendEmailRequest struct {
	To        string         `json:"to"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables,omitempty"`
}

// BulkEmailRequest represents a request to send a templated email to up to
// 50 recipients in one call
type BulkEmailRequest struct {
	Recipients []Recipient    `json:"recipients"`
	Subject    string         `json:"subject"`
	Template   string         `json:"template"`
	Variables  map[string]any `json:"variables,omitempty"`
}

// PreviewRequest represents a request to render a template without sending
type PreviewRequest struct {
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables,omitempty"`
}

// DeliveryResult is the outcome of one delivery attempt. Results are created
// fresh per bulk call and discarded after the response is written.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	Recipient string `json:"recipient"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BulkSendResult aggregates per-recipient outcomes of one bulk call.
// Total is the post-deduplication recipient count and always equals
// SuccessCount + FailureCount.
type BulkSendResult struct {
	Total             int              `json:"total"`
	SuccessCount      int              `json:"successCount"`
	FailureCount      int              `json:"failureCount"`
	DuplicatesRemoved int              `json:"duplicatesRemoved"`
	Results           []DeliveryResult `json:"results"`
}
