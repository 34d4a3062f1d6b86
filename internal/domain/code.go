package domain

// CodeRecord is one verification code extracted from a forwarded message.
// Records are immutable once created; the same value is stored in the
// profile history and published to stream listeners.
type CodeRecord struct {
	Code      string `json:"code"`
	Sender    string `json:"sender,omitempty"`
	Provider  string `json:"provider"`
	Timestamp int64  `json:"timestamp"`
	Profile   string `json:"profile"`
}
