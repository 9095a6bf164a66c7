package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is the envelope carried on every subject
type Message struct {
	// ID is the unique identifier for the message
	ID string `json:"id"`

	// Subject is where the message was published
	Subject string `json:"subject"`

	// Reply is the inbox a responder answers on. Empty for events.
	Reply string `json:"reply,omitempty"`

	// Headers contains metadata about the message
	Headers map[string]string `json:"headers,omitempty"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`

	// Body is the JSON payload
	Body json.RawMessage `json:"body"`
}

// NewMessage wraps body into an envelope for subject
func NewMessage(subject string, body interface{}) (*Message, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message body: %w", err)
	}
	return &Message{
		ID:        uuid.NewString(),
		Subject:   subject,
		Headers:   make(map[string]string),
		Timestamp: time.Now().UTC(),
		Body:      raw,
	}, nil
}

// SetHeader sets a header value
func (m *Message) SetHeader(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
}

// GetHeader retrieves a header value
func (m *Message) GetHeader(key string) (string, bool) {
	if m.Headers == nil {
		return "", false
	}
	val, ok := m.Headers[key]
	return val, ok
}

// Decode unmarshals the body into v
func (m *Message) Decode(v interface{}) error {
	if len(m.Body) == 0 {
		return fmt.Errorf("empty message body")
	}
	return json.Unmarshal(m.Body, v)
}
