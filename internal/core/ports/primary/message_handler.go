package primary

import (
	"context"
)

// MessageHandler handles the payload of one bus subject. The returned value is
// sent back as the reply when the message carried a reply subject.
type MessageHandler interface {
	HandleMessage(ctx context.Context, payload []byte) (interface{}, error)
}
