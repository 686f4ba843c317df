package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Message types.
const (
	TypeSync   = "transaction.sync"
	TypeDelete = "transaction.delete"
)

// TransactionMessage names a changed transaction. Consumers fetch the full
// record from the store, so a stale message converges on the current state.
type TransactionMessage struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

var errInvalidMessage = errors.New("invalid message")

func NewSyncMessage(userID, id string) *TransactionMessage {
	return &TransactionMessage{Type: TypeSync, UserID: userID, ID: id, Timestamp: time.Now().UTC()}
}

func NewDeleteMessage(userID, id string) *TransactionMessage {
	return &TransactionMessage{Type: TypeDelete, UserID: userID, ID: id, Timestamp: time.Now().UTC()}
}

func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes and validates a message body.
func MessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != TypeSync && msg.Type != TypeDelete {
		return nil, fmt.Errorf("%w: unknown type %q", errInvalidMessage, msg.Type)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("%w: missing id", errInvalidMessage)
	}
	return &msg, nil
}
