package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SeedRequestMessage asks a worker to reload the dataset from Source.
// An empty Source means the worker's configured default.
type SeedRequestMessage struct {
	RequestID string    `json:"request_id"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSeedRequestMessage(source string) *SeedRequestMessage {
	return &SeedRequestMessage{
		RequestID: uuid.NewString(),
		Source:    source,
		Timestamp: time.Now(),
	}
}

func (m *SeedRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SeedRequestMessageFromJSON(data []byte) (*SeedRequestMessage, error) {
	var msg SeedRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SeedCompletedMessage reports the outcome of a seed run. Error is empty on
// success.
type SeedCompletedMessage struct {
	RequestID string    `json:"request_id,omitempty"`
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *SeedCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
