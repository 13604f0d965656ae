package amqp

import (
	"encoding/json"
	"time"
)

// SeedCompletedMessage announces that a seed batch was committed.
type SeedCompletedMessage struct {
	Inserted  int       `json:"inserted"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSeedCompletedMessage(inserted int, source string) *SeedCompletedMessage {
	return &SeedCompletedMessage{
		Inserted:  inserted,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SeedCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SeedCompletedMessageFromJSON decodes a message published by PublishSeedCompleted.
func SeedCompletedMessageFromJSON(data []byte) (*SeedCompletedMessage, error) {
	var msg SeedCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
