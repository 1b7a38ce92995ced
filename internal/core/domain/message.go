// Package domain defines the core domain models for zpipe.
package domain

// Message is one logical pub/sub message: a topic frame followed by a payload frame.
type Message struct {
	Topic   []byte
	Payload []byte

	// Seq is the 1-based receive counter assigned by the subscriber.
	Seq uint64
}

// NewMessage creates a message from its two frames.
func NewMessage(topic, payload []byte, seq uint64) Message {
	return Message{
		Topic:   topic,
		Payload: payload,
		Seq:     seq,
	}
}

// Size returns the combined frame size in bytes.
func (m Message) Size() int {
	return len(m.Topic) + len(m.Payload)
}
