package domain

import (
	"encoding/hex"
	"unicode/utf8"
)

// Display renders frame bytes for humans: the bytes as-is when they are
// valid UTF-8, lowercase hex otherwise. Topic and payload frames are
// rendered the same way.
func Display(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return hex.EncodeToString(b)
}

// TopicDisplay returns the display form of the topic frame.
func (m Message) TopicDisplay() string {
	return Display(m.Topic)
}

// PayloadDisplay returns the display form of the payload frame.
func (m Message) PayloadDisplay() string {
	return Display(m.Payload)
}
