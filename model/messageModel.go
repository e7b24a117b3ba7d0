// model/messageModel.go
package model

import "time"

// MaxMessageLen bounds message content, in characters.
const MaxMessageLen = 256

type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	ReceiverID  int64     `json:"receiver_id"`
	SenderEmail string    `json:"sender_email,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"timestamp"`
}

// TruncateContent cuts s to MaxMessageLen characters.
func TruncateContent(s string) string {
	r := []rune(s)
	if len(r) <= MaxMessageLen {
		return s
	}
	return string(r[:MaxMessageLen])
}
