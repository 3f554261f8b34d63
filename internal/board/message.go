package board

import "time"

// Message is a note posted to the board. It is immutable after creation
// except for ViewerCount, which only ever grows.
type Message struct {
	Id          string    `json:"id"`
	Recipient   string    `json:"recipient"`
	Body        string    `json:"body"`
	SessionId   string    `json:"sessionId"`
	ViewerCount int64     `json:"viewerCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary is the projection returned by the list operation. The session
// token never leaves the server for messages that are not the caller's own.
type Summary struct {
	Id          string `json:"id"`
	Recipient   string `json:"recipient"`
	Body        string `json:"body"`
	ViewerCount int64  `json:"viewerCount"`
}

func (m Message) Summarize() Summary {
	return Summary{
		Id:          m.Id,
		Recipient:   m.Recipient,
		Body:        m.Body,
		ViewerCount: m.ViewerCount,
	}
}
