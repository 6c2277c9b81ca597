// Package models defines the data types shared between the session core,
// the backend client, and the CLI/TUI surfaces.
package models

// UploadedFile describes a document the backend has acknowledged.
// It only exists after a successful upload; a failed upload clears it.
type UploadedFile struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

// ChatTurn is one question/answer/context triple in the conversation.
// Turns are immutable once appended to the session history.
type ChatTurn struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Context  []string `json:"context"`
}

// AskRequest is the body of POST /ask. ChatHistory carries the prior turns
// in order so the backend can resolve follow-up questions.
type AskRequest struct {
	Question    string     `json:"question"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Context []string `json:"context"`
}

// UploadResponse is the acknowledgment body of POST /upload. Only the status
// code matters to the client; the message is informational.
type UploadResponse struct {
	Message string `json:"message"`
}
