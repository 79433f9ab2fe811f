// Package chat holds the conversation state shown by the chat panel: the
// message log, credential masking, progress pacing and attachments.
package chat

import (
	"github.com/google/uuid"

	"github.com/finassist/fin/internal/api"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Inline error texts.
const (
	ErrorPrefix  = "❌ Error: "
	GenericError = "❌ Sorry, there was an error processing your message. Please try again."
	InitError    = "❌ Sorry, there was an error initializing the chat. Please restart the dashboard."
)

// CredentialsStoredText confirms stored broker credentials when the backend
// sends no message of its own.
const CredentialsStoredText = "Alpaca credentials stored successfully."

// PerformanceRequest is answered by the performance report endpoint rather
// than the chat endpoint.
const PerformanceRequest = "portfolio-performance"

// Message is one entry of the log.
type Message struct {
	ID         uuid.UUID
	Role       Role
	Text       string
	Progress   bool
	Error      bool
	Attachment *api.Attachment
}

// Log is the ordered conversation. At most one progress message is present,
// and it is always the most recent assistant message.
type Log struct {
	messages []Message
	progress int
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{progress: -1}
}

// AddUser appends a message written by the user.
func (l *Log) AddUser(text string) Message {
	return l.append(Message{Role: RoleUser, Text: text})
}

// AddAssistant appends an answer, replacing any pending progress message.
func (l *Log) AddAssistant(text string, attachment *api.Attachment) Message {
	l.dropProgress()
	return l.append(Message{Role: RoleAssistant, Text: text, Attachment: attachment})
}

// AddProgress shows an interim update in place of the previous one.
func (l *Log) AddProgress(text string) Message {
	l.dropProgress()
	m := l.append(Message{Role: RoleAssistant, Text: text, Progress: true})
	l.progress = len(l.messages) - 1
	return m
}

// AddError appends an inline error bubble.
func (l *Log) AddError(text string) Message {
	l.dropProgress()
	return l.append(Message{Role: RoleAssistant, Text: text, Error: true})
}

// Messages returns a copy of the log.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	return len(l.messages)
}

// LastAttachment returns the attachment of the most recent answer carrying one.
func (l *Log) LastAttachment() *api.Attachment {
	for i := len(l.messages) - 1; i >= 0; i-- {
		if a := l.messages[i].Attachment; a != nil {
			return a
		}
	}
	return nil
}

// Clear removes every message.
func (l *Log) Clear() {
	l.messages = nil
	l.progress = -1
}

func (l *Log) append(m Message) Message {
	m.ID = uuid.New()
	l.messages = append(l.messages, m)
	return m
}

func (l *Log) dropProgress() {
	if l.progress < 0 {
		return
	}
	l.messages = append(l.messages[:l.progress], l.messages[l.progress+1:]...)
	l.progress = -1
}
