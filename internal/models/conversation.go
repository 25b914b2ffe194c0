package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHistoryPageSize caps a single history read at the latest messages.
const ChatHistoryPageSize = 50

// ConversationID derives the canonical, order-independent key for a pair of
// handles, so either side addressing the other lands on the same document.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// Conversation is a pairwise chat session stored in MongoDB. The unread
// counters and hide markers are derived state and only change together with
// the underlying message traffic, inside a transaction.
type Conversation struct {
	ID           string         `json:"id" bson:"_id"`
	Participants []string       `json:"participants" bson:"participants"`
	LastMessage  string         `json:"last_message" bson:"last_message"`
	LastSender   string         `json:"last_sender" bson:"last_sender"`
	UnreadCounts map[string]int `json:"unread_counts" bson:"unread_counts"`
	HiddenFor    []string       `json:"-" bson:"hidden_for,omitempty"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewConversation creates the session document for a pair of handles.
func NewConversation(a, b string, now time.Time) *Conversation {
	if a > b {
		a, b = b, a
	}
	return &Conversation{
		ID:           a + "_" + b,
		Participants: []string{a, b},
		UnreadCounts: map[string]int{a: 0, b: 0},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasParticipant reports whether the handle belongs to this session.
func (c *Conversation) HasParticipant(handle string) bool {
	for _, p := range c.Participants {
		if p == handle {
			return true
		}
	}
	return false
}

// HiddenBy reports whether the participant has soft-deleted the session.
func (c *Conversation) HiddenBy(handle string) bool {
	for _, h := range c.HiddenFor {
		if h == handle {
			return true
		}
	}
	return false
}

// Counterpart returns the other participant of the pair.
func (c *Conversation) Counterpart(handle string) string {
	for _, p := range c.Participants {
		if p != handle {
			return p
		}
	}
	return handle
}

// ApplyMessage folds a new message into the session state: bumps the
// recipient's unread counter, refreshes the last-message fields, and clears
// any soft-hide for both sides so the session reappears in both inboxes.
func (c *Conversation) ApplyMessage(sender, recipient, content string, now time.Time) {
	if c.UnreadCounts == nil {
		c.UnreadCounts = map[string]int{}
	}
	c.UnreadCounts[recipient]++
	c.LastMessage = content
	c.LastSender = sender
	c.UpdatedAt = now
	c.HiddenFor = removeHandle(c.HiddenFor, sender)
	c.HiddenFor = removeHandle(c.HiddenFor, recipient)
}

// MarkRead zeroes the participant's unread counter. Returns false when
// there was nothing to clear.
func (c *Conversation) MarkRead(handle string) bool {
	if c.UnreadCounts[handle] == 0 {
		return false
	}
	c.UnreadCounts[handle] = 0
	return true
}

// Hide soft-deletes the session for one participant. Returns false when it
// was already hidden.
func (c *Conversation) Hide(handle string) bool {
	if c.HiddenBy(handle) {
		return false
	}
	c.HiddenFor = append(c.HiddenFor, handle)
	return true
}

func removeHandle(handles []string, handle string) []string {
	for i, h := range handles {
		if h == handle {
			return append(handles[:i], handles[i+1:]...)
		}
	}
	return handles
}

// Message is a chat message child record stored in MongoDB
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID string             `json:"-" bson:"conversation_id"`
	Sender         string             `json:"sender" bson:"sender"`
	Content        string             `json:"content" bson:"content"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	To      string `json:"to" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// InboxEntry is a conversation annotated for one participant's inbox.
type InboxEntry struct {
	ID          string    `json:"id"`
	With        string    `json:"with"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar,omitempty"`
	LastMessage string    `json:"last_message"`
	LastSender  string    `json:"last_sender"`
	Unread      int       `json:"unread"`
	UpdatedAt   time.Time `json:"updated_at"`
}
