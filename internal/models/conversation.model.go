package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	BaseUUIDModel
	UserOneID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair" json:"userOneId"`
	UserTwoID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair;index" json:"userTwoId"`
	LastMessageAt *time.Time `gorm:"type:timestamp;index"                                  json:"lastMessageAt,omitempty"`

	UserOne *User `gorm:"foreignKey:UserOneID" json:"userOne,omitempty"`
	UserTwo *User `gorm:"foreignKey:UserTwoID" json:"userTwo,omitempty"`
}

// OrderedPair returns the two ids with the lower one first, which is the
// form conversations are stored in.
func OrderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.UserOneID == uuid.Nil || c.UserTwoID == uuid.Nil || c.UserOneID == c.UserTwoID {
		return gorm.ErrInvalidValue
	}
	c.UserOneID, c.UserTwoID = OrderedPair(c.UserOneID, c.UserTwoID)
	return nil
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserOneID == userID || c.UserTwoID == userID
}

func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.UserOneID == userID {
		return c.UserTwoID
	}
	return c.UserOneID
}

type Message struct {
	BaseUUIDModel
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index:idx_messages_conversation_created" json:"conversationId"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null"                                        json:"senderId"`
	Body           string     `gorm:"type:text;not null"                                        json:"body"`
	ReadAt         *time.Time `gorm:"type:timestamp"                                            json:"readAt,omitempty"`
}

// ConversationSummary is a row of the conversation inbox.
type ConversationSummary struct {
	ID            uuid.UUID   `json:"id"`
	OtherUser     UserSummary `json:"otherUser"`
	LastMessage   *Message    `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time  `json:"lastMessageAt,omitempty"`
	UnreadCount   int64       `json:"unreadCount"`
}
