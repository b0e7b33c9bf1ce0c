package domain

type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityImportant Priority = "important"
	PriorityInfo      Priority = "info"
)

type MessageType string

const (
	MessageBroadcast MessageType = "broadcast"
	MessageAlert     MessageType = "alert"
	MessageGeneral   MessageType = "general"
)

// Message is immutable once created; SenderName is a display copy, not a reference.
type Message struct {
	Base
	SenderName string      `gorm:"size:128;not null" json:"senderName"`
	SenderRole string      `gorm:"size:64" json:"role"`
	Subject    string      `gorm:"size:200;not null" json:"subject" validate:"required,max=200"`
	Content    string      `gorm:"type:text;not null" json:"content" validate:"required,max=10000"`
	Priority   Priority    `gorm:"size:16;not null;default:info" json:"priority" validate:"required,oneof=urgent important info"`
	Type       MessageType `gorm:"size:16" json:"type,omitempty" validate:"omitempty,oneof=broadcast alert general"`
}

func (Message) TableName() string { return "messages" }
