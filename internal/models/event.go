package models

import "time"

type EventType string

const (
	EventOperation  EventType = "Operation"
	EventCommunity  EventType = "Community"
	EventManagement EventType = "Management"
)

type Event struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	EventDate   time.Time `gorm:"not null" json:"event_date"`
	Type        EventType `gorm:"type:varchar(20);not null" json:"type"`
}
