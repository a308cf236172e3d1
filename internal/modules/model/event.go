package model

import "time"

type EventType string

const (
	EventTestCreated    EventType = "test.created"
	EventTestUpdated    EventType = "test.updated"
	EventTestDeleted    EventType = "test.deleted"
	EventFileUploaded   EventType = "file.uploaded"
	EventFileDeleted    EventType = "file.deleted"
	EventLogbookCreated EventType = "logbook.created"
	EventLogbookUpdated EventType = "logbook.updated"
	EventLogbookDeleted EventType = "logbook.deleted"
)

// Event is published to the message broker after a committed change.
type Event struct {
	Type     EventType `json:"type"`
	TestID   string    `json:"test_id"`
	EntityID string    `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}
