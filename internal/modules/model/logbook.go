package model

import "time"

// LogbookEntry is stored both as a document (content) and as a time-series
// point tagged by ID whose event time is Timestamp.
type LogbookEntry struct {
	ID        string    `bson:"_id" json:"id"`
	TestID    string    `bson:"test_id" json:"test_id"`
	Operator  string    `bson:"operator" json:"operator"`
	Content   string    `bson:"content" json:"content"`
	SensorIDs []string  `bson:"sensor_ids" json:"sensor_ids"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (LogbookEntry) CollectionName() string { return "logbook" }
