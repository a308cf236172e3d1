package model

import (
	"time"
)

type TestStatus string

const (
	TestStatusDraft      TestStatus = "draft"
	TestStatusInProgress TestStatus = "in_progress"
	TestStatusFinished   TestStatus = "finished"
)

func (s TestStatus) Valid() bool {
	switch s {
	case TestStatusDraft, TestStatusInProgress, TestStatusFinished:
		return true
	}
	return false
}

type Test struct {
	TestID        string     `bson:"_id" json:"test_id"`
	CampaignID    string     `bson:"campaign_id" json:"campaign_id"`
	SampleID      string     `bson:"sample_id" json:"sample_id"`
	EnvironmentID string     `bson:"environment_id" json:"environment_id"`
	Operator      string     `bson:"operator" json:"operator"`
	Sensors       Sensors    `bson:"sensors" json:"sensors" swaggertype:"object"`
	ConfigID      string     `bson:"config_id" json:"config_id"`
	Status        TestStatus `bson:"status" json:"status"`
	GrafanaURL    *string    `bson:"grafana_url" json:"grafana_url"`
	Start         *time.Time `bson:"start" json:"start"`
	End           *time.Time `bson:"end" json:"end"`

	Files map[string]File `bson:"files" json:"files"`
	Links []Link          `bson:"links" json:"links"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (Test) CollectionName() string { return "tests" }

// ConfigContent is the descriptive part of a Test mirrored into the
// external Configuration API.
type ConfigContent struct {
	TestID        string  `json:"test_id"`
	CampaignID    string  `json:"campaign_id"`
	SampleID      string  `json:"sample_id"`
	EnvironmentID string  `json:"environment_id"`
	Operator      string  `json:"operator"`
	Sensors       Sensors `json:"sensors"`
}

func (t *Test) ConfigContent() ConfigContent {
	return ConfigContent{
		TestID:        t.TestID,
		CampaignID:    t.CampaignID,
		SampleID:      t.SampleID,
		EnvironmentID: t.EnvironmentID,
		Operator:      t.Operator,
		Sensors:       t.Sensors,
	}
}
