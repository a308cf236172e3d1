package model

type Link struct {
	ID    string `bson:"id" json:"id"`
	URL   string `bson:"url" json:"url"`
	Label string `bson:"label" json:"label"`
}
