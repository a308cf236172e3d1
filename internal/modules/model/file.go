package model

import "time"

// File is the metadata of a blob attached to a Test. The bytes live in the
// blob store under BlobKey(workspace, testID, Name).
type File struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	URL        string    `bson:"url" json:"url"`
	Size       int64     `bson:"size" json:"size"`
	MIME       string    `bson:"mime,omitempty" json:"mime,omitempty"`
	SHA256     string    `bson:"sha256,omitempty" json:"sha256,omitempty"`
	ETag       string    `bson:"etag,omitempty" json:"etag,omitempty"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

func BlobKey(workspaceID, testID, filename string) string {
	return workspaceID + "/test-manager/" + testID + "/" + filename
}
