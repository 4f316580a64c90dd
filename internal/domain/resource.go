package domain

import "time"

// DownloadEntry records one presigned download handed to a user.
// PK: user_id, SK: entry_id (ULID, so entries sort by time).
type DownloadEntry struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	EntryID      string    `json:"entry_id" dynamodbav:"entry_id"`
	ResourceKey  string    `json:"resource_key" dynamodbav:"resource_key"`
	DownloadedAt time.Time `json:"downloaded_at" dynamodbav:"downloaded_at"`
}

// SavedResource marks a resource a user pinned to their list.
// PK: user_id, SK: resource_id.
type SavedResource struct {
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	ResourceID string    `json:"resource_id" dynamodbav:"resource_id"`
	SavedAt    time.Time `json:"saved_at" dynamodbav:"saved_at"`
}
