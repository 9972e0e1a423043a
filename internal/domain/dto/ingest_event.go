package dto

const EventFileIngested = "file.ingested"

// IngestEvent is published on the broker once a new record is stored.
type IngestEvent struct {
	ID    string         `json:"id"`
	Event string         `json:"event"`
	File  FileDescriptor `json:"file"`
}
