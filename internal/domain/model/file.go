package model

import (
	"strconv"
	"time"

	"postbridge/pkg/digest"
)

// File is a catalog record binding an id to one blob plus the metadata it
// was uploaded with. Records are immutable once written.
type File struct {
	ID        string    `bson:"_id"        json:"id"`
	Digest    string    `bson:"digest"     json:"digest"`
	Filename  string    `bson:"filename"   json:"filename"`
	MimeType  string    `bson:"mime_type"  json:"mime_type"`
	AltText   string    `bson:"alt_text"   json:"alt_text,omitempty"`
	Width     int       `bson:"width"      json:"width"`
	Height    int       `bson:"height"     json:"height"`
	Size      int64     `bson:"size"       json:"size"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Key returns the composite key the record was resolved by.
func (f *File) Key() CompositeKey {
	return CompositeKey{
		Digest:   f.Digest,
		Filename: f.Filename,
		AltText:  f.AltText,
		Width:    f.Width,
		Height:   f.Height,
		MimeType: f.MimeType,
	}
}

// CompositeKey identifies a record: identical bytes with identical metadata
// collapse to one record, any difference yields a new one.
type CompositeKey struct {
	Digest   string
	Filename string
	AltText  string
	Width    int
	Height   int
	MimeType string
}

// ID derives the record id. Zero dimensions encode as empty fields.
func (k CompositeKey) ID() string {
	return digest.RecordID(
		k.Digest,
		k.Filename,
		k.AltText,
		dimension(k.Width),
		dimension(k.Height),
		k.MimeType,
	)
}

func dimension(v int) string {
	if v <= 0 {
		return ""
	}

	return strconv.Itoa(v)
}
