package utils

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// GetExtensionFromMimeType returns the usual extension for mimeType, dot
// included, or "" when the type is unknown.
func GetExtensionFromMimeType(mimeType string) string {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		base = strings.ToLower(strings.TrimSpace(mimeType))
	}

	if m := mimetype.Lookup(base); m != nil {
		return m.Extension()
	}

	return ""
}
