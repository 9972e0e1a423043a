package usecase

import "errors"

var (
	// ErrValidation marks input the caller can fix: bad mime type, empty upload,
	// unknown platform.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers unknown record ids and records whose blob is missing.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidImage means the bytes could not be decoded.
	ErrInvalidImage = errors.New("invalid image")
)
