package dto

// UploadInput carries one upload into the store. Zero Width or Height means
// the client did not declare dimensions.
type UploadInput struct {
	Data     []byte
	Filename string
	AltText  string
	Width    int
	Height   int
	MimeType string
}
