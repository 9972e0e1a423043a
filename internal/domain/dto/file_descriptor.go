package dto

// FileDescriptor is the public view of a catalog record.
type FileDescriptor struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Sha256   string `json:"sha256"`
	Filename string `json:"filename"`
	FileType string `json:"type"`
	AltText  string `json:"alt,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	Uploaded int64  `json:"uploaded"`
}
