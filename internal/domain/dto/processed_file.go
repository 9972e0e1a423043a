package dto

// Bounds is the largest rendition a platform accepts.
type Bounds struct {
	MaxWidth  int `yaml:"max_width"  json:"max_width"`
	MaxHeight int `yaml:"max_height" json:"max_height"`
	Quality   int `yaml:"quality"    json:"quality,omitempty"`
}

// ProcessedFile is what publishers attach to an outbound post.
type ProcessedFile struct {
	Data     []byte
	MimeType string
	AltText  string
	Width    int
	Height   int
	Filename string
	Resized  bool
}
