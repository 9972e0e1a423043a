package presentation

const (
	IDParam        = "id"
	FileField      = "file"
	AltField       = "alt"
	WidthField     = "width"
	HeightField    = "height"
	TypeField      = "type"
	PlatformQuery  = "platform"
	MaxWidthQuery  = "max_width"
	MaxHeightQuery = "max_height"
	QualityQuery   = "quality"
	ReasonTag      = "X-Reason"
	WidthTag       = "X-Image-Width"
	HeightTag      = "X-Image-Height"
	ResizedTag     = "X-Resized"
)
