package imaging

type Config struct {
	JPEGQuality    int    `yaml:"jpeg_quality"`
	PNGCompression string `yaml:"png_compression"`
	MaxConcurrent  int64  `yaml:"max_concurrent"`
}
