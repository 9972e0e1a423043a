package filesystem

type Config struct {
	Root string `yaml:"root"`
}
