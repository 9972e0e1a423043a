package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"postbridge/internal/domain/dto"
	"postbridge/internal/infrastructure/broker"
	"postbridge/internal/infrastructure/database"
	"postbridge/internal/infrastructure/filesystem"
	"postbridge/internal/infrastructure/imaging"
	"postbridge/internal/infrastructure/minio"
	"postbridge/internal/infrastructure/mysql"
	"postbridge/internal/infrastructure/tracing"
	"postbridge/pkg/logger"
)

const (
	BackendFilesystem = "filesystem"
	BackendMinIO      = "minio"
	BackendMongo      = "mongo"
	BackendMySQL      = "mysql"
)

type HTTPConfig struct {
	Address string `yaml:"address"`
	// PublicAddress is the base of the URLs handed out in file descriptors.
	PublicAddress string `yaml:"public_address"`
	BodyLimit     string `yaml:"body_limit"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
}

type CatalogConfig struct {
	Backend string `yaml:"backend"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Config represents the configs used by services on system.
type Config struct {
	Environment     string                 `yaml:"environment"`
	HTTP            HTTPConfig             `yaml:"http"`
	Store           StoreConfig            `yaml:"store"`
	Filesystem      filesystem.Config      `yaml:"filesystem"`
	MinIOClient     minio.ClientConfig     `yaml:"minio_client"`
	MinIOStore      minio.StoreConfig      `yaml:"minio_store"`
	Catalog         CatalogConfig          `yaml:"catalog"`
	DBConfig        database.Config        `yaml:"db_config"`
	MySQL           mysql.Config           `yaml:"mysql"`
	BrokerConfig    broker.Config          `yaml:"redis_broker_config"`
	PublisherConfig broker.PublisherConfig `yaml:"publisher_config"`
	Imaging         imaging.Config         `yaml:"imaging"`
	Platforms       map[string]dto.Bounds  `yaml:"platforms"`
	Tracing         tracing.Config         `yaml:"tracing"`
	Metrics         MetricsConfig          `yaml:"metrics"`
	Logger          logger.Config          `yaml:"logger"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}
	defer file.Close()

	config := &Config{}

	decoder := yaml.NewDecoder(file)

	if err := decoder.Decode(config); err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}

	if config.Environment != "prod" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, Error{
				reason: err.Error(),
			}
		}
	}

	config.MinIOClient.AccessKey = os.Getenv("MINIO_ROOT_USER")
	config.MinIOClient.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	config.DBConfig.URI = os.Getenv("DATABASE_URI")
	config.MySQL.DSN = os.Getenv("MYSQL_DSN")
	config.BrokerConfig.URI = os.Getenv("BROKER_URI")

	if err = config.basicCheck(); err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}

	return config, nil
}

// BrokerEnabled reports whether ingestion events should be published.
func (c *Config) BrokerEnabled() bool {
	return c.BrokerConfig.URI != ""
}

// basicCheck validates the basic stuff in config.
func (c *Config) basicCheck() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address is required")
	}

	switch c.Store.Backend {
	case BackendFilesystem:
		if c.Filesystem.Root == "" {
			return errors.New("filesystem.root is required")
		}
	case BackendMinIO:
		if c.MinIOClient.Endpoint == "" || c.MinIOStore.Bucket == "" {
			return errors.New("minio_client.endpoint and minio_store.bucket are required")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Catalog.Backend {
	case BackendMongo:
		if c.DBConfig.URI == "" {
			return errors.New("DATABASE_URI is required for the mongo catalog")
		}
	case BackendMySQL:
		if c.MySQL.DSN == "" {
			return errors.New("MYSQL_DSN is required for the mysql catalog")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend)
	}

	if c.BrokerEnabled() && (c.BrokerConfig.StreamName == "" || c.BrokerConfig.GroupName == "") {
		return errors.New("redis_broker_config needs stream_name and group_name")
	}

	for name, b := range c.Platforms {
		if b.MaxWidth <= 0 || b.MaxHeight <= 0 {
			return fmt.Errorf("platform %q needs positive max_width and max_height", name)
		}

		if b.Quality < 0 || b.Quality > 100 {
			return fmt.Errorf("platform %q quality %d out of range 0..100", name, b.Quality)
		}

		if name != strings.ToLower(name) {
			return fmt.Errorf("platform %q must be lower case", name)
		}
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return errors.New("tracing.endpoint is required when tracing is enabled")
	}

	return nil
}
