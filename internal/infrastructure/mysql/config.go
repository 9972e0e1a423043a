package mysql

type Config struct {
	DSN             string `yaml:"-"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int64  `yaml:"conn_max_lifetime_in_ms"`
	QueryTimeout    int64  `yaml:"query_timeout_in_ms"`
}
