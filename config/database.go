package config

type DatabaseConfig struct {
	// DatabaseUrl is a postgres URL or a sqlite path.
	DatabaseUrl         string `env:"DATABASE_URL" yaml:"database_url"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" yaml:"database_auto_migrate"`
}

func NewDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		DatabaseUrl:         "chatcore.db",
		DatabaseAutoMigrate: true,
	}
}

func (c *DatabaseConfig) Resolve() error {
	return resolveConfig(c)
}
