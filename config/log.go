package config

type LogConfig struct {
	LogLevel   string `env:"LOG_LEVEL" yaml:"log_level"`
	LogHandler string `env:"LOG_HANDLER" yaml:"log_handler"`
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:   "info",
		LogHandler: "default",
	}
}

func (c *LogConfig) Resolve() error {
	return resolveConfig(c)
}
