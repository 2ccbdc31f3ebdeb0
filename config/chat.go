package config

import "time"

type ChatConfig struct {
	DefaultModel       string  `env:"CHAT_DEFAULT_MODEL" yaml:"default_model"`
	DefaultTemperature float32 `env:"CHAT_DEFAULT_TEMPERATURE" yaml:"default_temperature"`

	// Models is the allow-list a turn's model selection is validated against
	// before any remote call is issued.
	Models []string `yaml:"models"`

	// Run polling bounds. Exceeding either MaxPolls or PollTimeout while a run
	// is still non-terminal surfaces as ErrTimeout.
	RunPollInterval time.Duration `yaml:"run_poll_interval"`
	RunPollTimeout  time.Duration `yaml:"run_poll_timeout"`
	RunMaxPolls     int           `yaml:"run_max_polls"`
}

func NewChatConfig() *ChatConfig {
	return &ChatConfig{
		DefaultModel:       "gpt-3.5-turbo",
		DefaultTemperature: 0.7,
		Models: []string{
			"gpt-3.5-turbo",
			"gpt-4",
			"gpt-4-turbo",
			"gpt-4o",
			"gpt-4o-mini",
			"anthropic/claude-3-5-sonnet-latest",
			"anthropic/claude-3-7-sonnet-latest",
		},
		RunPollInterval: 500 * time.Millisecond,
		RunPollTimeout:  2 * time.Minute,
		RunMaxPolls:     240,
	}
}

func (c *ChatConfig) Resolve() error {
	return resolveConfig(c)
}
