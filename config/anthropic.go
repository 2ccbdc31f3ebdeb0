package config

type AnthropicConfig struct {
	AnthropicApiKey string `env:"ANTHROPIC_API_KEY" yaml:"anthropic_api_key"`
}

func NewAnthropicConfig() *AnthropicConfig {
	return &AnthropicConfig{}
}

func (c *AnthropicConfig) Resolve() error {
	return resolveConfig(c)
}
