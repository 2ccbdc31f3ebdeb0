package config

type OpenAIConfig struct {
	OpenAIApiKey string `env:"OPENAI_API_KEY" yaml:"openai_api_key"`

	// AssistantID is the remote assistant used by the assistant protocol.
	AssistantID string `env:"OPENAI_ASSISTANT_ID" yaml:"openai_assistant_id"`
}

func NewOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{}
}

func (c *OpenAIConfig) Resolve() error {
	return resolveConfig(c)
}
