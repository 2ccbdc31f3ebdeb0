package chatcore

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/lumora-ai/chatcore/api"
	"github.com/lumora-ai/chatcore/chat"
	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/engine"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/db"
	"github.com/lumora-ai/chatcore/internal/mylog"
	"github.com/lumora-ai/chatcore/thread"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
)

type (
	// ChatCore wires the history store, the two gateway variants and the turn
	// orchestrator. Provider clients and the database are injected through
	// options; nothing lives in package-level state.
	ChatCore struct {
		Service   chat.Service
		Store     thread.Manager
		Assistant *engine.AssistantEngine

		logger *slog.Logger
		db     *gorm.DB

		logConfig       *config.LogConfig
		databaseConfig  *config.DatabaseConfig
		chatConfig      *config.ChatConfig
		openAIConfig    *config.OpenAIConfig
		anthropicConfig *config.AnthropicConfig

		openAIClient    engine.OpenAIClient
		anthropicClient engine.AnthropicClient
	}
	Option func(*ChatCore)
)

func WithLogger(logger *slog.Logger) Option {
	return func(c *ChatCore) { c.logger = logger }
}

func WithDB(gdb *gorm.DB) Option {
	return func(c *ChatCore) { c.db = gdb }
}

func WithLogConfig(cfg *config.LogConfig) Option {
	return func(c *ChatCore) { c.logConfig = cfg }
}

func WithDatabaseConfig(cfg *config.DatabaseConfig) Option {
	return func(c *ChatCore) { c.databaseConfig = cfg }
}

func WithChatConfig(cfg *config.ChatConfig) Option {
	return func(c *ChatCore) { c.chatConfig = cfg }
}

func WithOpenAIConfig(cfg *config.OpenAIConfig) Option {
	return func(c *ChatCore) { c.openAIConfig = cfg }
}

func WithAnthropicConfig(cfg *config.AnthropicConfig) Option {
	return func(c *ChatCore) { c.anthropicConfig = cfg }
}

func WithOpenAIClient(client engine.OpenAIClient) Option {
	return func(c *ChatCore) { c.openAIClient = client }
}

func WithAnthropicClient(client engine.AnthropicClient) Option {
	return func(c *ChatCore) { c.anthropicClient = client }
}

func New(ctx context.Context, optionFuncs ...Option) (*ChatCore, error) {
	c := &ChatCore{}
	for _, f := range optionFuncs {
		f(c)
	}

	if c.logConfig == nil {
		c.logConfig = config.NewLogConfig()
		if err := c.logConfig.Resolve(); err != nil {
			return nil, err
		}
	}
	if c.databaseConfig == nil {
		c.databaseConfig = config.NewDatabaseConfig()
		if err := c.databaseConfig.Resolve(); err != nil {
			return nil, err
		}
	}
	if c.chatConfig == nil {
		c.chatConfig = config.NewChatConfig()
		if err := c.chatConfig.Resolve(); err != nil {
			return nil, err
		}
	}
	if c.openAIConfig == nil {
		c.openAIConfig = config.NewOpenAIConfig()
		if err := c.openAIConfig.Resolve(); err != nil {
			return nil, err
		}
	}
	if c.anthropicConfig == nil {
		c.anthropicConfig = config.NewAnthropicConfig()
		if err := c.anthropicConfig.Resolve(); err != nil {
			return nil, err
		}
	}

	if c.logger == nil {
		c.logger = mylog.NewLogger(c.logConfig.LogLevel, c.logConfig.LogHandler)
	}

	if c.db == nil {
		gdb, err := db.OpenDB(c.databaseConfig.DatabaseUrl)
		if err != nil {
			return nil, err
		}
		c.db = gdb
	}
	if c.databaseConfig.DatabaseAutoMigrate {
		if err := db.AutoMigrate(ctx, c.db); err != nil {
			return nil, err
		}
	}

	if c.openAIClient == nil {
		if c.openAIConfig.OpenAIApiKey == "" {
			return nil, errors.New("openai api key is required")
		}
		c.openAIClient = openai.NewClient(c.openAIConfig.OpenAIApiKey)
	}
	if c.anthropicClient == nil {
		client := anthropic.NewClient(option.WithAPIKey(c.anthropicConfig.AnthropicApiKey))
		c.anthropicClient = engine.NewAnthropicClient(client)
	}

	c.Store = thread.NewManager(c.logger, c.db)

	completion := engine.NewCompletionEngine(c.logger, c.openAIClient, c.anthropicClient, c.chatConfig)
	c.Assistant = engine.NewAssistantEngine(c.logger, c.openAIClient, c.openAIConfig, c.chatConfig)

	c.Service = chat.NewService(c.logger, c.Store, completion, c.Assistant, c.chatConfig)

	return c, nil
}

// Handler returns the HTTP surface backed by this instance.
func (c *ChatCore) Handler() http.Handler {
	return api.NewHandler(c.logger, c.Service, c.Assistant)
}

func (c *ChatCore) Close() error {
	return db.CloseDB(c.db)
}
