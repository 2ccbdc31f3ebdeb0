package entity

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Protocol selects which remote backend answers turns on a thread.
type Protocol string

const (
	// ProtocolCompletion sends the full local context on every turn.
	ProtocolCompletion Protocol = "completion"
	// ProtocolAssistant keeps conversation state on a remote provider thread
	// and drives an asynchronous run per turn.
	ProtocolAssistant Protocol = "assistant"
)

type Thread struct {
	gorm.Model

	Owner    string `gorm:"index"`
	Title    string
	IsActive bool `gorm:"default:true"`
	Protocol Protocol

	ModelName string
	MemoryKey string

	// Correlation with the remote provider, assistant protocol only.
	RemoteThreadID string
	AssistantID    string

	Metadata datatypes.JSONMap

	Messages []Message `gorm:"foreignKey:ThreadID"`
}
