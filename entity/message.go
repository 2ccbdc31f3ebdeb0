package entity

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one immutable utterance. Rows are only ever appended; ordering
// within a thread is strictly created_at ascending with id as the tiebreaker.
type Message struct {
	gorm.Model

	// ThreadID is nil only for the legacy single-turn history, which groups
	// messages by owner alone.
	ThreadID *uint   `gorm:"index"`
	Thread   *Thread `gorm:"foreignKey:ThreadID"`

	Owner   string `gorm:"index"`
	Role    Role
	Content string

	// RemoteID correlates the row with the provider-side message, when the
	// assistant protocol produced it.
	RemoteID string

	Metadata datatypes.JSONMap
}
