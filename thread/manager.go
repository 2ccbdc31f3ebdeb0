package thread

import (
	"context"
	"strings"

	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/lumora-ai/chatcore/internal/db"
	"github.com/lumora-ai/chatcore/internal/mylog"
	"gorm.io/gorm"
)

type (
	// Manager is the durable history store. Messages are append-only; reads
	// return them ordered by created_at with row id breaking ties, which is
	// the only ordering context reconstruction relies on.
	Manager interface {
		CreateThread(ctx context.Context, owner string, params CreateThreadParams) (*entity.Thread, error)
		GetThread(ctx context.Context, threadID uint, owner string) (*entity.Thread, error)
		GetThreads(ctx context.Context, owner string, cursor uint, limit uint) ([]entity.Thread, error)
		DeactivateThread(ctx context.Context, threadID uint, owner string) error
		DeleteThread(ctx context.Context, threadID uint, owner string) error
		AddMessage(ctx context.Context, threadID uint, owner string, role entity.Role, content string, remoteID string) (*entity.Message, error)
		GetMessages(ctx context.Context, threadID uint, order string, cursor uint, limit uint) ([]entity.Message, error)
		AddHistory(ctx context.Context, owner string, role entity.Role, content string) (*entity.Message, error)
		GetHistory(ctx context.Context, owner string) ([]entity.Message, error)
	}

	CreateThreadParams struct {
		Title          string
		Protocol       entity.Protocol
		ModelName      string
		MemoryKey      string
		AssistantID    string
		RemoteThreadID string
		Metadata       map[string]any
	}

	manager struct {
		logger *mylog.Logger
		db     *gorm.DB
	}
)

func NewManager(logger *mylog.Logger, gdb *gorm.DB) Manager {
	return &manager{
		logger: logger,
		db:     gdb,
	}
}

func (s *manager) CreateThread(ctx context.Context, owner string, params CreateThreadParams) (*entity.Thread, error) {
	if owner == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "owner is required")
	}
	if params.Title == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "title is required")
	}

	_, tx := db.OpenSession(ctx, s.db)

	thread := entity.Thread{
		Owner:          owner,
		Title:          params.Title,
		IsActive:       true,
		Protocol:       params.Protocol,
		ModelName:      params.ModelName,
		MemoryKey:      params.MemoryKey,
		AssistantID:    params.AssistantID,
		RemoteThreadID: params.RemoteThreadID,
		Metadata:       params.Metadata,
	}

	if err := tx.Create(&thread).Error; err != nil {
		return nil, errors.Wrapf(errors.ErrPersistence, "failed to create thread: %v", err)
	}

	return &thread, nil
}

// GetThread resolves a thread for an owner. A thread owned by someone else is
// reported exactly like a missing one.
func (s *manager) GetThread(ctx context.Context, threadID uint, owner string) (*entity.Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var thread entity.Thread
	r := tx.Find(&thread, "id = ? AND owner = ?", threadID, owner)
	if r.Error != nil {
		return nil, errors.Wrapf(errors.ErrPersistence, "failed to find thread: %v", r.Error)
	}
	if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread %d not found", threadID)
	}

	return &thread, nil
}

func (s *manager) GetThreads(ctx context.Context, owner string, cursor uint, limit uint) ([]entity.Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	if limit == 0 {
		limit = 50
	}

	var threads []entity.Thread
	stmt := tx.Where("owner = ?", owner).Order("id ASC").Limit(int(limit))
	if cursor != 0 {
		stmt = stmt.Where("id > ?", cursor)
	}
	if err := stmt.Find(&threads).Error; err != nil {
		return nil, errors.Wrapf(errors.ErrPersistence, "failed to find threads: %v", err)
	}

	return threads, nil
}

func (s *manager) DeactivateThread(ctx context.Context, threadID uint, owner string) error {
	_, tx := db.OpenSession(ctx, s.db)

	r := tx.Model(&entity.Thread{}).
		Where("id = ? AND owner = ?", threadID, owner).
		Update("is_active", false)
	if r.Error != nil {
		return errors.Wrapf(errors.ErrPersistence, "failed to deactivate thread: %v", r.Error)
	}
	if r.RowsAffected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "thread %d not found", threadID)
	}

	return nil
}

// DeleteThread hard-deletes a thread together with its messages. The
// assistant protocol uses it after tearing down the remote thread.
func (s *manager) DeleteThread(ctx context.Context, threadID uint, owner string) error {
	_, tx := db.OpenSession(ctx, s.db)

	return tx.Transaction(func(tx *gorm.DB) error {
		var thread entity.Thread
		r := tx.Find(&thread, "id = ? AND owner = ?", threadID, owner)
		if r.Error != nil {
			return errors.Wrapf(errors.ErrPersistence, "failed to find thread: %v", r.Error)
		}
		if r.RowsAffected == 0 {
			return errors.Wrapf(errors.ErrNotFound, "thread %d not found", threadID)
		}

		if err := tx.Unscoped().Where("thread_id = ?", thread.ID).Delete(&entity.Message{}).Error; err != nil {
			return errors.Wrapf(errors.ErrPersistence, "failed to delete messages: %v", err)
		}
		if err := tx.Unscoped().Delete(&thread).Error; err != nil {
			return errors.Wrapf(errors.ErrPersistence, "failed to delete thread: %v", err)
		}

		return nil
	})
}

func (s *manager) AddMessage(ctx context.Context, threadID uint, owner string, role entity.Role, content string, remoteID string) (*entity.Message, error) {
	if !role.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid role %q", role)
	}
	if content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "content is required")
	}

	_, tx := db.OpenSession(ctx, s.db)

	var msg entity.Message
	if err := tx.Transaction(func(tx *gorm.DB) error {
		var thread entity.Thread
		r := tx.Find(&thread, "id = ? AND owner = ?", threadID, owner)
		if r.Error != nil {
			return errors.Wrapf(errors.ErrPersistence, "failed to find thread: %v", r.Error)
		}
		if r.RowsAffected == 0 {
			return errors.Wrapf(errors.ErrNotFound, "thread %d not found", threadID)
		}

		msg.ThreadID = &thread.ID
		msg.Owner = owner
		msg.Role = role
		msg.Content = content
		msg.RemoteID = remoteID

		if err := tx.Create(&msg).Error; err != nil {
			return errors.Wrapf(errors.ErrPersistence, "failed to save message: %v", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return &msg, nil
}

func (s *manager) GetMessages(
	ctx context.Context,
	threadID uint,
	order string,
	cursor uint,
	limit uint,
) (messages []entity.Message, err error) {
	_, tx := db.OpenSession(ctx, s.db)

	order = strings.ToUpper(order)
	if order == "" {
		order = "ASC"
	}
	if order != "ASC" && order != "DESC" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid order %q", order)
	}

	stmt := tx.Model(&entity.Message{}).
		Where("thread_id = ?", threadID).
		Order("created_at " + order + ", id " + order)

	if cursor != 0 {
		if order == "ASC" {
			stmt = stmt.Where("id > ?", cursor)
		} else {
			stmt = stmt.Where("id < ?", cursor)
		}
	}
	if limit != 0 {
		stmt = stmt.Limit(int(limit))
	}

	if err := stmt.Find(&messages).Error; err != nil {
		return nil, errors.Wrapf(errors.ErrPersistence, "failed to find messages: %v", err)
	}

	return
}

// AddHistory appends to the legacy single-turn history, which has no thread.
func (s *manager) AddHistory(ctx context.Context, owner string, role entity.Role, content string) (*entity.Message, error) {
	if owner == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "owner is required")
	}
	if !role.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid role %q", role)
	}
	if content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "content is required")
	}

	_, tx := db.OpenSession(ctx, s.db)

	msg := entity.Message{
		Owner:   owner,
		Role:    role,
		Content: content,
	}
	if err := tx.Create(&msg).Error; err != nil {
		return nil, errors.Wrapf(errors.ErrPersistence, "failed to save message: %v", err)
	}

	return &msg, nil
}

func (s *manager) GetHistory(ctx context.Context, owner string) ([]entity.Message, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var messages []entity.Message
	if err := tx.Where("owner = ? AND thread_id IS NULL", owner).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, errors.Wrapf(errors.ErrPersistence, "failed to find messages: %v", err)
	}

	return messages, nil
}
