package api

import (
	"net/http"
	"time"

	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/errors"
	"github.com/samber/lo"
)

type (
	threadDTO struct {
		ID        uint            `json:"id"`
		Title     string          `json:"title"`
		Protocol  entity.Protocol `json:"protocol"`
		IsActive  bool            `json:"is_active"`
		ModelName string          `json:"model_name"`
		Metadata  map[string]any  `json:"metadata,omitempty"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
	}

	messageDTO struct {
		ID            uint        `json:"id"`
		Role          entity.Role `json:"role"`
		Body          string      `json:"body"`
		Timestamp     time.Time   `json:"timestamp"`
		CorrelationID string      `json:"correlation_id,omitempty"`
	}

	errorBody struct {
		Error string `json:"error"`
	}
)

func toThreadDTO(th entity.Thread) threadDTO {
	return threadDTO{
		ID:        th.ID,
		Title:     th.Title,
		Protocol:  th.Protocol,
		IsActive:  th.IsActive,
		ModelName: th.ModelName,
		Metadata:  th.Metadata,
		CreatedAt: th.CreatedAt,
		UpdatedAt: th.UpdatedAt,
	}
}

func toThreadDTOs(threads []entity.Thread) []threadDTO {
	return lo.Map(threads, func(th entity.Thread, _ int) threadDTO {
		return toThreadDTO(th)
	})
}

func toMessageDTO(msg entity.Message) messageDTO {
	return messageDTO{
		ID:            msg.ID,
		Role:          msg.Role,
		Body:          msg.Content,
		Timestamp:     msg.CreatedAt,
		CorrelationID: msg.RemoteID,
	}
}

func toMessageDTOs(messages []entity.Message) []messageDTO {
	return lo.Map(messages, func(msg entity.Message, _ int) messageDTO {
		return toMessageDTO(msg)
	})
}

// writeError maps the error kinds onto HTTP statuses. Remote timeouts and
// upstream failures are deliberately distinct from caller mistakes.
func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInvalidParams):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrUpstream):
		status = http.StatusBadGateway
	case errors.Is(err, errors.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrPersistence):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}

	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
