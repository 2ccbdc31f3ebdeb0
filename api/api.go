package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/lumora-ai/chatcore/chat"
	"github.com/lumora-ai/chatcore/engine"
	"github.com/lumora-ai/chatcore/entity"
	"github.com/lumora-ai/chatcore/internal/mylog"
)

// ownerHeader carries the authenticated principal, set by the auth layer in
// front of this server.
const ownerHeader = "X-User-Id"

// AssistantDirectory lists the remote assistants available to the assistant
// protocol.
type AssistantDirectory interface {
	ListAssistants(ctx context.Context) ([]engine.AssistantInfo, error)
	GetAssistant(ctx context.Context, assistantID string) (*engine.AssistantInfo, error)
}

type server struct {
	logger    *mylog.Logger
	service   chat.Service
	directory AssistantDirectory
}

// NewHandler builds the HTTP surface: thread CRUD, turn submission, context
// listing, the legacy single-turn chat and the assistant directory.
func NewHandler(logger *mylog.Logger, service chat.Service, directory AssistantDirectory) http.Handler {
	s := &server{
		logger:    logger,
		service:   service,
		directory: directory,
	}

	router := mux.NewRouter()

	router.HandleFunc("/threads", s.createThread).Methods("POST")
	router.HandleFunc("/threads", s.listThreads).Methods("GET")
	router.HandleFunc("/threads/{id}", s.getThread).Methods("GET")
	router.HandleFunc("/threads/{id}", s.deleteThread).Methods("DELETE")
	router.HandleFunc("/threads/{id}/messages", s.getContext).Methods("GET")
	router.HandleFunc("/threads/{id}/messages", s.submitTurn).Methods("POST")

	router.HandleFunc("/chat/messages", s.legacyHistory).Methods("GET")
	router.HandleFunc("/chat/messages", s.legacySend).Methods("POST")

	router.HandleFunc("/assistants", s.listAssistants).Methods("GET")
	router.HandleFunc("/assistants/{id}", s.getAssistant).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", ownerHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)

	return cors(recovery(router))
}

func (s *server) createThread(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var req struct {
		Title     string          `json:"title"`
		Protocol  entity.Protocol `json:"protocol"`
		ModelName string          `json:"model_name"`
		Metadata  map[string]any  `json:"metadata"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	th, err := s.service.CreateThread(r.Context(), owner, chat.CreateThreadRequest{
		Title:     req.Title,
		Protocol:  req.Protocol,
		ModelName: req.ModelName,
		Metadata:  req.Metadata,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toThreadDTO(*th))
}

func (s *server) listThreads(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	cursor := queryUint(r, "cursor")
	limit := queryUint(r, "limit")

	threads, err := s.service.ListThreads(r.Context(), owner, cursor, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toThreadDTOs(threads))
}

func (s *server) getThread(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	threadID, ok := s.threadID(w, r)
	if !ok {
		return
	}

	th, err := s.service.GetThread(r.Context(), threadID, owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toThreadDTO(*th))
}

// deleteThread ends a thread. Completion threads are soft-deleted so their
// rows stay for audit; assistant threads are torn down remotely and removed.
func (s *server) deleteThread(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	threadID, ok := s.threadID(w, r)
	if !ok {
		return
	}

	th, err := s.service.GetThread(r.Context(), threadID, owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if th.Protocol == entity.ProtocolAssistant {
		err = s.service.DeleteThread(r.Context(), threadID, owner)
	} else {
		err = s.service.DeactivateThread(r.Context(), threadID, owner)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getContext(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	threadID, ok := s.threadID(w, r)
	if !ok {
		return
	}

	messages, err := s.service.GetContext(r.Context(), threadID, owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toMessageDTOs(messages))
}

func (s *server) submitTurn(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	threadID, ok := s.threadID(w, r)
	if !ok {
		return
	}

	var req struct {
		Content     string   `json:"content"`
		Model       string   `json:"model"`
		Temperature *float32 `json:"temperature"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.service.SubmitTurn(r.Context(), &chat.TurnRequest{
		ThreadID:    threadID,
		Owner:       owner,
		Content:     req.Content,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toMessageDTO(*resp.Message))
}

func (s *server) legacyHistory(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	messages, err := s.service.GetHistory(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toMessageDTOs(messages))
}

func (s *server) legacySend(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.service.SendMessage(r.Context(), owner, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toMessageDTO(*resp.Message))
}

func (s *server) listAssistants(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.owner(w, r); !ok {
		return
	}

	assistants, err := s.directory.ListAssistants(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, assistants)
}

func (s *server) getAssistant(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.owner(w, r); !ok {
		return
	}

	assistant, err := s.directory.GetAssistant(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, assistant)
}

func (s *server) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := r.Header.Get(ownerHeader)
	if owner == "" {
		s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing " + ownerHeader + " header"})
		return "", false
	}
	return owner, true
}

func (s *server) threadID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid thread id"})
		return 0, false
	}
	return uint(id), true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

func queryUint(r *http.Request, key string) uint {
	v, _ := strconv.ParseUint(r.URL.Query().Get(key), 10, 32)
	return uint(v)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
