// Package server is the chat backend HTTP server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jmaren/registra/internal/dialog"
	"github.com/jmaren/registra/internal/transcripts"
)

// Server exposes the conversational enrollment API.
type Server struct {
	httpServer *http.Server
	engine     *dialog.Engine
	store      transcripts.Store
	log        *slog.Logger

	mu    sync.Mutex
	convs map[string]*conversation
}

// conversation guards its slot state with its own mutex, held across a full
// read-step-write turn so concurrent requests for one id serialize without
// blocking other conversations on s.mu.
type conversation struct {
	mu        sync.Mutex
	query     dialog.QueryState
	askingFor string
}

// NewServer creates the backend server.
func NewServer(engine *dialog.Engine, store transcripts.Store, host string, port int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		engine: engine,
		store:  store,
		log:    log,
		convs:  map[string]*conversation{},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/chat", s.handleChat)
	r.Get("/chat/{id}/state", s.handleState)
	r.Delete("/chat/{id}", s.handleDelete)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("registra backend listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type chatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

type chatResponse struct {
	Response             string `json:"response"`
	ConversationID       string `json:"conversation_id"`
	Confirmed            bool   `json:"confirmed"`
	AwaitingConfirmation bool   `json:"awaiting_confirmation"`
}

func newConversationID() string {
	u := uuid.New().String()
	return "conv_" + strings.ReplaceAll(u[:8], "-", "")
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	id := ""
	if req.ConversationID != nil {
		id = *req.ConversationID
	}
	fresh := id == ""
	if fresh {
		id = newConversationID()
	}

	conv, err := s.conversation(id, fresh)
	if err != nil {
		s.log.Error("conversation setup failed", "conversation", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conv.mu.Lock()
	turn, err := s.engine.Step(r.Context(), conv.query, conv.askingFor, req.Message)
	if err != nil {
		conv.mu.Unlock()
		s.log.Error("turn failed", "conversation", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	conv.query = turn.State
	conv.askingFor = turn.AskingFor
	conv.mu.Unlock()

	s.persistTurn(id, req.Message, turn)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		Response:             turn.Reply,
		ConversationID:       id,
		Confirmed:            turn.State.Confirmed,
		AwaitingConfirmation: turn.State.AwaitingConfirmation,
	})
}

// conversation returns the in-memory state for id, creating it for fresh
// conversations and restoring persisted state after a restart. A client id
// the server has never seen starts a new conversation under that id, so
// resuming with a stale id works instead of erroring.
func (s *Server) conversation(id string, fresh bool) (*conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.convs[id]; ok {
		return conv, nil
	}

	if !fresh {
		if meta, err := s.store.Get(id); err == nil {
			conv := &conversation{query: meta.Query, askingFor: meta.AskingFor}
			s.convs[id] = conv
			return conv, nil
		}
	}

	if _, err := s.store.Create(id); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	conv := &conversation{}
	s.convs[id] = conv
	return conv, nil
}

func (s *Server) persistTurn(id, message string, turn *dialog.Turn) {
	if err := s.store.AppendMessage(id, transcripts.Message{Role: "user", Content: message, Ts: time.Now()}); err != nil {
		s.log.Warn("persist user message failed", "conversation", id, "error", err)
	}
	if err := s.store.AppendMessage(id, transcripts.Message{Role: "assistant", Content: turn.Reply, Ts: time.Now()}); err != nil {
		s.log.Warn("persist reply failed", "conversation", id, "error", err)
	}

	meta, err := s.store.Get(id)
	if err != nil {
		s.log.Warn("load meta failed", "conversation", id, "error", err)
		return
	}
	meta.Query = turn.State
	meta.AskingFor = turn.AskingFor
	meta.Status = transcripts.StatusActive
	if turn.State.Confirmed {
		meta.Status = transcripts.StatusConfirmed
	}
	if err := s.store.UpdateMeta(meta); err != nil {
		s.log.Warn("persist meta failed", "conversation", id, "error", err)
	}
}

type stateResponse struct {
	ConversationID string            `json:"conversation_id"`
	State          dialog.QueryState `json:"state"`
	AskingFor      string            `json:"asking_for,omitempty"`
	Missing        []string          `json:"missing"`
	IsComplete     bool              `json:"is_complete"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	conv, ok := s.convs[id]
	s.mu.Unlock()

	var query dialog.QueryState
	var askingFor string
	if ok {
		conv.mu.Lock()
		query = conv.query
		askingFor = conv.askingFor
		conv.mu.Unlock()
	} else {
		meta, err := s.store.Get(id)
		if err != nil {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		query = meta.Query
		askingFor = meta.AskingFor
	}

	missing := query.MissingRequired()
	if missing == nil {
		missing = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stateResponse{
		ConversationID: id,
		State:          query,
		AskingFor:      askingFor,
		Missing:        missing,
		IsComplete:     query.Complete(),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, inMemory := s.convs[id]
	delete(s.convs, id)
	s.mu.Unlock()

	err := s.store.Delete(id)
	if err != nil && !inMemory {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared", "conversation_id": id})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "registra",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
