package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quietask/quietask/internal/db"
	"github.com/quietask/quietask/internal/errorz"
	"github.com/quietask/quietask/internal/moderation"
)

// Server is the HTTP shell over the moderation engine. It owns no logic of
// its own: it decodes requests, calls the engine, and serializes results.
type Server struct {
	engine  *moderation.Engine
	store   *db.Store
	baseURL string
}

func New(engine *moderation.Engine, store *db.Store, baseURL string) *Server {
	return &Server{engine: engine, store: store, baseURL: baseURL}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/{id}/questions", s.handleSubmitQuestion)
	mux.HandleFunc("GET /api/sessions/{id}/questions", s.handleOwnerQuestions)
	mux.HandleFunc("GET /api/sessions/{id}/public", s.handlePublicQuestions)
	mux.HandleFunc("POST /api/sessions/{id}/questions/{qid}/approve", s.handleApprove)
	mux.HandleFunc("POST /api/sessions/{id}/questions/{qid}/reject", s.handleReject)
	mux.HandleFunc("OPTIONS /api/", handleCORS)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func handleCORS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP statuses. Storage
// and unknown failures become a generic 500 with no internal detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errorz.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errorz.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, errorz.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions, questions, err := s.store.Counts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"sessions":  sessions,
		"questions": questions,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sessionID, err := s.engine.CreateSession(r.Context(), body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]string{
		"session_id": sessionID,
		"ask_url":    s.baseURL + "/ask/" + sessionID,
		"view_url":   s.baseURL + "/s/" + sessionID,
	})
}

func (s *Server) handleSubmitQuestion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	q, err := s.engine.Submit(r.Context(), r.PathValue("id"), body.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"id": q.ID, "status": q.Status})
}

func (s *Server) handleOwnerQuestions(w http.ResponseWriter, r *http.Request) {
	password := r.URL.Query().Get("password")
	if password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	questions, err := s.engine.ListForOwner(r.Context(), r.PathValue("id"), password)
	if err != nil {
		writeError(w, err)
		return
	}
	if questions == nil {
		questions = []db.Question{}
	}
	writeJSON(w, questions)
}

// PublicQuestion is the outward shape of an approved question. Only the text
// and timestamp are exposed.
type PublicQuestion struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handlePublicQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.engine.ListPublic(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	public := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, PublicQuestion{Text: q.Text, CreatedAt: q.CreatedAt})
	}
	writeJSON(w, public)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.engine.Approve)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.engine.Reject)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, sessionID, password string, questionID uint) error) {
	questionID, err := strconv.ParseUint(r.PathValue("qid"), 10, 64)
	if err != nil {
		http.Error(w, "invalid question id", http.StatusBadRequest)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	if err := apply(r.Context(), r.PathValue("id"), body.Password, uint(questionID)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}
