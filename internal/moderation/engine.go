// Package moderation implements the moderation state machine for questions
// and the session-scoped authorization around it. A question starts pending
// and moves exactly once to approved or rejected, only at the hand of the
// owner who holds the session password. The engine is stateless; the store's
// conditional status write is the only serialization point, so concurrent
// transitions on one question have exactly one winner.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/quietask/quietask/internal/db"
	"github.com/quietask/quietask/internal/errorz"
)

// MaxQuestionLen caps submitted question text, in characters.
const MaxQuestionLen = 500

// Store is the persistence contract the engine depends on.
type Store interface {
	CreateSession(ctx context.Context, passwordHash string) (string, error)
	CredentialHash(ctx context.Context, sessionID string) (string, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	CreateQuestion(ctx context.Context, sessionID, text string) (db.Question, error)
	Question(ctx context.Context, questionID uint, sessionID string) (db.Question, error)
	Questions(ctx context.Context, sessionID string, statuses ...db.Status) ([]db.Question, error)
	SetStatusIfPending(ctx context.Context, questionID uint, sessionID string, newStatus db.Status) error
}

type Engine struct {
	store Store
	cost  int
}

// NewEngine builds an engine on top of a store. cost is the bcrypt work
// factor; zero selects bcrypt.DefaultCost.
func NewEngine(store Store, cost int) *Engine {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Engine{store: store, cost: cost}
}

// CreateSession hashes the password and persists a new session, returning
// its id.
func (e *Engine) CreateSession(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required: %w", errorz.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), e.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return e.store.CreateSession(ctx, string(hash))
}

// Submit records an anonymous question under a session. The question starts
// in pending and is invisible to the public until approved.
func (e *Engine) Submit(ctx context.Context, sessionID, text string) (db.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return db.Question{}, fmt.Errorf("question text is required: %w", errorz.ErrValidation)
	}
	if len([]rune(text)) > MaxQuestionLen {
		return db.Question{}, fmt.Errorf("question text exceeds %d characters: %w", MaxQuestionLen, errorz.ErrValidation)
	}
	return e.store.CreateQuestion(ctx, sessionID, text)
}

// Authenticate verifies the session password. It is re-run on every owner
// request; there are no session tokens.
func (e *Engine) Authenticate(ctx context.Context, sessionID, password string) error {
	hash, err := e.store.CredentialHash(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, errorz.ErrUnauthorized)
	}
	return nil
}

// ListForOwner returns all of a session's questions, every status, newest
// first. Requires the session password.
func (e *Engine) ListForOwner(ctx context.Context, sessionID, password string) ([]db.Question, error) {
	if err := e.Authenticate(ctx, sessionID, password); err != nil {
		return nil, err
	}
	return e.store.Questions(ctx, sessionID)
}

// ListPublic returns only approved questions, newest first. No credential
// is needed; pending and rejected text must never appear here.
func (e *Engine) ListPublic(ctx context.Context, sessionID string) ([]db.Question, error) {
	exists, err := e.store.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("session %s: %w", sessionID, errorz.ErrNotFound)
	}
	return e.store.Questions(ctx, sessionID, db.StatusApproved)
}

// Question returns a single question under the session, any status.
// Requires the session password.
func (e *Engine) Question(ctx context.Context, sessionID, password string, questionID uint) (db.Question, error) {
	if err := e.Authenticate(ctx, sessionID, password); err != nil {
		return db.Question{}, err
	}
	return e.store.Question(ctx, questionID, sessionID)
}

// Approve transitions a pending question to approved. A question that does
// not exist under the session, or is no longer pending, fails ErrNotFound.
func (e *Engine) Approve(ctx context.Context, sessionID, password string, questionID uint) error {
	return e.transition(ctx, sessionID, password, questionID, db.StatusApproved)
}

// Reject transitions a pending question to rejected, under the same rules
// as Approve.
func (e *Engine) Reject(ctx context.Context, sessionID, password string, questionID uint) error {
	return e.transition(ctx, sessionID, password, questionID, db.StatusRejected)
}

func (e *Engine) transition(ctx context.Context, sessionID, password string, questionID uint, newStatus db.Status) error {
	if err := e.Authenticate(ctx, sessionID, password); err != nil {
		return err
	}
	return e.store.SetStatusIfPending(ctx, questionID, sessionID, newStatus)
}
