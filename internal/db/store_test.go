package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quietask/quietask/internal/errorz"
)

func TestCreateSessionAndCredentialHash(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "hash-a")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session id")
	}

	hash, err := store.CredentialHash(ctx, id)
	if err != nil {
		t.Fatalf("failed to load credential hash: %v", err)
	}
	if hash != "hash-a" {
		t.Errorf("expected hash 'hash-a', got %q", hash)
	}

	other, err := store.CreateSession(ctx, "hash-b")
	if err != nil {
		t.Fatalf("failed to create second session: %v", err)
	}
	if other == id {
		t.Error("expected distinct session ids")
	}
}

func TestCredentialHashUnknownSession(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CredentialHash(context.Background(), "missing")
	if !errors.Is(err, errorz.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionExists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateSession(ctx, "hash")

	exists, err := store.SessionExists(ctx, id)
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if !exists {
		t.Error("expected session to exist")
	}

	exists, err = store.SessionExists(ctx, "missing")
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Error("expected session to be absent")
	}
}

func TestCreateQuestion(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateSession(ctx, "hash")

	q, err := store.CreateQuestion(ctx, id, "What time?")
	if err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	if q.ID == 0 {
		t.Fatal("expected non-zero question id")
	}
	if q.Status != StatusPending {
		t.Errorf("expected status pending, got %q", q.Status)
	}
	if q.CreatedAt.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
}

func TestCreateQuestionUnknownSession(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateQuestion(context.Background(), "missing", "hello?")
	if !errors.Is(err, errorz.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQuestionFilteredByOwningSession(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, _ := store.CreateSession(ctx, "hash-a")
	b, _ := store.CreateSession(ctx, "hash-b")
	q, _ := store.CreateQuestion(ctx, a, "secret question")

	// The owning session can see it.
	got, err := store.Question(ctx, q.ID, a)
	if err != nil {
		t.Fatalf("failed to load question: %v", err)
	}
	if got.Text != "secret question" {
		t.Errorf("expected question text, got %q", got.Text)
	}

	// A question id must never resolve under a different session.
	_, err = store.Question(ctx, q.ID, b)
	if !errors.Is(err, errorz.ErrNotFound) {
		t.Errorf("expected ErrNotFound across sessions, got %v", err)
	}
}

func TestQuestionsOrderedNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateSession(ctx, "hash")

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"first", "second", "third"} {
		q := Question{SessionID: id, Text: text, Status: StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.db.Create(&q).Error; err != nil {
			t.Fatalf("failed to seed question: %v", err)
		}
	}

	questions, err := store.Questions(ctx, id)
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Text != "third" || questions[2].Text != "first" {
		t.Errorf("expected newest first, got %q..%q", questions[0].Text, questions[2].Text)
	}
}

func TestQuestionsStatusFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateSession(ctx, "hash")
	q1, _ := store.CreateQuestion(ctx, id, "q1")
	store.CreateQuestion(ctx, id, "q2")

	if err := store.SetStatusIfPending(ctx, q1.ID, id, StatusApproved); err != nil {
		t.Fatalf("failed to approve: %v", err)
	}

	approved, err := store.Questions(ctx, id, StatusApproved)
	if err != nil {
		t.Fatalf("failed to list approved: %v", err)
	}
	if len(approved) != 1 || approved[0].Text != "q1" {
		t.Errorf("expected only q1 approved, got %v", approved)
	}

	all, _ := store.Questions(ctx, id)
	if len(all) != 2 {
		t.Errorf("expected 2 questions unfiltered, got %d", len(all))
	}
}

func TestSetStatusIfPendingSecondTransitionFails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateSession(ctx, "hash")
	q, _ := store.CreateQuestion(ctx, id, "once only")

	if err := store.SetStatusIfPending(ctx, q.ID, id, StatusApproved); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	err := store.SetStatusIfPending(ctx, q.ID, id, StatusRejected)
	if !errors.Is(err, errorz.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second transition, got %v", err)
	}

	got, _ := store.Question(ctx, q.ID, id)
	if got.Status != StatusApproved {
		t.Errorf("expected status to remain approved, got %q", got.Status)
	}
}

func TestSetStatusIfPendingWrongSession(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, _ := store.CreateSession(ctx, "hash-a")
	b, _ := store.CreateSession(ctx, "hash-b")
	q, _ := store.CreateQuestion(ctx, a, "mine")

	err := store.SetStatusIfPending(ctx, q.ID, b, StatusApproved)
	if !errors.Is(err, errorz.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign session, got %v", err)
	}

	got, _ := store.Question(ctx, q.ID, a)
	if got.Status != StatusPending {
		t.Errorf("expected question untouched, got %q", got.Status)
	}
}

func TestCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateSession(ctx, "hash")
	store.CreateQuestion(ctx, id, "q1")
	store.CreateQuestion(ctx, id, "q2")

	sessions, questions, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if sessions != 1 || questions != 2 {
		t.Errorf("expected 1 session and 2 questions, got %d and %d", sessions, questions)
	}
}
