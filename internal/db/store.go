package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/quietask/quietask/internal/errorz"
	"github.com/quietask/quietask/internal/id"
)

// Store persists sessions and questions. All methods surface failures from
// the database as errorz.ErrStorage; missing rows as errorz.ErrNotFound.
type Store struct {
	db *gorm.DB
}

// CreateSession persists a new session with a fresh opaque id and returns it.
func (s *Store) CreateSession(ctx context.Context, passwordHash string) (string, error) {
	sess := Session{ID: id.New(), PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", fmt.Errorf("%w: create session: %v", errorz.ErrStorage, err)
	}
	return sess.ID, nil
}

// CredentialHash returns the stored password hash for a session.
func (s *Store) CredentialHash(ctx context.Context, sessionID string) (string, error) {
	var sess Session
	err := s.db.WithContext(ctx).First(&sess, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("session %s: %w", sessionID, errorz.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: load session: %v", errorz.ErrStorage, err)
	}
	return sess.PasswordHash, nil
}

func (s *Store) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Session{}).Where("id = ?", sessionID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: count sessions: %v", errorz.ErrStorage, err)
	}
	return count > 0, nil
}

// CreateQuestion stores a new pending question under an existing session.
func (s *Store) CreateQuestion(ctx context.Context, sessionID, text string) (Question, error) {
	exists, err := s.SessionExists(ctx, sessionID)
	if err != nil {
		return Question{}, err
	}
	if !exists {
		return Question{}, fmt.Errorf("session %s: %w", sessionID, errorz.ErrNotFound)
	}

	q := Question{SessionID: sessionID, Text: text, Status: StatusPending}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		return Question{}, fmt.Errorf("%w: create question: %v", errorz.ErrStorage, err)
	}
	return q, nil
}

// Question loads a single question, filtered by both its id and its owning
// session so a question id can never cross sessions.
func (s *Store) Question(ctx context.Context, questionID uint, sessionID string) (Question, error) {
	var q Question
	err := s.db.WithContext(ctx).First(&q, "id = ? AND session_id = ?", questionID, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Question{}, fmt.Errorf("question %d: %w", questionID, errorz.ErrNotFound)
	}
	if err != nil {
		return Question{}, fmt.Errorf("%w: load question: %v", errorz.ErrStorage, err)
	}
	return q, nil
}

// Questions lists a session's questions newest first, optionally restricted
// to the given statuses.
func (s *Store) Questions(ctx context.Context, sessionID string, statuses ...Status) ([]Question, error) {
	query := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var questions []Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("%w: list questions: %v", errorz.ErrStorage, err)
	}
	return questions, nil
}

// SetStatusIfPending transitions a question out of pending in a single
// conditional update. Two concurrent calls can both observe the question as
// pending, but only the first update matches the guard; the loser sees zero
// affected rows and gets ErrNotFound, same as a question that never existed.
func (s *Store) SetStatusIfPending(ctx context.Context, questionID uint, sessionID string, newStatus Status) error {
	result := s.db.WithContext(ctx).Model(&Question{}).
		Where("id = ? AND session_id = ? AND status = ?", questionID, sessionID, StatusPending).
		Update("status", newStatus)
	if result.Error != nil {
		return fmt.Errorf("%w: update status: %v", errorz.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("pending question %d: %w", questionID, errorz.ErrNotFound)
	}
	return nil
}

// Counts reports how many sessions and questions exist, for health reporting.
func (s *Store) Counts(ctx context.Context) (sessions, questions int64, err error) {
	if err := s.db.WithContext(ctx).Model(&Session{}).Count(&sessions).Error; err != nil {
		return 0, 0, fmt.Errorf("%w: count sessions: %v", errorz.ErrStorage, err)
	}
	if err := s.db.WithContext(ctx).Model(&Question{}).Count(&questions).Error; err != nil {
		return 0, 0, fmt.Errorf("%w: count questions: %v", errorz.ErrStorage, err)
	}
	return sessions, questions, nil
}
