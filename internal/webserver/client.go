package webserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/quietask/quietask/internal/db"
	"github.com/quietask/quietask/internal/errorz"
)

// Client is a typed HTTP client for the API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreatedSession is the response to session creation, including the derived
// share links.
type CreatedSession struct {
	SessionID string `json:"session_id"`
	AskURL    string `json:"ask_url"`
	ViewURL   string `json:"view_url"`
}

func (c *Client) CreateSession(password string) (CreatedSession, error) {
	var out CreatedSession
	err := c.post("/api/sessions", map[string]string{"password": password}, &out)
	return out, err
}

// SubmittedQuestion confirms a submission.
type SubmittedQuestion struct {
	ID     uint      `json:"id"`
	Status db.Status `json:"status"`
}

func (c *Client) SubmitQuestion(sessionID, text string) (SubmittedQuestion, error) {
	var out SubmittedQuestion
	path := fmt.Sprintf("/api/sessions/%s/questions", sessionID)
	err := c.post(path, map[string]string{"text": text}, &out)
	return out, err
}

func (c *Client) OwnerQuestions(sessionID, password string) ([]db.Question, error) {
	path := fmt.Sprintf("/api/sessions/%s/questions?password=%s", sessionID, url.QueryEscape(password))
	var out []db.Question
	err := c.get(path, &out)
	return out, err
}

func (c *Client) PublicQuestions(sessionID string) ([]PublicQuestion, error) {
	path := fmt.Sprintf("/api/sessions/%s/public", sessionID)
	var out []PublicQuestion
	err := c.get(path, &out)
	return out, err
}

func (c *Client) Approve(sessionID, password string, questionID uint) error {
	path := fmt.Sprintf("/api/sessions/%s/questions/%d/approve", sessionID, questionID)
	return c.post(path, map[string]string{"password": password}, nil)
}

func (c *Client) Reject(sessionID, password string, questionID uint) error {
	path := fmt.Sprintf("/api/sessions/%s/questions/%d/reject", sessionID, questionID)
	return c.post(path, map[string]string{"password": password}, nil)
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *Client) post(path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Post(c.BaseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// decodeResponse maps error statuses back onto the engine's error taxonomy
// so callers can test with errors.Is.
func decodeResponse(resp *http.Response, out interface{}) error {
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return fmt.Errorf("server rejected request: %w", errorz.ErrValidation)
	case http.StatusNotFound:
		return fmt.Errorf("server: %w", errorz.ErrNotFound)
	case http.StatusUnauthorized:
		return fmt.Errorf("server: %w", errorz.ErrUnauthorized)
	default:
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
