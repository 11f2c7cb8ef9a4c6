// Package handler exposes the moderation engine as MCP tools for the stdio
// shell. Each tool is a thin binding: argument extraction, one engine call,
// a text result.
package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quietask/quietask/internal/db"
	"github.com/quietask/quietask/internal/moderation"
)

type Tools struct {
	engine *moderation.Engine
}

func NewTools(engine *moderation.Engine) *Tools {
	return &Tools{engine: engine}
}

func (t *Tools) CreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	password, err := request.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError("password is required"), nil
	}

	sessionID, err := t.engine.CreateSession(ctx, password)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created session %s", sessionID)), nil
}

func (t *Tools) SubmitQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}

	q, err := t.engine.Submit(ctx, sessionID, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("submitted question %d, status %s", q.ID, q.Status)), nil
}

// ListQuestions returns the owner view when a password is supplied and the
// public view otherwise.
func (t *Tools) ListQuestions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	password := request.GetString("password", "")

	var questions []db.Question
	if password != "" {
		questions, err = t.engine.ListForOwner(ctx, sessionID, password)
	} else {
		questions, err = t.engine.ListPublic(ctx, sessionID)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type entry struct {
		ID        uint      `json:"id"`
		Text      string    `json:"text"`
		Status    db.Status `json:"status,omitempty"`
		CreatedAt string    `json:"created_at"`
	}
	entries := make([]entry, 0, len(questions))
	for _, q := range questions {
		e := entry{ID: q.ID, Text: q.Text, CreatedAt: q.CreatedAt.Format("2006-01-02T15:04:05Z07:00")}
		if password != "" {
			e.Status = q.Status
		}
		entries = append(entries, e)
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (t *Tools) ModerateQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	password, err := request.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError("password is required"), nil
	}
	questionID, err := request.RequireInt("question_id")
	if err != nil {
		return mcp.NewToolResultError("question_id is required"), nil
	}
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action is required"), nil
	}

	switch action {
	case "approve":
		err = t.engine.Approve(ctx, sessionID, password, uint(questionID))
	case "reject":
		err = t.engine.Reject(ctx, sessionID, password, uint(questionID))
	default:
		return mcp.NewToolResultError("action must be approve or reject"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q, err := t.engine.Question(ctx, sessionID, password, uint(questionID))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("question %d is now %s", q.ID, q.Status)), nil
}
