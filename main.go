package main

import (
	"log"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quietask/quietask/internal/config"
	"github.com/quietask/quietask/internal/db"
	"github.com/quietask/quietask/internal/handler"
	"github.com/quietask/quietask/internal/moderation"
	"github.com/quietask/quietask/internal/webserver"
)

func main() {
	mcpMode := false
	for _, arg := range os.Args[1:] {
		if arg == "--mcp" {
			mcpMode = true
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	engine := moderation.NewEngine(store, cfg.BcryptCost)

	if mcpMode {
		runMCP(engine)
		return
	}

	srv := webserver.New(engine, store, cfg.BaseURL)
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// runMCP serves the same engine over stdio as MCP tools.
func runMCP(engine *moderation.Engine) {
	s := server.NewMCPServer(
		"quietask",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	tools := handler.NewTools(engine)

	s.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new password-protected Q&A session."),
		mcp.WithString("password",
			mcp.Required(),
			mcp.Description("The session password; required later for moderation"),
		),
	), tools.CreateSession)

	s.AddTool(mcp.NewTool("submit_question",
		mcp.WithDescription("Submit an anonymous question to a Q&A session."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The target session id"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The question text"),
		),
	), tools.SubmitQuestion)

	s.AddTool(mcp.NewTool("list_questions",
		mcp.WithDescription("List a session's questions. With the session password: every question and its status. Without: approved questions only."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The session id"),
		),
		mcp.WithString("password",
			mcp.Description("The session password, for the owner view"),
		),
	), tools.ListQuestions)

	s.AddTool(mcp.NewTool("moderate_question",
		mcp.WithDescription("Approve or reject a pending question."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The session id"),
		),
		mcp.WithString("password",
			mcp.Required(),
			mcp.Description("The session password"),
		),
		mcp.WithNumber("question_id",
			mcp.Required(),
			mcp.Description("The question id"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Either approve or reject"),
		),
	), tools.ModerateQuestion)

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("mcp server: %v", err)
	}
}
