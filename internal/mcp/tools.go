package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/exlog/internal/logquery"
	"github.com/claude/exlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListUsers = mcp.NewTool("list_users",
	mcp.WithDescription("List all tracked users with their ids, usernames, and exercise counts."),
)

var toolGetExerciseLog = mcp.NewTool("get_exercise_log",
	mcp.WithDescription("Retrieve a user's exercise log, optionally filtered by an inclusive date range and an entry limit. The limit caps how many of the earliest-appended entries are considered. Invalid from/to/limit values are ignored."),
	mcp.WithString("userId", mcp.Required(), mcp.Description("User id")),
	mcp.WithString("from", mcp.Description("Inclusive lower date bound (YYYY-MM-DD or a partial form like YYYY or YYYY-MM)")),
	mcp.WithString("to", mcp.Description("Inclusive upper date bound (YYYY-MM-DD or a partial form)")),
	mcp.WithString("limit", mcp.Description("Positive integer cap on the earliest-appended entries considered")),
)

var toolAddExercise = mcp.NewTool("add_exercise",
	mcp.WithDescription("Append one exercise entry to a user's log. Returns the updated user."),
	mcp.WithString("userId", mcp.Required(), mcp.Description("User id")),
	mcp.WithString("description", mcp.Description("What was done")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("How long, in the caller's unit convention")),
	mcp.WithString("date", mcp.Description("Calendar date (YYYY-MM-DD). Defaults to today when absent or invalid.")),
)

// --- Tool handlers ---

func (h *handlers) listUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := h.ds.ListUsers(ctx)
	if err != nil {
		h.log.Error("mcp list_users", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(users)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// logResult mirrors the REST log query response shape.
type logResult struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	From     string         `json:"from,omitempty"`
	To       string         `json:"to,omitempty"`
	Count    int            `json:"count"`
	Log      []models.Entry `json:"log"`
}

func (h *handlers) getExerciseLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("userId")
	if err != nil {
		return mcp.NewToolResultError("userId parameter is required"), nil
	}

	user, err := h.ds.GetUser(ctx, userID)
	if err != nil {
		h.log.Error("mcp get_exercise_log", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	from := req.GetString("from", "")
	to := req.GetString("to", "")
	limit := req.GetString("limit", "")
	filtered := logquery.Filter(user.Log, from, to, limit)

	result, err := mcp.NewToolResultJSON(logResult{
		ID:       user.ID,
		Username: user.Username,
		From:     from,
		To:       to,
		Count:    len(filtered),
		Log:      filtered,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) addExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("userId")
	if err != nil {
		return mcp.NewToolResultError("userId parameter is required"), nil
	}
	duration, err := req.RequireFloat("duration")
	if err != nil {
		return mcp.NewToolResultError("duration parameter is required"), nil
	}

	date := models.Today()
	if parsed, ok := logquery.Parse(req.GetString("date", "")); ok {
		date = parsed
	}

	user, err := h.ds.AppendEntry(ctx, userID, req.GetString("description", ""), duration, date)
	if err != nil {
		h.log.Error("mcp add_exercise", "error", err)
		return mcp.NewToolResultError("append failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(user)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) userCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	users, err := h.ds.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	type catalogEntry struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Count    int    `json:"count"`
	}
	catalog := make([]catalogEntry, 0, len(users))
	for _, u := range users {
		catalog = append(catalog, catalogEntry{ID: u.ID, Username: u.Username, Count: u.Count})
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
