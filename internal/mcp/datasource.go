package mcp

import (
	"context"

	"github.com/claude/exlog/internal/models"
	"github.com/claude/exlog/internal/storage"
)

// DataSource abstracts the user store for MCP tools. *storage.DB and
// *storage.Lite serve local mode; HTTPClient serves remote mode via the
// REST API.
type DataSource interface {
	CreateUser(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AppendEntry(ctx context.Context, userID, description string, duration float64, date models.Date) (*models.User, error)
}

// Compile-time checks: both store backends satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*storage.Lite)(nil)
)
