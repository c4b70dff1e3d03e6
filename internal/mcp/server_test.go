package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/exlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeDataSource is an in-memory DataSource for exercising tool handlers
// without a database.
type fakeDataSource struct {
	users map[string]*models.User
}

var _ DataSource = (*fakeDataSource)(nil)

func newFakeDataSource() *fakeDataSource {
	return &fakeDataSource{users: make(map[string]*models.User)}
}

func (f *fakeDataSource) addUser(id, username string, entries ...models.Entry) {
	log := append([]models.Entry{}, entries...)
	f.users[id] = &models.User{ID: id, Username: username, Count: len(log), Log: log}
}

func (f *fakeDataSource) CreateUser(_ context.Context, username string) (*models.User, error) {
	u := &models.User{ID: "fake-" + username, Username: username, Log: []models.Entry{}}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeDataSource) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.NewUserNotFoundError(id)
	}
	return u, nil
}

func (f *fakeDataSource) ListUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeDataSource) AppendEntry(_ context.Context, id, description string, duration float64, date models.Date) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.NewUserNotFoundError(id)
	}
	u.Log = append(u.Log, models.Entry{Description: description, Duration: duration, Date: date})
	u.Count = len(u.Log)
	return u, nil
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// TestListUsersTool verifies list_users returns every user as JSON.
func TestListUsersTool(t *testing.T) {
	ds := newFakeDataSource()
	ds.addUser("u1", "alice")
	ds.addUser("u2", "bob")
	h := newTestHandlers(ds)

	res, err := h.listUsers(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var users []models.User
	if err := json.Unmarshal([]byte(resultText(t, res)), &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
}

// TestGetExerciseLogTool verifies date-range filtering through the tool handler.
func TestGetExerciseLogTool(t *testing.T) {
	ds := newFakeDataSource()
	ds.addUser("u1", "alice",
		models.Entry{Description: "run", Duration: 30, Date: mustDate(t, "2020-01-15")},
		models.Entry{Description: "swim", Duration: 45, Date: mustDate(t, "2020-02-20")},
	)
	h := newTestHandlers(ds)

	res, err := h.getExerciseLog(context.Background(), callRequest(map[string]any{
		"userId": "u1",
		"from":   "2020-01-01",
		"to":     "2020-01-31",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var got logResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 {
		t.Fatalf("count = %d, want 1", got.Count)
	}
	if got.Log[0].Description != "run" {
		t.Errorf("log[0].description = %q, want run", got.Log[0].Description)
	}
	if got.From != "2020-01-01" || got.To != "2020-01-31" {
		t.Errorf("bounds = %q..%q, want 2020-01-01..2020-01-31", got.From, got.To)
	}
}

// TestGetExerciseLogToolMissingUserID verifies a missing userId produces an
// error result, not a transport error.
func TestGetExerciseLogToolMissingUserID(t *testing.T) {
	h := newTestHandlers(newFakeDataSource())

	res, err := h.getExerciseLog(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result for missing userId")
	}
	if !strings.Contains(resultText(t, res), "userId") {
		t.Errorf("error text %q should mention userId", resultText(t, res))
	}
}

// TestGetExerciseLogToolUnknownUser verifies lookups for absent users fail.
func TestGetExerciseLogToolUnknownUser(t *testing.T) {
	h := newTestHandlers(newFakeDataSource())

	res, err := h.getExerciseLog(context.Background(), callRequest(map[string]any{
		"userId": "nope",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result for unknown user")
	}
}

// TestAddExerciseTool verifies the happy path returns the updated user.
func TestAddExerciseTool(t *testing.T) {
	ds := newFakeDataSource()
	ds.addUser("u1", "alice")
	h := newTestHandlers(ds)

	res, err := h.addExercise(context.Background(), callRequest(map[string]any{
		"userId":      "u1",
		"description": "row",
		"duration":    20.0,
		"date":        "2021-03-04",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var user models.User
	if err := json.Unmarshal([]byte(resultText(t, res)), &user); err != nil {
		t.Fatal(err)
	}
	if user.Count != 1 {
		t.Fatalf("count = %d, want 1", user.Count)
	}
	if user.Log[0].Description != "row" || user.Log[0].Duration != 20 {
		t.Errorf("unexpected entry: %+v", user.Log[0])
	}
	if got := user.Log[0].Date.String(); got != "2021-03-04" {
		t.Errorf("date = %q, want 2021-03-04", got)
	}
}

// TestAddExerciseToolInvalidDateDefaults verifies an unparseable date falls
// back to today instead of failing.
func TestAddExerciseToolInvalidDateDefaults(t *testing.T) {
	ds := newFakeDataSource()
	ds.addUser("u1", "alice")
	h := newTestHandlers(ds)

	res, err := h.addExercise(context.Background(), callRequest(map[string]any{
		"userId":   "u1",
		"duration": 15.0,
		"date":     "not-a-date",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var user models.User
	if err := json.Unmarshal([]byte(resultText(t, res)), &user); err != nil {
		t.Fatal(err)
	}
	if got, want := user.Log[0].Date.String(), models.Today().String(); got != want {
		t.Errorf("date = %q, want today (%q)", got, want)
	}
}

// TestAddExerciseToolMissingDuration verifies duration is required.
func TestAddExerciseToolMissingDuration(t *testing.T) {
	ds := newFakeDataSource()
	ds.addUser("u1", "alice")
	h := newTestHandlers(ds)

	res, err := h.addExercise(context.Background(), callRequest(map[string]any{
		"userId": "u1",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result for missing duration")
	}
}

// TestUserCatalogResource verifies the resource returns the catalog as JSON.
func TestUserCatalogResource(t *testing.T) {
	ds := newFakeDataSource()
	ds.addUser("u1", "alice",
		models.Entry{Description: "run", Duration: 30, Date: mustDate(t, "2020-01-15")},
	)
	h := newTestHandlers(ds)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "exlog://users"
	contents, err := h.userCatalog(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T, want TextResourceContents", contents[0])
	}
	if tc.URI != "exlog://users" {
		t.Errorf("uri = %q, want exlog://users", tc.URI)
	}
	if !strings.Contains(tc.Text, `"alice"`) {
		t.Errorf("catalog %q should contain alice", tc.Text)
	}
}
