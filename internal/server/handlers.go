package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/exlog/internal/logquery"
	"github.com/claude/exlog/internal/models"
)

func (s *Server) handleNewUser(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	username := body["username"]
	if username == "" {
		s.writeError(w, models.NewValidationError("username", "username is required"))
		return
	}

	user, err := s.store.CreateUser(r.Context(), username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	userID := body["userId"]
	if userID == "" {
		s.writeError(w, models.NewValidationError("userId", "userId is required"))
		return
	}

	duration, err := strconv.ParseFloat(body["duration"], 64)
	if err != nil {
		s.writeError(w, models.NewValidationError("duration", "duration must be a number"))
		return
	}

	// A date that is absent or fails validation falls back to today.
	date := models.Today()
	if parsed, ok := logquery.Parse(body["date"]); ok {
		date = parsed
	}

	user, err := s.store.AppendEntry(r.Context(), userID, body["description"], duration, date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// LogResult is the exercise-log query response. It is built fresh per
// request and never written back to the store; Count reflects the filtered
// log, and From/To echo the raw query strings as received.
type LogResult struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	From     string         `json:"from,omitempty"`
	To       string         `json:"to,omitempty"`
	Count    int            `json:"count"`
	Log      []models.Entry `json:"log"`
}

func (s *Server) handleExerciseLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		s.writeError(w, models.NewValidationError("userId", "userId is required"))
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	from, to, limit := q.Get("from"), q.Get("to"), q.Get("limit")
	filtered := logquery.Filter(user.Log, from, to, limit)

	writeJSON(w, http.StatusOK, LogResult{
		ID:       user.ID,
		Username: user.Username,
		From:     from,
		To:       to,
		Count:    len(filtered),
		Log:      filtered,
	})
}

// parseBody reads form-encoded or JSON request bodies into a flat string
// map. JSON values that are numbers are rendered back to strings so both
// content types share one parsing path.
func parseBody(r *http.Request) (map[string]string, error) {
	body := map[string]string{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, models.NewValidationError("body", "invalid JSON: "+err.Error())
		}
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				body[k] = val
			case float64:
				body[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		}
		return body, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, models.NewValidationError("body", "invalid form body")
	}
	for k := range r.PostForm {
		body[k] = r.PostForm.Get(k)
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}
