package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/exlog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Lite is a single-file SQLite store with the same surface as DB. Intended
// for development and standalone deployments; the schema is created on open.
type Lite struct {
	db *sql.DB
}

// OpenLite opens (or creates) the SQLite database at the given path.
func OpenLite(path string) (*Lite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			user_id     TEXT NOT NULL REFERENCES users(id),
			position    INTEGER NOT NULL,
			description TEXT NOT NULL,
			duration    REAL NOT NULL,
			date        TEXT NOT NULL,
			PRIMARY KEY (user_id, position)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating sqlite schema: %w", err)
		}
	}

	return &Lite{db: db}, nil
}

// Close closes the database.
func (l *Lite) Close() error {
	return l.db.Close()
}

// CreateUser inserts a new user with a generated id and an empty log.
func (l *Lite) CreateUser(ctx context.Context, username string) (*models.User, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO users (id, username) VALUES (?, ?)`, id, username)
	if err != nil {
		return nil, &models.PersistenceError{Op: "inserting user", Err: err}
	}
	return &models.User{ID: id, Username: username, Count: 0, Log: []models.Entry{}}, nil
}

// GetUser loads a user and its full log in append order.
func (l *Lite) GetUser(ctx context.Context, id string) (*models.User, error) {
	var username string
	err := l.db.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ?`, id).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewUserNotFoundError(id)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying user", Err: err}
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT description, duration, date
		 FROM log_entries WHERE user_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying log entries", Err: err}
	}
	defer rows.Close()

	log := []models.Entry{}
	for rows.Next() {
		e, err := scanLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		log = append(log, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "reading log entries", Err: err}
	}
	return &models.User{ID: id, Username: username, Count: len(log), Log: log}, nil
}

// ListUsers returns all users with their full logs in creation order.
func (l *Lite) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, username FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying users", Err: err}
	}
	defer rows.Close()

	users := []models.User{}
	index := map[string]int{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, &models.PersistenceError{Op: "scanning user", Err: err}
		}
		u.Log = []models.Entry{}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "querying users", Err: err}
	}

	entryRows, err := l.db.QueryContext(ctx,
		`SELECT user_id, description, duration, date
		 FROM log_entries ORDER BY user_id, position ASC`)
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying log entries", Err: err}
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var userID, description, dateStr string
		var duration float64
		if err := entryRows.Scan(&userID, &description, &duration, &dateStr); err != nil {
			return nil, &models.PersistenceError{Op: "scanning log entry", Err: err}
		}
		date, err := models.ParseDate(dateStr)
		if err != nil {
			return nil, &models.PersistenceError{Op: "decoding entry date", Err: err}
		}
		if i, ok := index[userID]; ok {
			users[i].Log = append(users[i].Log, models.Entry{
				Description: description, Duration: duration, Date: date,
			})
		}
	}
	if err := entryRows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "querying log entries", Err: err}
	}

	for i := range users {
		users[i].Count = len(users[i].Log)
	}
	return users, nil
}

// AppendEntry appends one entry to the end of a user's log and returns the
// updated user.
func (l *Lite) AppendEntry(ctx context.Context, userID, description string, duration float64, date models.Date) (*models.User, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &models.PersistenceError{Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying user", Err: err}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO log_entries (user_id, position, description, duration, date)
		 SELECT ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?
		 FROM log_entries WHERE user_id = ?`,
		userID, description, duration, date.String(), userID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "inserting log entry", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &models.PersistenceError{Op: "committing append", Err: err}
	}
	return l.GetUser(ctx, userID)
}

func scanLiteEntry(rows *sql.Rows) (models.Entry, error) {
	var description, dateStr string
	var duration float64
	if err := rows.Scan(&description, &duration, &dateStr); err != nil {
		return models.Entry{}, &models.PersistenceError{Op: "scanning log entry", Err: err}
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return models.Entry{}, &models.PersistenceError{Op: "decoding entry date", Err: err}
	}
	return models.Entry{Description: description, Duration: duration, Date: date}, nil
}
