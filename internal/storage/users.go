package storage

import (
	"context"
	"errors"
	"time"

	"github.com/claude/exlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new user with a generated id, an empty log, and
// count 0, and returns the full record.
func (db *DB) CreateUser(ctx context.Context, username string) (*models.User, error) {
	id := uuid.NewString()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2)`,
		id, username)
	if err != nil {
		return nil, &models.PersistenceError{Op: "inserting user", Err: err}
	}
	return &models.User{ID: id, Username: username, Count: 0, Log: []models.Entry{}}, nil
}

// GetUser loads a user and its full log in append order.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var username string
	err := db.Pool.QueryRow(ctx,
		`SELECT username FROM users WHERE id = $1`, id).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewUserNotFoundError(id)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying user", Err: err}
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT description, duration, date
		 FROM log_entries
		 WHERE user_id = $1
		 ORDER BY position ASC`, id)
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying log entries", Err: err}
	}
	defer rows.Close()

	log, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: username, Count: len(log), Log: log}, nil
}

// ListUsers returns all users with their full logs. Users come back in
// creation order.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, username FROM users ORDER BY created_at ASC`)
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

	entryRows, err := db.Pool.Query(ctx,
		`SELECT user_id, description, duration, date
		 FROM log_entries
		 ORDER BY user_id, position ASC`)
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying log entries", Err: err}
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var userID string
		var e models.Entry
		var date time.Time
		if err := entryRows.Scan(&userID, &e.Description, &e.Duration, &date); err != nil {
			return nil, &models.PersistenceError{Op: "scanning log entry", Err: err}
		}
		e.Date = models.DateOf(date)
		if i, ok := index[userID]; ok {
			users[i].Log = append(users[i].Log, e)
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
// updated user. The position is allocated inside a transaction so concurrent
// appends to the same user both land.
func (db *DB) AppendEntry(ctx context.Context, userID, description string, duration float64, date models.Date) (*models.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, &models.PersistenceError{Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	var exists string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "querying user", Err: err}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO log_entries (user_id, position, description, duration, date)
		 SELECT $1, COALESCE(MAX(position) + 1, 0), $2, $3, $4
		 FROM log_entries WHERE user_id = $1`,
		userID, description, duration, date.Time)
	if err != nil {
		return nil, &models.PersistenceError{Op: "inserting log entry", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &models.PersistenceError{Op: "committing append", Err: err}
	}
	return db.GetUser(ctx, userID)
}

func scanEntries(rows pgx.Rows) ([]models.Entry, error) {
	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		var date time.Time
		if err := rows.Scan(&e.Description, &e.Duration, &date); err != nil {
			return nil, &models.PersistenceError{Op: "scanning log entry", Err: err}
		}
		e.Date = models.DateOf(date)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "reading log entries", Err: err}
	}
	return entries, nil
}
