package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Dan9191/etl-pipeline/internal/models"
)

// Repository provides database operations for the pipeline tables
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository initializes a new repository. driver is the database/sql
// driver name ("sqlite3" or "postgres") and controls placeholder syntax.
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// bind rewrites ? placeholders to $n for the postgres driver.
func (r *Repository) bind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Replace drops and recreates the users and posts tables inside a single
// transaction, then inserts the given rows. Prior contents are discarded
// entirely; there is no append mode. posts.user_id nominally references
// users.user_id but no foreign-key constraint is declared.
func (r *Repository) Replace(ctx context.Context, users []models.User, posts []models.Post) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if r.driver == "sqlite3" {
		if _, err := tx.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	ddl := []string{
		`DROP TABLE IF EXISTS posts`,
		`DROP TABLE IF EXISTS users`,
		`CREATE TABLE users (
			user_id  INTEGER PRIMARY KEY,
			name     TEXT,
			username TEXT,
			email    TEXT
		)`,
		`CREATE TABLE posts (
			post_id   INTEGER PRIMARY KEY,
			user_id   INTEGER NOT NULL,
			title     TEXT NOT NULL,
			body      TEXT,
			title_len INTEGER NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	insertUser := r.bind(`INSERT INTO users (user_id, name, username, email) VALUES (?, ?, ?, ?)`)
	for _, u := range users {
		if _, err := tx.ExecContext(ctx, insertUser, u.UserID, u.Name, u.Username, u.Email); err != nil {
			return fmt.Errorf("failed to insert user %d: %w", u.UserID, err)
		}
	}

	insertPost := r.bind(`INSERT INTO posts (post_id, user_id, title, body, title_len) VALUES (?, ?, ?, ?, ?)`)
	for _, p := range posts {
		if _, err := tx.ExecContext(ctx, insertPost, p.PostID, p.UserID, p.Title, p.Body, p.TitleLen); err != nil {
			return fmt.Errorf("failed to insert post %d: %w", p.PostID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}
	return nil
}

// TopPosters returns the top users by number of posts, counting users with
// no posts as zero.
func (r *Repository) TopPosters(ctx context.Context) ([]models.UserPostCount, error) {
	query := `
		SELECT u.user_id, u.username, COUNT(p.post_id) AS post_count
		FROM users u
		LEFT JOIN posts p ON u.user_id = p.user_id
		GROUP BY u.user_id, u.username
		ORDER BY post_count DESC
		LIMIT 5`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("top posters query failed: %w", err)
	}
	defer rows.Close()

	var out []models.UserPostCount
	for rows.Next() {
		var row models.UserPostCount
		if err := rows.Scan(&row.UserID, &row.Username, &row.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan top posters row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top posters rows failed: %w", err)
	}
	return out, nil
}

// AvgTitleLength returns the average title length per user, descending,
// for users having at least one post.
func (r *Repository) AvgTitleLength(ctx context.Context) ([]models.UserTitleStats, error) {
	query := `
		SELECT u.user_id, u.username, AVG(p.title_len) AS avg_title_len
		FROM users u
		JOIN posts p ON u.user_id = p.user_id
		GROUP BY u.user_id, u.username
		ORDER BY avg_title_len DESC
		LIMIT 10`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("avg title length query failed: %w", err)
	}
	defer rows.Close()

	var out []models.UserTitleStats
	for rows.Next() {
		var row models.UserTitleStats
		if err := rows.Scan(&row.UserID, &row.Username, &row.AvgTitleLen); err != nil {
			return nil, fmt.Errorf("failed to scan avg title length row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("avg title length rows failed: %w", err)
	}
	return out, nil
}

// ShortTitles returns posts whose title is shorter than 10 characters,
// ascending by length.
func (r *Repository) ShortTitles(ctx context.Context) ([]models.ShortTitlePost, error) {
	query := `
		SELECT post_id, user_id, title, title_len
		FROM posts
		WHERE title_len < 10
		ORDER BY title_len ASC
		LIMIT 10`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("short titles query failed: %w", err)
	}
	defer rows.Close()

	var out []models.ShortTitlePost
	for rows.Next() {
		var row models.ShortTitlePost
		if err := rows.Scan(&row.PostID, &row.UserID, &row.Title, &row.TitleLen); err != nil {
			return nil, fmt.Errorf("failed to scan short titles row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("short titles rows failed: %w", err)
	}
	return out, nil
}
