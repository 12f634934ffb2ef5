package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/etl-pipeline/internal/config"
	"github.com/Dan9191/etl-pipeline/internal/integrations/placeholder"
	"github.com/Dan9191/etl-pipeline/internal/models"
	"github.com/Dan9191/etl-pipeline/internal/repository"
)

const testUsersJSON = `[
	{"id": 1, "name": "Alice", "username": "alice", "email": "alice@example.com"},
	{"id": 2, "name": "Bob", "username": "bob", "email": "bob@example.com"},
	{"name": "NoID", "username": "noid", "email": "noid@example.com"}
]`

const testPostsJSON = `[
	{"userId": 1, "id": 1, "title": "Hi", "body": "First"},
	{"userId": 1, "id": 2, "title": "  padded  ", "body": "Second"},
	{"userId": 2, "id": 3, "title": "A considerably longer title", "body": "Third"},
	{"userId": 2, "body": "no id, no title"}
]`

func newTestService(t *testing.T, apiBase string) (*Service, *bytes.Buffer) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		APIBase:     apiBase,
		DBDriver:    "sqlite3",
		DBConn:      ":memory:",
		HTTPTimeout: 2 * time.Second,
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	out := &bytes.Buffer{}
	repo := repository.NewRepository(db, "sqlite3")
	client := placeholder.NewClient(cfg, log)
	return NewService(repo, client, log, cfg, out), out
}

func newAPIServer(t *testing.T, users, posts string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			fmt.Fprint(w, users)
		case "/posts":
			fmt.Fprint(w, posts)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	srv := newAPIServer(t, testUsersJSON, testPostsJSON)
	svc, out := newTestService(t, srv.URL)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	// one user and one post lack required identifiers and are dropped
	assert.Equal(t, 2, summary.UsersLoaded)
	assert.Equal(t, 3, summary.PostsLoaded)
	assert.False(t, summary.UsedFallback)
	assert.Empty(t, summary.Error)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	report := out.String()
	assert.Contains(t, report, "1) Top 5 users by number of posts:")
	assert.Contains(t, report, "2) Average title length per user (descending):")
	assert.Contains(t, report, "3) Posts with short titles (<10 chars):")
	// the padded title was trimmed before the length filter
	assert.Contains(t, report, "padded")
}

func TestRunUsesFallbackWhenAPIDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	svc, _ := newTestService(t, srv.URL)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.UsedFallback)
	assert.Equal(t, 2, summary.UsersLoaded)
	assert.Equal(t, 3, summary.PostsLoaded)
}

func TestRunReplacesPriorContents(t *testing.T) {
	srv := newAPIServer(t, testUsersJSON, testPostsJSON)
	svc, _ := newTestService(t, srv.URL)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	// second run over the same store with a smaller dataset
	srv2 := newAPIServer(t,
		`[{"id": 10, "name": "Solo", "username": "solo", "email": "solo@example.com"}]`,
		`[{"userId": 10, "id": 20, "title": "Only", "body": ""}]`,
	)
	svc.fetch = placeholder.NewClient(&config.Config{
		APIBase:     srv2.URL,
		HTTPTimeout: 2 * time.Second,
	}, svc.log)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.UsersLoaded)
	assert.Equal(t, 1, summary.PostsLoaded)

	top, err := svc.repo.TopPosters(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 10, top[0].UserID)
}

func TestLastRun(t *testing.T) {
	srv := newAPIServer(t, testUsersJSON, testPostsJSON)
	svc, _ := newTestService(t, srv.URL)

	assert.Nil(t, svc.LastRun())

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary, svc.LastRun())
}

type recordingMailer struct {
	sent []*models.RunSummary
}

func (m *recordingMailer) SendRunReport(summary *models.RunSummary) error {
	m.sent = append(m.sent, summary)
	return nil
}

func TestRunNotifiesMailer(t *testing.T) {
	srv := newAPIServer(t, testUsersJSON, testPostsJSON)
	svc, _ := newTestService(t, srv.URL)

	mailer := &recordingMailer{}
	svc.SetMailer(mailer)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, summary, mailer.sent[0])
}
