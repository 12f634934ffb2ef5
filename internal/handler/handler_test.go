package handler

import (
	"database/sql"
	"encoding/json"
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
	"github.com/Dan9191/etl-pipeline/internal/service"
)

func newTestHandler(t *testing.T, apiBase string) *Handler {
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

	repo := repository.NewRepository(db, "sqlite3")
	client := placeholder.NewClient(cfg, log)
	svc := service.NewService(repo, client, log, cfg, io.Discard)
	return NewHandler(svc)
}

func TestStatusBeforeAnyRun(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "no runs yet"}`, rec.Body.String())
}

func TestTriggerRunAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			w.Write([]byte(`[{"id": 1, "name": "Alice", "username": "alice", "email": "alice@example.com"}]`))
		case "/posts":
			w.Write([]byte(`[{"userId": 1, "id": 1, "title": "Hello", "body": ""}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	h := newTestHandler(t, srv.URL)

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.UsersLoaded)
	assert.Equal(t, 1, summary.PostsLoaded)
	assert.False(t, summary.UsedFallback)

	statusRec := httptest.NewRecorder()
	h.Status(statusRec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, statusRec.Code)

	var last models.RunSummary
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &last))
	assert.Equal(t, summary.UsersLoaded, last.UsersLoaded)
}
