package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type fakeHighscores struct {
	filter  repository.HighscoreFilter
	records []repository.Highscore
	err     error
}

func (f *fakeHighscores) GetHighscores(
	_ context.Context, filter repository.HighscoreFilter,
) ([]repository.Highscore, error) {
	f.filter = filter
	return f.records, f.err
}

func TestHighscores(t *testing.T) {
	name := "ada"
	repo := &fakeHighscores{records: []repository.Highscore{
		{RecordId: 1, Username: &name, RowCount: 9, ColCount: 9, MineCount: 10, ElapsedSeconds: 42},
	}}
	h := NewRecordsHandler(discard, repo)

	rec := httptest.NewRecorder()
	h.Highscores(rec, httptest.NewRequest(http.MethodGet, "/records?rows=9&cols=9&mines=10&username=ada&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, float64(42), body[0]["elapsed_seconds"])
	assert.Equal(t, "ada", body[0]["username"])

	require.NotNil(t, repo.filter.GameParams)
	assert.Equal(t, mines.GameParams{Rows: 9, Cols: 9, MineCount: 10}, *repo.filter.GameParams)
	require.NotNil(t, repo.filter.Username)
	assert.Equal(t, "ada", *repo.filter.Username)
	assert.Equal(t, 5, repo.filter.Limit)
}

func TestHighscoresPartialParamsAreIgnored(t *testing.T) {
	repo := &fakeHighscores{}
	h := NewRecordsHandler(discard, repo)

	rec := httptest.NewRecorder()
	h.Highscores(rec, httptest.NewRequest(http.MethodGet, "/records?rows=9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Nil(t, repo.filter.GameParams)
	assert.Nil(t, repo.filter.Username)
}

func TestHighscoresErrors(t *testing.T) {
	repo := &fakeHighscores{err: errors.New("connection refused")}
	h := NewRecordsHandler(discard, repo)

	rec := httptest.NewRecorder()
	h.Highscores(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	h.Highscores(rec, httptest.NewRequest(http.MethodGet, "/records?limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
