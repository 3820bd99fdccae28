package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midi-live-vis/notes"
)

type fakeSession struct {
	list *notes.List
	now  float64
}

func (f *fakeSession) SessionID() string { return "abc" }
func (f *fakeSession) Elapsed() float64 { return f.now }
func (f *fakeSession) Snapshot() []notes.Note { return f.list.Snapshot() }
func (f *fakeSession) Sounding() []notes.Note { return f.list.Sounding() }

func newSession() *fakeSession {
	l := notes.NewList()
	l.NoteOn(60, 100, 0, 1)
	l.NoteOff(60, 0, 2)
	l.NoteOn(72, 80, 3, 5)
	return &fakeSession{list: l, now: 10}
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotesEndpoint(t *testing.T) {
	h := NewHandler(newSession())
	rec := get(t, h, "/notes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var res notesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "abc", res.Session)
	assert.Equal(t, 10.0, res.End)
	require.Len(t, res.Notes, 2)
	assert.NotNil(t, res.Notes[0].End)
	assert.Nil(t, res.Notes[1].End)
}

func TestNotesSince(t *testing.T) {
	h := NewHandler(newSession())

	var res notesResponse
	rec := get(t, h, "/notes?since=3")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Notes, 1)
	assert.Equal(t, 72, res.Notes[0].Pitch)

	rec = get(t, h, "/notes?since=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	h := NewHandler(newSession())
	rec := get(t, h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var res statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []int{72}, res.Sounding)
	assert.Equal(t, []int{0, 3}, res.Channels)
	require.NotNil(t, res.Low)
	assert.Equal(t, 60, *res.Low)
	assert.Equal(t, 72, *res.High)
}

func TestStatsEmptySession(t *testing.T) {
	h := NewHandler(&fakeSession{list: notes.NewList()})
	rec := get(t, h, "/stats")

	var res statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.Sounding)
	assert.Nil(t, res.Low)
}

func TestOnlyGetIsAllowed(t *testing.T) {
	h := NewHandler(newSession())
	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
