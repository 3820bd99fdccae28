package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"midi-live-vis/debug"
	"midi-live-vis/notes"
)

// Session is what the server reads from
type Session interface {
	SessionID() string
	Elapsed() float64
	Snapshot() []notes.Note
	Sounding() []notes.Note
}

type notesResponse struct {
	Session string       `json:"session"`
	End     float64      `json:"end"`
	Notes   []notes.Note `json:"notes"`
}

type statsResponse struct {
	Session  string  `json:"session"`
	End      float64 `json:"end"`
	Count    int     `json:"count"`
	Sounding []int   `json:"sounding"`
	Channels []int   `json:"channels"`
	Low      *int    `json:"low,omitempty"`
	High     *int    `json:"high,omitempty"`
}

// NewHandler exposes the live session as read-only JSON
func NewHandler(s Session) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/notes", handleNotes(s)).Methods("GET")
	router.HandleFunc("/stats", handleStats(s)).Methods("GET")
	return cors.Default().Handler(router)
}

func handleNotes(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns := s.Snapshot()
		end := s.Elapsed()

		if v := r.URL.Query().Get("since"); v != "" {
			since, err := strconv.ParseFloat(v, 64)
			if err != nil {
				http.Error(w, "since must be a number of seconds", http.StatusBadRequest)
				return
			}
			kept := make([]notes.Note, 0, len(ns))
			for _, n := range ns {
				if n.EndOr(end) >= since {
					kept = append(kept, n)
				}
			}
			ns = kept
		}

		writeJSON(w, notesResponse{Session: s.SessionID(), End: end, Notes: ns})
	}
}

func handleStats(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns := s.Snapshot()
		res := statsResponse{
			Session:  s.SessionID(),
			End:      s.Elapsed(),
			Count:    len(ns),
			Sounding: []int{},
			Channels: []int{},
		}
		for _, n := range s.Sounding() {
			res.Sounding = append(res.Sounding, n.Pitch)
		}
		for _, g := range notes.GroupByChannel(ns) {
			res.Channels = append(res.Channels, g.Channel)
		}
		if low, high, ok := notes.Extent(ns); ok {
			res.Low, res.High = &low, &high
		}
		writeJSON(w, res)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Warn("http", "encode response: %v", err)
	}
}

// Run serves on addr until ctx is cancelled
func Run(ctx context.Context, addr string, s Session) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(s),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		debug.Log("http", "listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
