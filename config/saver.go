package config

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"midi-live-vis/debug"
)

// Saver persists preference changes, coalescing bursts of toggles into a
// single write
type Saver struct {
	mu       sync.Mutex
	cfg      Config
	path     string
	debounce func(f func())
	saved    chan struct{} // signalled after each write, for tests
}

func NewSaver(cfg *Config, path string, delay time.Duration) *Saver {
	return &Saver{
		cfg:      *cfg,
		path:     path,
		debounce: debounce.New(delay),
		saved:    make(chan struct{}, 1),
	}
}

// Update edits the pending config and schedules a write
func (s *Saver) Update(edit func(c *Config)) {
	s.mu.Lock()
	edit(&s.cfg)
	s.mu.Unlock()

	s.debounce(s.flush)
}

// Current returns a copy of the pending config
func (s *Saver) Current() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Saver) flush() {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	if err := cfg.SaveTo(s.path); err != nil {
		debug.Warn("config", "save %s: %v", s.path, err)
		return
	}
	debug.Log("config", "saved %s", s.path)

	select {
	case s.saved <- struct{}{}:
	default:
	}
}
