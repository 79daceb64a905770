package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/dom"
)

// DefaultCacheSize bounds the number of page generations tracked at once.
const DefaultCacheSize = 64

// Manager hands out one PageSession per page generation. A navigation gives
// the page a new generation id and therefore a fresh counter.
type Manager struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, *PageSession]
	opts     Options
	logger   zerolog.Logger
}

// NewManager returns a manager remembering at most size generations.
func NewManager(size int, opts Options, logger zerolog.Logger) (*Manager, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *PageSession](size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Manager{sessions: cache, opts: opts.withDefaults(), logger: logger}, nil
}

// For returns the session of doc's generation, creating it on first use.
func (m *Manager) For(doc *dom.Document) *PageSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions.Get(doc.ID()); ok {
		return s
	}
	s := New(doc.ID(), m.opts, m.logger)
	m.sessions.Add(doc.ID(), s)
	return s
}

// Forget drops the session of a generation.
func (m *Manager) Forget(docID string) {
	m.sessions.Remove(docID)
}

// Len reports the number of tracked generations.
func (m *Manager) Len() int { return m.sessions.Len() }

// Options returns the options sessions are created with.
func (m *Manager) Options() Options { return m.opts }
