package rest

import (
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/internal/editor"
)

// Session is one open document. Handlers must hold mu while touching shell.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu    sync.Mutex
	shell *editor.Shell
}

// Do runs fn with the session locked and bumps UpdatedAt.
func (s *Session) Do(fn func(sh *editor.Shell) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.shell)
	s.UpdatedAt = time.Now()
	return err
}

// SessionStore keeps the most recently used sessions; the oldest is
// evicted once the store is full.
type SessionStore struct {
	cache    *lru.Cache[string, *Session]
	newShell func() *editor.Shell
}

// NewSessionStore creates a store holding at most size sessions.
func NewSessionStore(size int, newShell func() *editor.Shell, log *zap.Logger) (*SessionStore, error) {
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		log.Info("session evicted", zap.String("session", id))
	})
	if err != nil {
		return nil, err
	}
	return &SessionStore{cache: cache, newShell: newShell}, nil
}

// Create opens a session on text. The session is stored even when the text
// does not parse; the parse error is returned alongside it.
func (st *SessionStore) Create(text string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		shell:     st.newShell(),
	}
	err := sess.shell.EditText(text)
	st.cache.Add(sess.ID, sess)
	return sess, err
}

// Get returns a session and marks it recently used.
func (st *SessionStore) Get(id string) (*Session, bool) {
	return st.cache.Get(id)
}

// Delete closes a session. It reports whether the session existed.
func (st *SessionStore) Delete(id string) bool {
	return st.cache.Remove(id)
}

// IDs lists open sessions from oldest to newest.
func (st *SessionStore) IDs() []string {
	return st.cache.Keys()
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	return st.cache.Len()
}
