package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/nnkern/internal/model"
)

// session is one recurrent state bound to a model. mu serializes steps so
// no two requests share the state buffers.
type session struct {
	id        string
	model     *model.Model
	createdAt time.Time

	mu    sync.Mutex
	state *model.State
	steps int
}

// SessionStore keeps recurrent sessions in memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	limit    int
}

// NewSessionStore holds at most limit sessions; limit <= 0 means no limit.
func NewSessionStore(limit int) *SessionStore {
	return &SessionStore{sessions: make(map[string]*session), limit: limit}
}

func (s *SessionStore) Create(m *model.Model, batch int, now time.Time) (*session, error) {
	state, err := m.NewState(batch)
	if err != nil {
		return nil, err
	}
	sess := &session{
		id:        "sess_" + uuid.NewString(),
		model:     m,
		createdAt: now,
		state:     state,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.sessions) >= s.limit {
		return nil, newInvalidRequest(fmt.Sprintf("session limit of %d reached", s.limit))
	}
	s.sessions[sess.id] = sess
	return sess, nil
}

func (s *SessionStore) Get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// snapshot must be called with sess.mu held.
func (sess *session) snapshot() SessionResponse {
	st := sess.state
	return SessionResponse{
		ID:        sess.id,
		Model:     sess.model.Name,
		Kind:      sess.model.Kind,
		Batch:     st.Batch,
		Hidden:    st.Hidden,
		Steps:     sess.steps,
		CreatedAt: sess.createdAt.Unix(),
		H:         stateRows(st.H, st.Batch, st.Hidden),
		C:         stateRows(st.C, st.Batch, st.Hidden),
	}
}
