package bot

import (
	"sync"

	"github.com/romanselivan/goldantilop/internal/exchange"
)

type step int

const (
	stepNone step = iota
	stepChoosingSource
	stepChoosingTarget
	stepEnteringAmount
	stepConfirming
	stepWritingAdmin
	stepRejectReason
)

// session is the per-conversation transient state: where the exchange
// flow stands, the quote awaiting confirmation, and the idempotency
// flag that makes a repeated confirm a no-op instead of a duplicate
// request.
type session struct {
	step            step
	source          string
	target          string
	quote           exchange.Quote
	requestCreated  bool
	rejectRequestID string
}

// endFlow returns to the menu but keeps the idempotency flag, so a
// confirm button pressed again on an old message is still rejected.
func (s *session) endFlow() {
	s.step = stepNone
	s.source = ""
	s.target = ""
	s.rejectRequestID = ""
}

// reset starts a fresh quoting session.
func (s *session) reset() {
	s.endFlow()
	s.quote = exchange.Quote{}
	s.requestCreated = false
}

type sessions struct {
	mu sync.Mutex
	m  map[int64]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*session)}
}

func (s *sessions) get(chatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[chatID]
	if !ok {
		sess = &session{}
		s.m[chatID] = sess
	}
	return sess
}
