package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/logger"
)

const (
	InactivityTimeout = 24 * time.Hour
	SweeperInterval   = 10 * time.Minute
)

var (
	ErrNoSession  = errors.New("session: no active drill")
	ErrStaleToken = errors.New("session: stale card")
)

// Result summarises a finished or abandoned drill. Updated holds the graded
// terms that still have to be stored.
type Result struct {
	ChatID   int64
	UserID   int64
	Reversed bool
	Updated  []*db.Term
	Missed   []*db.Term
	Total    int
}

func (r Result) Reviewed() int {
	return len(r.Updated)
}

// Snapshot is a copy of what the chat currently shows.
type Snapshot struct {
	Token     string
	MessageID int
	Position  int
	Total     int
	Prompt    string
	Response  string
	Revealed  bool
	Reversed  bool
}

// ExpireFunc receives drills dropped by the sweeper.
type ExpireFunc func(ctx context.Context, result Result)

type session struct {
	chatID         int64
	userID         int64
	drill          *drill.Drill
	reversed       bool
	token          string
	messageID      int
	revealed       bool
	lastActivityAt time.Time
}

type key struct {
	chatID int64
	userID int64
}

// Manager owns one drill per chat and user. Every drill mutation happens
// under mu.
type Manager struct {
	mu       sync.Mutex
	sessions map[key]*session
	now      func() time.Time
	newToken func() string
	onExpire ExpireFunc
	timeout  time.Duration
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) { m.timeout = timeout }
}

func WithExpireFunc(fn ExpireFunc) Option {
	return func(m *Manager) { m.onExpire = fn }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[key]*session),
		now:      time.Now,
		newToken: uuid.NewString,
		timeout:  InactivityTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start installs d as the chat's drill. A drill it replaces is returned so
// the caller can store its grades.
func (m *Manager) Start(chatID, userID int64, d *drill.Drill, reversed bool) (Snapshot, *Result, error) {
	if d == nil || d.IsCompleted() {
		return Snapshot{}, nil, fmt.Errorf("%w: empty drill", ErrNoSession)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{chatID, userID}
	var replaced *Result
	if previous := m.sessions[k]; previous != nil {
		result := resultOf(previous)
		replaced = &result
	}
	s := &session{
		chatID:         chatID,
		userID:         userID,
		drill:          d,
		reversed:       reversed,
		token:          m.newToken(),
		lastActivityAt: m.now(),
	}
	m.sessions[k] = s
	snap, err := snapshotOf(s)
	return snap, replaced, err
}

func (m *Manager) Snapshot(chatID, userID int64) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[key{chatID, userID}]
	if s == nil {
		return Snapshot{}, false
	}
	snap, err := snapshotOf(s)
	return snap, err == nil
}

func (m *Manager) SetMessageID(chatID, userID int64, token string, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[key{chatID, userID}]
	if s == nil || s.token != token {
		return
	}
	s.messageID = messageID
}

// Reveal marks the current card's response as shown.
func (m *Manager) Reveal(chatID, userID int64, token string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookupLocked(chatID, userID, token)
	if err != nil {
		return Snapshot{}, err
	}
	s.revealed = true
	s.lastActivityAt = m.now()
	return snapshotOf(s)
}

// Grade records grade for the current card and moves on. When the drill is
// complete the session is removed and its result returned.
func (m *Manager) Grade(chatID, userID int64, token string, grade int) (Snapshot, *Result, error) {
	if !drill.ValidGrade(grade) {
		return Snapshot{}, nil, fmt.Errorf("%w: grade %d", drill.ErrInvalidArgument, grade)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookupLocked(chatID, userID, token)
	if err != nil {
		return Snapshot{}, nil, err
	}
	if err := s.drill.Grade(grade, s.reversed); err != nil {
		return Snapshot{}, nil, err
	}
	s.drill.Advance()
	s.lastActivityAt = m.now()

	if s.drill.IsCompleted() {
		delete(m.sessions, key{chatID, userID})
		result := resultOf(s)
		return Snapshot{}, &result, nil
	}
	s.token = m.newToken()
	s.messageID = 0
	s.revealed = false
	snap, err := snapshotOf(s)
	return snap, nil, err
}

// Stop ends the chat's drill and returns what was graded so far.
func (m *Manager) Stop(chatID, userID int64) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{chatID, userID}
	s := m.sessions[k]
	if s == nil {
		return Result{}, false
	}
	delete(m.sessions, k)
	return resultOf(s), true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SweeperInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepInactive(ctx, m.now())
		}
	}
}

// SweepInactive drops sessions idle for longer than the timeout and hands
// them to the expire callback outside the lock.
func (m *Manager) SweepInactive(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var expired []Result
	for k, s := range m.sessions {
		if now.Sub(s.lastActivityAt) > m.timeout {
			delete(m.sessions, k)
			expired = append(expired, resultOf(s))
		}
	}
	m.mu.Unlock()

	for _, result := range expired {
		logger.Info("drill session expired", "chat_id", result.ChatID, "user_id", result.UserID, "graded", result.Reviewed())
		if m.onExpire != nil {
			m.onExpire(ctx, result)
		}
	}
	return len(expired)
}

func (m *Manager) lookupLocked(chatID, userID int64, token string) (*session, error) {
	s := m.sessions[key{chatID, userID}]
	if s == nil {
		return nil, ErrNoSession
	}
	if s.token != token {
		return nil, ErrStaleToken
	}
	return s, nil
}

func snapshotOf(s *session) (Snapshot, error) {
	term, err := s.drill.CurrentTerm()
	if err != nil {
		return Snapshot{}, err
	}
	prompt, response := drill.Sides(term, s.reversed)
	return Snapshot{
		Token:     s.token,
		MessageID: s.messageID,
		Position:  s.drill.Position() + 1,
		Total:     s.drill.Len(),
		Prompt:    prompt,
		Response:  response,
		Revealed:  s.revealed,
		Reversed:  s.reversed,
	}, nil
}

func resultOf(s *session) Result {
	return Result{
		ChatID:   s.chatID,
		UserID:   s.userID,
		Reversed: s.reversed,
		Updated:  s.drill.UpdatedTerms(),
		Missed:   s.drill.MissedTerms(s.reversed),
		Total:    s.drill.Len(),
	}
}
