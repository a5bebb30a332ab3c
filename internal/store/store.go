// Package store provides storage backends for careerbot.
//
// It includes an in-memory store for tests and DSN-less runs, plus
// persistent SQLite and PostgreSQL backends.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/3min-career/careerbot/internal/models"
)

// Store is the keyed access surface the flow layer depends on.
//
// Reads return (nil, nil) when a record is absent; callers treat store
// read failures as "record absent" and soft-fail to defaults.
type Store interface {
	// Conversation state: zero or one live record per user.
	GetFlowState(kakaoUserID string) (*models.FlowState, error)
	SaveFlowState(state models.FlowState) error
	DeleteFlowState(kakaoUserID string) error

	// User profiles, upserted by Kakao user id.
	GetUser(kakaoUserID string) (*models.User, error)
	SaveUser(user models.User) error
	// IncrementAttendance bumps the attendance counter by one and returns the new value.
	IncrementAttendance(kakaoUserID string) (int, error)

	// Daily records, application-level unique on (user, date).
	AddDailyRecord(rec models.DailyRecord) error
	GetDailyRecordByDate(kakaoUserID, date string) (*models.DailyRecord, error)
	ListDailyRecords(kakaoUserID string, limit int) ([]models.DailyRecord, error)

	Close() error
}

// InMemoryStore is a mutex-guarded map-backed Store used by tests and when
// no database DSN is configured.
type InMemoryStore struct {
	mu      sync.Mutex
	states  map[string]models.FlowState
	users   map[string]models.User
	records map[string][]models.DailyRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		states:  make(map[string]models.FlowState),
		users:   make(map[string]models.User),
		records: make(map[string][]models.DailyRecord),
	}
}

// GetFlowState retrieves the conversation state for a user.
func (s *InMemoryStore) GetFlowState(kakaoUserID string) (*models.FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[kakaoUserID]
	if !ok {
		return nil, nil
	}
	cp := state
	cp.StateData = copyStateData(state.StateData)
	return &cp, nil
}

// SaveFlowState stores or replaces the conversation state for a user.
func (s *InMemoryStore) SaveFlowState(state models.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.StateData = copyStateData(state.StateData)
	s.states[state.KakaoUserID] = state
	return nil
}

// DeleteFlowState removes the conversation state for a user.
func (s *InMemoryStore) DeleteFlowState(kakaoUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, kakaoUserID)
	return nil
}

// GetUser retrieves a user profile.
func (s *InMemoryStore) GetUser(kakaoUserID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[kakaoUserID]
	if !ok {
		return nil, nil
	}
	cp := user
	return &cp, nil
}

// SaveUser upserts a user profile by Kakao user id.
func (s *InMemoryStore) SaveUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.KakaoUserID]; ok {
		user.CreatedAt = existing.CreatedAt
	}
	s.users[user.KakaoUserID] = user
	return nil
}

// IncrementAttendance bumps the attendance counter and returns the new value.
func (s *InMemoryStore) IncrementAttendance(kakaoUserID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[kakaoUserID]
	if !ok {
		return 0, ErrUserNotFound
	}
	user.AttendanceCount++
	user.UpdatedAt = time.Now()
	s.users[kakaoUserID] = user
	return user.AttendanceCount, nil
}

// AddDailyRecord appends a daily record.
func (s *InMemoryStore) AddDailyRecord(rec models.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[rec.KakaoUserID] {
		if existing.RecordDate == rec.RecordDate {
			return ErrDuplicateRecordDate
		}
	}
	s.records[rec.KakaoUserID] = append(s.records[rec.KakaoUserID], rec)
	return nil
}

// GetDailyRecordByDate retrieves a user's record for a calendar date.
func (s *InMemoryStore) GetDailyRecordByDate(kakaoUserID, date string) (*models.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records[kakaoUserID] {
		if rec.RecordDate == date {
			cp := rec
			return &cp, nil
		}
	}
	return nil, nil
}

// ListDailyRecords returns the most recent records for a user, newest first.
func (s *InMemoryStore) ListDailyRecords(kakaoUserID string, limit int) ([]models.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]models.DailyRecord, len(s.records[kakaoUserID]))
	copy(recs, s.records[kakaoUserID])
	sort.Slice(recs, func(i, j int) bool { return recs[i].RecordDate > recs[j].RecordDate })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

func copyStateData(data map[models.DataKey]string) map[models.DataKey]string {
	if data == nil {
		return nil
	}
	cp := make(map[models.DataKey]string, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return cp
}
