package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/3min-career/careerbot/internal/genai"
	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

// stubGenerator records completion calls and returns a fixed reply.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	calls   int
	lastMsg string
}

func (g *stubGenerator) Reply(_ context.Context, message string, _ []genai.Message) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastMsg = message
	return g.reply
}

// faultyStore wraps a Store and fails selected write operations, so the
// controllers' error replies can be observed.
type faultyStore struct {
	store.Store
	failSaveUser       bool
	failAddDailyRecord bool
}

func (s *faultyStore) SaveUser(user models.User) error {
	if s.failSaveUser {
		return errors.New("disk full")
	}
	return s.Store.SaveUser(user)
}

func (s *faultyStore) AddDailyRecord(rec models.DailyRecord) error {
	if s.failAddDailyRecord {
		return errors.New("disk full")
	}
	return s.Store.AddDailyRecord(rec)
}

type testFlows struct {
	store        *store.InMemoryStore
	stateManager StateManager
	generator    *stubGenerator
	onboarding   *OnboardingFlow
	record       *RecordFlow
	conversation *ConversationFlow
	dispatcher   *Dispatcher
}

// newTestFlows wires the controllers against an in-memory store, a stub
// completion generator, and a synchronous runner so background work has
// finished by the time each call returns.
func newTestFlows() *testFlows {
	st := store.NewInMemoryStore()
	sm := NewStoreBasedStateManager(st)
	gen := &stubGenerator{reply: "정리해드릴게요!"}

	record := NewRecordFlow(sm, st)
	record.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	conversation := NewConversationFlow(sm, st, gen, SyncRunner{})
	conversation.pick = func(n int) int { return 0 }

	onboarding := NewOnboardingFlow(sm, st)

	return &testFlows{
		store:        st,
		stateManager: sm,
		generator:    gen,
		onboarding:   onboarding,
		record:       record,
		conversation: conversation,
		dispatcher:   NewDispatcher(sm, st, onboarding, record, conversation),
	}
}
