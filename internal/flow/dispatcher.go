package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

// Intent is the closed set of conversation tracks a trigger phrase can
// select when no state record is live.
type Intent int

const (
	// IntentNone means no trigger matched; the welcome branch decides.
	IntentNone Intent = iota
	// IntentStartAI opens (or restarts) the AI-conversation track.
	IntentStartAI
	// IntentStartOnboarding opens or resumes the onboarding track.
	IntentStartOnboarding
	// IntentStartRecord opens the daily work-record track.
	IntentStartRecord
	// IntentWelcome explicitly requests the welcome reply.
	IntentWelcome
)

// intentRules are evaluated in order; the first matching predicate wins.
// The AI trigger sits first because it preempts everything, including a
// live state record.
var intentRules = []struct {
	match  func(message string) bool
	intent Intent
}{
	{func(m string) bool { return m == TriggerAIStart || strings.Contains(m, TriggerAISubstring) }, IntentStartAI},
	{func(m string) bool { return m == TriggerOnboardingStart || m == TriggerOnboardingShort || m == TriggerOnboardingResume }, IntentStartOnboarding},
	{func(m string) bool { return m == TriggerRecordStart }, IntentStartRecord},
	{func(m string) bool { return m == TriggerWelcome || m == TriggerHome }, IntentWelcome},
}

// RecognizeIntent maps a raw message to a trigger intent.
func RecognizeIntent(message string) Intent {
	for _, rule := range intentRules {
		if rule.match(message) {
			return rule.intent
		}
	}
	return IntentNone
}

// Dispatcher routes each inbound message to exactly one controller, based
// first on the live state record and then on trigger phrases in the message.
// It is the only component allowed to delete a state it cannot interpret.
type Dispatcher struct {
	stateManager StateManager
	store        store.Store
	onboarding   *OnboardingFlow
	record       *RecordFlow
	conversation *ConversationFlow
}

// NewDispatcher wires the three controllers behind a single entry point.
func NewDispatcher(sm StateManager, st store.Store, onboarding *OnboardingFlow, record *RecordFlow, conversation *ConversationFlow) *Dispatcher {
	return &Dispatcher{
		stateManager: sm,
		store:        st,
		onboarding:   onboarding,
		record:       record,
		conversation: conversation,
	}
}

// Dispatch produces exactly one reply for the message. Controller failures
// are converted into the fixed apology reply, never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, kakaoUserID, message string) models.SkillResponse {
	resp, err := d.dispatch(ctx, kakaoUserID, message)
	if err != nil {
		slog.Error("Dispatcher request failed", "error", err, "kakaoUserID", kakaoUserID)
		return models.TextReply(ApologyText)
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, kakaoUserID, message string) (models.SkillResponse, error) {
	// The AI start phrase wins over any track in progress: the user is
	// explicitly abandoning whatever they were doing.
	if RecognizeIntent(message) == IntentStartAI {
		if err := d.stateManager.ResetState(ctx, kakaoUserID); err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to reset state for conversation start: %w", err)
		}
		return d.conversation.ProcessResponse(ctx, kakaoUserID, message)
	}

	state, err := d.stateManager.GetState(ctx, kakaoUserID)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to load conversation state: %w", err)
	}

	if state != nil && state.CurrentStep != "" {
		if !models.IsKnownStep(state.CurrentStep) {
			// Unknown step label: treat as corruption, delete the record,
			// and fall through to the no-state branch.
			slog.Warn("Dispatcher clearing unknown state", "kakaoUserID", kakaoUserID, "step", state.CurrentStep)
			if err := d.stateManager.ResetState(ctx, kakaoUserID); err != nil {
				return models.SkillResponse{}, fmt.Errorf("failed to clear unknown state: %w", err)
			}
		} else {
			switch {
			case models.IsOnboardingStep(state.CurrentStep):
				return d.onboarding.ProcessResponse(ctx, kakaoUserID, message)
			case models.IsRecordStep(state.CurrentStep):
				return d.record.ProcessResponse(ctx, kakaoUserID, message)
			default:
				return d.conversation.ProcessResponse(ctx, kakaoUserID, message)
			}
		}
	}

	switch RecognizeIntent(message) {
	case IntentStartOnboarding:
		// A completed user retriggering onboarding goes straight to the AI
		// track instead of repeating the questions.
		user, err := d.store.GetUser(kakaoUserID)
		if err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to load user for onboarding: %w", err)
		}
		if user != nil && user.OnboardingCompleted {
			return d.conversation.ProcessResponse(ctx, kakaoUserID, TriggerAIStart)
		}
		return d.onboarding.ProcessResponse(ctx, kakaoUserID, message)
	case IntentStartRecord:
		return d.record.ProcessResponse(ctx, kakaoUserID, message)
	default:
		return d.welcome(kakaoUserID)
	}
}

// welcome reflects the profile's completion status: new users are pointed at
// onboarding, partial users at resuming it, completed users get a
// personalized greeting with the next-action choices.
func (d *Dispatcher) welcome(kakaoUserID string) (models.SkillResponse, error) {
	user, err := d.store.GetUser(kakaoUserID)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to load user for welcome: %w", err)
	}

	switch {
	case user == nil:
		return models.TextReply(welcomeNewUserText, models.Reply("시작하기", TriggerOnboardingStart)), nil
	case !user.OnboardingCompleted:
		return models.TextReply(welcomeIncompleteText, models.Reply("온보딩계속", TriggerOnboardingResume)), nil
	default:
		text := fmt.Sprintf(welcomeReturnFormat, user.Name, user.AttendanceCount)
		return models.TextReply(text,
			models.Reply("오늘의 기록", TriggerRecordStart),
			models.Reply("3분 커리어 시작", TriggerAIStart),
		), nil
	}
}
