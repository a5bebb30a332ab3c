// Package flow implements the conversation state machines: the dispatcher,
// the onboarding, work-record, and AI-conversation controllers, and the
// state management they share.
package flow

import (
	"context"

	"github.com/3min-career/careerbot/internal/models"
)

// StateManager defines the interface for managing a user's conversation state.
//
// A user has zero or one live state record; reads return nil step/empty data
// when no record exists.
type StateManager interface {
	// GetState retrieves the full state record, or nil if none exists.
	GetState(ctx context.Context, kakaoUserID string) (*models.FlowState, error)

	// SetCurrentStep updates the current step, creating the record if needed.
	SetCurrentStep(ctx context.Context, kakaoUserID string, step models.StepType) error

	// SetStateData stores one accumulator value, creating the record if needed.
	SetStateData(ctx context.Context, kakaoUserID string, key models.DataKey, value string) error

	// StoreAnswerAndAdvance stores an answer and moves to the next step in a
	// single write, so a failed update never half-advances the machine.
	StoreAnswerAndAdvance(ctx context.Context, kakaoUserID string, key models.DataKey, value string, next models.StepType) error

	// ResetState removes the state record entirely.
	ResetState(ctx context.Context, kakaoUserID string) error
}
