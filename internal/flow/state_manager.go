package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

// StoreBasedStateManager implements StateManager using a Store backend.
type StoreBasedStateManager struct {
	store store.Store
}

// NewStoreBasedStateManager creates a new StateManager backed by a Store.
func NewStoreBasedStateManager(st store.Store) *StoreBasedStateManager {
	slog.Debug("Creating StoreBasedStateManager")
	return &StoreBasedStateManager{store: st}
}

// GetState retrieves the full state record for a user.
func (sm *StoreBasedStateManager) GetState(ctx context.Context, kakaoUserID string) (*models.FlowState, error) {
	state, err := sm.store.GetFlowState(kakaoUserID)
	if err != nil {
		slog.Error("StateManager GetState error", "error", err, "kakaoUserID", kakaoUserID)
		return nil, err
	}
	return state, nil
}

// SetCurrentStep updates the current step for a user, creating the record if needed.
func (sm *StoreBasedStateManager) SetCurrentStep(ctx context.Context, kakaoUserID string, step models.StepType) error {
	slog.Debug("StateManager SetCurrentStep", "kakaoUserID", kakaoUserID, "step", step)

	state, err := sm.store.GetFlowState(kakaoUserID)
	if err != nil {
		slog.Error("StateManager SetCurrentStep get error", "error", err, "kakaoUserID", kakaoUserID)
		return err
	}

	now := time.Now()
	if state == nil {
		state = &models.FlowState{
			KakaoUserID: kakaoUserID,
			CurrentStep: step,
			StateData:   make(map[models.DataKey]string),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	} else {
		state.CurrentStep = step
		state.UpdatedAt = now
	}

	if err := sm.store.SaveFlowState(*state); err != nil {
		slog.Error("StateManager SetCurrentStep save error", "error", err, "kakaoUserID", kakaoUserID, "step", step)
		return err
	}
	return nil
}

// SetStateData stores one accumulator value for a user, creating the record if needed.
func (sm *StoreBasedStateManager) SetStateData(ctx context.Context, kakaoUserID string, key models.DataKey, value string) error {
	slog.Debug("StateManager SetStateData", "kakaoUserID", kakaoUserID, "key", key)

	state, err := sm.store.GetFlowState(kakaoUserID)
	if err != nil {
		slog.Error("StateManager SetStateData get error", "error", err, "kakaoUserID", kakaoUserID, "key", key)
		return err
	}

	now := time.Now()
	if state == nil {
		state = &models.FlowState{
			KakaoUserID: kakaoUserID,
			StateData:   map[models.DataKey]string{key: value},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	} else {
		if state.StateData == nil {
			state.StateData = make(map[models.DataKey]string)
		}
		state.StateData[key] = value
		state.UpdatedAt = now
	}

	if err := sm.store.SaveFlowState(*state); err != nil {
		slog.Error("StateManager SetStateData save error", "error", err, "kakaoUserID", kakaoUserID, "key", key)
		return err
	}
	return nil
}

// StoreAnswerAndAdvance stores an answer and advances the step in one write.
func (sm *StoreBasedStateManager) StoreAnswerAndAdvance(ctx context.Context, kakaoUserID string, key models.DataKey, value string, next models.StepType) error {
	slog.Debug("StateManager StoreAnswerAndAdvance", "kakaoUserID", kakaoUserID, "key", key, "next", next)

	state, err := sm.store.GetFlowState(kakaoUserID)
	if err != nil {
		slog.Error("StateManager StoreAnswerAndAdvance get error", "error", err, "kakaoUserID", kakaoUserID)
		return err
	}

	now := time.Now()
	if state == nil {
		state = &models.FlowState{
			KakaoUserID: kakaoUserID,
			StateData:   make(map[models.DataKey]string),
			CreatedAt:   now,
		}
	}
	if state.StateData == nil {
		state.StateData = make(map[models.DataKey]string)
	}
	state.StateData[key] = value
	state.CurrentStep = next
	state.UpdatedAt = now

	if err := sm.store.SaveFlowState(*state); err != nil {
		slog.Error("StateManager StoreAnswerAndAdvance save error", "error", err, "kakaoUserID", kakaoUserID, "key", key, "next", next)
		return err
	}
	slog.Info("StateManager StoreAnswerAndAdvance succeeded", "kakaoUserID", kakaoUserID, "next", next)
	return nil
}

// ResetState removes the state record for a user.
func (sm *StoreBasedStateManager) ResetState(ctx context.Context, kakaoUserID string) error {
	slog.Debug("StateManager ResetState", "kakaoUserID", kakaoUserID)

	if err := sm.store.DeleteFlowState(kakaoUserID); err != nil {
		slog.Error("StateManager ResetState error", "error", err, "kakaoUserID", kakaoUserID)
		return err
	}
	slog.Info("StateManager ResetState succeeded", "kakaoUserID", kakaoUserID)
	return nil
}
