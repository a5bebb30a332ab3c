package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

// OnboardingFlow walks a new user through the nine intake questions, one
// answer per message, and upserts the completed profile at the end.
//
// Each answer is stored into the state accumulator together with the step
// advance in one write, so a failed update leaves the machine where it was.
type OnboardingFlow struct {
	stateManager StateManager
	store        store.Store
}

// NewOnboardingFlow creates an onboarding controller.
func NewOnboardingFlow(sm StateManager, st store.Store) *OnboardingFlow {
	return &OnboardingFlow{stateManager: sm, store: st}
}

// ProcessResponse handles one inbound message for a user inside (or entering)
// the onboarding track and returns the next question.
func (f *OnboardingFlow) ProcessResponse(ctx context.Context, kakaoUserID, message string) (models.SkillResponse, error) {
	state, err := f.stateManager.GetState(ctx, kakaoUserID)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to get onboarding state: %w", err)
	}

	if state == nil || state.CurrentStep == "" {
		slog.Info("OnboardingFlow starting new onboarding", "kakaoUserID", kakaoUserID)
		if err := f.stateManager.SetCurrentStep(ctx, kakaoUserID, models.StepOnboardingStart); err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to initialize onboarding state: %w", err)
		}
		return models.TextReply(onboardingIntroText, models.Reply(onboardingConfirmPhrase, onboardingConfirmPhrase)), nil
	}

	switch state.CurrentStep {
	case models.StepOnboardingStart:
		// Advance only on an explicit confirmation; anything else re-issues
		// the instruction without moving.
		if message != onboardingConfirmPhrase && !strings.Contains(message, "알겠습니다") {
			return models.TextReply(onboardingConfirmRetryText), nil
		}
		if err := f.stateManager.SetCurrentStep(ctx, kakaoUserID, models.StepNameInput); err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to advance onboarding: %w", err)
		}
		return models.TextReply(questionName), nil

	case models.StepNameInput:
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyName, message, models.StepJobInput, questionJobTitle)

	case models.StepJobInput:
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyJobTitle, message, models.StepTotalYears, questionTotalYears)

	case models.StepTotalYears:
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyTotalYears, message, models.StepJobYears, questionJobYears)

	case models.StepJobYears:
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyJobYears, message, models.StepCareerGoal, questionCareerGoal)

	case models.StepCareerGoal:
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyCareerGoal, message, models.StepProjectName, questionProject)

	case models.StepProjectName:
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyProjectName, message, models.StepRecentWork, questionRecentWork)

	case models.StepRecentWork:
		question := fmt.Sprintf(questionJobMeaningFormat, state.StateData[models.DataKeyJobTitle])
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyRecentWork, message, models.StepJobMeaning, question)

	case models.StepJobMeaning:
		question := fmt.Sprintf(questionImportantThingFormat, state.StateData[models.DataKeyRecentWork])
		return f.storeAndAsk(ctx, kakaoUserID, models.DataKeyJobMeaning, message, models.StepImportantThing, question)

	case models.StepImportantThing:
		return f.complete(ctx, kakaoUserID, state, message)

	default:
		slog.Warn("OnboardingFlow unknown step, resetting state", "kakaoUserID", kakaoUserID, "step", state.CurrentStep)
		if err := f.stateManager.ResetState(ctx, kakaoUserID); err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to reset corrupted onboarding state: %w", err)
		}
		return models.TextReply(onboardingResetText, models.Reply("다시시작", TriggerOnboardingStart)), nil
	}
}

// storeAndAsk persists the answer, advances to the next step, and returns
// that step's question.
func (f *OnboardingFlow) storeAndAsk(ctx context.Context, kakaoUserID string, key models.DataKey, answer string, next models.StepType, question string) (models.SkillResponse, error) {
	if err := f.stateManager.StoreAnswerAndAdvance(ctx, kakaoUserID, key, answer, next); err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to store onboarding answer for %s: %w", key, err)
	}
	return models.TextReply(question), nil
}

// complete assembles the profile from the accumulated answers, marks
// onboarding done, and clears the state record.
func (f *OnboardingFlow) complete(ctx context.Context, kakaoUserID string, state *models.FlowState, lastAnswer string) (models.SkillResponse, error) {
	data := state.StateData

	user := models.User{
		KakaoUserID:         kakaoUserID,
		Name:                strings.TrimSpace(data[models.DataKeyName]),
		JobTitle:            ExtractJobTitle(data[models.DataKeyJobTitle]),
		TotalYears:          ExtractYears(data[models.DataKeyTotalYears]),
		JobYears:            ExtractYears(data[models.DataKeyJobYears]),
		CareerGoal:          ExtractCareerGoal(data[models.DataKeyCareerGoal]),
		ProjectName:         ExtractProjectName(data[models.DataKeyProjectName]),
		RecentWork:          ExtractRecentWork(data[models.DataKeyRecentWork]),
		JobMeaning:          ExtractJobMeaning(data[models.DataKeyJobMeaning]),
		ImportantThing:      strings.TrimSpace(lastAnswer),
		OnboardingCompleted: true,
		UpdatedAt:           time.Now(),
	}

	// Keep the attendance counter if a partial profile already exists.
	if existing, err := f.store.GetUser(kakaoUserID); err == nil && existing != nil {
		user.AttendanceCount = existing.AttendanceCount
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = user.UpdatedAt
	}

	if err := f.store.SaveUser(user); err != nil {
		slog.Error("OnboardingFlow failed to save user profile", "error", err, "kakaoUserID", kakaoUserID)
		// The state is untouched, so the user can retry with another message.
		return models.TextReply(onboardingSaveErrorText), nil
	}

	if err := f.stateManager.ResetState(ctx, kakaoUserID); err != nil {
		slog.Error("OnboardingFlow failed to clear state after completion", "error", err, "kakaoUserID", kakaoUserID)
	}

	slog.Info("OnboardingFlow onboarding completed", "kakaoUserID", kakaoUserID, "name", user.Name)
	return models.TextReply(onboardingCompleteText, models.Reply("완료", "완료")), nil
}
