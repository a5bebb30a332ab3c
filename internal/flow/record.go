package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

// moodOptions are the suggested labels for the mood step. Free-text answers
// are accepted too; the chips are a convenience, not a constraint.
var moodOptions = []string{"좋음 😊", "보통 😐", "힘듦 😩"}

// RecordFlow captures one daily work record in three steps (content, mood,
// achievement), then appends the record and bumps the attendance counter.
// One record per calendar day; a second attempt the same day is refused
// before any state is created.
type RecordFlow struct {
	stateManager StateManager
	store        store.Store

	// now is injectable so tests can pin the calendar date.
	now func() time.Time
}

// NewRecordFlow creates a work-record controller using the wall clock.
func NewRecordFlow(sm StateManager, st store.Store) *RecordFlow {
	return &RecordFlow{stateManager: sm, store: st, now: time.Now}
}

// ProcessResponse handles one inbound message for the work-record track.
// Invoked with no live state it self-initiates the content step, so both the
// explicit start trigger and a resumed session land in the same place.
func (f *RecordFlow) ProcessResponse(ctx context.Context, kakaoUserID, message string) (models.SkillResponse, error) {
	user, err := f.store.GetUser(kakaoUserID)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to get user for record flow: %w", err)
	}
	if user == nil || !user.OnboardingCompleted {
		return models.TextReply(recordNeedOnboardingText, models.Reply("온보딩 시작", TriggerOnboardingStart)), nil
	}

	state, err := f.stateManager.GetState(ctx, kakaoUserID)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to get record state: %w", err)
	}

	if state == nil || !models.IsRecordStep(state.CurrentStep) {
		return f.begin(ctx, kakaoUserID)
	}

	switch state.CurrentStep {
	case models.StepRecordContent:
		if err := f.stateManager.StoreAnswerAndAdvance(ctx, kakaoUserID, models.DataKeyWorkContent, message, models.StepRecordMood); err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to store work content: %w", err)
		}
		return models.TextReply(questionMood, moodQuickReplies()...), nil

	case models.StepRecordMood:
		if err := f.stateManager.StoreAnswerAndAdvance(ctx, kakaoUserID, models.DataKeyMood, message, models.StepRecordAchievement); err != nil {
			return models.SkillResponse{}, fmt.Errorf("failed to store mood: %w", err)
		}
		return models.TextReply(questionAchievement), nil

	case models.StepRecordAchievement:
		return f.complete(ctx, kakaoUserID, state, message)

	default:
		// Unreachable given the IsRecordStep guard above.
		return f.begin(ctx, kakaoUserID)
	}
}

// begin opens the record machine unless today's record already exists.
func (f *RecordFlow) begin(ctx context.Context, kakaoUserID string) (models.SkillResponse, error) {
	today := f.now().Format(models.RecordDateLayout)

	existing, err := f.store.GetDailyRecordByDate(kakaoUserID, today)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to check today's record: %w", err)
	}
	if existing != nil {
		return models.TextReply(recordAlreadyDoneText), nil
	}

	if err := f.stateManager.SetCurrentStep(ctx, kakaoUserID, models.StepRecordContent); err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to initialize record state: %w", err)
	}
	return models.TextReply(questionWorkContent), nil
}

// complete persists the daily record, increments attendance, and clears the
// state record.
func (f *RecordFlow) complete(ctx context.Context, kakaoUserID string, state *models.FlowState, achievement string) (models.SkillResponse, error) {
	record := models.DailyRecord{
		ID:          uuid.NewString(),
		KakaoUserID: kakaoUserID,
		RecordDate:  f.now().Format(models.RecordDateLayout),
		WorkContent: state.StateData[models.DataKeyWorkContent],
		Mood:        state.StateData[models.DataKeyMood],
		Achievement: achievement,
		CreatedAt:   f.now(),
	}

	if err := f.store.AddDailyRecord(record); err != nil {
		if errors.Is(err, store.ErrDuplicateRecordDate) {
			// A concurrent request beat us to today's record.
			if resetErr := f.stateManager.ResetState(ctx, kakaoUserID); resetErr != nil {
				slog.Error("RecordFlow failed to reset state after duplicate record", "error", resetErr, "kakaoUserID", kakaoUserID)
			}
			return models.TextReply(recordAlreadyDoneText), nil
		}
		slog.Error("RecordFlow failed to save daily record", "error", err, "kakaoUserID", kakaoUserID)
		return models.TextReply(recordSaveErrorText), nil
	}

	count, err := f.store.IncrementAttendance(kakaoUserID)
	if err != nil {
		slog.Error("RecordFlow failed to increment attendance", "error", err, "kakaoUserID", kakaoUserID)
	}

	if err := f.stateManager.ResetState(ctx, kakaoUserID); err != nil {
		slog.Error("RecordFlow failed to clear state after completion", "error", err, "kakaoUserID", kakaoUserID)
	}

	slog.Info("RecordFlow daily record saved", "kakaoUserID", kakaoUserID, "date", record.RecordDate, "attendance", count)
	return models.TextReply(fmt.Sprintf(recordCompleteFormat, count)), nil
}

func moodQuickReplies() []models.QuickReply {
	replies := make([]models.QuickReply, 0, len(moodOptions))
	for _, label := range moodOptions {
		replies = append(replies, models.Reply(label, label))
	}
	return replies
}
