package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

func seedCompletedUser(t *testing.T, f *testFlows, userID, name string) {
	t.Helper()
	err := f.store.SaveUser(models.User{
		KakaoUserID:         userID,
		Name:                name,
		JobTitle:            "서비스 기획자",
		OnboardingCompleted: true,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestRecordRequiresCompletedOnboarding(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()

	// No profile at all.
	resp, err := f.record.ProcessResponse(ctx, "stranger", TriggerRecordStart)
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if got := resp.FirstOutputText(); got != recordNeedOnboardingText {
		t.Errorf("reply = %q, want %q", got, recordNeedOnboardingText)
	}

	// Profile exists but onboarding is incomplete.
	if err := f.store.SaveUser(models.User{KakaoUserID: "halfway"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	resp, err = f.record.ProcessResponse(ctx, "halfway", TriggerRecordStart)
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if got := resp.FirstOutputText(); got != recordNeedOnboardingText {
		t.Errorf("reply = %q, want %q", got, recordNeedOnboardingText)
	}
	if state, _ := f.store.GetFlowState("halfway"); state != nil {
		t.Errorf("state created despite gate: %+v", state)
	}
}

func TestRecordThreeStepSequence(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "kakao-user-r1"
	seedCompletedUser(t, f, userID, "민지")

	resp, err := f.record.ProcessResponse(ctx, userID, TriggerRecordStart)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := resp.FirstOutputText(); got != questionWorkContent {
		t.Errorf("content question = %q, want %q", got, questionWorkContent)
	}

	resp, err = f.record.ProcessResponse(ctx, userID, "기획안 초안 작성")
	if err != nil {
		t.Fatalf("content answer: %v", err)
	}
	if got := resp.FirstOutputText(); got != questionMood {
		t.Errorf("mood question = %q, want %q", got, questionMood)
	}
	if len(resp.Template.QuickReplies) != len(moodOptions) {
		t.Errorf("mood quick replies = %d, want %d", len(resp.Template.QuickReplies), len(moodOptions))
	}

	resp, err = f.record.ProcessResponse(ctx, userID, "좋음 😊")
	if err != nil {
		t.Fatalf("mood answer: %v", err)
	}
	if got := resp.FirstOutputText(); got != questionAchievement {
		t.Errorf("achievement question = %q, want %q", got, questionAchievement)
	}

	resp, err = f.record.ProcessResponse(ctx, userID, "초안을 하루 만에 끝냄")
	if err != nil {
		t.Fatalf("achievement answer: %v", err)
	}
	if want := fmt.Sprintf(recordCompleteFormat, 1); resp.FirstOutputText() != want {
		t.Errorf("completion reply = %q, want %q", resp.FirstOutputText(), want)
	}

	// Attendance bumped by exactly one and the state is gone.
	user, _ := f.store.GetUser(userID)
	if user.AttendanceCount != 1 {
		t.Errorf("AttendanceCount = %d, want 1", user.AttendanceCount)
	}
	if state, _ := f.store.GetFlowState(userID); state != nil {
		t.Errorf("state not cleared: %+v", state)
	}

	rec, err := f.store.GetDailyRecordByDate(userID, "2026-03-14")
	if err != nil || rec == nil {
		t.Fatalf("daily record missing: %v", err)
	}
	if rec.WorkContent != "기획안 초안 작성" || rec.Mood != "좋음 😊" || rec.Achievement != "초안을 하루 만에 끝냄" {
		t.Errorf("record fields = %+v", rec)
	}
}

func TestRecordRefusesSecondRecordSameDay(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "kakao-user-r2"
	seedCompletedUser(t, f, userID, "민지")

	for _, msg := range []string{TriggerRecordStart, "업무", "보통 😐", "성취"} {
		if _, err := f.record.ProcessResponse(ctx, userID, msg); err != nil {
			t.Fatalf("first record (%q): %v", msg, err)
		}
	}

	resp, err := f.record.ProcessResponse(ctx, userID, TriggerRecordStart)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if got := resp.FirstOutputText(); got != recordAlreadyDoneText {
		t.Errorf("reply = %q, want %q", got, recordAlreadyDoneText)
	}
	if state, _ := f.store.GetFlowState(userID); state != nil {
		t.Errorf("state created on refused second record: %+v", state)
	}

	records, err := f.store.ListDailyRecords(userID, 10)
	if err != nil {
		t.Fatalf("ListDailyRecords: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("record count = %d, want 1", len(records))
	}
	user, _ := f.store.GetUser(userID)
	if user.AttendanceCount != 1 {
		t.Errorf("AttendanceCount = %d, want 1", user.AttendanceCount)
	}
}

func TestRecordSelfInitiatesWithoutTrigger(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "kakao-user-r3"
	seedCompletedUser(t, f, userID, "민지")

	// Invoked with no live state and no start trigger it still opens the
	// content step instead of erroring.
	resp, err := f.record.ProcessResponse(ctx, userID, "안녕하세요")
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if got := resp.FirstOutputText(); got != questionWorkContent {
		t.Errorf("reply = %q, want content question", got)
	}
}

func TestRecordSaveFailureSkipsAttendance(t *testing.T) {
	ctx := context.Background()
	userID := "kakao-user-9"

	inner := store.NewInMemoryStore()
	faulty := &faultyStore{Store: inner, failAddDailyRecord: true}
	sm := NewStoreBasedStateManager(faulty)
	record := NewRecordFlow(sm, faulty)
	record.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	err := inner.SaveUser(models.User{
		KakaoUserID:         userID,
		Name:                "민지",
		OnboardingCompleted: true,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	for _, message := range []string{TriggerRecordStart, "기획안 작성", "좋음 😊"} {
		if _, err := record.ProcessResponse(ctx, userID, message); err != nil {
			t.Fatalf("ProcessResponse(%q): %v", message, err)
		}
	}

	resp, err := record.ProcessResponse(ctx, userID, "일정 조율을 잘 마무리했어요")
	if err != nil {
		t.Fatalf("final step: %v", err)
	}
	if got := resp.FirstOutputText(); got != recordSaveErrorText {
		t.Errorf("reply = %q, want %q", got, recordSaveErrorText)
	}

	user, err := inner.GetUser(userID)
	if err != nil || user == nil {
		t.Fatalf("user lookup: %v", err)
	}
	if user.AttendanceCount != 0 {
		t.Errorf("attendance = %d, want 0 after failed save", user.AttendanceCount)
	}
	if rec, _ := inner.GetDailyRecordByDate(userID, "2026-03-14"); rec != nil {
		t.Errorf("record created despite failed save: %+v", rec)
	}
}
