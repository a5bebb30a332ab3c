package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/3min-career/careerbot/internal/models"
)

func TestDispatchStartsOnboardingForFreshUser(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "fresh-user"

	resp := f.dispatcher.Dispatch(ctx, userID, TriggerOnboardingStart)

	if got := resp.FirstOutputText(); got != onboardingIntroText {
		t.Errorf("reply = %q, want intro", got)
	}
	if qr := resp.Template.QuickReplies; len(qr) != 1 || qr[0].MessageText != onboardingConfirmPhrase {
		t.Errorf("quick replies = %+v, want single confirm", qr)
	}
	state, _ := f.store.GetFlowState(userID)
	if state == nil || state.CurrentStep != models.StepOnboardingStart {
		t.Errorf("state = %+v, want step %q", state, models.StepOnboardingStart)
	}
}

func TestDispatchRoutesByLiveState(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "routed-user"
	seedCompletedUser(t, f, userID, "민지")

	if err := f.stateManager.SetCurrentStep(ctx, userID, models.StepRecordContent); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	// An untriggered message goes to the controller owning the step, not
	// to the welcome branch.
	resp := f.dispatcher.Dispatch(ctx, userID, "기획안 작성")
	if got := resp.FirstOutputText(); got != questionMood {
		t.Errorf("reply = %q, want mood question", got)
	}
}

func TestDispatchUnknownStateRecovery(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "corrupted-user"

	if err := f.stateManager.SetCurrentStep(ctx, userID, models.StepType("legacy_step")); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	resp := f.dispatcher.Dispatch(ctx, userID, "아무 말")

	if state, _ := f.store.GetFlowState(userID); state != nil {
		t.Errorf("unknown state not deleted: %+v", state)
	}
	if got := resp.FirstOutputText(); got != welcomeNewUserText {
		t.Errorf("reply = %q, want new-user welcome", got)
	}
}

func TestDispatchWelcomeVariants(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()

	// New user.
	resp := f.dispatcher.Dispatch(ctx, "nobody", "안녕")
	if got := resp.FirstOutputText(); got != welcomeNewUserText {
		t.Errorf("new user welcome = %q", got)
	}

	// Incomplete onboarding.
	if err := f.store.SaveUser(models.User{KakaoUserID: "partial"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	resp = f.dispatcher.Dispatch(ctx, "partial", "안녕")
	if got := resp.FirstOutputText(); got != welcomeIncompleteText {
		t.Errorf("incomplete welcome = %q", got)
	}

	// Completed user gets name and attendance interpolated.
	seedCompletedUser(t, f, "done", "민지")
	for i := 0; i < 3; i++ {
		if _, err := f.store.IncrementAttendance("done"); err != nil {
			t.Fatalf("IncrementAttendance: %v", err)
		}
	}
	resp = f.dispatcher.Dispatch(ctx, "done", "아무 말")
	want := fmt.Sprintf(welcomeReturnFormat, "민지", 3)
	if got := resp.FirstOutputText(); got != want {
		t.Errorf("returning welcome = %q, want %q", got, want)
	}
}

func TestDispatchAITriggerPreemptsLiveState(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "switcher"
	seedCompletedUser(t, f, userID, "민지")

	if err := f.stateManager.SetCurrentStep(ctx, userID, models.StepRecordMood); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	resp := f.dispatcher.Dispatch(ctx, userID, TriggerAIStart)

	if got, want := resp.FirstOutputText(), fmt.Sprintf(aiGreetingFormat, "민지"); got != want {
		t.Errorf("reply = %q, want greeting %q", got, want)
	}
	state, _ := f.store.GetFlowState(userID)
	if state == nil || state.CurrentStep != models.StepAIConversation {
		t.Errorf("state = %+v, want conversation step", state)
	}
}

func TestDispatchOnboardingTriggerForCompletedUser(t *testing.T) {
	f := newTestFlows()
	ctx := context.Background()
	userID := "veteran"
	seedCompletedUser(t, f, userID, "민지")

	// Retriggering onboarding after completion drops into the AI track.
	resp := f.dispatcher.Dispatch(ctx, userID, TriggerOnboardingStart)
	if got, want := resp.FirstOutputText(), fmt.Sprintf(aiGreetingFormat, "민지"); got != want {
		t.Errorf("reply = %q, want greeting %q", got, want)
	}
}

// failingStateManager errors on every read so the dispatcher's failure
// conversion can be observed.
type failingStateManager struct {
	StateManager
}

func (failingStateManager) GetState(context.Context, string) (*models.FlowState, error) {
	return nil, errors.New("connection refused")
}

func (failingStateManager) ResetState(context.Context, string) error {
	return errors.New("connection refused")
}

func TestDispatchConvertsFailuresToApology(t *testing.T) {
	f := newTestFlows()
	d := NewDispatcher(failingStateManager{}, f.store, f.onboarding, f.record, f.conversation)

	resp := d.Dispatch(context.Background(), "anyone", "안녕")
	if got := resp.FirstOutputText(); got != ApologyText {
		t.Errorf("reply = %q, want apology", got)
	}
}
