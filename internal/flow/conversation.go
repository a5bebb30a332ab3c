package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/3min-career/careerbot/internal/genai"
	"github.com/3min-career/careerbot/internal/models"
	"github.com/3min-career/careerbot/internal/store"
)

// completionGenerator is the surface of the completion client the
// conversation flow needs. Reply never fails; errors become fallback text
// inside the client.
type completionGenerator interface {
	Reply(ctx context.Context, message string, history []genai.Message) string
}

// ConversationFlow runs the open-ended AI chat track. The webhook platform
// enforces a tight response deadline, so the synchronous reply is always a
// greeting or a canned filler line; the real completion is fetched by a
// background task that appends the exchange to the stored transcript. The
// caller sees the true answer only through that transcript on a later turn.
type ConversationFlow struct {
	stateManager StateManager
	store        store.Store
	generator    completionGenerator
	runner       Runner

	// pick selects the filler line; injectable for deterministic tests.
	pick func(n int) int
}

// NewConversationFlow creates an AI-conversation controller.
func NewConversationFlow(sm StateManager, st store.Store, gen completionGenerator, runner Runner) *ConversationFlow {
	return &ConversationFlow{
		stateManager: sm,
		store:        st,
		generator:    gen,
		runner:       runner,
		pick:         rand.IntN,
	}
}

// ProcessResponse handles one inbound message for the AI track and returns
// the immediate reply.
func (f *ConversationFlow) ProcessResponse(ctx context.Context, kakaoUserID, message string) (models.SkillResponse, error) {
	state, err := f.stateManager.GetState(ctx, kakaoUserID)
	if err != nil {
		return models.SkillResponse{}, fmt.Errorf("failed to get conversation state: %w", err)
	}

	history := f.transcript(state)
	fresh := state == nil || !models.IsAIStep(state.CurrentStep) || len(history) == 0

	var reply string
	if fresh {
		greeting := fmt.Sprintf(aiGreetingFormat, f.userName(kakaoUserID))
		if err := f.initConversation(ctx, kakaoUserID, greeting); err != nil {
			return models.SkillResponse{}, err
		}
		reply = greeting
	} else {
		reply = thinkingReplies[f.pick(len(thinkingReplies))]
	}

	// The completion is fetched after the response has gone out. The task's
	// failure only means the transcript misses this exchange.
	f.runner.Submit("ai-completion", func(taskCtx context.Context) {
		f.fetchCompletion(taskCtx, kakaoUserID, message)
	})

	return models.TextReply(reply), nil
}

// initConversation sets the conversation step and seeds the transcript with
// the greeting so the background task has context to build on.
func (f *ConversationFlow) initConversation(ctx context.Context, kakaoUserID, greeting string) error {
	seed := []genai.Message{{Role: genai.RoleAssistant, Content: greeting}}
	encoded, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("failed to encode conversation transcript: %w", err)
	}

	if err := f.stateManager.SetCurrentStep(ctx, kakaoUserID, models.StepAIConversation); err != nil {
		return fmt.Errorf("failed to set conversation step: %w", err)
	}
	if err := f.stateManager.SetStateData(ctx, kakaoUserID, models.DataKeyConversationHistory, string(encoded)); err != nil {
		return fmt.Errorf("failed to seed conversation transcript: %w", err)
	}
	if err := f.stateManager.SetStateData(ctx, kakaoUserID, models.DataKeyCurrentTopic, "3분커리어"); err != nil {
		return fmt.Errorf("failed to set conversation topic: %w", err)
	}
	return nil
}

// fetchCompletion calls the completion client with the stored transcript and
// persists the new {user, assistant} pair. Errors are logged, never surfaced.
func (f *ConversationFlow) fetchCompletion(ctx context.Context, kakaoUserID, message string) {
	state, err := f.stateManager.GetState(ctx, kakaoUserID)
	if err != nil {
		slog.Error("ConversationFlow failed to load state for completion", "error", err, "kakaoUserID", kakaoUserID)
		return
	}
	if state == nil || !models.IsAIStep(state.CurrentStep) {
		// The user moved to another track while we were scheduled.
		slog.Debug("ConversationFlow skipping completion, conversation no longer active", "kakaoUserID", kakaoUserID)
		return
	}

	history := f.transcript(state)
	answer := f.generator.Reply(ctx, message, history)

	updated := append(history,
		genai.Message{Role: genai.RoleUser, Content: message},
		genai.Message{Role: genai.RoleAssistant, Content: answer},
	)
	encoded, err := json.Marshal(updated)
	if err != nil {
		slog.Error("ConversationFlow failed to encode transcript", "error", err, "kakaoUserID", kakaoUserID)
		return
	}

	if err := f.stateManager.SetStateData(ctx, kakaoUserID, models.DataKeyConversationHistory, string(encoded)); err != nil {
		slog.Error("ConversationFlow failed to persist transcript", "error", err, "kakaoUserID", kakaoUserID)
		return
	}

	slog.Debug("ConversationFlow transcript updated", "kakaoUserID", kakaoUserID, "entries", len(updated))
}

// transcript decodes the stored conversation history. A corrupt or missing
// value yields an empty transcript rather than an error.
func (f *ConversationFlow) transcript(state *models.FlowState) []genai.Message {
	if state == nil {
		return nil
	}
	raw := state.StateData[models.DataKeyConversationHistory]
	if raw == "" {
		return nil
	}
	var history []genai.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		slog.Warn("ConversationFlow discarding corrupt transcript", "error", err, "kakaoUserID", state.KakaoUserID)
		return nil
	}
	return history
}

func (f *ConversationFlow) userName(kakaoUserID string) string {
	user, err := f.store.GetUser(kakaoUserID)
	if err != nil || user == nil || user.Name == "" {
		return aiDefaultUserName
	}
	return user.Name
}
