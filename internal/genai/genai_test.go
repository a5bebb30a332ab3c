package genai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
)

// stubCompletionService counts calls and returns a fixed completion, an
// error, or blocks until the context deadline.
type stubCompletionService struct {
	reply string
	err   error
	delay time.Duration
	calls int
}

func (s *stubCompletionService) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func newTestClient(t *testing.T, stub *stubCompletionService, opts ...Option) *Client {
	t.Helper()
	c := NewClient(opts...)
	c.chat = stub
	return c
}

func TestReplyCachesWithinTTL(t *testing.T) {
	stub := &stubCompletionService{reply: "완성된 답변"}
	c := newTestClient(t, stub, WithClock(newFakeClock().Now))

	history := []Message{{Role: RoleAssistant, Content: "인사"}}

	first := c.Reply(context.Background(), "오늘 기획안을 썼어요", history)
	second := c.Reply(context.Background(), "오늘 기획안을 썼어요", history)

	if first != "완성된 답변" || second != first {
		t.Errorf("replies = %q, %q, want identical cached text", first, second)
	}
	if stub.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", stub.calls)
	}
}

func TestReplyCacheKeyUsesHistoryLength(t *testing.T) {
	stub := &stubCompletionService{reply: "답변"}
	c := newTestClient(t, stub, WithClock(newFakeClock().Now))

	c.Reply(context.Background(), "같은 메시지", nil)
	c.Reply(context.Background(), "같은 메시지", []Message{{Role: RoleUser, Content: "hi"}})

	// A different transcript length is a different conversation position.
	if stub.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", stub.calls)
	}
}

func TestReplyTimeoutFallback(t *testing.T) {
	stub := &stubCompletionService{reply: "늦은 답변", delay: 10 * time.Second}
	c := newTestClient(t, stub, WithTimeout(50*time.Millisecond))

	start := time.Now()
	got := c.Reply(context.Background(), "느린 질문", nil)
	elapsed := time.Since(start)

	if got != TimeoutFallback {
		t.Errorf("reply = %q, want timeout fallback", got)
	}
	if elapsed > 2*time.Second {
		t.Errorf("fallback took %v, want well under the upstream delay", elapsed)
	}
}

func TestReplyErrorFallbackNotCached(t *testing.T) {
	stub := &stubCompletionService{err: errors.New("rate limited")}
	c := newTestClient(t, stub)

	if got := c.Reply(context.Background(), "질문", nil); got != ErrorFallback {
		t.Errorf("reply = %q, want error fallback", got)
	}

	// The fallback must not be cached; recovery gets a real attempt.
	stub.err = nil
	stub.reply = "이제 됩니다"
	if got := c.Reply(context.Background(), "질문", nil); got != "이제 됩니다" {
		t.Errorf("reply after recovery = %q, want fresh completion", got)
	}
	if stub.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", stub.calls)
	}
}

func TestMockModeDeterministic(t *testing.T) {
	c := NewClient()
	if !c.MockMode() {
		t.Fatal("client without API key should be in mock mode")
	}

	first := c.Reply(context.Background(), "무언가 궁금해요", nil)
	second := c.Reply(context.Background(), "무언가 궁금해요", nil)
	if first != second {
		t.Errorf("mock replies differ: %q vs %q", first, second)
	}

	// Keyword rules take precedence over the length-indexed fallback.
	got := c.Reply(context.Background(), "신규 프로젝트 개발을 시작했어요", nil)
	if !strings.Contains(got, "개발 프로젝트") {
		t.Errorf("keyword reply = %q, want project-development variant", got)
	}
}

func TestTruncateHistory(t *testing.T) {
	long := strings.Repeat("가", MaxHistoryMessageLength+50)
	history := make([]Message, MaxHistoryMessages+4)
	for i := range history {
		history[i] = Message{Role: RoleUser, Content: long}
	}
	history[len(history)-1].Content = "마지막"

	out := truncateHistory(history)
	if len(out) != MaxHistoryMessages {
		t.Fatalf("len = %d, want %d", len(out), MaxHistoryMessages)
	}
	if out[len(out)-1].Content != "마지막" {
		t.Error("truncation did not keep the most recent entries")
	}
	if got := len([]rune(out[0].Content)); got != MaxHistoryMessageLength+3 {
		t.Errorf("entry length = %d runes, want capped at %d plus ellipsis", got, MaxHistoryMessageLength)
	}
}

func TestCacheKeyPrefix(t *testing.T) {
	prefix := strings.Repeat("가", cacheKeyPrefixLength)
	a := cacheKey(prefix+" 그리고 더", 3)
	b := cacheKey(prefix+" 전혀 다른 꼬리", 3)
	if a != b {
		t.Error("keys with identical prefixes and history length should collide")
	}
	if cacheKey("짧음", 3) == cacheKey("짧음", 4) {
		t.Error("history length must distinguish keys")
	}
}

func TestLoadSystemPrompt(t *testing.T) {
	if got := loadSystemPrompt(""); got != DefaultSystemPrompt {
		t.Errorf("empty path = %q, want default", got)
	}
	if got := loadSystemPrompt("/nonexistent/prompt.txt"); got != DefaultSystemPrompt {
		t.Errorf("missing file = %q, want default", got)
	}

	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("  커스텀 프롬프트\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := loadSystemPrompt(path); got != "커스텀 프롬프트" {
		t.Errorf("file prompt = %q, want trimmed contents", got)
	}
}
