// Package genai provides the completion client for AI conversations using the OpenAI API.
//
// The client never propagates failures to callers: timeouts and API errors
// degrade to fixed apology strings, and a missing API key degrades to a
// deterministic mocked-response mode so the service can start without
// credentials.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Token/length budget constants. History and message truncation keep
// completion requests small and responses fast.
const (
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 4 * time.Second
	// MaxHistoryMessages is the number of most recent transcript entries sent upstream.
	MaxHistoryMessages = 6
	// MaxHistoryMessageLength caps each transcript entry sent upstream.
	MaxHistoryMessageLength = 200
	// MaxUserMessageLength caps the new user message sent upstream.
	MaxUserMessageLength = 300
	// MaxCompletionTokens caps the generated reply length.
	MaxCompletionTokens = 300
	// cacheKeyPrefixLength is how much of the message participates in the cache key.
	cacheKeyPrefixLength = 100
)

// Fixed user-visible fallback strings.
const (
	// TimeoutFallback is returned when the completion request exceeds its timeout.
	TimeoutFallback = "죄송합니다. 응답이 너무 늦어졌습니다. 다시 시도해주세요."
	// ErrorFallback is returned on any other completion failure.
	ErrorFallback = "죄송합니다. AI 응답을 생성하는 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// DefaultSystemPrompt is used when no prompt file is configured or readable.
const DefaultSystemPrompt = "3분커리어 AI Agent. 친근하게 대화하며 업무 경험을 정리하고 강화. 한국어 사용. 공감 표현과 구체적 질문으로 더 나은 표현 도출. 응답은 공감→질문→정리 순서."

// Message is a single transcript entry passed to the completion client.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Transcript entry roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// completionService defines the minimal interface for chat completions,
// so tests can substitute a stub for the OpenAI client.
type completionService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// openaiCompletionService adapts the real OpenAI client to completionService.
type openaiCompletionService struct {
	client openai.Client
}

func (s openaiCompletionService) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return s.client.Chat.Completions.New(ctx, params)
}

// Opts holds configuration for the completion client.
type Opts struct {
	APIKey           string
	Model            string
	Timeout          time.Duration
	SystemPromptFile string
	Clock            func() time.Time
}

// Option configures completion client creation.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key. An empty key selects mock mode.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Opts) { o.Timeout = timeout }
}

// WithSystemPromptFile sets the file the system prompt is loaded from.
func WithSystemPromptFile(path string) Option {
	return func(o *Opts) { o.SystemPromptFile = path }
}

// WithClock injects a clock for the response cache (used by tests).
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Clock = now }
}

// Client issues completion requests with caching, truncation, and fallbacks.
type Client struct {
	chat         completionService // nil in mock mode
	model        string
	timeout      time.Duration
	systemPrompt string
	cache        *ResponseCache
}

// NewClient initializes a completion client from options. A missing API key
// is not an error: the client runs in deterministic mock mode instead.
func NewClient(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	c := &Client{
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		systemPrompt: loadSystemPrompt(cfg.SystemPromptFile),
		cache:        NewResponseCache(DefaultCacheTTL, DefaultMaxCacheEntries, cfg.Clock),
	}

	if cfg.APIKey == "" {
		slog.Warn("genai.NewClient: no API key configured, using mocked responses")
		return c
	}

	c.chat = openaiCompletionService{client: openai.NewClient(option.WithAPIKey(cfg.APIKey))}
	slog.Debug("genai.NewClient: OpenAI client initialized", "model", c.model, "timeout", c.timeout)
	return c
}

// MockMode reports whether the client answers from canned responses.
func (c *Client) MockMode() bool { return c.chat == nil }

// Reply generates an assistant reply for the message given the transcript.
// It never returns an error: failures degrade to fixed fallback strings.
func (c *Client) Reply(ctx context.Context, message string, history []Message) string {
	key := cacheKey(message, len(history))
	if cached, ok := c.cache.Get(key); ok {
		slog.Debug("genai.Reply: cache hit", "key_prefix_len", len(key))
		return cached
	}

	var reply string
	if c.chat == nil {
		reply = mockReply(message)
	} else {
		generated, err := c.generate(ctx, message, history)
		if err != nil {
			slog.Error("genai.Reply: completion failed", "error", err)
			if errors.Is(err, context.DeadlineExceeded) {
				return TimeoutFallback
			}
			return ErrorFallback
		}
		reply = generated
	}

	c.cache.Put(key, reply)
	return reply
}

// generate issues one bounded completion request.
func (c *Client) generate(ctx context.Context, message string, history []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(c.systemPrompt),
	}
	for _, msg := range truncateHistory(history) {
		switch msg.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(truncate(message, MaxUserMessageLength)))

	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   openai.Int(MaxCompletionTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", context.DeadlineExceeded
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// truncateHistory keeps the most recent entries and caps each entry's length.
func truncateHistory(history []Message) []Message {
	if len(history) > MaxHistoryMessages {
		history = history[len(history)-MaxHistoryMessages:]
	}
	out := make([]Message, 0, len(history))
	for _, msg := range history {
		out = append(out, Message{Role: msg.Role, Content: truncate(msg.Content, MaxHistoryMessageLength)})
	}
	return out
}

// truncate caps s at max runes, appending an ellipsis marker when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// cacheKey builds the response cache key from a prefix of the message and
// the transcript length.
func cacheKey(message string, historyLen int) string {
	runes := []rune(message)
	if len(runes) > cacheKeyPrefixLength {
		runes = runes[:cacheKeyPrefixLength]
	}
	return fmt.Sprintf("%s_%d", string(runes), historyLen)
}

// loadSystemPrompt reads the prompt file, falling back to the built-in prompt.
func loadSystemPrompt(path string) string {
	if path == "" {
		return DefaultSystemPrompt
	}
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("genai.loadSystemPrompt: failed to read prompt file, using fallback", "file", path, "error", err)
		return DefaultSystemPrompt
	}
	prompt := strings.TrimSpace(string(content))
	if prompt == "" {
		slog.Warn("genai.loadSystemPrompt: prompt file empty, using fallback", "file", path)
		return DefaultSystemPrompt
	}
	slog.Info("genai.loadSystemPrompt: system prompt loaded", "file", path, "length", len(prompt))
	return prompt
}
