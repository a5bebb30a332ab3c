// Package models defines the core data structures for careerbot.
//
// It includes the Kakao skill request/response envelope, persisted records
// (users, conversation states, daily records), and shared API response types.
package models

import (
	"errors"
	"time"
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserID    = errors.New("user id cannot be empty")
	ErrEmptyUtterance = errors.New("utterance cannot be empty")
	ErrEmptyMessage   = errors.New("message cannot be empty")
)

// SkillRequest is the inbound Kakao skill webhook payload.
//
// Only the fields the dispatcher needs are modeled; the action name is
// informational and never drives routing.
type SkillRequest struct {
	UserRequest SkillUserRequest `json:"userRequest"`
	Action      SkillAction      `json:"action"`
}

// SkillUserRequest carries the caller identity and the raw utterance.
type SkillUserRequest struct {
	User      SkillUser `json:"user"`
	Utterance string    `json:"utterance"`
}

// SkillUser identifies the external user.
type SkillUser struct {
	ID string `json:"id"`
}

// SkillAction is the informational action block of a skill request.
type SkillAction struct {
	Name string `json:"name"`
}

// Validate checks that the webhook payload carries the fields routing needs.
// Utterance length is not checked here; long messages are truncated where
// they matter (the completion request), never refused.
func (r *SkillRequest) Validate() error {
	if r.UserRequest.User.ID == "" {
		return ErrEmptyUserID
	}
	if r.UserRequest.Utterance == "" {
		return ErrEmptyUtterance
	}
	return nil
}

// SkillResponse is the fixed Kakao 2.0 response envelope.
type SkillResponse struct {
	Version  string        `json:"version"`
	Template SkillTemplate `json:"template"`
}

// SkillTemplate holds the text outputs and optional quick replies.
type SkillTemplate struct {
	Outputs      []SkillOutput `json:"outputs"`
	QuickReplies []QuickReply  `json:"quickReplies,omitempty"`
}

// SkillOutput wraps a single text output.
type SkillOutput struct {
	SimpleText SimpleText `json:"simpleText"`
}

// SimpleText is a plain text output.
type SimpleText struct {
	Text string `json:"text"`
}

// QuickReply is a suggestion chip: tapping it sends MessageText verbatim.
type QuickReply struct {
	Label       string `json:"label"`
	Action      string `json:"action"`
	MessageText string `json:"messageText"`
}

// QuickReplyActionMessage is the only quick reply action type this bot emits.
const QuickReplyActionMessage = "message"

// TextReply builds a response envelope with a single text output and optional quick replies.
func TextReply(text string, quickReplies ...QuickReply) SkillResponse {
	return SkillResponse{
		Version: "2.0",
		Template: SkillTemplate{
			Outputs:      []SkillOutput{{SimpleText: SimpleText{Text: text}}},
			QuickReplies: quickReplies,
		},
	}
}

// Reply builds a quick reply chip that sends messageText when tapped.
func Reply(label, messageText string) QuickReply {
	return QuickReply{Label: label, Action: QuickReplyActionMessage, MessageText: messageText}
}

// FirstOutputText returns the text of the first output, or empty if none.
// Mostly useful in tests and logging.
func (r SkillResponse) FirstOutputText() string {
	if len(r.Template.Outputs) == 0 {
		return ""
	}
	return r.Template.Outputs[0].SimpleText.Text
}

// User is the persisted profile for one external user, keyed by the stable
// Kakao user id. Created at the final onboarding step; afterwards only the
// attendance counter changes.
type User struct {
	KakaoUserID         string    `json:"kakao_user_id"`
	Name                string    `json:"name,omitempty"`
	JobTitle            string    `json:"job_title,omitempty"`
	TotalYears          string    `json:"total_years,omitempty"`
	JobYears            string    `json:"job_years,omitempty"`
	CareerGoal          string    `json:"career_goal,omitempty"`
	ProjectName         string    `json:"project_name,omitempty"`
	RecentWork          string    `json:"recent_work,omitempty"`
	JobMeaning          string    `json:"job_meaning,omitempty"`
	ImportantThing      string    `json:"important_thing,omitempty"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	AttendanceCount     int       `json:"attendance_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FlowState is the single live conversation-state record for a user.
// Zero or one exists per Kakao user id; its step label decides which
// controller owns the next inbound message.
type FlowState struct {
	KakaoUserID string             `json:"kakao_user_id"`
	CurrentStep StepType           `json:"current_step"`
	StateData   map[DataKey]string `json:"state_data,omitempty"` // partially collected answers or serialized transcript
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DailyRecord is one work record per user per calendar day.
// Append-only from this system's point of view.
type DailyRecord struct {
	ID          string    `json:"id"`
	KakaoUserID string    `json:"kakao_user_id"`
	RecordDate  string    `json:"record_date"` // YYYY-MM-DD
	WorkContent string    `json:"work_content"`
	Mood        string    `json:"mood"`
	Achievement string    `json:"achievement"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordDateLayout is the calendar-date format used for daily record comparison.
const RecordDateLayout = "2006-01-02"

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// ChatRequest is the payload of the local chat-test endpoint.
type ChatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Validate checks the chat-test payload. Unlike the webhook, this endpoint
// rejects incomplete requests with a client error.
func (r *ChatRequest) Validate() error {
	if r.UserID == "" {
		return ErrEmptyUserID
	}
	if r.Message == "" {
		return ErrEmptyMessage
	}
	return nil
}

// StatusResponse is the health probe payload.
type StatusResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}
