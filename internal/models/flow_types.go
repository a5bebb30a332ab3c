// Package models defines flow type definitions to avoid circular imports.
package models

// StepType identifies which controller and which question currently owns a user.
type StepType string

// DataKey represents a key for storing step-specific data in the accumulator.
type DataKey string

// Onboarding step constants, in order.
const (
	StepOnboardingStart StepType = "onboarding_start"
	StepNameInput       StepType = "name_input"
	StepJobInput        StepType = "job_input"
	StepTotalYears      StepType = "total_years"
	StepJobYears        StepType = "job_years"
	StepCareerGoal      StepType = "career_goal"
	StepProjectName     StepType = "project_name"
	StepRecentWork      StepType = "recent_work"
	StepJobMeaning      StepType = "job_meaning"
	StepImportantThing  StepType = "important_thing"
)

// Work-record step constants, in order.
const (
	StepRecordContent     StepType = "record_content"
	StepRecordMood        StepType = "record_mood"
	StepRecordAchievement StepType = "record_achievement"
)

// AI conversation step constants.
const (
	StepAIIntro        StepType = "ai_intro"
	StepAIConversation StepType = "ai_conversation"
)

// onboardingSteps is the closed set of steps the onboarding controller owns.
var onboardingSteps = map[StepType]bool{
	StepOnboardingStart: true,
	StepNameInput:       true,
	StepJobInput:        true,
	StepTotalYears:      true,
	StepJobYears:        true,
	StepCareerGoal:      true,
	StepProjectName:     true,
	StepRecentWork:      true,
	StepJobMeaning:      true,
	StepImportantThing:  true,
}

// recordSteps is the closed set of steps the work-record controller owns.
var recordSteps = map[StepType]bool{
	StepRecordContent:     true,
	StepRecordMood:        true,
	StepRecordAchievement: true,
}

// IsOnboardingStep reports whether the step belongs to the onboarding controller.
func IsOnboardingStep(s StepType) bool { return onboardingSteps[s] }

// IsRecordStep reports whether the step belongs to the work-record controller.
func IsRecordStep(s StepType) bool { return recordSteps[s] }

// IsAIStep reports whether the step belongs to the AI conversation controller.
func IsAIStep(s StepType) bool { return s == StepAIIntro || s == StepAIConversation }

// IsKnownStep reports whether any controller owns the step. A persisted state
// with an unknown step is treated as corruption and deleted by the dispatcher.
func IsKnownStep(s StepType) bool {
	return IsOnboardingStep(s) || IsRecordStep(s) || IsAIStep(s)
}

// Data key constants for the onboarding accumulator. The final answer is
// never accumulated; it goes straight into the profile upsert.
const (
	DataKeyName        DataKey = "name"
	DataKeyJobTitle    DataKey = "job_title"
	DataKeyTotalYears  DataKey = "total_years"
	DataKeyJobYears    DataKey = "job_years"
	DataKeyCareerGoal  DataKey = "career_goal"
	DataKeyProjectName DataKey = "project_name"
	DataKeyRecentWork  DataKey = "recent_work"
	DataKeyJobMeaning  DataKey = "job_meaning"
)

// Data key constants for the work-record accumulator.
const (
	DataKeyWorkContent DataKey = "work_content"
	DataKeyMood        DataKey = "mood"
)

// Data key constants for the AI conversation track.
const (
	DataKeyConversationHistory DataKey = "conversationHistory" // JSON-serialized transcript
	DataKeyCurrentTopic        DataKey = "current_topic"
)
