package models

import "time"

// Intent is the coarse purpose of a chat utterance
type Intent string

const (
	IntentTaskCreation       Intent = "task_creation"
	IntentListRequest        Intent = "list_request"
	IntentPlanning           Intent = "planning"
	IntentInformationRequest Intent = "information_request"
	IntentGeneralChat        Intent = "general_chat"
)

// Sentiment is a three-valued tone estimate
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Entities holds keyword matches found in a message, in scan order
type Entities struct {
	Activities []string `json:"activities"`
	Times      []string `json:"times"`
}

// Classification is the classifier output for one message.
// Confidence is a static value per intent.
type Classification struct {
	Intent     Intent    `json:"intent"`
	Confidence float64   `json:"confidence"`
	Entities   Entities  `json:"entities"`
	Sentiment  Sentiment `json:"sentiment"`
}

// TaskDraft is a task synthesised from free text, not yet persisted
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Time        string   `json:"time"`
	Priority    Priority `json:"priority"`
	Category    string   `json:"category"`
}

// ChatRole identifies who sent a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of an in-memory conversation transcript
type ChatMessage struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Role        ChatRole   `json:"role"`
	Timestamp   time.Time  `json:"timestamp"`
	TaskDraft   *TaskDraft `json:"task_draft,omitempty"`
	Suggestions []string   `json:"suggestions,omitempty"`
}

// ChatReply is the output of the response generator
type ChatReply struct {
	Text        string
	TaskDraft   *TaskDraft
	Suggestions []string
}
