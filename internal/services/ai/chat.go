package ai

import (
	"strings"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// maxTranscript bounds each owner's in-memory transcript; oldest messages go first
const maxTranscript = 200

// ChatService keeps one in-memory conversation per owner
type ChatService struct {
	classifier *Classifier
	responder  *Responder
	now        func() time.Time
	sessions   map[string]*ChatSession
	mu         sync.RWMutex // Protects concurrent access to sessions map
}

// ChatSession is one owner's conversation
type ChatSession struct {
	mu           sync.Mutex
	Owner        string
	Messages     []models.ChatMessage
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewChatService creates a new chat service
func NewChatService(classifier *Classifier, responder *Responder, now func() time.Time) *ChatService {
	if now == nil {
		now = time.Now
	}
	return &ChatService{
		classifier: classifier,
		responder:  responder,
		now:        now,
		sessions:   make(map[string]*ChatSession),
	}
}

// GetOrCreateSession gets or creates the chat session for owner
func (s *ChatService) GetOrCreateSession(owner string) *ChatSession {
	s.mu.RLock()
	session, exists := s.sessions[owner]
	s.mu.RUnlock()
	if exists {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if session, exists := s.sessions[owner]; exists {
		return session
	}
	now := s.now()
	session = &ChatSession{
		Owner:        owner,
		Messages:     make([]models.ChatMessage, 0),
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions[owner] = session
	return session
}

// Send records the user's message, classifies it and records the reply.
// It returns the assistant message.
func (s *ChatService) Send(owner, text string) models.ChatMessage {
	text = strings.TrimSpace(text)
	classification := s.classifier.Classify(text)
	reply := s.responder.Respond(text, classification)

	session := s.GetOrCreateSession(owner)
	session.mu.Lock()
	defer session.mu.Unlock()

	now := s.now()
	session.append(models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Role:      models.ChatRoleUser,
		Timestamp: now,
	})
	answer := models.ChatMessage{
		ID:          uuid.NewString(),
		Text:        reply.Text,
		Role:        models.ChatRoleAssistant,
		Timestamp:   now,
		TaskDraft:   reply.TaskDraft,
		Suggestions: reply.Suggestions,
	}
	session.append(answer)
	session.LastActivity = now
	return answer
}

// Transcript returns a copy of owner's conversation, oldest first
func (s *ChatService) Transcript(owner string) []models.ChatMessage {
	s.mu.RLock()
	session, exists := s.sessions[owner]
	s.mu.RUnlock()
	if !exists {
		return []models.ChatMessage{}
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return append([]models.ChatMessage{}, session.Messages...)
}

// CloseSession discards owner's conversation
func (s *ChatService) CloseSession(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, owner)
}

// Classify exposes the classifier for callers that only need the intent
func (s *ChatService) Classify(text string) models.Classification {
	return s.classifier.Classify(text)
}

// Draft synthesises a task from text without touching any transcript
func (s *ChatService) Draft(text string) models.TaskDraft {
	return DraftTask(text, s.now())
}

func (cs *ChatSession) append(m models.ChatMessage) {
	cs.Messages = append(cs.Messages, m)
	if over := len(cs.Messages) - maxTranscript; over > 0 {
		cs.Messages = append(cs.Messages[:0:0], cs.Messages[over:]...)
	}
}
