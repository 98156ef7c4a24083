package ai

import (
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

type topicList struct {
	pattern *regexp.Regexp
	intro   string
	items   []string
}

// topicLists are checked in order; the first matching topic answers a list request
var topicLists = []topicList{
	{
		pattern: regexp.MustCompile(`(?i)\b(hobby|hobbies)\b`),
		intro:   "Here are some hobbies you could pick up:",
		items: []string{
			"Photography", "Gardening", "Learning a musical instrument", "Painting or sketching",
			"Journaling", "Cooking new cuisines", "Hiking", "Knitting or crochet",
			"Birdwatching", "Board games with friends",
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(exercise|exercises|workout|workouts|fitness|gym)\b`),
		intro:   "Here are some exercise ideas to get you moving:",
		items: []string{
			"A 20-minute brisk walk", "Bodyweight squats and lunges", "Beginner yoga flow", "Cycling around the neighborhood",
			"Jump rope intervals", "Swimming laps", "Push-up progression", "Dance workout video",
			"Stair climbing", "Stretching before bed",
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(book|books|read|reading)\b`),
		intro:   "Here are some books worth reading:",
		items: []string{
			"Atomic Habits by James Clear", "Deep Work by Cal Newport", "Sapiens by Yuval Noah Harari", "The Pragmatic Programmer",
			"Thinking, Fast and Slow by Daniel Kahneman", "Project Hail Mary by Andy Weir", "Educated by Tara Westover", "The Power of Habit by Charles Duhigg",
			"Man's Search for Meaning by Viktor Frankl", "The Midnight Library by Matt Haig",
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(learn|learning|skill|skills|study)\b`),
		intro:   "Here are some skills you could start learning:",
		items: []string{
			"A new language", "Basic programming", "Public speaking", "Touch typing",
			"Personal finance basics", "Drawing fundamentals", "First aid", "Photo editing",
			"Speed reading", "Meditation",
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(productivity|productive|focus)\b`),
		intro:   "Here are some productivity tips:",
		items: []string{
			"Plan tomorrow before you finish today", "Work in 25-minute focus blocks", "Do the hardest task first", "Batch similar tasks together",
			"Turn off non-essential notifications", "Keep a single to-do list", "Review your week every Friday", "Say no to low-value meetings",
			"Take a real lunch break", "Set three priorities per day",
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(recipe|recipes|cook|cooking|meal|meals)\b`),
		intro:   "Here are some easy recipes to try:",
		items: []string{
			"Vegetable stir-fry", "Overnight oats", "Sheet-pan chicken and vegetables", "Lentil soup",
			"Homemade pizza", "Greek salad", "Black bean tacos", "Banana pancakes",
			"Pasta primavera", "Chili con carne",
		},
	},
}

var (
	listMenu = []string{
		"Hobbies to try", "Exercise ideas", "Books to read",
		"Skills to learn", "Productivity tips", "Easy recipes",
	}
	planningMenu = []string{
		"Plan my week", "Set three priorities for today", "Block time for deep work",
		"Review last week", "Build a morning routine",
	}
	howToMenu = []string{
		"How to build a habit", "How to stay focused", "How to plan a week",
		"How to start exercising", "How to read more",
	}
	starterMenu = []string{
		"Create a task", "Suggest some hobbies", "Help me plan my week",
		"Show me exercise ideas", "Give me productivity tips",
	}
	selfCareMenu = []string{
		"Take a short walk", "Drink a glass of water", "Try a 5-minute breathing exercise",
		"Stretch for a few minutes", "Plan an early night",
	}
	genericMenu = []string{
		"Create a task", "Plan my day", "Suggest an activity",
		"Show me some hobbies", "Give me a productivity tip",
	}
)

var (
	taskLeadIns = []string{
		"Here's a task I drafted for you:",
		"Sounds like a plan! I've prepared this task:",
		"Got it. Want me to add this task?",
		"I can help with that. Here's a draft:",
	}
	planningPrompts = []string{
		"Let's get organized! Where would you like to start?",
		"A little planning goes a long way. What should we focus on?",
		"Happy to help you plan. Pick a place to begin:",
	}
	informationReplies = []string{
		"That's a great question! I'm best at helping you plan and stay on track.",
		"Good question. I may not know everything, but I can help you turn ideas into tasks.",
		"I'm not sure about that one, but I'm here to help you get things done.",
	}
	greetings = []string{
		"Hi there! What would you like to get done today?",
		"Hello! Ready to plan something great?",
		"Hey! How can I help you stay on track?",
	}
	empatheticReplies = []string{
		"I'm sorry you're feeling this way. Taking care of yourself matters too.",
		"That sounds tough. Small breaks can make a big difference.",
		"It's okay to slow down. Here are a few gentle ideas:",
	}
	genericReplies = []string{
		"I'm here to help you plan your day and build good habits.",
		"Tell me what's on your mind and we can turn it into a plan.",
		"Let's make today productive. What would you like to do?",
	}
)

var (
	greetingWords = wordSet("hello", "hi", "hey")
	stressPattern = regexp.MustCompile(`(?i)\b(tired|stress|stressed|exhausted|overwhelmed)\b`)
	howToPattern  = regexp.MustCompile(`(?i)\bhow to\b`)
)

// Responder composes chat replies from a classification. Randomness and the
// clock are injectable so replies can be pinned in tests.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// ResponderOption configures a Responder
type ResponderOption func(*Responder)

// WithRand sets the random source used to pick phrasings
func WithRand(rng *rand.Rand) ResponderOption {
	return func(r *Responder) { r.rng = rng }
}

// WithResponderClock sets the clock used for draft time slots
func WithResponderClock(now func() time.Time) ResponderOption {
	return func(r *Responder) { r.now = now }
}

// NewResponder creates a responder seeded from the current time
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // phrasing choice only
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond builds the reply for text given its classification
func (r *Responder) Respond(text string, c models.Classification) models.ChatReply {
	switch c.Intent {
	case models.IntentTaskCreation:
		draft := DraftTask(text, r.now())
		return models.ChatReply{Text: r.pick(taskLeadIns), TaskDraft: &draft}

	case models.IntentListRequest:
		for _, topic := range topicLists {
			if topic.pattern.MatchString(text) {
				return models.ChatReply{Text: topic.intro, Suggestions: clone(topic.items)}
			}
		}
		return models.ChatReply{
			Text:        "What kind of list would you like? I can suggest ideas for any of these topics:",
			Suggestions: clone(listMenu),
		}

	case models.IntentPlanning:
		return models.ChatReply{Text: r.pick(planningPrompts), Suggestions: clone(planningMenu)}

	case models.IntentInformationRequest:
		if howToPattern.MatchString(text) {
			return models.ChatReply{
				Text:        "I'd love to help you learn! What would you like a step-by-step guide for?",
				Suggestions: clone(howToMenu),
			}
		}
		return models.ChatReply{Text: r.pick(informationReplies)}
	}

	if hasGreeting(text) {
		return models.ChatReply{Text: r.pick(greetings), Suggestions: clone(starterMenu)}
	}
	if c.Sentiment == models.SentimentNegative || stressPattern.MatchString(text) {
		return models.ChatReply{Text: r.pick(empatheticReplies), Suggestions: clone(selfCareMenu)}
	}
	return models.ChatReply{Text: r.pick(genericReplies), Suggestions: clone(genericMenu)}
}

func (r *Responder) pick(options []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return options[r.rng.Intn(len(options))]
}

func hasGreeting(text string) bool {
	for _, tok := range tokens(text) {
		if _, ok := greetingWords[tok]; ok {
			return true
		}
	}
	return false
}

func clone(items []string) []string {
	return append([]string(nil), items...)
}
