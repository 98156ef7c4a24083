package ai

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/benvon/smart-planner/internal/models"
)

// Static confidences per intent. Exposed on Classification; nothing depends
// on the exact values.
const (
	confidenceTaskCreation       = 0.9
	confidenceListRequest        = 0.85
	confidencePlanning           = 0.8
	confidenceInformationRequest = 0.7
	confidenceGeneralChat        = 0.5
)

type intentFamily struct {
	intent     models.Intent
	confidence float64
	patterns   []*regexp.Regexp
}

// intentFamilies are evaluated in order; the first family with a match wins
var intentFamilies = []intentFamily{
	{
		intent:     models.IntentTaskCreation,
		confidence: confidenceTaskCreation,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(i want to|i need to|i have to|i must|i should|remind me to|don't let me forget)\b`),
			regexp.MustCompile(`(?i)\b(schedule|reminder)\b`),
			regexp.MustCompile(`(?i)\b(add|create|make) (a |an |new )*(task|todo|to-do)\b`),
			regexp.MustCompile(`(?i)\b(goal|goals|task|tasks|todo|to-do)\b`),
			regexp.MustCompile(`(?i)^\W*(?:(?:urgent|asap|important)\W+)?(call|email|buy|pay|book|finish|submit|send|pick up|clean|visit|write|prepare)\b`),
		},
	},
	{
		intent:     models.IntentListRequest,
		confidence: confidenceListRequest,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(list|show me|suggest|suggestions|ideas|recommend|give me)\b`),
			regexp.MustCompile(`(?i)\b(hobbies|hobby|activities)\b`),
			regexp.MustCompile(`(?i)\bhow to\b`),
		},
	},
	{
		intent:     models.IntentPlanning,
		confidence: confidencePlanning,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(plan|planning|week|weekly|routine)\b`),
			regexp.MustCompile(`(?i)\b(productivity|productive|organi[sz](e|ed|ing))\b`),
		},
	},
}

var (
	activityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(exercise|workout|gym|run|running|yoga|walk|swim)\b`),
		regexp.MustCompile(`(?i)\b(read|reading|book|books)\b`),
		regexp.MustCompile(`(?i)\b(cook|cooking|recipe|recipes|bake|baking)\b`),
		regexp.MustCompile(`(?i)\b(work|meeting|project|report|email)\b`),
		regexp.MustCompile(`(?i)\b(hobby|hobbies|paint|painting|draw|drawing|guitar|music|garden|gardening)\b`),
	}
	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(today|tonight|tomorrow)\b`),
		regexp.MustCompile(`(?i)\b(morning|afternoon|evening|night|weekend)\b`),
		regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	}
)

var (
	positiveWords = wordSet("good", "great", "happy", "excited", "love", "awesome", "amazing",
		"wonderful", "glad", "fantastic", "productive", "motivated", "thanks", "thank")
	negativeWords = wordSet("bad", "sad", "tired", "stressed", "angry", "upset", "awful",
		"terrible", "overwhelmed", "anxious", "exhausted", "hate", "frustrated", "worried")
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Classifier maps free text to an intent, entities and a sentiment
type Classifier struct{}

// NewClassifier creates a classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify evaluates the intent families in precedence order. A question mark
// without any family match is an information request; anything else is chat.
func (c *Classifier) Classify(text string) models.Classification {
	out := models.Classification{
		Intent:     models.IntentGeneralChat,
		Confidence: confidenceGeneralChat,
		Entities:   extractEntities(text),
		Sentiment:  sentimentOf(text),
	}

	for _, family := range intentFamilies {
		if matchesAny(family.patterns, text) {
			out.Intent = family.intent
			out.Confidence = family.confidence
			return out
		}
	}
	if strings.Contains(text, "?") {
		out.Intent = models.IntentInformationRequest
		out.Confidence = confidenceInformationRequest
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// extractEntities accumulates every keyword hit, duplicates included, family by family
func extractEntities(text string) models.Entities {
	e := models.Entities{Activities: []string{}, Times: []string{}}
	for _, p := range activityPatterns {
		for _, m := range p.FindAllString(text, -1) {
			e.Activities = append(e.Activities, strings.ToLower(m))
		}
	}
	for _, p := range timePatterns {
		for _, m := range p.FindAllString(text, -1) {
			e.Times = append(e.Times, strings.ToLower(m))
		}
	}
	return e
}

// sentimentOf compares positive and negative word counts; ties are neutral
func sentimentOf(text string) models.Sentiment {
	pos, neg := 0, 0
	for _, tok := range tokens(text) {
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return models.SentimentPositive
	case neg > pos:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// tokens splits on whitespace, lower-cases and trims surrounding punctuation
func tokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
