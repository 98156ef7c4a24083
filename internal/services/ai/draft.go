package ai

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/smart-planner/internal/models"
)

const (
	draftTitleLimit       = 50
	draftDescriptionLimit = 100
	ellipsis              = "..."
)

// fillerPrefixes are stripped from the start of a draft title; longest first
var fillerPrefixes = []string{
	"don't let me forget to",
	"i would like to",
	"remind me to",
	"i want to",
	"i need to",
	"i have to",
	"i should",
	"i must",
	"help me",
	"urgent:",
	"asap:",
	"important:",
	"please",
}

type categoryRule struct {
	category string
	pattern  *regexp.Regexp
}

var categoryRules = []categoryRule{
	{"Work", regexp.MustCompile(`(?i)\b(work|job|meeting|project|report|office|client|email)\b`)},
	{"Health", regexp.MustCompile(`(?i)\b(exercise|gym|health|doctor|workout|run|running|walk|yoga|medicine|dentist)\b`)},
	{"Learning", regexp.MustCompile(`(?i)\b(learn|study|read|course|book|practice)\b`)},
	{"Social", regexp.MustCompile(`(?i)\b(friend|friends|family|call|mom|dad|party|birthday)\b`)},
}

var (
	highPriorityPattern = regexp.MustCompile(`(?i)\b(urgent|asap|deadline|important|critical)\b`)
	lowPriorityPattern  = regexp.MustCompile(`(?i)\b(someday|eventually|when i have time|maybe)\b`)

	morningPattern   = regexp.MustCompile(`(?i)\bmorning\b`)
	afternoonPattern = regexp.MustCompile(`(?i)\bafternoon\b`)
	eveningPattern   = regexp.MustCompile(`(?i)\bevening\b`)
	nightPattern     = regexp.MustCompile(`(?i)\b(tonight|night)\b`)
)

// DraftTask synthesises a task from free text. now supplies the fallback
// time slot when the text names no part of the day.
func DraftTask(text string, now time.Time) models.TaskDraft {
	text = strings.TrimSpace(text)
	return models.TaskDraft{
		Title:       draftTitle(text),
		Description: truncateRunes(text, draftDescriptionLimit),
		Time:        draftTime(text, now),
		Priority:    draftPriority(text),
		Category:    draftCategory(text),
	}
}

func draftTitle(text string) string {
	title := text
	if i := strings.IndexAny(title, ".,"); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)

	lower := strings.ToLower(title)
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			title = strings.TrimSpace(title[len(prefix):])
			break
		}
	}

	if title == "" {
		return "New task"
	}
	return capitalize(truncateRunes(title, draftTitleLimit))
}

func draftCategory(text string) string {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			return rule.category
		}
	}
	return models.DefaultCategory
}

func draftPriority(text string) models.Priority {
	switch {
	case highPriorityPattern.MatchString(text):
		return models.PriorityHigh
	case lowPriorityPattern.MatchString(text):
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

func draftTime(text string, now time.Time) string {
	switch {
	case morningPattern.MatchString(text):
		return "9:00 AM"
	case afternoonPattern.MatchString(text):
		return "2:00 PM"
	case eveningPattern.MatchString(text):
		return "7:00 PM"
	case nightPattern.MatchString(text):
		return "8:00 PM"
	}
	switch h := now.Hour(); {
	case h < 12:
		return "10:00 AM"
	case h < 17:
		return "3:00 PM"
	default:
		return "8:00 PM"
	}
}

// truncateRunes shortens s to at most limit runes, ending in "..." when cut
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-len(ellipsis)])) + ellipsis
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
