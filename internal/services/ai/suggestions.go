package ai

import (
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/tasktime"
	"github.com/google/uuid"
)

// busyDayThreshold is the completed-today count that earns a celebration suggestion
const busyDayThreshold = 5

type fallbackIdea struct {
	title, description, at, category string
	priority                         models.Priority
	reason                           string
}

var (
	weekdayMorning = []fallbackIdea{
		{"Morning workout", "Get your body moving with a short workout", "7:00 AM", "Health", models.PriorityMedium, "Exercise early boosts energy for the whole day"},
		{"Plan your priorities", "Pick the three things that matter most today", "9:00 AM", "Work", models.PriorityHigh, "Mornings are best for deciding what matters"},
		{"Deep work session", "Block an hour for your most important task", "10:00 AM", "Work", models.PriorityHigh, "Focus tends to peak in the late morning"},
	}
	weekendMorning = []fallbackIdea{
		{"Slow breakfast", "Enjoy an unhurried breakfast without screens", "9:00 AM", "Personal", models.PriorityLow, "Weekends are a chance to start the day gently"},
		{"Weekend walk", "Take a walk somewhere you enjoy", "10:00 AM", "Health", models.PriorityMedium, "Fresh air sets a good tone for the weekend"},
		{"Tidy up your space", "Spend twenty minutes decluttering one room", "11:00 AM", "Personal", models.PriorityLow, "A tidy home makes the week ahead easier"},
	}
	afternoonIdeas = []fallbackIdea{
		{"Lunch break walk", "Step outside for a short walk after lunch", "12:30 PM", "Health", models.PriorityMedium, "A walk helps beat the afternoon slump"},
		{"Tackle a quick win", "Finish one small task you have been putting off", "2:00 PM", "Work", models.PriorityMedium, "Small wins keep momentum going"},
		{"Learn something new", "Spend half an hour on a course or article", "4:00 PM", "Learning", models.PriorityLow, "Late afternoon is good for lighter focus"},
	}
	weekdayEvening = []fallbackIdea{
		{"Cook a healthy dinner", "Make a simple meal with fresh ingredients", "6:30 PM", "Health", models.PriorityMedium, "A good dinner helps you recharge"},
		{"Prepare for tomorrow", "Lay out what you need for tomorrow morning", "8:00 PM", "Personal", models.PriorityMedium, "Evening prep makes mornings calmer"},
		{"Read for 20 minutes", "Read something you enjoy before bed", "9:00 PM", "Learning", models.PriorityLow, "Reading helps you unwind from the day"},
	}
	weekendEvening = []fallbackIdea{
		{"Call a friend", "Catch up with someone you have not talked to lately", "6:00 PM", "Social", models.PriorityMedium, "Weekend evenings are good for connecting"},
		{"Try a new recipe", "Cook something you have never made before", "7:00 PM", "Personal", models.PriorityLow, "Trying new things keeps weekends fun"},
		{"Plan the week ahead", "Sketch out your priorities for next week", "8:00 PM", "Personal", models.PriorityHigh, "A short plan makes Monday easier"},
	}
	nightIdeas = []fallbackIdea{
		{"Wind down", "Put screens away and relax before sleep", "10:30 PM", "Health", models.PriorityMedium, "Good sleep starts with a calm evening"},
		{"Journal about your day", "Write down one thing that went well today", "11:00 PM", "Personal", models.PriorityLow, "Reflection helps you end the day on a positive note"},
	}
)

// FallbackSuggestions builds suggestions from built-in tables for the time
// band of now, adds context suggestions, drops anything earlier than the
// current hour and caps the list.
func FallbackSuggestions(sc SuggestionContext) []models.Suggestion {
	now := sc.Now
	weekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday

	var ideas []fallbackIdea
	switch h := now.Hour(); {
	case h >= 6 && h < 12:
		ideas = pickBand(weekend, weekendMorning, weekdayMorning)
	case h >= 12 && h < 18:
		ideas = afternoonIdeas
	case h >= 18 && h < 22:
		ideas = pickBand(weekend, weekendEvening, weekdayEvening)
	default:
		ideas = nightIdeas
	}

	out := make([]models.Suggestion, 0, MaxSuggestions)
	for _, idea := range ideas {
		out = append(out, idea.suggestion())
	}
	out = append(out, contextSuggestions(sc)...)

	filtered := out[:0]
	for _, s := range out {
		if hour, ok := tasktime.Hour(s.SuggestedTime); ok && hour >= now.Hour() {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) > MaxSuggestions {
		filtered = filtered[:MaxSuggestions]
	}
	return filtered
}

func pickBand(weekend bool, weekendIdeas, weekdayIdeas []fallbackIdea) []fallbackIdea {
	if weekend {
		return weekendIdeas
	}
	return weekdayIdeas
}

func contextSuggestions(sc SuggestionContext) []models.Suggestion {
	at := nextFullHour(sc.Now)
	var out []models.Suggestion
	if len(sc.Active) == 0 && len(sc.Completed) == 0 {
		out = append(out, fallbackIdea{
			"Plan your day", "Write down a few things you want to get done", at, "Personal",
			models.PriorityMedium, "A short plan is the easiest way to get started",
		}.suggestion())
	}
	if sc.CompletedToday >= busyDayThreshold {
		out = append(out, fallbackIdea{
			"Celebrate your progress", "Take a moment to enjoy what you finished today", at, "Personal",
			models.PriorityLow, "You have completed a lot today",
		}.suggestion())
	}
	return out
}

// nextFullHour is the top of the next hour, or 11:59 PM once it is past 23:00
func nextFullHour(now time.Time) string {
	if now.Hour() >= 23 {
		return tasktime.Format(23, 59)
	}
	return tasktime.Format(now.Hour()+1, 0)
}

func (f fallbackIdea) suggestion() models.Suggestion {
	return models.Suggestion{
		ID:            uuid.NewString(),
		Title:         f.title,
		Description:   f.description,
		SuggestedTime: f.at,
		Category:      f.category,
		Priority:      f.priority,
		Reason:        f.reason,
	}
}
