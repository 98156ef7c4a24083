package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

func TestDraftTask(t *testing.T) {
	t.Parallel()

	morning := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		text string
		now  time.Time
		want models.TaskDraft
	}{
		{
			name: "work task",
			text: "I need to finish the report",
			now:  morning,
			want: models.TaskDraft{Title: "Finish the report", Description: "I need to finish the report", Time: "10:00 AM", Priority: models.PriorityMedium, Category: "Work"},
		},
		{
			name: "urgent health task",
			text: "urgent: call the doctor",
			now:  morning,
			want: models.TaskDraft{Title: "Call the doctor", Description: "urgent: call the doctor", Time: "10:00 AM", Priority: models.PriorityHigh, Category: "Health"},
		},
		{
			name: "title cut at first period",
			text: "I want to go to the gym tomorrow morning. It helps.",
			now:  morning,
			want: models.TaskDraft{Title: "Go to the gym tomorrow morning", Description: "I want to go to the gym tomorrow morning. It helps.", Time: "9:00 AM", Priority: models.PriorityMedium, Category: "Health"},
		},
		{
			name: "low priority learning",
			text: "maybe learn guitar someday",
			now:  time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC),
			want: models.TaskDraft{Title: "Maybe learn guitar someday", Description: "maybe learn guitar someday", Time: "3:00 PM", Priority: models.PriorityLow, Category: "Learning"},
		},
		{
			name: "social evening",
			text: "evening call with mom, she misses me",
			now:  morning,
			want: models.TaskDraft{Title: "Evening call with mom", Description: "evening call with mom, she misses me", Time: "7:00 PM", Priority: models.PriorityMedium, Category: "Social"},
		},
		{
			name: "tonight",
			text: "call mom tonight",
			now:  time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			want: models.TaskDraft{Title: "Call mom tonight", Description: "call mom tonight", Time: "8:00 PM", Priority: models.PriorityMedium, Category: "Social"},
		},
		{
			name: "personal late",
			text: "water the plants",
			now:  time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC),
			want: models.TaskDraft{Title: "Water the plants", Description: "water the plants", Time: "8:00 PM", Priority: models.PriorityMedium, Category: "Personal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DraftTask(tt.text, tt.now); got != tt.want {
				t.Errorf("DraftTask(%q) =\n%+v\nwant\n%+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDraftTask_Truncation(t *testing.T) {
	t.Parallel()

	text := "remind me to " + strings.Repeat("a", 120)
	d := DraftTask(text, time.Now())
	if len(d.Title) != draftTitleLimit || !strings.HasSuffix(d.Title, "...") {
		t.Errorf("Title = %q (len %d)", d.Title, len(d.Title))
	}
	if !strings.HasPrefix(d.Title, "Aaa") {
		t.Errorf("Title should be capitalized, got %q", d.Title)
	}
	if len(d.Description) != draftDescriptionLimit || !strings.HasSuffix(d.Description, "...") {
		t.Errorf("Description = %q (len %d)", d.Description, len(d.Description))
	}
}

func TestDraftTask_EmptyTitle(t *testing.T) {
	t.Parallel()

	if got := DraftTask("I need to", time.Now()).Title; got != "New task" {
		t.Errorf("Title = %q, want New task", got)
	}
}
