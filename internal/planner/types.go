package planner

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeBlock is the slot of the day a task gets assigned to.
type TimeBlock string

const (
	BlockMorning TimeBlock = "morning"
	BlockDay     TimeBlock = "day"
	BlockEvening TimeBlock = "evening"
)

// Blocks lists all time blocks in the default tie-break priority order.
var Blocks = []TimeBlock{BlockMorning, BlockDay, BlockEvening}

func ParseTimeBlock(s string) (TimeBlock, error) {
	b := TimeBlock(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BlockMorning, BlockDay, BlockEvening:
		return b, nil
	}
	return "", NewValidation("block", "block must be one of: morning, day, evening")
}

type Category string

const (
	CategoryWork     Category = "work"
	CategorySport    Category = "sport"
	CategoryLeisure  Category = "leisure"
	CategoryStudy    Category = "study"
	CategoryMeetings Category = "meetings"
	CategoryHobby    Category = "hobby"
	CategoryOther    Category = "other"
)

var categories = map[Category]bool{
	CategoryWork:     true,
	CategorySport:    true,
	CategoryLeisure:  true,
	CategoryStudy:    true,
	CategoryMeetings: true,
	CategoryHobby:    true,
	CategoryOther:    true,
}

type Mood string

const (
	MoodPositive  Mood = "positive"
	MoodNeutral   Mood = "neutral"
	MoodStressful Mood = "stressful"
	MoodCreative  Mood = "creative"
	MoodRoutine   Mood = "routine"
)

var moods = map[Mood]bool{
	MoodPositive:  true,
	MoodNeutral:   true,
	MoodStressful: true,
	MoodCreative:  true,
	MoodRoutine:   true,
}

// Task is immutable once created; it can only be deleted.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Mood      Mood      `json:"mood"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTask validates the raw fields and mints a task with a fresh id.
func NewTask(title, category, mood string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, NewValidation("title", "title is required")
	}
	cat := Category(strings.ToLower(strings.TrimSpace(category)))
	if !categories[cat] {
		return Task{}, NewValidation("category", "unknown category: "+category)
	}
	md := Mood(strings.ToLower(strings.TrimSpace(mood)))
	if !moods[md] {
		return Task{}, NewValidation("mood", "unknown mood: "+mood)
	}
	return Task{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  cat,
		Mood:      md,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Source is an external reference used to justify a placement. Trust defaults
// to true and is only ever flipped by an explicit untrust; it never reverts.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
	Trust bool   `json:"trust"`
}

// MoodCategory keys the chronotype profile.
type MoodCategory struct {
	Mood     Mood
	Category Category
}

// ChronotypeProfile is a derived view recomputed from the full override
// history on every generation; it is never stored as authoritative state.
type ChronotypeProfile struct {
	Preferred  map[MoodCategory]TimeBlock
	Confidence map[MoodCategory]float64

	// Chronotype is a coarse informational label ("lark"/"owl") and plays
	// no role in placement.
	Chronotype string
}

// OverrideEvent records a manual move as a learning signal.
type OverrideEvent struct {
	Mood     Mood      `json:"mood"`
	Category Category  `json:"category"`
	Block    TimeBlock `json:"block"`
}

type PlanEntry struct {
	TaskID        string    `json:"task_id"`
	Block         TimeBlock `json:"block"`
	Justification string    `json:"justification"`
	SourceIDs     []string  `json:"source_ids"`
}

type Plan struct {
	Entries     []PlanEntry `json:"entries"`
	GeneratedAt time.Time   `json:"generated_at"`
}
