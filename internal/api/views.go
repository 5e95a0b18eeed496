package api

import (
	"sort"
	"time"

	"github.com/gily0tina/smart-planner/internal/planner"
)

// PlanItem is one plan entry with its task fields denormalized for the UI.
type PlanItem struct {
	TaskID        string   `json:"task_id"`
	TaskTitle     string   `json:"task_title"`
	TaskCategory  string   `json:"task_category"`
	TaskMood      string   `json:"task_mood"`
	TimeBlock     string   `json:"time_block"`
	Justification string   `json:"justification"`
	SourceIDs     []string `json:"source_ids"`
}

// DayPlan groups the plan entries by time block and carries the sources the
// justifications consumed.
type DayPlan struct {
	Morning     []PlanItem       `json:"morning"`
	Day         []PlanItem       `json:"day"`
	Evening     []PlanItem       `json:"evening"`
	Sources     []planner.Source `json:"sources"`
	GeneratedAt time.Time        `json:"generated_at"`
}

func (h *Handler) dayPlanView(plan planner.Plan, tasks []planner.Task) DayPlan {
	byID := make(map[string]planner.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	view := DayPlan{
		Morning:     []PlanItem{},
		Day:         []PlanItem{},
		Evening:     []PlanItem{},
		GeneratedAt: plan.GeneratedAt,
	}

	cited := make(map[string]bool)
	for _, entry := range plan.Entries {
		task := byID[entry.TaskID]
		item := PlanItem{
			TaskID:        entry.TaskID,
			TaskTitle:     task.Title,
			TaskCategory:  string(task.Category),
			TaskMood:      string(task.Mood),
			TimeBlock:     string(entry.Block),
			Justification: entry.Justification,
			SourceIDs:     entry.SourceIDs,
		}
		switch entry.Block {
		case planner.BlockMorning:
			view.Morning = append(view.Morning, item)
		case planner.BlockEvening:
			view.Evening = append(view.Evening, item)
		default:
			view.Day = append(view.Day, item)
		}
		for _, id := range entry.SourceIDs {
			cited[id] = true
		}
	}

	view.Sources = []planner.Source{}
	for _, s := range h.session.Sources() {
		if cited[s.ID] {
			view.Sources = append(view.Sources, s)
		}
	}
	return view
}

// Preference is one learned (mood, category) → block row of the profile.
type Preference struct {
	Mood       string  `json:"mood"`
	Category   string  `json:"category"`
	Block      string  `json:"block"`
	Confidence float64 `json:"confidence"`
}

type Profile struct {
	Chronotype  string       `json:"chronotype,omitempty"`
	Preferences []Preference `json:"preferences"`
}

func profileView(p planner.ChronotypeProfile) Profile {
	view := Profile{Chronotype: p.Chronotype, Preferences: []Preference{}}
	for key, block := range p.Preferred {
		view.Preferences = append(view.Preferences, Preference{
			Mood:       string(key.Mood),
			Category:   string(key.Category),
			Block:      string(block),
			Confidence: p.Confidence[key],
		})
	}
	sort.Slice(view.Preferences, func(i, j int) bool {
		if view.Preferences[i].Mood != view.Preferences[j].Mood {
			return view.Preferences[i].Mood < view.Preferences[j].Mood
		}
		return view.Preferences[i].Category < view.Preferences[j].Category
	})
	return view
}
