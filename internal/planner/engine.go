package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// profileConfidenceThreshold is the minimum confidence for a learned
// preference to win over the default table: strictly more votes for the
// winner than any single alternative could have in a three-way split.
const profileConfidenceThreshold = 0.34

// maxCitedSources bounds how many sources a justification references.
const maxCitedSources = 2

// Explainer is the optional external justification collaborator. Its output
// replaces the local phrasing only; the cited source set is always chosen
// locally.
type Explainer interface {
	Explain(ctx context.Context, task Task, sourceTitles []string) (string, error)
}

// defaultAffinity covers every (mood, category) pair so block assignment is
// deterministic even with no history. Stressful obligations go early while
// willpower is fresh; routine chores fill the middle of the day.
var defaultAffinity = map[MoodCategory]TimeBlock{
	{MoodPositive, CategoryWork}:     BlockMorning,
	{MoodPositive, CategorySport}:    BlockMorning,
	{MoodPositive, CategoryLeisure}:  BlockEvening,
	{MoodPositive, CategoryStudy}:    BlockMorning,
	{MoodPositive, CategoryMeetings}: BlockDay,
	{MoodPositive, CategoryHobby}:    BlockEvening,
	{MoodPositive, CategoryOther}:    BlockDay,

	{MoodNeutral, CategoryWork}:     BlockDay,
	{MoodNeutral, CategorySport}:    BlockDay,
	{MoodNeutral, CategoryLeisure}:  BlockEvening,
	{MoodNeutral, CategoryStudy}:    BlockDay,
	{MoodNeutral, CategoryMeetings}: BlockDay,
	{MoodNeutral, CategoryHobby}:    BlockEvening,
	{MoodNeutral, CategoryOther}:    BlockDay,

	{MoodStressful, CategoryWork}:     BlockMorning,
	{MoodStressful, CategorySport}:    BlockEvening,
	{MoodStressful, CategoryLeisure}:  BlockEvening,
	{MoodStressful, CategoryStudy}:    BlockMorning,
	{MoodStressful, CategoryMeetings}: BlockMorning,
	{MoodStressful, CategoryHobby}:    BlockEvening,
	{MoodStressful, CategoryOther}:    BlockMorning,

	{MoodCreative, CategoryWork}:     BlockMorning,
	{MoodCreative, CategorySport}:    BlockDay,
	{MoodCreative, CategoryLeisure}:  BlockEvening,
	{MoodCreative, CategoryStudy}:    BlockEvening,
	{MoodCreative, CategoryMeetings}: BlockDay,
	{MoodCreative, CategoryHobby}:    BlockEvening,
	{MoodCreative, CategoryOther}:    BlockEvening,

	{MoodRoutine, CategoryWork}:     BlockDay,
	{MoodRoutine, CategorySport}:    BlockDay,
	{MoodRoutine, CategoryLeisure}:  BlockDay,
	{MoodRoutine, CategoryStudy}:    BlockDay,
	{MoodRoutine, CategoryMeetings}: BlockDay,
	{MoodRoutine, CategoryHobby}:    BlockDay,
	{MoodRoutine, CategoryOther}:    BlockDay,
}

// Engine assigns each task to a time block and writes the justification.
// Given the same tasks, profile and sources it always produces the same
// entries; the explainer can only change phrasing, never assignment or
// source selection.
type Engine struct {
	explainer Explainer
	log       *zap.Logger
}

func NewEngine(explainer Explainer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{explainer: explainer, log: log}
}

// Generate produces one plan entry per task. sourcesByTask maps task ids to
// the retrieved sources for that task, trust flags already resolved.
func (e *Engine) Generate(ctx context.Context, tasks []Task, profile ChronotypeProfile, sourcesByTask map[string][]Source) (Plan, error) {
	if len(tasks) == 0 {
		return Plan{}, NewEmptyTaskSet()
	}

	entries := make([]PlanEntry, 0, len(tasks))
	for _, task := range tasks {
		block, learned := e.pickBlock(task, profile)
		cited := citeTrusted(sourcesByTask[task.ID])

		ids := make([]string, 0, len(cited))
		titles := make([]string, 0, len(cited))
		for _, s := range cited {
			ids = append(ids, s.ID)
			titles = append(titles, s.Title)
		}

		entries = append(entries, PlanEntry{
			TaskID:        task.ID,
			Block:         block,
			Justification: e.justify(ctx, task, block, learned, titles),
			SourceIDs:     ids,
		})
	}

	return Plan{Entries: entries, GeneratedAt: time.Now().UTC()}, nil
}

func (e *Engine) pickBlock(task Task, profile ChronotypeProfile) (TimeBlock, bool) {
	key := MoodCategory{Mood: task.Mood, Category: task.Category}
	if block, ok := profile.Preferred[key]; ok && profile.Confidence[key] >= profileConfidenceThreshold {
		return block, true
	}
	if block, ok := defaultAffinity[key]; ok {
		return block, false
	}
	return BlockDay, false
}

// citeTrusted picks the first maxCitedSources trusted sources, preserving
// retrieval order so the selection is stable.
func citeTrusted(sources []Source) []Source {
	var cited []Source
	for _, s := range sources {
		if !s.Trust {
			continue
		}
		cited = append(cited, s)
		if len(cited) == maxCitedSources {
			break
		}
	}
	return cited
}

func (e *Engine) justify(ctx context.Context, task Task, block TimeBlock, learned bool, titles []string) string {
	if e.explainer != nil {
		text, err := e.explainer.Explain(ctx, task, titles)
		if err != nil {
			e.log.Warn("justification collaborator failed, using local phrasing",
				zap.String("task", task.Title), zap.Error(err))
		} else if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}

	reason := "based on general guidance"
	if learned {
		reason = "based on your past preference"
	}
	if len(titles) > 0 {
		return fmt.Sprintf("Scheduled for the %s %s. Sources: %s.", block, reason, strings.Join(titles, "; "))
	}
	return fmt.Sprintf("Scheduled for the %s %s.", block, reason)
}
