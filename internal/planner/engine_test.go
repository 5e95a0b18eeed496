package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTask(id, title string, cat Category, mood Mood) Task {
	return Task{ID: id, Title: title, Category: cat, Mood: mood}
}

func mkSources(ids ...string) []Source {
	out := make([]Source, 0, len(ids))
	for _, id := range ids {
		out = append(out, Source{ID: id, Title: "Source " + id, Link: "https://example.com/" + id, Trust: true})
	}
	return out
}

type fakeExplainer struct {
	text  string
	err   error
	calls int
}

func (f *fakeExplainer) Explain(_ context.Context, _ Task, _ []string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestGenerateEmptyTaskSet(t *testing.T) {
	engine := NewEngine(nil, nil)
	_, err := engine.Generate(context.Background(), nil, ChronotypeProfile{}, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEmptyTaskSet))
}

func TestGenerateSingleBlockAndCitationSubset(t *testing.T) {
	engine := NewEngine(nil, nil)
	task := mkTask("t1", "Write report", CategoryWork, MoodStressful)
	sources := mkSources("a", "b", "c")
	sources[1].Trust = false

	plan, err := engine.Generate(context.Background(), []Task{task}, ChronotypeProfile{}, map[string][]Source{"t1": sources})
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)

	entry := plan.Entries[0]
	assert.Contains(t, []TimeBlock{BlockMorning, BlockDay, BlockEvening}, entry.Block)
	assert.LessOrEqual(t, len(entry.SourceIDs), 2)
	assert.NotContains(t, entry.SourceIDs, "b", "untrusted source must not be cited")
	for _, id := range entry.SourceIDs {
		assert.Contains(t, []string{"a", "c"}, id)
	}
	assert.NotEmpty(t, entry.Justification)
}

func TestGenerateDeterminism(t *testing.T) {
	engine := NewEngine(nil, nil)
	tasks := []Task{
		mkTask("t1", "Write report", CategoryWork, MoodStressful),
		mkTask("t2", "Yoga", CategorySport, MoodRoutine),
	}
	sources := map[string][]Source{
		"t1": mkSources("a", "b"),
		"t2": mkSources("c"),
	}
	profile := BuildProfile([]OverrideEvent{
		ev(MoodStressful, CategoryWork, BlockEvening),
		ev(MoodStressful, CategoryWork, BlockEvening),
	}, nil)

	first, err := engine.Generate(context.Background(), tasks, profile, sources)
	require.NoError(t, err)
	second, err := engine.Generate(context.Background(), tasks, profile, sources)
	require.NoError(t, err)

	assert.Equal(t, first.Entries, second.Entries)
}

func TestGenerateDefaultTableScenario(t *testing.T) {
	engine := NewEngine(nil, nil)
	tasks := []Task{
		mkTask("t1", "Write report", CategoryWork, MoodStressful),
		mkTask("t2", "Yoga", CategorySport, MoodRoutine),
	}
	sources := map[string][]Source{
		"t1": mkSources("s1", "s2", "s3"),
		"t2": mkSources("s4"),
	}

	plan, err := engine.Generate(context.Background(), tasks, ChronotypeProfile{}, sources)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 2)

	assert.Equal(t, BlockMorning, plan.Entries[0].Block)
	assert.Equal(t, BlockDay, plan.Entries[1].Block)
	for _, entry := range plan.Entries {
		assert.NotEmpty(t, entry.Justification)
		assert.LessOrEqual(t, len(entry.SourceIDs), 2)
		assert.Contains(t, entry.Justification, "general guidance")
	}
}

func TestGenerateDefaultTableCoversEveryPair(t *testing.T) {
	for mood := range moods {
		for cat := range categories {
			_, ok := defaultAffinity[MoodCategory{Mood: mood, Category: cat}]
			assert.True(t, ok, "missing default for %s/%s", mood, cat)
		}
	}
	assert.Len(t, defaultAffinity, len(moods)*len(categories))
}

func TestGenerateProfilePreferenceWins(t *testing.T) {
	engine := NewEngine(nil, nil)
	task := mkTask("t1", "Paint", CategoryHobby, MoodCreative)
	profile := ChronotypeProfile{
		Preferred:  map[MoodCategory]TimeBlock{{MoodCreative, CategoryHobby}: BlockMorning},
		Confidence: map[MoodCategory]float64{{MoodCreative, CategoryHobby}: 1.0},
	}

	plan, err := engine.Generate(context.Background(), []Task{task}, profile, nil)
	require.NoError(t, err)
	assert.Equal(t, BlockMorning, plan.Entries[0].Block)
	assert.Contains(t, plan.Entries[0].Justification, "past preference")
}

func TestGenerateLowConfidenceFallsBackToDefault(t *testing.T) {
	engine := NewEngine(nil, nil)
	task := mkTask("t1", "Paint", CategoryHobby, MoodCreative)
	profile := ChronotypeProfile{
		Preferred:  map[MoodCategory]TimeBlock{{MoodCreative, CategoryHobby}: BlockMorning},
		Confidence: map[MoodCategory]float64{{MoodCreative, CategoryHobby}: 0.2},
	}

	plan, err := engine.Generate(context.Background(), []Task{task}, profile, nil)
	require.NoError(t, err)
	// Creative hobby defaults to the evening.
	assert.Equal(t, BlockEvening, plan.Entries[0].Block)
	assert.Contains(t, plan.Entries[0].Justification, "general guidance")
}

func TestGenerateExplainerChangesPhrasingOnly(t *testing.T) {
	explainer := &fakeExplainer{text: "Mornings suit deep work, as Some Bogus Source shows."}
	engine := NewEngine(explainer, nil)
	task := mkTask("t1", "Write report", CategoryWork, MoodStressful)
	sources := mkSources("a", "b", "c")

	plan, err := engine.Generate(context.Background(), []Task{task}, ChronotypeProfile{}, map[string][]Source{"t1": sources})
	require.NoError(t, err)

	entry := plan.Entries[0]
	assert.Equal(t, explainer.text, entry.Justification)
	// Cited ids stay the locally chosen trusted set, whatever the text names.
	assert.Equal(t, []string{"a", "b"}, entry.SourceIDs)
	assert.Equal(t, 1, explainer.calls)
}

func TestGenerateExplainerFailureFallsBackToLocalPhrasing(t *testing.T) {
	engine := NewEngine(&fakeExplainer{err: errors.New("boom")}, nil)
	task := mkTask("t1", "Write report", CategoryWork, MoodStressful)

	plan, err := engine.Generate(context.Background(), []Task{task}, ChronotypeProfile{}, nil)
	require.NoError(t, err)
	assert.Contains(t, plan.Entries[0].Justification, "general guidance")
}
