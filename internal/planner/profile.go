package planner

// Chronotype labels exposed on the profile view. Informational only.
const (
	ChronotypeLark = "lark"
	ChronotypeOwl  = "owl"
)

// chronotypeMargin is how many moves one edge of the day must lead by before
// the profile gets a lark/owl label.
const chronotypeMargin = 2

// BuildProfile derives a chronotype profile from the full override history.
// It is pure: the same history always yields the same profile.
//
// Events are grouped by (mood, category); the preferred block of a group is
// the most frequent one, with ties broken by the tieBreak priority order
// (Morning > Day > Evening by default). Confidence is the winner's share of
// the group. Pairs with no history get no entry.
func BuildProfile(history []OverrideEvent, tieBreak []TimeBlock) ChronotypeProfile {
	tieBreak = normalizePriority(tieBreak)

	counts := make(map[MoodCategory]map[TimeBlock]int)
	morning, evening := 0, 0
	for _, ev := range history {
		key := MoodCategory{Mood: ev.Mood, Category: ev.Category}
		if counts[key] == nil {
			counts[key] = make(map[TimeBlock]int)
		}
		counts[key][ev.Block]++
		switch ev.Block {
		case BlockMorning:
			morning++
		case BlockEvening:
			evening++
		}
	}

	profile := ChronotypeProfile{
		Preferred:  make(map[MoodCategory]TimeBlock, len(counts)),
		Confidence: make(map[MoodCategory]float64, len(counts)),
	}
	for key, byBlock := range counts {
		var winner TimeBlock
		best, total := 0, 0
		for _, block := range tieBreak {
			n := byBlock[block]
			total += n
			if n > best {
				best = n
				winner = block
			}
		}
		profile.Preferred[key] = winner
		profile.Confidence[key] = float64(best) / float64(total)
	}

	if morning > evening+chronotypeMargin {
		profile.Chronotype = ChronotypeLark
	} else if evening > morning+chronotypeMargin {
		profile.Chronotype = ChronotypeOwl
	}
	return profile
}

// normalizePriority makes sure every block appears exactly once, appending
// missing blocks in default order so a partial configuration stays usable.
func normalizePriority(priority []TimeBlock) []TimeBlock {
	seen := make(map[TimeBlock]bool, len(Blocks))
	out := make([]TimeBlock, 0, len(Blocks))
	for _, b := range priority {
		if (b == BlockMorning || b == BlockDay || b == BlockEvening) && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, b := range Blocks {
		if !seen[b] {
			out = append(out, b)
		}
	}
	return out
}
