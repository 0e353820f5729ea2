package scoring

import (
	"slices"
)

// ScoreHistoryEntry is one finished (or in-progress) round on a board config.
type ScoreHistoryEntry struct {
	ID        string `json:"id,omitempty"` // Unique per round; older files have none
	Hash      string `json:"hash"`
	Score     int    `json:"score"`
	Matches   int    `json:"matches,omitempty"`
	Cleared   int    `json:"cleared,omitempty"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// ScoreHistory is the stored rounds for one board config plus the round
// being played. Entries is kept sorted by score, best first.
type ScoreHistory struct {
	Entries        []ScoreHistoryEntry
	HighScoreEntry *ScoreHistoryEntry
	CurrentScore   *ScoreHistoryEntry
	Attempts       int
}

func byScore(a, b ScoreHistoryEntry) int {
	return b.Score - a.Score
}

func (sh ScoreHistory) GetHighScoreEntry() *ScoreHistoryEntry {
	return sh.HighScoreEntry
}

// GetNScoreEntries returns up to n entries, the current round included,
// best first.
func (sh ScoreHistory) GetNScoreEntries(n int) []ScoreHistoryEntry {
	all := slices.Clone(sh.Entries)
	if sh.CurrentScore != nil {
		all = append(all, *sh.CurrentScore)
	}
	slices.SortStableFunc(all, byScore)
	return all[:min(n, len(all))]
}

// GotHighScore reports whether the current round ties or beats the stored
// best. With nothing stored any score is a high score.
func (sh ScoreHistory) GotHighScore() bool {
	if sh.HighScoreEntry == nil || sh.CurrentScore == nil {
		return true
	}
	return sh.CurrentScore.Score >= sh.HighScoreEntry.Score
}
