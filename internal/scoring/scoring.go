package scoring

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"sync/atomic"
	"time"
)

// Scoring manages the game's scoring logic, including event handling,
// bonuses, and history management.
type Scoring struct {
	// public
	CurrentScore int
	MatchCount   int
	ClearedCount int
	EmptySwaps   int
	// private
	storage    ScoreStorage // The interface for loading/saving scores.
	history    ScoreHistory
	scoreTable map[string]int
	configHash string
}

// InitScoring creates and initializes a new Scoring object.
// config identifies the board setup (size and palette, or a fixed layout) and
// history is kept per config. It loads the score history using the provided
// storage interface.
func InitScoring(config string, title string, storage ScoreStorage) (*Scoring, error) {
	s := &Scoring{
		scoreTable: getScoreTable(),
		storage:    storage,
		configHash: calculateHash(config),
	}
	s.CurrentScore = 0

	// Load all historical entries from storage.
	allEntries, err := s.storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("could not load score history: %w", err)
	}

	// Filter entries for the current board config.
	filteredEntries := []ScoreHistoryEntry{}
	for _, entry := range allEntries {
		if entry.Hash == s.configHash {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	slices.SortStableFunc(filteredEntries, byScore)

	s.history.Entries = filteredEntries
	s.history.Attempts = len(filteredEntries)
	if len(filteredEntries) > 0 {
		s.history.HighScoreEntry = &filteredEntries[0]
	}

	// Initialize the current session's score entry.
	s.history.CurrentScore = &ScoreHistoryEntry{
		ID:        newRoundID(),
		Hash:      s.configHash,
		Score:     s.CurrentScore,
		Timestamp: time.Now().Format(time.RFC3339),
		Title:     title,
	}

	return s, nil
}

// ScoreEvent updates the score based on a given game event.
func (s *Scoring) ScoreEvent(event string) {
	switch event {
	case "cell":
		s.ClearedCount++
	case "match", "longMatch":
		s.MatchCount++
	case "emptySwap":
		s.EmptySwaps++
	}
	s.add(s.scoreTable[event])
}

// ScoreEvents applies the same event n times.
func (s *Scoring) ScoreEvents(event string, n int) {
	for i := 0; i < n; i++ {
		s.ScoreEvent(event)
	}
}

// AddTimeBonus rewards the seconds left on the clock.
func (s *Scoring) AddTimeBonus(seconds int) {
	if seconds > 0 {
		s.add(seconds * s.scoreTable["secondLeft"])
	}
}

// AddMoveBonus rewards moves left unused when the target is reached.
func (s *Scoring) AddMoveBonus(moves int) {
	if moves > 0 {
		s.add(moves * s.scoreTable["moveLeft"])
	}
}

func (s *Scoring) add(points int) {
	s.CurrentScore += points

	if cur := s.history.CurrentScore; cur != nil {
		cur.Score = s.CurrentScore
		cur.Matches = s.MatchCount
		cur.Cleared = s.ClearedCount
	}
}

// SaveEntries persists the score for the completed game.
// It reads all scores, updates the list, and writes it back using the storage interface.
func (s *Scoring) SaveEntries() error {
	if s.history.CurrentScore == nil {
		return nil // Nothing to save.
	}

	allEntries, err := s.storage.LoadAll()
	if err != nil {
		return fmt.Errorf("could not load scores for saving: %w", err)
	}

	// Create a new list of entries, excluding any previous scores for the current config.
	updatedEntries := make([]ScoreHistoryEntry, 0)
	for _, entry := range allEntries {
		if entry.Hash != s.configHash {
			updatedEntries = append(updatedEntries, entry)
		}
	}

	// Add the current session's score and all other historical scores for this config.
	updatedEntries = append(updatedEntries, *s.history.CurrentScore)
	for _, entry := range s.history.Entries {
		if entry.ID != s.history.CurrentScore.ID {
			updatedEntries = append(updatedEntries, entry)
		}
	}

	// Save the complete, updated list back to storage.
	return s.storage.SaveAll(updatedEntries)
}

// Accessor methods for score history, delegating to the history object.
func (s *Scoring) GetHighScore() *ScoreHistoryEntry {
	return s.history.GetHighScoreEntry()
}

func (s *Scoring) GetAttempts() int {
	return s.history.Attempts
}

// GetNumPrevious returns the number of stored entries for this config,
// not counting the game in progress.
func (s *Scoring) GetNumPrevious() int {
	return len(s.history.Entries)
}

func (s *Scoring) GotHighScore() bool {
	return s.history.GotHighScore()
}

func (s *Scoring) GetNScoreEntries(n int) []ScoreHistoryEntry {
	return s.history.GetNScoreEntries(n)
}

var roundSeq atomic.Uint64

// newRoundID is unique within a process and, through the clock, across runs.
func newRoundID() string {
	return fmt.Sprintf("%x-%x", time.Now().UnixNano(), roundSeq.Add(1))
}

// calculateHash generates a SHA256 hash for the given config.
func calculateHash(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}

// getScoreTable returns the predefined values for different scoring events.
func getScoreTable() map[string]int {
	return map[string]int{
		"cell":       10,
		"match":      0,
		"longMatch":  50,
		"crossMatch": 100,
		"emptySwap":  -20,
		"roundBonus": 500,
		"moveLeft":   25,
		"secondLeft": 10,
	}
}
