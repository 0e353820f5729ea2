package scoring

import (
	"errors"
	"testing"
)

// MockScoreStorage is a mock implementation of the ScoreStorage interface
// that stores score entries in memory. This is used for testing.
type MockScoreStorage struct {
	Entries []ScoreHistoryEntry
	err     error // To simulate errors from the storage layer.
}

// LoadAll returns the in-memory entries or a simulated error.
func (m *MockScoreStorage) LoadAll() ([]ScoreHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.Entries, nil
}

// SaveAll replaces the in-memory entries with the provided slice or returns a simulated error.
func (m *MockScoreStorage) SaveAll(entries []ScoreHistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.Entries = entries
	return nil
}

// TestInitScoring_NewConfig verifies that scoring is initialized correctly for a
// board config with no prior score history.
func TestInitScoring_NewConfig(t *testing.T) {
	mockStorage := &MockScoreStorage{} // No history

	scoring, err := InitScoring("8x8/RGBY", "Round 1", mockStorage)

	if err != nil {
		t.Fatalf("InitScoring returned an unexpected error: %v", err)
	}

	if scoring.GetAttempts() != 0 {
		t.Errorf("expected 0 attempts for a new config, but got %d", scoring.GetAttempts())
	}

	if scoring.GetHighScore() != nil {
		t.Errorf("expected nil high score for a new config, but got %v", scoring.GetHighScore())
	}

	if scoring.CurrentScore != 0 {
		t.Errorf("expected initial score of 0, but got %d", scoring.CurrentScore)
	}
}

// TestInitScoring_WithHistory verifies that only entries for the same config
// are loaded and the best one becomes the high score.
func TestInitScoring_WithHistory(t *testing.T) {
	config := "8x8/RGBY"
	hash := calculateHash(config)

	mockStorage := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{
			{Hash: "some_other_hash", Score: 9999, Title: "Other"},
			{Hash: hash, Score: 500, Title: "High Score"},
			{Hash: hash, Score: 120, Title: "Low Score"},
		},
	}

	scoring, err := InitScoring(config, "Round 1", mockStorage)

	if err != nil {
		t.Fatalf("InitScoring returned an unexpected error: %v", err)
	}

	if scoring.GetAttempts() != 2 {
		t.Errorf("expected 2 attempts, but got %d", scoring.GetAttempts())
	}

	highScore := scoring.GetHighScore()
	if highScore == nil {
		t.Fatalf("expected a high score, but got nil")
	}

	if highScore.Score != 500 {
		t.Errorf("expected high score of 500, but got %d", highScore.Score)
	}
}

func TestInitScoring_StorageError(t *testing.T) {
	mockStorage := &MockScoreStorage{err: errors.New("disk gone")}

	if _, err := InitScoring("8x8/RGBY", "Round 1", mockStorage); err == nil {
		t.Error("expected an error when storage fails to load")
	}
}

// TestScoreEvent checks that match events correctly modify the score and counters.
func TestScoreEvent(t *testing.T) {
	mockStorage := &MockScoreStorage{}
	scoring, _ := InitScoring("3x3/RGB", "Test", mockStorage)

	scoring.ScoreEvents("cell", 3)
	if scoring.CurrentScore != 30 {
		t.Errorf("cell: expected score 30, got %d", scoring.CurrentScore)
	}
	if scoring.ClearedCount != 3 {
		t.Errorf("cell: expected cleared count 3, got %d", scoring.ClearedCount)
	}

	scoring.ScoreEvent("longMatch")
	if scoring.CurrentScore != 80 {
		t.Errorf("longMatch: expected score 80, got %d", scoring.CurrentScore)
	}
	if scoring.MatchCount != 1 {
		t.Errorf("longMatch: expected match count 1, got %d", scoring.MatchCount)
	}

	scoring.ScoreEvent("crossMatch")
	if scoring.CurrentScore != 180 {
		t.Errorf("crossMatch: expected score 180, got %d", scoring.CurrentScore)
	}

	scoring.ScoreEvent("emptySwap")
	if scoring.CurrentScore != 160 {
		t.Errorf("emptySwap: expected score 160, got %d", scoring.CurrentScore)
	}
	if scoring.EmptySwaps != 1 {
		t.Errorf("emptySwap: expected 1 empty swap, got %d", scoring.EmptySwaps)
	}

	scoring.ScoreEvent("unknownEvent")
	if scoring.CurrentScore != 160 {
		t.Errorf("unknown events should not change the score, got %d", scoring.CurrentScore)
	}
}

func TestBonuses(t *testing.T) {
	scoring, _ := InitScoring("3x3/RGB", "Test", &MockScoreStorage{})

	scoring.AddMoveBonus(4)
	if scoring.CurrentScore != 100 {
		t.Errorf("move bonus: expected 100, got %d", scoring.CurrentScore)
	}

	scoring.AddTimeBonus(12)
	if scoring.CurrentScore != 220 {
		t.Errorf("time bonus: expected 220, got %d", scoring.CurrentScore)
	}

	scoring.AddTimeBonus(-5)
	scoring.AddMoveBonus(0)
	if scoring.CurrentScore != 220 {
		t.Errorf("non-positive bonuses should be ignored, got %d", scoring.CurrentScore)
	}
}

// TestGetNScoreEntries_IncludesCurrent verifies that GetNScoreEntries returns
// a combined list of historical scores and the current game's score, sorted correctly.
func TestGetNScoreEntries_IncludesCurrent(t *testing.T) {
	config := "6x6/RGB"
	hash := calculateHash(config)

	mockStorage := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{
			{Hash: hash, Score: 100, Title: "Low"},
			{Hash: hash, Score: 300, Title: "High"},
		},
	}

	scoring, _ := InitScoring(config, "Test", mockStorage)

	// Set current score to something in between
	scoring.ScoreEvents("cell", 20)

	// Request top 5 entries (should get all 3)
	entries := scoring.GetNScoreEntries(5)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Expected order: 300 (High), 200 (Current), 100 (Low)
	if entries[0].Score != 300 {
		t.Errorf("expected first entry score 300, got %d", entries[0].Score)
	}
	if entries[1].Score != 200 {
		t.Errorf("expected second entry score 200, got %d", entries[1].Score)
	}
	if entries[2].Score != 100 {
		t.Errorf("expected third entry score 100, got %d", entries[2].Score)
	}

	if top := scoring.GetNScoreEntries(1); len(top) != 1 || top[0].Score != 300 {
		t.Errorf("expected only the 300 entry, got %+v", top)
	}
}

// TestGetNumPrevious verifies that GetNumPrevious returns only the count of historical entries.
func TestGetNumPrevious(t *testing.T) {
	config := "6x6/RGB"
	hash := calculateHash(config)

	mockStorage := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{
			{Hash: hash, Score: 10},
			{Hash: hash, Score: 20},
			{Hash: hash, Score: 30},
		},
	}

	scoring, _ := InitScoring(config, "Test", mockStorage)

	// Current score exists but should not affect the count of *previous* attempts
	scoring.CurrentScore = 50

	count := scoring.GetNumPrevious()
	if count != 3 {
		t.Errorf("expected 3 previous entries, got %d", count)
	}
}

// TestSaveEntries checks that saving keeps other configs' entries and adds the current game.
func TestSaveEntries(t *testing.T) {
	config := "4x4/RGBY"
	hash := calculateHash(config)

	mockStorage := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{
			{Hash: "other", Score: 70, Timestamp: "2020-01-01T00:00:00Z"},
			{Hash: hash, Score: 40, Timestamp: "2020-01-02T00:00:00Z"},
		},
	}

	scoring, _ := InitScoring(config, "Test", mockStorage)
	scoring.ScoreEvents("cell", 9)

	if err := scoring.SaveEntries(); err != nil {
		t.Fatalf("SaveEntries returned error: %v", err)
	}

	if len(mockStorage.Entries) != 3 {
		t.Fatalf("expected 3 stored entries, got %d", len(mockStorage.Entries))
	}
	if mockStorage.Entries[0].Hash != "other" {
		t.Errorf("expected other config first, got %+v", mockStorage.Entries[0])
	}
	if mockStorage.Entries[1].Score != 90 {
		t.Errorf("expected current score 90, got %d", mockStorage.Entries[1].Score)
	}
}

func TestGotHighScore(t *testing.T) {
	config := "4x4/RGBY"
	hash := calculateHash(config)
	mockStorage := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{{Hash: hash, Score: 100}},
	}

	scoring, _ := InitScoring(config, "Test", mockStorage)
	if scoring.GotHighScore() {
		t.Error("0 should not beat a high score of 100")
	}

	scoring.ScoreEvents("cell", 10)
	if !scoring.GotHighScore() {
		t.Error("100 should tie the high score")
	}
}

// TestSaveEntries_RecordsRoundStats verifies that the saved entry carries the
// match and cleared counts of the round.
func TestSaveEntries_RecordsRoundStats(t *testing.T) {
	mockStorage := &MockScoreStorage{}
	scoring, err := InitScoring("3x3/RGBY", "Stats", mockStorage)
	if err != nil {
		t.Fatalf("InitScoring returned an unexpected error: %v", err)
	}

	scoring.ScoreEvent("match")
	scoring.ScoreEvents("cell", 3)

	if err := scoring.SaveEntries(); err != nil {
		t.Fatalf("SaveEntries returned an unexpected error: %v", err)
	}
	if len(mockStorage.Entries) != 1 {
		t.Fatalf("expected 1 saved entry, got %d", len(mockStorage.Entries))
	}

	saved := mockStorage.Entries[0]
	if saved.Score != 30 || saved.Matches != 1 || saved.Cleared != 3 {
		t.Errorf("expected score 30 with 1 match and 3 cleared, got %+v", saved)
	}
}

// TestSaveEntries_SameSecondKeepsBoth verifies that a stored round finishing
// in the same second as the current one is not dropped on save.
func TestSaveEntries_SameSecondKeepsBoth(t *testing.T) {
	config := "3x3/RGBY"
	stored := ScoreHistoryEntry{ID: "earlier", Hash: calculateHash(config), Score: 40, Timestamp: "2026-10-19T12:00:00Z"}
	mockStorage := &MockScoreStorage{Entries: []ScoreHistoryEntry{stored}}

	scoring, err := InitScoring(config, "Same second", mockStorage)
	if err != nil {
		t.Fatalf("InitScoring returned an unexpected error: %v", err)
	}
	scoring.history.CurrentScore.Timestamp = stored.Timestamp

	if err := scoring.SaveEntries(); err != nil {
		t.Fatalf("SaveEntries returned an unexpected error: %v", err)
	}
	if len(mockStorage.Entries) != 2 {
		t.Fatalf("expected 2 saved entries, got %d: %+v", len(mockStorage.Entries), mockStorage.Entries)
	}
	if mockStorage.Entries[0].ID == stored.ID {
		t.Errorf("expected the current round to get its own ID")
	}
}
