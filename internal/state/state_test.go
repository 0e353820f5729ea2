package state

import (
	"context"
	"go-match3/internal/board"
	"go-match3/internal/scoring"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStorage implements scoring.ScoreStorage for testing
type MockStorage struct {
	Entries    []scoring.ScoreHistoryEntry
	SaveCalled bool
}

func (m *MockStorage) LoadAll() ([]scoring.ScoreHistoryEntry, error) {
	return m.Entries, nil
}

func (m *MockStorage) SaveAll(entries []scoring.ScoreHistoryEntry) error {
	m.Entries = entries
	m.SaveCalled = true
	return nil
}

// fixedRand always picks the same palette index.
type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

const (
	R = board.Red
	G = board.Green
	B = board.Blue
	Y = board.Yellow
)

// Swapping (1,0) with (1,1) lines up three reds in the top row. Swapping
// (2,1) with (2,2) matches nothing.
var swapLayout = [][]board.Color{
	{R, G, R},
	{G, R, B},
	{Y, B, G},
}

func newTestState(t *testing.T, opts GameOptions) (*State, *MockStorage) {
	t.Helper()
	b, err := board.FromColors(swapLayout, board.DefaultPalette, fixedRand(3))
	require.NoError(t, err)

	store := &MockStorage{}
	sc, err := scoring.InitScoring(b.String(), "Test", store)
	require.NoError(t, err)

	s := NewState(b, *sc, opts)
	require.NoError(t, s.FSM.Event(context.Background(), "initGame"))
	return s, store
}

func fire(s *State, event string, args ...interface{}) {
	_ = s.FSM.Event(context.Background(), event, args...)
}

func TestState_Init(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	assert.Equal(t, "idle", s.Phase())
	assert.Nil(t, s.Selected)
	assert.False(t, s.TimerEnabled)
}

func TestState_TimerLimits(t *testing.T) {
	s, _ := newTestState(t, GameOptions{TimerLimit: -1})
	assert.True(t, s.TimerEnabled)
	assert.Equal(t, AutoTimeLimit, s.TimeLimit)
	assert.Equal(t, AutoTimeLimit, s.TimeRemaining)

	s, _ = newTestState(t, GameOptions{TimerLimit: 15})
	assert.Equal(t, 15, s.TimeLimit)
}

func TestState_PressSelects(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	fire(s, "press", board.Point{X: 1, Y: 0})
	assert.Equal(t, "cellSelected", s.Phase())
	require.NotNil(t, s.Selected)
	assert.Equal(t, board.Point{X: 1, Y: 0}, *s.Selected)
}

func TestState_PressOutOfBoundsIgnored(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})
	before := s.Board.Colors()

	fire(s, "press", board.Point{X: 5, Y: 0})
	assert.Equal(t, "idle", s.Phase())
	assert.Nil(t, s.Selected)
	assert.Equal(t, before, s.Board.Colors())
}

func TestState_DragSwapMatches(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	fire(s, "press", board.Point{X: 1, Y: 0})
	fire(s, "release", board.Point{X: 1, Y: 1})

	assert.Equal(t, "idle", s.Phase())
	assert.Nil(t, s.Selected)
	assert.Equal(t, 1, s.Moves)
	require.Len(t, s.LastMatches, 1)
	assert.Equal(t, board.Red, s.LastMatches[0].Color)
	assert.Equal(t, []board.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, s.LastCleared)
	assert.True(t, s.IsJustCleared(board.Point{X: 1, Y: 0}))

	// Cleared cells refilled with yellow; the swapped green sits below.
	assert.Equal(t, [][]board.Color{
		{Y, Y, Y},
		{G, G, B},
		{Y, B, G},
	}, s.Board.Colors())

	assert.Equal(t, 30, s.Score.CurrentScore)
	assert.Equal(t, 3, s.Score.ClearedCount)
}

func TestState_ClickClickSwap(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	fire(s, "press", board.Point{X: 1, Y: 1})
	fire(s, "release", board.Point{X: 1, Y: 1})
	assert.Equal(t, "cellSelected", s.Phase(), "release on origin keeps selection")

	fire(s, "press", board.Point{X: 1, Y: 0})
	assert.Equal(t, "idle", s.Phase())
	assert.Equal(t, 1, s.Moves)
	assert.Len(t, s.LastMatches, 1)

	// The trailing release of the second click is not a transition from idle.
	assert.False(t, s.FSM.Can("release"))
}

func TestState_PressSameCellDeselects(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	fire(s, "press", board.Point{X: 0, Y: 0})
	fire(s, "release", board.Point{X: 0, Y: 0})
	fire(s, "press", board.Point{X: 0, Y: 0})

	assert.Equal(t, "idle", s.Phase())
	assert.Nil(t, s.Selected)
	assert.Equal(t, 0, s.Moves)
	assert.Equal(t, 0, s.InvalidSwaps)
}

func TestState_DiagonalSwapRejected(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})
	before := s.Board.Colors()

	fire(s, "press", board.Point{X: 0, Y: 0})
	fire(s, "release", board.Point{X: 1, Y: 1})

	assert.Equal(t, "idle", s.Phase())
	assert.Nil(t, s.Selected)
	assert.Equal(t, before, s.Board.Colors())
	assert.Equal(t, 0, s.Moves)
	assert.Equal(t, 1, s.InvalidSwaps)
}

func TestState_ReleaseOffBoardRejected(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})
	before := s.Board.Colors()

	fire(s, "press", board.Point{X: 2, Y: 2})
	fire(s, "release", board.Point{X: 3, Y: 2})

	assert.Equal(t, "idle", s.Phase())
	assert.Equal(t, before, s.Board.Colors())
	assert.Equal(t, 1, s.InvalidSwaps)
}

func TestState_EmptySwapKept(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	fire(s, "press", board.Point{X: 2, Y: 1})
	fire(s, "release", board.Point{X: 2, Y: 2})

	assert.Equal(t, "idle", s.Phase())
	assert.Equal(t, 1, s.Moves)
	assert.Empty(t, s.LastMatches)
	assert.Equal(t, [][]board.Color{
		{R, G, R},
		{G, R, G},
		{Y, B, B},
	}, s.Board.Colors())
	assert.Equal(t, -20, s.Score.CurrentScore)
	assert.Equal(t, 1, s.Score.EmptySwaps)
}

func TestState_Cancel(t *testing.T) {
	s, _ := newTestState(t, GameOptions{})

	fire(s, "press", board.Point{X: 0, Y: 0})
	fire(s, "cancel")

	assert.Equal(t, "idle", s.Phase())
	assert.Nil(t, s.Selected)
}

func TestState_TargetReachedWins(t *testing.T) {
	s, store := newTestState(t, GameOptions{Target: 30, MoveLimit: 5})

	fire(s, "press", board.Point{X: 1, Y: 0})
	fire(s, "release", board.Point{X: 1, Y: 1})

	assert.Equal(t, "endState", s.Phase())
	assert.True(t, s.Win)
	assert.False(t, s.Loss)
	// 30 for cells, 500 round bonus, 4 moves left at 25 each.
	assert.Equal(t, 630, s.Score.CurrentScore)
	assert.True(t, store.SaveCalled)
	assert.NoError(t, s.SaveErr)
}

func TestState_OutOfMovesLoses(t *testing.T) {
	s, store := newTestState(t, GameOptions{Target: 1000, MoveLimit: 1})

	fire(s, "press", board.Point{X: 2, Y: 1})
	fire(s, "release", board.Point{X: 2, Y: 2})

	assert.Equal(t, "endState", s.Phase())
	assert.True(t, s.Loss)
	assert.True(t, store.SaveCalled)

	// Input after the round is over goes nowhere.
	assert.False(t, s.FSM.Can("press"))
}

func TestState_OutOfMovesWithoutTargetWins(t *testing.T) {
	s, _ := newTestState(t, GameOptions{MoveLimit: 1})

	fire(s, "press", board.Point{X: 2, Y: 1})
	fire(s, "release", board.Point{X: 2, Y: 2})

	assert.True(t, s.Win)
	assert.Equal(t, 0, s.MovesLeft())
}

func TestState_TickCountsDown(t *testing.T) {
	s, store := newTestState(t, GameOptions{TimerLimit: 2, Target: 1000})

	fire(s, "press", board.Point{X: 0, Y: 0})
	fire(s, "tick")
	assert.Equal(t, "cellSelected", s.Phase())
	assert.True(t, s.IsSelected(board.Point{X: 0, Y: 0}), "tick keeps the selection")
	assert.Equal(t, 1, s.TimeRemaining)

	fire(s, "tick")
	assert.Equal(t, "endState", s.Phase())
	assert.Equal(t, 0, s.TimeRemaining)
	assert.True(t, s.Loss)
	assert.Nil(t, s.Selected)
	assert.True(t, store.SaveCalled)
}

func TestState_Helpers(t *testing.T) {
	assert.True(t, IsExitRequested("ctrl+c"))
	assert.True(t, IsExitRequested("q"))
	assert.False(t, IsExitRequested("a"))
	assert.True(t, IsCancelRequested("esc"))

	s, _ := newTestState(t, GameOptions{MoveLimit: 10})
	assert.Equal(t, 10, s.MovesLeft())
	assert.False(t, s.ReachedTarget(), "no target is never reached")
	assert.False(t, s.OutOfMoves())
}
