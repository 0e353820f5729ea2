package game

import (
	"context"
	"go-match3/internal/board"
	"go-match3/internal/scoring"
	"go-match3/internal/state"

	"github.com/sirupsen/logrus"
)

// Game encapsulates the core game logic, independent of the UI.
type Game struct {
	State *state.State
}

// NewGame initializes a new game instance.
func NewGame(b *board.Board, scoring scoring.Scoring, opts state.GameOptions) *Game {
	return &Game{
		State: state.NewState(b, scoring, opts),
	}
}

// Init initializes the game state.
func (g *Game) Init() {
	_ = g.State.FSM.Event(context.Background(), "initGame")
	log.WithFields(logrus.Fields{
		"width":   g.State.Board.Width(),
		"height":  g.State.Board.Height(),
		"palette": g.State.Board.Palette().String(),
		"target":  g.State.Options.Target,
		"moves":   g.State.Options.MoveLimit,
	}).Debug("game started")
}

// HandleTick processes a timer tick.
func (g *Game) HandleTick() {
	if g.IsOver() || !g.State.TimerEnabled {
		return
	}
	g.event("tick")
}

// HandlePress handles the primary pointer going down on grid cell (x, y).
// Coordinates outside the grid are accepted and ignored by the state machine.
func (g *Game) HandlePress(x, y int) {
	g.handlePoint("press", x, y)
}

// HandleRelease handles the primary pointer coming up on grid cell (x, y).
func (g *Game) HandleRelease(x, y int) {
	g.handlePoint("release", x, y)
}

// HandleCancel drops the current selection, if any.
func (g *Game) HandleCancel() {
	g.event("cancel")
}

func (g *Game) IsOver() bool {
	return g.State.IsGameOver()
}

func (g *Game) handlePoint(event string, x, y int) {
	if g.IsOver() {
		return
	}
	movesBefore := g.State.Moves
	g.event(event, board.Point{X: x, Y: y})

	if g.State.Moves > movesBefore {
		g.logSwap()
	}
}

func (g *Game) event(name string, args ...interface{}) {
	// Events with no transition from the current phase (a release after a
	// completed click, a tick mid-swap) are dropped.
	if !g.State.FSM.Can(name) {
		return
	}
	// We use background context as we don't need cancellation here
	_ = g.State.FSM.Event(context.Background(), name, args...)

	if g.IsOver() {
		entry := log.WithFields(logrus.Fields{
			"win":   g.State.Win,
			"score": g.State.Score.CurrentScore,
			"moves": g.State.Moves,
		})
		if g.State.SaveErr != nil {
			entry.WithError(g.State.SaveErr).Warn("could not save score")
		}
		entry.Debug("game over")
	}
}

func (g *Game) logSwap() {
	fields := logrus.Fields{
		"move":    g.State.Moves,
		"matches": len(g.State.LastMatches),
		"cleared": len(g.State.LastCleared),
		"score":   g.State.Score.CurrentScore,
	}
	if len(g.State.LastMatches) == 0 {
		log.WithFields(fields).Debug("swap without match")
		return
	}
	for _, m := range g.State.LastMatches {
		log.WithFields(logrus.Fields{
			"axis":  m.Axis.String(),
			"color": m.Color.String(),
			"len":   m.Len(),
			"start": m.Points[0].String(),
		}).Debug("match")
	}
	log.WithFields(fields).Debug("board refilled")
}
