package state

import (
	"context"
	"go-match3/internal/board"
	"go-match3/internal/scoring"

	"github.com/looplab/fsm"
)

// AutoTimeLimit is the per-round time in seconds when the timer is set to auto.
const AutoTimeLimit = 60

type GameOptions struct {
	TimerLimit int // -1 auto, 0 off, >0 seconds
	MoveLimit  int // 0 unlimited
	Target     int // score that wins the round, 0 for none
}

type State struct {
	Board         *board.Board
	Selected      *board.Point  // Cell picked by the last press, nil when idle
	LastMatches   []board.Match // Matches cleared by the last swap
	LastCleared   []board.Point // Union of LastMatches
	Moves         int           // Committed swaps
	InvalidSwaps  int           // Rejected swap attempts
	Win           bool
	Loss          bool
	Score         scoring.Scoring
	SaveErr       error // Error from persisting the score at the end of the round
	FSM           *fsm.FSM
	TimerEnabled  bool
	TimeLimit     int // Total time in seconds
	TimeRemaining int // Current time remaining in seconds
	Options       GameOptions

	target board.Point // Second cell of the swap being attempted
}

func NewState(b *board.Board, scoring scoring.Scoring, opts GameOptions) *State {
	s := &State{
		Board:        b,
		Score:        scoring,
		TimerEnabled: opts.TimerLimit != 0,
		Options:      opts,
	}

	if s.TimerEnabled {
		limit := opts.TimerLimit
		if limit == -1 {
			limit = AutoTimeLimit
		}
		s.TimeLimit = limit
		s.TimeRemaining = limit
	}

	s.FSM = fsm.NewFSM(
		"start",
		getStateTransitions(),
		getStateCallbacks(s),
	)

	return s
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "initGame", Src: []string{"start"}, Dst: "idle"},

		// Selecting the first cell
		{Name: "press", Src: []string{"idle"}, Dst: "pressCheck"},
		{Name: "ignore", Src: []string{"pressCheck"}, Dst: "idle"},
		{Name: "selected", Src: []string{"pressCheck"}, Dst: "cellSelected"},
		{Name: "cancel", Src: []string{"cellSelected"}, Dst: "idle"},

		// Picking the second cell: a second click, or releasing a drag
		{Name: "press", Src: []string{"cellSelected"}, Dst: "targetCheck"},
		{Name: "deselect", Src: []string{"targetCheck"}, Dst: "idle"},
		{Name: "release", Src: []string{"cellSelected"}, Dst: "releaseCheck"},
		{Name: "hold", Src: []string{"releaseCheck"}, Dst: "cellSelected"},
		{Name: "attempt", Src: []string{"targetCheck", "releaseCheck"}, Dst: "swapCheck"},

		// Swap
		{Name: "reject", Src: []string{"swapCheck"}, Dst: "idle"},
		{Name: "swap", Src: []string{"swapCheck"}, Dst: "resolving"},
		{Name: "resolved", Src: []string{"resolving"}, Dst: "evaluating"},

		// End Loop
		{Name: "wait", Src: []string{"evaluating"}, Dst: "idle"},
		{Name: "gameEnd", Src: []string{"evaluating"}, Dst: "endState"},
		{Name: "tick", Src: []string{"idle", "cellSelected"}, Dst: "timeCheck"},
		{Name: "timePassed", Src: []string{"timeCheck"}, Dst: "idle"},
		{Name: "resume", Src: []string{"timeCheck"}, Dst: "cellSelected"},
		{Name: "timeExpired", Src: []string{"timeCheck"}, Dst: "endState"},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_idle": func(ctx context.Context, e *fsm.Event) {
			s.Selected = nil
		},
		"enter_timeCheck": func(ctx context.Context, e *fsm.Event) {
			s.TimeRemaining--
			if s.TimeRemaining <= 0 {
				s.TimeRemaining = 0
				s.outOfResources()
				e.FSM.Event(ctx, "timeExpired")
				return
			}
			if s.Selected != nil {
				e.FSM.Event(ctx, "resume")
				return
			}
			e.FSM.Event(ctx, "timePassed")
		},
		"enter_pressCheck": func(ctx context.Context, e *fsm.Event) {
			s.LastMatches = nil
			s.LastCleared = nil

			p, ok := pointArg(e)
			if !ok || !s.Board.IsValidCoordinate(p.X, p.Y) {
				// Clicks outside the grid are dropped.
				e.FSM.Event(ctx, "ignore")
				return
			}
			s.Selected = &p
			e.FSM.Event(ctx, "selected")
		},
		"enter_targetCheck": func(ctx context.Context, e *fsm.Event) {
			p, _ := pointArg(e)
			if s.IsSelected(p) {
				e.FSM.Event(ctx, "deselect")
				return
			}
			s.target = p
			e.FSM.Event(ctx, "attempt")
		},
		"enter_releaseCheck": func(ctx context.Context, e *fsm.Event) {
			p, _ := pointArg(e)
			if s.IsSelected(p) {
				// Released on the origin: keep the selection for a second click.
				e.FSM.Event(ctx, "hold")
				return
			}
			s.target = p
			e.FSM.Event(ctx, "attempt")
		},
		"enter_swapCheck": func(ctx context.Context, e *fsm.Event) {
			from := *s.Selected
			if !s.Board.CanSwap(from.X, from.Y, s.target.X, s.target.Y) {
				s.InvalidSwaps++
				e.FSM.Event(ctx, "reject")
				return
			}
			e.FSM.Event(ctx, "swap")
		},
		"enter_resolving": func(ctx context.Context, e *fsm.Event) {
			from := *s.Selected
			_ = s.Board.SwapCells(from.X, from.Y, s.target.X, s.target.Y)
			s.Moves++

			matches := s.Board.FindMatches()
			s.LastMatches = matches
			s.LastCleared = board.MatchedPoints(matches)

			if len(matches) == 0 {
				s.Score.ScoreEvent("emptySwap")
				e.FSM.Event(ctx, "resolved")
				return
			}

			for _, m := range matches {
				if m.Len() > board.MinRun {
					s.Score.ScoreEvent("longMatch")
				} else {
					s.Score.ScoreEvent("match")
				}
			}
			s.Score.ScoreEvents("crossMatch", len(board.CrossPoints(matches)))
			s.Score.ScoreEvents("cell", s.Board.ClearMatches(matches))

			// Refill once; matches formed by new colors wait for the next swap.
			s.Board.FillEmptyCells()
			e.FSM.Event(ctx, "resolved")
		},
		"enter_evaluating": func(ctx context.Context, e *fsm.Event) {
			if s.ReachedTarget() {
				s.Win = true
				s.Score.ScoreEvent("roundBonus")
				s.Score.AddMoveBonus(s.MovesLeft())
				if s.TimerEnabled {
					s.Score.AddTimeBonus(s.TimeRemaining)
				}
				e.FSM.Event(ctx, "gameEnd")
				return
			}

			if s.OutOfMoves() {
				s.outOfResources()
				e.FSM.Event(ctx, "gameEnd")
				return
			}

			e.FSM.Event(ctx, "wait")
		},
		"enter_endState": func(ctx context.Context, e *fsm.Event) {
			s.Selected = nil
			s.SaveErr = s.Score.SaveEntries()
		},
	}
}

func pointArg(e *fsm.Event) (board.Point, bool) {
	if len(e.Args) == 0 {
		return board.Point{}, false
	}
	p, ok := e.Args[0].(board.Point)
	return p, ok
}
