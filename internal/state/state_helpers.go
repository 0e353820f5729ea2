package state

import "go-match3/internal/board"

func IsExitRequested(ch string) bool {
	return ch == "ctrl+c" || ch == "q"
}

func IsCancelRequested(ch string) bool {
	return ch == "esc"
}

// Phase is the current FSM state name.
func (s *State) Phase() string {
	return s.FSM.Current()
}

func (s *State) IsSelected(p board.Point) bool {
	return s.Selected != nil && *s.Selected == p
}

// IsJustCleared reports whether p was part of a match cleared by the last swap.
func (s *State) IsJustCleared(p board.Point) bool {
	for _, c := range s.LastCleared {
		if c == p {
			return true
		}
	}
	return false
}

func (s *State) ReachedTarget() bool {
	return s.Options.Target > 0 && s.Score.CurrentScore >= s.Options.Target
}

func (s *State) OutOfMoves() bool {
	return s.Options.MoveLimit > 0 && s.Moves >= s.Options.MoveLimit
}

// MovesLeft is 0 when there is no move limit.
func (s *State) MovesLeft() int {
	if s.Options.MoveLimit <= 0 {
		return 0
	}
	return max(s.Options.MoveLimit-s.Moves, 0)
}

func (s *State) IsGameOver() bool {
	return s.Win || s.Loss
}

// outOfResources ends a round whose moves or time ran out. Without a target
// the round is a score attack and counts as won.
func (s *State) outOfResources() {
	if s.Options.Target > 0 {
		s.Loss = true
		return
	}
	s.Win = true
}
