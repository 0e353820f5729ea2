package game

import (
	"errors"
	"fmt"
	"go-match3/internal/board"
	"go-match3/internal/scoring"
	"go-match3/internal/state"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// BoardConfig describes randomly generated rounds.
type BoardConfig struct {
	Width  int
	Height int
	Colors int // Palette size
	Rounds int
}

// ErrNoTimeLeft is returned when a timed round would start with an empty clock.
var ErrNoTimeLeft = errors.New("no time left on the session clock")

type Session struct {
	Layouts      []LayoutData // Fixed boards; empty means random boards
	Board        BoardConfig
	CurrentIndex int
	CurrentGame  *Game
	CurrentTitle string
	GameOptions  state.GameOptions
	ScoreStorage scoring.ScoreStorage
	Rand         *rand.Rand

	// Aggregate State
	TotalScore     int
	TotalTimeLimit int
	TimeRemaining  int

	// Batch State
	IsBatch   bool
	Randomize bool
}

func NewSession(cfg BoardConfig, layouts []LayoutData, opts state.GameOptions, storage scoring.ScoreStorage, rng *rand.Rand, randomize bool) (*Session, error) {
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}
	s := &Session{
		Layouts:      layouts,
		Board:        cfg,
		GameOptions:  opts,
		ScoreStorage: storage,
		Rand:         rng,
		Randomize:    randomize,
	}
	s.IsBatch = s.Rounds() > 1

	// Randomize if requested AND batch mode
	if s.IsBatch && s.Randomize && len(s.Layouts) > 0 {
		s.Rand.Shuffle(len(s.Layouts), func(i, j int) {
			s.Layouts[i], s.Layouts[j] = s.Layouts[j], s.Layouts[i]
		})
	}

	// The timer is shared by every round in the session.
	switch {
	case opts.TimerLimit > 0:
		s.TotalTimeLimit = opts.TimerLimit
	case opts.TimerLimit == -1:
		s.TotalTimeLimit = state.AutoTimeLimit * s.Rounds()
	default:
		s.TotalTimeLimit = 0
	}
	s.TimeRemaining = s.TotalTimeLimit

	if err := s.NextGame(); err != nil {
		return nil, err
	}

	return s, nil
}

// Rounds is the number of rounds in the session.
func (s *Session) Rounds() int {
	if len(s.Layouts) > 0 {
		return len(s.Layouts)
	}
	return s.Board.Rounds
}

func (s *Session) NextGame() error {
	if s.CurrentIndex >= s.Rounds() {
		return fmt.Errorf("no more rounds")
	}
	if s.TotalTimeLimit > 0 && s.TimeRemaining <= 0 {
		return ErrNoTimeLeft
	}

	b, config, title, err := s.newBoard()
	if err != nil {
		return err
	}

	// Construct options for this specific game
	gameOpts := s.GameOptions
	// The round runs on whatever is left of the session clock.
	if s.TotalTimeLimit > 0 {
		gameOpts.TimerLimit = s.TimeRemaining
	} else {
		gameOpts.TimerLimit = 0
	}

	sc, err := scoring.InitScoring(config, title, s.ScoreStorage)
	if err != nil {
		return err
	}

	g := NewGame(b, *sc, gameOpts)
	g.Init()

	s.CurrentGame = g
	s.CurrentTitle = title
	log.WithFields(logrus.Fields{
		"round": s.CurrentIndex + 1,
		"of":    s.Rounds(),
		"title": title,
	}).Info("round started")
	return nil
}

func (s *Session) newBoard() (*board.Board, string, string, error) {
	if len(s.Layouts) > 0 {
		l := s.Layouts[s.CurrentIndex]
		b, err := board.FromColors(l.Rows, l.Palette, s.Rand)
		if err != nil {
			return nil, "", "", fmt.Errorf("layout %s #%d: %w", l.Source, l.PartIndex, err)
		}
		title := l.Title
		if title == "" {
			title = l.Source
			if l.TotalParts > 1 {
				title = fmt.Sprintf("%s #%d", title, l.PartIndex)
			}
		}
		return b, l.Content, title, nil
	}

	palette := board.PaletteOf(s.Board.Colors)
	b, err := board.New(s.Board.Width, s.Board.Height, palette, s.Rand)
	if err != nil {
		return nil, "", "", fmt.Errorf("round %d: %w", s.CurrentIndex+1, err)
	}
	config := fmt.Sprintf("%dx%d/%s", s.Board.Width, s.Board.Height, palette)
	title := fmt.Sprintf("Round %d", s.CurrentIndex+1)
	return b, config, title, nil
}

func (s *Session) Update() {
	// Sync session state from current game
	if s.CurrentGame == nil || s.IsFinished() {
		return
	}

	if s.TotalTimeLimit > 0 {
		s.TimeRemaining = s.CurrentGame.State.TimeRemaining
	}

	if s.CurrentGame.State.Win {
		s.TotalScore += s.CurrentGame.State.Score.CurrentScore
		log.WithFields(logrus.Fields{
			"round": s.CurrentIndex + 1,
			"score": s.CurrentGame.State.Score.CurrentScore,
			"total": s.TotalScore,
		}).Info("round won")

		s.CurrentIndex++
		if s.TotalTimeLimit > 0 && s.TimeRemaining <= 0 {
			// A round won on time leaves nothing for the rest.
			log.WithField("skipped", s.Rounds()-s.CurrentIndex).Info("session clock ran out")
			s.CurrentIndex = s.Rounds()
			return
		}
		if s.CurrentIndex < s.Rounds() {
			if err := s.NextGame(); err != nil {
				log.WithError(err).Error("could not start next round")
			}
		}
	}
}

func (s *Session) IsFinished() bool {
	return s.CurrentIndex >= s.Rounds()
}

func (s *Session) IsSessionLoss() bool {
	if s.CurrentGame != nil && s.CurrentGame.State.Loss {
		return true
	}
	return false
}
