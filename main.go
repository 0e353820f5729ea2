package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"go-match3/internal/board"
	"go-match3/internal/game"
	"go-match3/internal/scoring"
	"go-match3/internal/state"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var (
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red for losses
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green for wins and matches
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Color for the score
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Terminal colors for each tile color. This is the only place board colors
// meet the terminal.
var tileColors = map[board.Color]lipgloss.Color{
	board.Red:    lipgloss.Color("9"),
	board.Green:  lipgloss.Color("10"),
	board.Blue:   lipgloss.Color("12"),
	board.Yellow: lipgloss.Color("11"),
	board.Purple: lipgloss.Color("13"),
	board.Orange: lipgloss.Color("208"),
}

// Screen geometry of the board: one banner line and the top border above it,
// the left border before it, two columns per cell.
const (
	boardOriginX = 1
	boardOriginY = 2
	cellWidth    = 2
)

// screenToGrid maps a terminal cell to a board coordinate. Positions left of
// or above the board map to -1; positions past its right or bottom edge map
// past the board. Either way the state machine drops them.
func screenToGrid(sx, sy int) (int, int) {
	x, y := -1, -1
	if sx >= boardOriginX {
		x = (sx - boardOriginX) / cellWidth
	}
	if sy >= boardOriginY {
		y = sy - boardOriginY
	}
	return x, y
}

type LocalState struct {
	Session *game.Session
	Cursor  board.Point
	Keys    keyMap
	Help    help.Model
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func initialModel(cfg game.BoardConfig, paths []string, opts state.GameOptions, storage scoring.ScoreStorage, rng *rand.Rand, randomize bool) (*LocalState, error) {
	var layouts []game.LayoutData
	if len(paths) > 0 {
		var err error
		layouts, err = game.LoadLayouts(paths)
		if err != nil {
			return nil, err
		}
		if len(layouts) == 0 {
			return nil, fmt.Errorf("no layouts found in provided paths")
		}
	}

	// Session handles scoring init per round.
	sess, err := game.NewSession(cfg, layouts, opts, storage, rng, randomize)
	if err != nil {
		return nil, err
	}

	return &LocalState{
		Session: sess,
		Keys:    defaultKeyMap(),
		Help:    help.New(),
	}, nil
}

func noOp() tea.Msg {
	return nil
}

func (s *LocalState) Init() tea.Cmd {
	// Session initializes first round automatically
	if s.Session.CurrentGame.State.TimerEnabled {
		return tickCmd()
	}
	return noOp
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	currentGame := s.Session.CurrentGame

	switch msg := msg.(type) {
	case TickMsg:
		currentGame.HandleTick()
		return s, s.afterInput(tickCmd())
	case tea.WindowSizeMsg:
		s.Help.Width = msg.Width
	case tea.MouseMsg:
		x, y := screenToGrid(msg.X, msg.Y)
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			if currentGame.State.Board.IsValidCoordinate(x, y) {
				s.Cursor = board.Point{X: x, Y: y}
			}
			currentGame.HandlePress(x, y)
		case msg.Action == tea.MouseActionRelease &&
			(msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone):
			// Some terminals do not report which button was released.
			currentGame.HandleRelease(x, y)
		default:
			return s, nil
		}
		return s, s.afterInput(nil)
	case tea.KeyMsg:
		// Handle exit request
		if state.IsExitRequested(msg.String()) {
			return s, tea.Quit
		}

		b := currentGame.State.Board
		switch {
		case key.Matches(msg, s.Keys.Up):
			s.Cursor.Y = max(s.Cursor.Y-1, 0)
		case key.Matches(msg, s.Keys.Down):
			s.Cursor.Y = min(s.Cursor.Y+1, b.Height()-1)
		case key.Matches(msg, s.Keys.Left):
			s.Cursor.X = max(s.Cursor.X-1, 0)
		case key.Matches(msg, s.Keys.Right):
			s.Cursor.X = min(s.Cursor.X+1, b.Width()-1)
		case key.Matches(msg, s.Keys.Select):
			// A key press is a click: press and release on the cursor.
			currentGame.HandlePress(s.Cursor.X, s.Cursor.Y)
			currentGame.HandleRelease(s.Cursor.X, s.Cursor.Y)
		case key.Matches(msg, s.Keys.Cancel):
			currentGame.HandleCancel()
		case key.Matches(msg, s.Keys.Help):
			s.Help.ShowAll = !s.Help.ShowAll
		}
		return s, s.afterInput(nil)
	}

	return s, nil
}

// afterInput lets the session react to the game and ends the program when the
// session is over. next is returned otherwise.
func (s *LocalState) afterInput(next tea.Cmd) tea.Cmd {
	s.Session.Update() // Check for session loss or transition
	if s.Session.IsSessionLoss() || s.Session.IsFinished() {
		return tea.Quit
	}
	// A new round may be smaller than the last one.
	b := s.Session.CurrentGame.State.Board
	s.Cursor.X = min(s.Cursor.X, b.Width()-1)
	s.Cursor.Y = min(s.Cursor.Y, b.Height()-1)
	return next
}

func (s *LocalState) RenderBoard() string {
	g := s.Session.CurrentGame
	over := g.State.IsGameOver()

	var sb strings.Builder
	g.State.Board.Each(func(p board.Point, c board.Cell) {
		if p.X == 0 && p.Y > 0 {
			sb.WriteByte('\n')
		}

		style := lipgloss.NewStyle().
			Background(tileColors[c.Color()]).
			Foreground(lipgloss.Color("0"))
		glyph := "  "

		switch {
		case !over && g.State.IsSelected(p):
			glyph = "[]"
			style = style.Bold(true)
		case !over && p == s.Cursor:
			glyph = "()"
		case g.State.IsJustCleared(p):
			glyph = "**"
		}
		sb.WriteString(style.Render(glyph))
	})
	return sb.String()
}

func (s *LocalState) View() string {
	g := s.Session.CurrentGame

	// If session finished with a win, show congratulations
	if s.Session.IsFinished() && g != nil && g.State.Win {
		finalScore := g.State.Score.CurrentScore
		display := greenStyle.Render(fmt.Sprintf("Round complete! Final score: %d", finalScore))
		if g.State.Score.GotHighScore() {
			display += "\nYou got a high score! Top 5 scores:"
			for _, entry := range g.State.Score.GetNScoreEntries(5) {
				display += fmt.Sprintf("\n  * %d on %s", entry.Score, entry.Timestamp)
			}
		}
		if s.Session.IsBatch {
			display += "\n" + greenStyle.Render(fmt.Sprintf("All rounds complete! Total Score: %d", s.Session.TotalScore))
		}
		return display + "\n"
	}

	if s.Session.IsFinished() {
		return ""
	}

	b := g.State.Board

	// 1. Banner
	display := fmt.Sprintf("┃ %s | %dx%d | %s", s.Session.CurrentTitle, b.Width(), b.Height(), b.Palette())

	// 2. Board
	borderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	display += "\n" + borderStyle.Render(s.RenderBoard())

	// 3. Status Line
	statusLine := "SCORE: " + fmt.Sprint(g.State.Score.CurrentScore)

	if g.State.Options.MoveLimit > 0 {
		statusLine += fmt.Sprintf(" | MOVES: %d/%d", g.State.Moves, g.State.Options.MoveLimit)
	} else {
		statusLine += fmt.Sprintf(" | MOVES: %d", g.State.Moves)
	}
	if g.State.Options.Target > 0 {
		statusLine += fmt.Sprintf(" | TARGET: %d", g.State.Options.Target)
	}

	// Batch Mode Indicator
	if s.Session.IsBatch {
		statusLine += fmt.Sprintf(" | ROUND %d/%d", s.Session.CurrentIndex+1, s.Session.Rounds())
		statusLine += fmt.Sprintf(" | TOTAL: %d", s.Session.TotalScore)
	}

	if g.State.TimerEnabled {
		timeColor := lipgloss.Color("11")

		totalLimit := float64(g.State.TimeLimit)
		if s.Session.IsBatch && s.Session.TotalTimeLimit > 0 {
			totalLimit = float64(s.Session.TotalTimeLimit)
		}
		if float64(g.State.TimeRemaining) <= totalLimit/3.0 {
			timeColor = lipgloss.Color("9")
		}

		timeStyle := lipgloss.NewStyle().Foreground(timeColor)
		minutes := g.State.TimeRemaining / 60
		seconds := g.State.TimeRemaining % 60
		statusLine += " | TIME: " + timeStyle.Render(fmt.Sprintf("%02d:%02d", minutes, seconds))
	}

	display += "\n" + scoreStyle.Render(statusLine)

	// Last move
	switch {
	case len(g.State.LastMatches) > 0:
		display += "\n" + greenStyle.Render(fmt.Sprintf("Cleared %d cells in %d matches!", len(g.State.LastCleared), len(g.State.LastMatches)))
	case g.State.Moves > 0 && g.State.Selected == nil:
		display += "\n" + dimStyle.Render("No match.")
	default:
		display += "\n"
	}

	// Previous attempts
	if g.State.Score.GetAttempts() > 0 {
		display += fmt.Sprintf("\nAttempt: %d | High score (this board): %d", g.State.Score.GetAttempts()+1, g.State.Score.GetHighScore().Score)
	} else {
		display += "\nThis is your first try on this board! Good luck!"
	}

	// Final Messages (Loss)
	if g.State.Loss {
		scoreStr := fmt.Sprintf("Final score: %d", g.State.Score.CurrentScore)
		if g.State.TimerEnabled && g.State.TimeRemaining <= 0 {
			display += "\n" + redStyle.Render("Time's up! "+scoreStr)
		} else {
			display += "\n" + redStyle.Render("Out of moves! "+scoreStr)
		}
		return display + "\n"
	}

	display += "\n\n" + s.Help.View(s.Keys)
	return display
}

type timerFlag int

func (t *timerFlag) String() string {
	if *t == -1 {
		return "auto"
	}
	return fmt.Sprint(int(*t))
}

func (t *timerFlag) Set(s string) error {
	if s == "true" {
		*t = -1 // Auto
		return nil
	}
	if s == "false" {
		*t = 0 // Disabled
		return nil
	}

	// Try parsing as simple integer first
	if val, err := strconv.Atoi(s); err == nil {
		*t = timerFlag(val)
		return nil
	}

	// Try parsing MM:SS
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		min, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil {
			*t = timerFlag(min*60 + sec)
			return nil
		}
	}

	return fmt.Errorf("invalid timer format: %s (use 'MM:SS' or seconds)", s)
}

func (t *timerFlag) IsBoolFlag() bool { return true }

type strictIntFlag int

func (i *strictIntFlag) String() string {
	return fmt.Sprint(int(*i))
}

func (i *strictIntFlag) Set(s string) error {
	if s == "true" {
		return fmt.Errorf("value required (format: -flag=value)")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = strictIntFlag(v)
	return nil
}

func (i *strictIntFlag) IsBoolFlag() bool { return true }

func setupLogging(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	game.Logger().SetOutput(f)
	return func() { f.Close() }, nil
}

func main() {
	// defaults
	var tFlag timerFlag = 0 // Off unless asked for
	var noTimer bool
	var width strictIntFlag = 8
	var height strictIntFlag = 8
	var colors strictIntFlag = strictIntFlag(len(board.DefaultPalette))
	var moves strictIntFlag = 20
	var target strictIntFlag = 1000
	var rounds strictIntFlag = 1
	var seed uint64
	var randomLayouts bool
	var logPath string
	var scoresPath string

	flag.Var(&width, "width", "Board width in cells")
	flag.Var(&width, "W", "Board width in cells (shorthand)")
	flag.Var(&height, "height", "Board height in cells")
	flag.Var(&height, "H", "Board height in cells (shorthand)")
	flag.Var(&colors, "colors", "Number of tile colors (1-6)")
	flag.Var(&colors, "c", "Number of tile colors (shorthand)")

	flag.Var(&moves, "moves", "Moves per round, 0 for unlimited")
	flag.Var(&moves, "m", "Moves per round (shorthand)")
	flag.Var(&target, "target", "Score that wins a round, 0 for none")
	flag.Var(&target, "g", "Score that wins a round (shorthand)")
	flag.Var(&rounds, "rounds", "Number of random rounds")
	flag.Var(&rounds, "r", "Number of random rounds (shorthand)")

	// Timer flags
	flag.Var(&tFlag, "timer", "Set countdown timer (e.g. 30 or 1:30). Bare flag is 60s per round.")
	flag.Var(&tFlag, "t", "Set countdown timer (shorthand)")
	flag.BoolVar(&noTimer, "notimer", false, "Disable the timer")
	flag.BoolVar(&noTimer, "nt", false, "Disable the timer (shorthand)")

	flag.BoolVar(&randomLayouts, "random-layouts", false, "Randomize order of layouts")
	flag.BoolVar(&randomLayouts, "rl", false, "Randomize order of layouts (shorthand)")
	flag.Uint64Var(&seed, "seed", 0, "Random seed, 0 for time-based")
	flag.StringVar(&logPath, "log", "", "Write debug logs to this file")
	flag.StringVar(&scoresPath, "scores", "", "Score history file (default ~/.config/go-match3/scores.json)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [layout files or dirs...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "    -W, --width=N          Board width (default 8)\n")
		fmt.Fprintf(os.Stderr, "    -H, --height=N         Board height (default 8)\n")
		fmt.Fprintf(os.Stderr, "    -c, --colors=N         Number of tile colors, 1-6 (default 4)\n")
		fmt.Fprintf(os.Stderr, "    -m, --moves=N          Moves per round, 0 for unlimited (default 20)\n")
		fmt.Fprintf(os.Stderr, "    -g, --target=N         Score that wins a round, 0 for none (default 1000)\n")
		fmt.Fprintf(os.Stderr, "    -r, --rounds=N         Number of random rounds (default 1)\n")
		fmt.Fprintf(os.Stderr, "    -t, --timer[=value]    Set countdown timer (e.g. 30 or 1:30). Bare flag is 60s per round.\n")
		fmt.Fprintf(os.Stderr, "   -nt, --notimer          Disable the timer\n")
		fmt.Fprintf(os.Stderr, "   -rl, --random-layouts   Randomize order of layouts\n")
		fmt.Fprintf(os.Stderr, "        --seed=N           Random seed, 0 for time-based\n")
		fmt.Fprintf(os.Stderr, "        --log=FILE         Write debug logs to FILE\n")
		fmt.Fprintf(os.Stderr, "        --scores=FILE      Score history file\n")
		fmt.Fprintf(os.Stderr, "    -h, --help             Show this help message\n")
		fmt.Fprintf(os.Stderr, "\nLayout files hold rows of color letters (R G B Y P O), separated by lines of ---.\n")
	}

	flag.Parse()

	closeLog, err := setupLogging(logPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Determine effective timer limit
	timerLimit := int(tFlag)
	if noTimer {
		timerLimit = 0
	}

	opts := state.GameOptions{
		TimerLimit: timerLimit,
		MoveLimit:  int(moves),
		Target:     int(target),
	}
	cfg := game.BoardConfig{
		Width:  int(width),
		Height: int(height),
		Colors: int(colors),
		Rounds: int(rounds),
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>32))

	var storage scoring.ScoreStorage
	if scoresPath != "" {
		storage = scoring.NewJSONFileStorageAt(scoresPath)
	} else {
		storage, err = scoring.NewJSONFileStorage()
		if err != nil {
			fmt.Printf("Error: failed to create score storage: %v\n", err)
			os.Exit(1)
		}
	}

	game.Logger().WithFields(logrus.Fields{
		"seed":    seed,
		"board":   fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"colors":  cfg.Colors,
		"layouts": len(flag.Args()),
	}).Info("starting")

	model, err := initialModel(cfg, flag.Args(), opts, storage, rng, randomLayouts)
	if err != nil {
		fmt.Printf("Error initializing model: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error starting the program: %v\n", err)
	}
}
