package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
)

// ErrInvalidOptions is returned when session options cannot describe a playable level.
var ErrInvalidOptions = errors.New("invalid session options")

// Options configures a session.
type Options struct {
	Cols  int
	Rows  int
	Start board.Index

	StepDuration time.Duration
	SettleDelay  time.Duration

	StepScore      int
	StartingHealth int
	Level          int

	HealOnStep  bool
	RemoteMulti bool

	PlacementRule board.PlacementRule
	Wilds         board.Wilds

	// JournalCapacity bounds the step journal; zero disables it.
	JournalCapacity int
}

// DefaultOptions returns the stock game tuning.
func DefaultOptions() Options {
	return Options{
		Cols:            7,
		Rows:            5,
		Start:           board.Index{Col: 3, Row: 2},
		StepDuration:    300 * time.Millisecond,
		SettleDelay:     600 * time.Millisecond,
		StepScore:       1,
		StartingHealth:  3,
		Level:           1,
		PlacementRule:   board.AcceptConnected,
		JournalCapacity: 256,
	}
}

func (o Options) validate() error {
	switch {
	case o.Cols < 1 || o.Rows < 1:
		return fmt.Errorf("%w: board %dx%d", ErrInvalidOptions, o.Cols, o.Rows)
	case o.Start.Col < 0 || o.Start.Col >= o.Cols || o.Start.Row < 0 || o.Start.Row >= o.Rows:
		return fmt.Errorf("%w: start %s outside board", ErrInvalidOptions, o.Start)
	case o.StepDuration <= 0:
		return fmt.Errorf("%w: step duration %s", ErrInvalidOptions, o.StepDuration)
	case o.SettleDelay < 0:
		return fmt.Errorf("%w: settle delay %s", ErrInvalidOptions, o.SettleDelay)
	case o.StepScore < 0:
		return fmt.Errorf("%w: step score %d", ErrInvalidOptions, o.StepScore)
	case o.Level < 1:
		return fmt.Errorf("%w: level %d", ErrInvalidOptions, o.Level)
	case o.JournalCapacity < 0:
		return fmt.Errorf("%w: journal capacity %d", ErrInvalidOptions, o.JournalCapacity)
	}
	return nil
}

// Deck is the card supply gem effects act on.
type Deck interface {
	DrawCard() *board.Card
	DiscardRandomCard() (*board.Card, bool)
	CreateBlankCard(idx board.Index) *board.Card
}

// LevelStatus is the answer to a level-end check.
type LevelStatus struct {
	SessionID string
	Level     int
	Score     int
	Health    int
	BoardFull bool
	Depleted  bool
}

// Ended reports whether the level is over either way.
func (ls LevelStatus) Ended() bool {
	return ls.BoardFull || ls.Depleted
}

// LevelController is told when a walk has settled.
type LevelController interface {
	CheckLevelEnd(status LevelStatus)
}

// LevelControllerFunc adapts a function to LevelController.
type LevelControllerFunc func(status LevelStatus)

// CheckLevelEnd calls f.
func (f LevelControllerFunc) CheckLevelEnd(status LevelStatus) {
	f(status)
}

// State is the shared game state of a session.
type State struct {
	Score              int
	Health             int
	Multiplier         int
	Level              int
	StepScore          int
	RemoteMultiEnabled bool
	HealOnStep         bool
}

type nopDeck struct{}

func (nopDeck) DrawCard() *board.Card { return nil }
func (nopDeck) DiscardRandomCard() (*board.Card, bool) { return nil, false }
func (nopDeck) CreateBlankCard(board.Index) *board.Card { return board.BlankCard() }
