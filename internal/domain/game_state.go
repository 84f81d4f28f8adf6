package domain

import (
	"fmt"
	"slices"
)

// Status is the lifecycle stage of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Seat names are positional and never renamed.
const (
	SeatPlayer1  = "Player 1"
	SeatPlayer2  = "Player 2"
	RoleComputer = "Computer"
)

const (
	MaxPlayers = 2
	DiceMin    = 1
	DiceMax    = 6

	DefaultTargetScore = 50
)

// TargetScoreOptions are the points-to-win choices a game can be started with.
var TargetScoreOptions = []int{20, 50, 100, 150}

// ValidTargetScore reports whether n is one of TargetScoreOptions.
func ValidTargetScore(n int) bool {
	return slices.Contains(TargetScoreOptions, n)
}

// PlayerState is one seat of a room
type PlayerState struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameState is the shared record stored under a room key. The JSON shape is
// the wire format every client reads and writes.
type GameState struct {
	Players         map[string]PlayerState `json:"players"`
	PlayerOrder     []string               `json:"playerOrder"`
	CurrentPlayerID string                 `json:"currentPlayerId"`
	DiceValue       int                    `json:"diceValue"`
	TargetScore     int                    `json:"targetScore"`
	WinnerID        *string                `json:"winnerId"`
	Status          Status                 `json:"status"`
}

// NewGameState seats the creator alone in a waiting room.
func NewGameState(creatorID string, targetScore int) GameState {
	return GameState{
		Players: map[string]PlayerState{
			creatorID: {Name: SeatPlayer1, Score: 0},
		},
		PlayerOrder:     []string{creatorID},
		CurrentPlayerID: creatorID,
		DiceValue:       DiceMin,
		TargetScore:     targetScore,
		WinnerID:        nil,
		Status:          StatusWaiting,
	}
}

// Clone returns a deep copy so transformations never alias the input.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make(map[string]PlayerState, len(s.Players))
	for id, p := range s.Players {
		out.Players[id] = p
	}
	out.PlayerOrder = slices.Clone(s.PlayerOrder)
	if s.WinnerID != nil {
		w := *s.WinnerID
		out.WinnerID = &w
	}
	return out
}

// Has reports whether the participant occupies a seat.
func (s GameState) Has(participantID string) bool {
	_, ok := s.Players[participantID]
	return ok
}

func (s GameState) IsFull() bool {
	return len(s.Players) >= MaxPlayers
}

// SeatOf returns the seat name of a participant, or "" when not seated.
func (s GameState) SeatOf(participantID string) string {
	return s.Players[participantID].Name
}

// Winner returns the winning seat, if any.
func (s GameState) Winner() (PlayerState, bool) {
	if s.WinnerID == nil {
		return PlayerState{}, false
	}
	p, ok := s.Players[*s.WinnerID]
	return p, ok
}

// NextPlayerID returns the participant after id in turn order, wrapping.
func (s GameState) NextPlayerID(id string) string {
	i := slices.Index(s.PlayerOrder, id)
	if i < 0 || len(s.PlayerOrder) == 0 {
		return id
	}
	return s.PlayerOrder[(i+1)%len(s.PlayerOrder)]
}

// Validate checks the record against the schema and its invariants. Every
// failure wraps ErrMalformedRecord.
func (s GameState) Validate() error {
	switch s.Status {
	case StatusWaiting, StatusPlaying, StatusFinished:
	default:
		return malformed("unknown status %q", s.Status)
	}

	if len(s.Players) == 0 || len(s.Players) > MaxPlayers {
		return malformed("players has %d entries", len(s.Players))
	}
	if len(s.PlayerOrder) != len(s.Players) {
		return malformed("playerOrder has %d entries for %d players", len(s.PlayerOrder), len(s.Players))
	}
	for i, id := range s.PlayerOrder {
		if _, ok := s.Players[id]; !ok {
			return malformed("playerOrder[%d] %q is not a player", i, id)
		}
		if slices.Index(s.PlayerOrder, id) != i {
			return malformed("playerOrder repeats %q", id)
		}
	}
	if !slices.Contains(s.PlayerOrder, s.CurrentPlayerID) {
		return malformed("currentPlayerId %q is not seated", s.CurrentPlayerID)
	}

	if s.DiceValue < DiceMin || s.DiceValue > DiceMax {
		return malformed("diceValue %d out of range", s.DiceValue)
	}
	if s.TargetScore <= 0 {
		return malformed("targetScore %d must be positive", s.TargetScore)
	}

	reached := false
	for id, p := range s.Players {
		if p.Score < 0 {
			return malformed("player %q has negative score", id)
		}
		if p.Score >= s.TargetScore {
			reached = true
		}
	}

	if s.WinnerID != nil {
		w, ok := s.Players[*s.WinnerID]
		if !ok {
			return malformed("winnerId %q is not a player", *s.WinnerID)
		}
		if s.Status != StatusFinished {
			return malformed("winner set while status is %q", s.Status)
		}
		if w.Score < s.TargetScore {
			return malformed("winner %q is below target", *s.WinnerID)
		}
	} else {
		if s.Status == StatusFinished {
			return malformed("finished without a winner")
		}
		if reached {
			return malformed("target reached without a winner")
		}
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
