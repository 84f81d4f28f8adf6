package session

import (
	"dice_duel/internal/domain"
	"dice_duel/internal/game"
)

const (
	labelPlayAgain   = "Play Again"
	labelWaitForHost = "Waiting for host..."
	msgWaiting       = "Waiting for a player to join..."
	msgLoading       = "Loading room..."
)

// PlayerView is one scoreboard card.
type PlayerView struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Active bool   `json:"active"`
}

// View is everything a screen needs to render a game.
type View struct {
	RoomID     string        `json:"roomId,omitempty"`
	Status     domain.Status `json:"status"`
	Players    []PlayerView  `json:"players"`
	DiceValue  int           `json:"diceValue"`
	Rolling    bool          `json:"rolling"`
	Winner     string        `json:"winner,omitempty"`
	Message    string        `json:"message"`
	CanRoll    bool          `json:"canRoll"`
	CanReset   bool          `json:"canReset"`
	ResetLabel string        `json:"resetLabel,omitempty"`
	Err        error         `json:"-"`
}

func turnMessage(active, winner string) string {
	if winner != "" {
		return winner + " wins!"
	}
	return active + "'s turn."
}

// onlineView derives the screen state of participant me from the last
// observed record.
func onlineView(roomID string, s domain.GameState, me string, rolling bool, dice int, loadErr error) View {
	v := View{
		RoomID:    roomID,
		Status:    s.Status,
		DiceValue: dice,
		Rolling:   rolling,
		Err:       loadErr,
	}
	if len(s.PlayerOrder) == 0 {
		v.Message = msgLoading
		return v
	}

	active := s.Players[s.CurrentPlayerID].Name
	if w, ok := s.Winner(); ok {
		v.Winner = w.Name
	}
	for _, id := range s.PlayerOrder {
		p := s.Players[id]
		v.Players = append(v.Players, PlayerView{Name: p.Name, Score: p.Score, Active: p.Name == active})
	}

	switch {
	case s.Status == domain.StatusWaiting:
		v.Message = msgWaiting
	default:
		v.Message = turnMessage(active, v.Winner)
	}

	v.CanRoll = loadErr == nil && !rolling && s.Status == domain.StatusPlaying && s.CurrentPlayerID == me
	if v.Winner != "" {
		v.CanReset = loadErr == nil && game.CanReset(s, me)
		v.ResetLabel = labelPlayAgain
		if !game.CanReset(s, me) {
			v.ResetLabel = labelWaitForHost
		}
	}
	return v
}

// localView derives the screen state of a solo or hot-seat game.
func localView(l domain.LocalGameState, rolling bool, dice int) View {
	v := View{
		Status:    domain.StatusPlaying,
		DiceValue: dice,
		Rolling:   rolling,
		Winner:    l.Winner,
		Message:   turnMessage(l.Current, l.Winner),
	}
	for _, role := range l.Roles() {
		v.Players = append(v.Players, PlayerView{Name: role, Score: l.Scores[role], Active: role == l.Current})
	}
	if l.HasWinner() {
		v.Status = domain.StatusFinished
		v.CanReset = true
		v.ResetLabel = labelPlayAgain
	}
	v.CanRoll = !rolling && !l.HasWinner() && !game.ComputerToMove(l)
	return v
}
