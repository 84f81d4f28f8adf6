package game

import (
	"dice_duel/internal/domain"
)

// ApplyRoll adds face to the current player's score and either declares that
// player the winner or passes the turn. The input is never mutated.
//
// Callers are trusted: turn gating happens in the client session, and face
// must already be in [1,6].
func ApplyRoll(state domain.GameState, face int) domain.GameState {
	next := state.Clone()
	next.DiceValue = face

	id := next.CurrentPlayerID
	p := next.Players[id]
	p.Score += face
	next.Players[id] = p

	if p.Score >= next.TargetScore {
		winner := id
		next.WinnerID = &winner
		next.Status = domain.StatusFinished
		return next
	}

	next.CurrentPlayerID = next.NextPlayerID(id)
	next.WinnerID = nil
	return next
}

// Reset starts a new game in the same room with the same seats.
func Reset(state domain.GameState) domain.GameState {
	next := state.Clone()
	for id, p := range next.Players {
		p.Score = 0
		next.Players[id] = p
	}
	if len(next.PlayerOrder) > 0 {
		next.CurrentPlayerID = next.PlayerOrder[0]
	}
	next.WinnerID = nil
	next.Status = domain.StatusPlaying
	next.DiceValue = domain.DiceMin
	return next
}

// CanReset reports whether the participant holds the seat allowed to restart.
func CanReset(state domain.GameState, participantID string) bool {
	return state.SeatOf(participantID) == domain.SeatPlayer1
}
