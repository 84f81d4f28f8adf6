package game

import (
	"dice_duel/internal/domain"
)

// NewLocalGame returns a fresh solo or hot-seat game with Player 1 to move.
func NewLocalGame(mode domain.LocalMode, targetScore int) domain.LocalGameState {
	if mode != domain.ModeVsPlayerLocal {
		mode = domain.ModeVsComputer
	}
	l := domain.LocalGameState{
		Mode:        mode,
		TargetScore: targetScore,
	}
	return ResetLocal(l)
}

// ApplyLocalRoll runs the shared turn transformation on a local game.
func ApplyLocalRoll(l domain.LocalGameState, face int) domain.LocalGameState {
	return fromShared(l, ApplyRoll(toShared(l), face))
}

// ResetLocal zeroes both roles and hands the turn back to Player 1.
func ResetLocal(l domain.LocalGameState) domain.LocalGameState {
	l.Scores = make(map[string]int, 2)
	for _, role := range l.Roles() {
		l.Scores[role] = 0
	}
	l.Current = domain.SeatPlayer1
	l.DiceValue = domain.DiceMin
	l.Winner = ""
	return l
}

// ComputerToMove reports whether the scripted opponent should roll next.
func ComputerToMove(l domain.LocalGameState) bool {
	return l.Mode == domain.ModeVsComputer && l.Current == domain.RoleComputer && !l.HasWinner()
}

// toShared maps local roles onto participant ids so local games go through
// the same ApplyRoll as online rooms.
func toShared(l domain.LocalGameState) domain.GameState {
	roles := l.Roles()
	s := domain.GameState{
		Players:         make(map[string]domain.PlayerState, len(roles)),
		PlayerOrder:     roles,
		CurrentPlayerID: l.Current,
		DiceValue:       l.DiceValue,
		TargetScore:     l.TargetScore,
		Status:          domain.StatusPlaying,
	}
	for _, role := range roles {
		s.Players[role] = domain.PlayerState{Name: role, Score: l.Scores[role]}
	}
	if l.Winner != "" {
		w := l.Winner
		s.WinnerID = &w
		s.Status = domain.StatusFinished
	}
	return s
}

func fromShared(l domain.LocalGameState, s domain.GameState) domain.LocalGameState {
	out := l
	out.Scores = make(map[string]int, len(s.Players))
	for id, p := range s.Players {
		out.Scores[id] = p.Score
	}
	out.Current = s.CurrentPlayerID
	out.DiceValue = s.DiceValue
	out.Winner = ""
	if s.WinnerID != nil {
		out.Winner = *s.WinnerID
	}
	return out
}
