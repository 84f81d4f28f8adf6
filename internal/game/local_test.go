package game

import (
	"testing"

	"dice_duel/internal/domain"
)

func TestNewLocalGame(t *testing.T) {
	l := NewLocalGame(domain.ModeVsComputer, 20)
	if l.Current != domain.SeatPlayer1 || l.DiceValue != 1 || l.HasWinner() {
		t.Fatalf("unexpected start: %+v", l)
	}
	if _, ok := l.Scores[domain.RoleComputer]; !ok {
		t.Fatalf("computer seat missing: %+v", l.Scores)
	}

	hs := NewLocalGame(domain.ModeVsPlayerLocal, 20)
	if _, ok := hs.Scores[domain.SeatPlayer2]; !ok {
		t.Fatalf("hot-seat should use Player 2: %+v", hs.Scores)
	}
}

func TestApplyLocalRoll(t *testing.T) {
	l := NewLocalGame(domain.ModeVsComputer, 10)

	l = ApplyLocalRoll(l, 4)
	if l.Scores[domain.SeatPlayer1] != 4 || l.Current != domain.RoleComputer {
		t.Fatalf("after P1 roll: %+v", l)
	}
	if !ComputerToMove(l) {
		t.Fatalf("computer should be next")
	}

	l = ApplyLocalRoll(l, 6)
	if l.Scores[domain.RoleComputer] != 6 || l.Current != domain.SeatPlayer1 {
		t.Fatalf("after computer roll: %+v", l)
	}

	l = ApplyLocalRoll(l, 6)
	if l.Winner != domain.SeatPlayer1 || l.Current != domain.SeatPlayer1 {
		t.Fatalf("Player 1 should win with 10: %+v", l)
	}
	if ComputerToMove(l) {
		t.Fatalf("no moves after a winner")
	}

	l = ResetLocal(l)
	if l.HasWinner() || l.Scores[domain.SeatPlayer1] != 0 || l.Scores[domain.RoleComputer] != 0 || l.Current != domain.SeatPlayer1 {
		t.Fatalf("reset failed: %+v", l)
	}
}

func TestComputerNeverMovesInHotSeat(t *testing.T) {
	l := NewLocalGame(domain.ModeVsPlayerLocal, 50)
	l = ApplyLocalRoll(l, 2)
	if l.Current != domain.SeatPlayer2 || ComputerToMove(l) {
		t.Fatalf("hot-seat passes to Player 2 without auto-roll: %+v", l)
	}
}
