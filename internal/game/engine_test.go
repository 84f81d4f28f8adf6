package game

import (
	"reflect"
	"testing"

	"dice_duel/internal/domain"
)

func playing(target int, s1, s2 int) domain.GameState {
	s := domain.NewGameState("P1", target)
	s.Players["P1"] = domain.PlayerState{Name: domain.SeatPlayer1, Score: s1}
	s.Players["P2"] = domain.PlayerState{Name: domain.SeatPlayer2, Score: s2}
	s.PlayerOrder = append(s.PlayerOrder, "P2")
	s.Status = domain.StatusPlaying
	return s
}

func TestApplyRollScenarioB(t *testing.T) {
	s := playing(20, 15, 0)
	got := ApplyRoll(s, 6)

	if got.Players["P1"].Score != 21 {
		t.Fatalf("P1 score = %d; want 21", got.Players["P1"].Score)
	}
	if got.WinnerID == nil || *got.WinnerID != "P1" || got.Status != domain.StatusFinished {
		t.Fatalf("P1 should have won: %+v", got)
	}
	if got.CurrentPlayerID != "P1" {
		t.Fatalf("winner keeps the current marker, got %s", got.CurrentPlayerID)
	}
	if got.DiceValue != 6 {
		t.Fatalf("DiceValue = %d; want 6", got.DiceValue)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("result invalid: %v", err)
	}
}

func TestApplyRollScenarioC(t *testing.T) {
	s := playing(20, 10, 0)
	got := ApplyRoll(s, 3)

	if got.Players["P1"].Score != 13 {
		t.Fatalf("P1 score = %d; want 13", got.Players["P1"].Score)
	}
	if got.CurrentPlayerID != "P2" {
		t.Fatalf("turn should pass to P2, got %s", got.CurrentPlayerID)
	}
	if got.WinnerID != nil || got.Status != domain.StatusPlaying {
		t.Fatalf("no winner expected: %+v", got)
	}
}

func TestApplyRollDoesNotMutateInput(t *testing.T) {
	s := playing(20, 10, 4)
	before := s.Clone()
	_ = ApplyRoll(s, 5)
	if !reflect.DeepEqual(s, before) {
		t.Fatalf("input mutated:\n got %+v\nwant %+v", s, before)
	}
}

func TestApplyRollProperties(t *testing.T) {
	for s1 := 0; s1 < 30; s1 += 3 {
		for s2 := 0; s2 < 30; s2 += 4 {
			for face := 1; face <= 6; face++ {
				for _, current := range []string{"P1", "P2"} {
					s := playing(30, s1, s2)
					s.CurrentPlayerID = current
					got := ApplyRoll(s, face)

					for id, p := range s.Players {
						if got.Players[id].Score < p.Score {
							t.Fatalf("score of %s decreased: %d -> %d", id, p.Score, got.Players[id].Score)
						}
					}
					if !reflect.DeepEqual(got.PlayerOrder, s.PlayerOrder) || got.TargetScore != s.TargetScore {
						t.Fatalf("order or target changed: %+v", got)
					}

					after := s.Players[current].Score + face
					if after >= s.TargetScore {
						if got.Status != domain.StatusFinished || got.WinnerID == nil || *got.WinnerID != current || got.CurrentPlayerID != current {
							t.Fatalf("winning roll mishandled: %+v", got)
						}
						continue
					}
					if got.CurrentPlayerID == current || got.CurrentPlayerID != s.NextPlayerID(current) {
						t.Fatalf("expected one rotation step from %s, got %s", current, got.CurrentPlayerID)
					}
				}
			}
		}
	}
}

func TestApplyRollAlternates(t *testing.T) {
	s := playing(1000, 0, 0)
	want := []string{"P2", "P1", "P2", "P1", "P2"}
	for i, w := range want {
		s = ApplyRoll(s, 1+i%6)
		if s.CurrentPlayerID != w {
			t.Fatalf("step %d: current = %s; want %s", i, s.CurrentPlayerID, w)
		}
	}
}

func TestResetScenarioE(t *testing.T) {
	s := playing(20, 22, 14)
	winner := "P1"
	s.WinnerID = &winner
	s.Status = domain.StatusFinished
	s.DiceValue = 4

	got := Reset(s)
	if got.Players["P1"].Score != 0 || got.Players["P2"].Score != 0 {
		t.Fatalf("scores not reset: %+v", got.Players)
	}
	if got.CurrentPlayerID != s.PlayerOrder[0] || got.Status != domain.StatusPlaying || got.WinnerID != nil || got.DiceValue != 1 {
		t.Fatalf("unexpected reset state: %+v", got)
	}
	if got.Players["P2"].Name != domain.SeatPlayer2 {
		t.Fatalf("reset must keep seat names")
	}
	if !reflect.DeepEqual(Reset(got), got) {
		t.Fatalf("reset is not idempotent")
	}
	if s.Players["P1"].Score != 22 {
		t.Fatalf("input mutated by reset")
	}
}

func TestCanReset(t *testing.T) {
	s := playing(20, 0, 0)
	if !CanReset(s, "P1") {
		t.Fatalf("Player 1 should be allowed to reset")
	}
	if CanReset(s, "P2") || CanReset(s, "stranger") {
		t.Fatalf("only Player 1 may reset")
	}
}
