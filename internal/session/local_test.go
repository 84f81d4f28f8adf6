package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"dice_duel/internal/domain"
	"dice_duel/internal/game"
)

func TestLocalHotSeat(t *testing.T) {
	ctx := context.Background()
	s := NewLocalSession(domain.ModeVsPlayerLocal, 10, fixedRoller(5), time.Hour)
	defer s.Close()

	v := s.View()
	if !v.CanRoll || v.Message != "Player 1's turn." || len(v.Players) != 2 || v.Players[1].Name != domain.SeatPlayer2 {
		t.Fatalf("unexpected start view %+v", v)
	}

	var frames []int
	unsubscribe := s.Subscribe(func(v View) {
		if v.Rolling {
			frames = append(frames, v.DiceValue)
		}
	})
	out, err := s.Roll(ctx)
	unsubscribe()
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Final != 5 || len(out.Frames) != 2 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(frames) == 0 {
		t.Fatalf("expected rolling views during the animation")
	}

	v = s.View()
	if v.Message != "Player 2's turn." || !v.CanRoll || v.Players[0].Score != 5 {
		t.Fatalf("unexpected view after first roll %+v", v)
	}

	s.Roll(ctx)
	s.Roll(ctx)
	v = s.View()
	if v.Winner != domain.SeatPlayer1 || v.Message != "Player 1 wins!" || v.CanRoll || !v.CanReset {
		t.Fatalf("Player 1 should win with 10: %+v", v)
	}
	if _, err := s.Roll(ctx); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v; want ErrGameOver", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st := s.State()
	if st.HasWinner() || st.Scores[domain.SeatPlayer1] != 0 || st.Current != domain.SeatPlayer1 || st.DiceValue != 1 {
		t.Fatalf("unexpected state after reset %+v", st)
	}
}

func TestLocalResetBeforeWinner(t *testing.T) {
	s := NewLocalSession(domain.ModeVsPlayerLocal, 10, fixedRoller(1), time.Hour)
	defer s.Close()
	if err := s.Reset(context.Background()); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("err = %v; want ErrNotFinished", err)
	}
}

func TestLocalComputerAutoRolls(t *testing.T) {
	ctx := context.Background()
	roller := &game.Roller{Frames: 1, Source: func() int { return 3 }}
	s := NewLocalSession(domain.ModeVsComputer, 50, roller, 50*time.Millisecond)
	defer s.Close()

	if _, err := s.Roll(ctx); err != nil {
		t.Fatalf("roll: %v", err)
	}
	v := s.View()
	if v.Message != "Computer's turn." {
		t.Fatalf("message = %q", v.Message)
	}
	if v.CanRoll {
		t.Fatalf("player must not roll for the computer")
	}
	if _, err := s.Roll(ctx); !errors.Is(err, ErrNotYourTurn) && !errors.Is(err, ErrRolling) {
		t.Fatalf("err = %v; want ErrNotYourTurn", err)
	}

	v = waitFor(t, s, "computer roll", func(v View) bool { return v.Message == "Player 1's turn." })
	if v.Players[1].Name != domain.RoleComputer || v.Players[1].Score != 3 {
		t.Fatalf("computer should have scored 3: %+v", v.Players)
	}
}

func TestLocalCloseStopsComputer(t *testing.T) {
	roller := &game.Roller{Frames: 0, Source: func() int { return 2 }}
	s := NewLocalSession(domain.ModeVsComputer, 50, roller, 30*time.Millisecond)

	if _, err := s.Roll(context.Background()); err != nil {
		t.Fatalf("roll: %v", err)
	}
	s.Close()
	time.Sleep(80 * time.Millisecond)

	if got := s.State().Scores[domain.RoleComputer]; got != 0 {
		t.Fatalf("computer rolled after close: %d", got)
	}
	if _, err := s.Roll(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v; want ErrClosed", err)
	}
}
