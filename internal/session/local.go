package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dice_duel/internal/domain"
	"dice_duel/internal/game"
	"dice_duel/internal/logger"
)

// LocalSession plays solo or hot-seat games in process. In computer mode
// the scripted opponent rolls by itself ComputerDelay after its turn begins.
type LocalSession struct {
	roller        *game.Roller
	computerDelay time.Duration
	log           *slog.Logger

	mu      sync.Mutex
	state   domain.LocalGameState
	rolling bool
	dice    int
	timer   *time.Timer
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	subs   listeners
}

func NewLocalSession(mode domain.LocalMode, targetScore int, roller *game.Roller, computerDelay time.Duration) *LocalSession {
	ctx, cancel := context.WithCancel(context.Background())
	state := game.NewLocalGame(mode, targetScore)
	return &LocalSession{
		roller:        roller,
		computerDelay: computerDelay,
		log:           logger.With("session", "local", "mode", string(state.Mode)),
		state:         state,
		dice:          state.DiceValue,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// State returns a copy of the local game state.
func (s *LocalSession) State() domain.LocalGameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Scores = make(map[string]int, len(s.state.Scores))
	for k, v := range s.state.Scores {
		out.Scores[k] = v
	}
	return out
}

func (s *LocalSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return localView(s.state, s.rolling, s.dice)
}

func (s *LocalSession) Subscribe(fn func(View)) func() {
	return s.subs.add(fn)
}

// Roll plays the turn of whoever is active, except the computer, which only
// rolls on its own timer.
func (s *LocalSession) Roll(ctx context.Context) (game.DiceOutcome, error) {
	return s.roll(ctx, false)
}

func (s *LocalSession) roll(ctx context.Context, byComputer bool) (game.DiceOutcome, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrClosed
	case s.rolling:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrRolling
	case s.state.HasWinner():
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrGameOver
	case game.ComputerToMove(s.state) != byComputer:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrNotYourTurn
	}
	s.rolling = true
	s.mu.Unlock()
	s.notify()

	out, err := s.roller.Roll(ctx, func(face int) {
		s.mu.Lock()
		s.dice = face
		s.mu.Unlock()
		s.notify()
	})

	s.mu.Lock()
	s.rolling = false
	if err != nil {
		s.dice = s.state.DiceValue
		s.mu.Unlock()
		s.notify()
		return game.DiceOutcome{}, err
	}
	roller := s.state.Current
	s.state = game.ApplyLocalRoll(s.state, out.Final)
	s.dice = s.state.DiceValue
	s.scheduleComputerLocked()
	s.mu.Unlock()

	s.log.Debug("rolled", "role", roller, "face", out.Final)
	s.notify()
	return out, nil
}

// scheduleComputerLocked arms the opponent timer when it is the computer's
// turn. Caller holds s.mu.
func (s *LocalSession) scheduleComputerLocked() {
	if s.closed || s.timer != nil || !game.ComputerToMove(s.state) {
		return
	}
	s.timer = time.AfterFunc(s.computerDelay, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		if _, err := s.roll(s.ctx, true); err != nil && s.ctx.Err() == nil {
			s.log.Warn("computer roll failed", "error", err)
		}
	})
}

// Reset starts a new local game once the current one has a winner.
func (s *LocalSession) Reset(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.rolling:
		s.mu.Unlock()
		return ErrRolling
	case !s.state.HasWinner():
		s.mu.Unlock()
		return ErrNotFinished
	}
	s.state = game.ResetLocal(s.state)
	s.dice = s.state.DiceValue
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *LocalSession) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.cancel()
	return nil
}

func (s *LocalSession) notify() {
	s.subs.emit(s.View())
}
