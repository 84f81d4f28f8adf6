// Package session drives one player's view of a game. LocalSession keeps the
// authoritative state in process; SyncedSession keeps it in a Room Store and
// reconciles writes from the other participant.
package session

import (
	"context"
	"errors"
	"sync"

	"dice_duel/internal/game"
)

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrRolling     = errors.New("dice are already rolling")
	ErrGameOver    = errors.New("game is over")
	ErrNotFinished = errors.New("game is still in progress")
	ErrNotHost     = errors.New("only Player 1 can start a new game")
	ErrNotReady    = errors.New("room state is not loaded")
	ErrNotSeated   = errors.New("participant no longer holds a seat in this room")
	ErrClosed      = errors.New("session closed")
)

// Session is what a presentation layer drives. Every state change is pushed
// to subscribers as a fresh View.
type Session interface {
	View() View
	Roll(ctx context.Context) (game.DiceOutcome, error)
	Reset(ctx context.Context) error
	Subscribe(fn func(View)) (unsubscribe func())
	Close() error
}

// listeners fans a View out to subscribers one call at a time.
type listeners struct {
	mu     sync.Mutex
	emitMu sync.Mutex
	next   int
	fns    map[int]func(View)
}

func (l *listeners) add(fn func(View)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(View))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) emit(v View) {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	fns := make([]func(View), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
