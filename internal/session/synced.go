package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"dice_duel/internal/domain"
	"dice_duel/internal/game"
	"dice_duel/internal/logger"
	"dice_duel/internal/room"
	"dice_duel/internal/store"
)

// SyncedSession is one participant's client of an online room.
//
// Writes are read-modify-write of the whole record: read the latest value,
// apply the pure turn transformation, write it back. Nothing merges
// concurrent writes; the last one wins. Incoming notifications replace the
// local record wholesale. Rolling is gated on the participant being the
// current player in the last observed record, which only holds while
// players take turns as intended.
type SyncedSession struct {
	rooms         *room.Manager
	roomID        string
	participantID string
	roller        *game.Roller
	log           *slog.Logger

	// writeMu keeps this client's read-modify-write cycles sequential.
	writeMu sync.Mutex

	mu      sync.Mutex
	state   domain.GameState
	loadErr error
	rolling bool
	dice    int
	closed  bool

	sub    *store.Subscription
	cancel context.CancelFunc
	done   chan struct{}
	subs   listeners
}

// OpenSynced subscribes to the room and loads its current record. A room
// that does not exist fails with domain.ErrRoomNotFound. A malformed record
// does not fail: the session starts in an error view and recovers on the
// next valid write.
func OpenSynced(ctx context.Context, rooms *room.Manager, roomID, participantID string, roller *game.Roller) (*SyncedSession, error) {
	roomID = room.NormalizeCode(roomID)

	runCtx, cancel := context.WithCancel(context.Background())
	// subscribe before the first read so a write in between is not lost
	sub, err := rooms.Store().Watch(runCtx, room.Key(roomID))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch room %s: %w", roomID, err)
	}

	s := &SyncedSession{
		rooms:         rooms,
		roomID:        roomID,
		participantID: participantID,
		roller:        roller,
		log:           logger.With("room", roomID, "participant", participantID),
		sub:           sub,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	state, err := rooms.Load(ctx, roomID)
	switch {
	case err == nil:
		s.state = state
		s.dice = state.DiceValue
	case errors.Is(err, domain.ErrMalformedRecord):
		s.loadErr = err
	default:
		sub.Unsubscribe()
		cancel()
		return nil, err
	}

	go s.run()
	return s, nil
}

// run applies change notifications until the subscription ends.
func (s *SyncedSession) run() {
	defer close(s.done)
	for data := range s.sub.C {
		s.observe(data)
	}
}

func (s *SyncedSession) observe(data []byte) {
	state, err := domain.DecodeState(data)

	s.mu.Lock()
	if err != nil {
		s.loadErr = err
		s.mu.Unlock()
		s.log.Warn("ignoring malformed room update", "error", err)
		s.notify()
		return
	}
	s.state = state
	s.loadErr = nil
	if !s.rolling {
		s.dice = state.DiceValue
	}
	s.mu.Unlock()

	s.log.Debug("room updated", "status", state.Status, "current", state.CurrentPlayerID)
	s.notify()
}

func (s *SyncedSession) RoomID() string        { return s.roomID }
func (s *SyncedSession) ParticipantID() string { return s.participantID }

// State returns a copy of the last observed record.
func (s *SyncedSession) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *SyncedSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return onlineView(s.roomID, s.state, s.participantID, s.rolling, s.dice, s.loadErr)
}

func (s *SyncedSession) Subscribe(fn func(View)) func() {
	return s.subs.add(fn)
}

// AwaitStart blocks until the room leaves the waiting status, i.e. an
// opponent has joined.
func (s *SyncedSession) AwaitStart(ctx context.Context) error {
	started := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(v View) {
		if v.Status != "" && v.Status != domain.StatusWaiting {
			select {
			case started <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	if st := s.View().Status; st != "" && st != domain.StatusWaiting {
		return nil
	}

	select {
	case <-started:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Roll animates the dice locally, then commits the final face to the room.
func (s *SyncedSession) Roll(ctx context.Context) (game.DiceOutcome, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrClosed
	case s.loadErr != nil || len(s.state.PlayerOrder) == 0:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrNotReady
	case s.rolling:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrRolling
	case s.state.Status == domain.StatusFinished:
		s.mu.Unlock()
		return game.DiceOutcome{}, ErrGameOver
	case s.state.Status != domain.StatusPlaying || s.state.CurrentPlayerID != s.participantID:
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
	if err != nil {
		s.finishRoll(nil)
		return game.DiceOutcome{}, err
	}

	next, err := s.commit(ctx, func(latest domain.GameState) (domain.GameState, error) {
		if latest.Status == domain.StatusFinished {
			return latest, ErrGameOver
		}
		if !latest.Has(s.participantID) {
			// lost the seat to a concurrent joiner
			return latest, ErrNotSeated
		}
		// the roll belongs to whoever was gated in, even if the latest
		// record moved the marker in a concurrent write
		latest.CurrentPlayerID = s.participantID
		return game.ApplyRoll(latest, out.Final), nil
	})
	s.finishRoll(next)
	if err != nil {
		s.log.Warn("roll not committed", "face", out.Final, "error", err)
		return game.DiceOutcome{}, err
	}

	s.log.Info("rolled", "face", out.Final, "status", next.Status)
	return out, nil
}

// Reset restarts a finished game. Only the Player 1 seat may do it.
func (s *SyncedSession) Reset(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.loadErr != nil || len(s.state.PlayerOrder) == 0:
		s.mu.Unlock()
		return ErrNotReady
	case !game.CanReset(s.state, s.participantID):
		s.mu.Unlock()
		return ErrNotHost
	case s.state.Status != domain.StatusFinished:
		s.mu.Unlock()
		return ErrNotFinished
	}
	s.mu.Unlock()

	next, err := s.commit(ctx, func(latest domain.GameState) (domain.GameState, error) {
		// the local view may lag behind a game that was already restarted
		if latest.Status != domain.StatusFinished {
			return latest, ErrNotFinished
		}
		if !game.CanReset(latest, s.participantID) {
			return latest, ErrNotHost
		}
		return game.Reset(latest), nil
	})
	if next != nil {
		s.adopt(*next)
	}
	if err != nil {
		return err
	}
	s.log.Info("game reset")
	return nil
}

// commit runs one read-modify-write cycle. The returned state, when not nil,
// is the freshest record this client knows about: the written one, or the
// latest read when the transformation refused to write.
func (s *SyncedSession) commit(ctx context.Context, fn func(domain.GameState) (domain.GameState, error)) (*domain.GameState, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	latest, err := s.rooms.Load(ctx, s.roomID)
	if err != nil {
		return nil, err
	}

	next, err := fn(latest.Clone())
	if err != nil {
		return &latest, err
	}
	if err := s.rooms.Save(ctx, s.roomID, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *SyncedSession) finishRoll(next *domain.GameState) {
	s.mu.Lock()
	s.rolling = false
	if next != nil {
		s.state = *next
		s.loadErr = nil
	}
	s.dice = s.state.DiceValue
	s.mu.Unlock()
	s.notify()
}

// adopt installs a record this client wrote itself; the store does not echo
// it back.
func (s *SyncedSession) adopt(state domain.GameState) {
	s.mu.Lock()
	s.state = state
	s.loadErr = nil
	if !s.rolling {
		s.dice = state.DiceValue
	}
	s.mu.Unlock()
	s.notify()
}

// Close unsubscribes from the room. The record stays in the store.
func (s *SyncedSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.sub.Unsubscribe()
	s.cancel()
	<-s.done
	return nil
}

func (s *SyncedSession) notify() {
	s.subs.emit(s.View())
}
