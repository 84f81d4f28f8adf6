package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dice_duel/internal/domain"
	"dice_duel/internal/logger"
	"dice_duel/internal/store"
)

// codeAttempts bounds retries when a generated code is already taken.
const codeAttempts = 8

var (
	ErrEmptyCode     = errors.New("please enter a room code")
	ErrInvalidTarget = errors.New("invalid target score")
	ErrNoFreeCode    = errors.New("could not allocate a room code")
)

// TargetScoreOptions are the points-to-win choices offered to players.
var TargetScoreOptions = domain.TargetScoreOptions

// Manager creates and joins rooms on a Room Store.
type Manager struct {
	store   store.Store
	newCode func() string
	log     *slog.Logger
}

func NewManager(s store.Store) *Manager {
	return &Manager{
		store:   s,
		newCode: NewCode,
		log:     logger.With("component", "room_manager"),
	}
}

// Store returns the store the manager writes to.
func (m *Manager) Store() store.Store { return m.store }

// CreateRoom seats creatorID as Player 1 of a new waiting room and returns
// the code to share with the opponent.
func (m *Manager) CreateRoom(ctx context.Context, creatorID string, targetScore int) (string, error) {
	if targetScore <= 0 {
		return "", ErrInvalidTarget
	}

	for i := 0; i < codeAttempts; i++ {
		code := m.newCode()
		_, err := m.store.Get(ctx, Key(code))
		if err == nil {
			m.log.Debug("room code taken, retrying", "room", code)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}

		if err := m.Save(ctx, code, domain.NewGameState(creatorID, targetScore)); err != nil {
			return "", err
		}
		m.log.Info("room created", "room", code, "participant", creatorID, "target", targetScore)
		return code, nil
	}
	return "", ErrNoFreeCode
}

// JoinRoom seats participantID as Player 2. Re-joining a seat already held
// succeeds without writing. Two joiners racing for the last seat both read
// one player and the later write wins the seat.
func (m *Manager) JoinRoom(ctx context.Context, roomID, participantID string) (string, error) {
	code := NormalizeCode(roomID)
	if code == "" {
		return "", ErrEmptyCode
	}
	// no room can exist under a code NewCode never produces
	if !ValidCode(code) {
		return "", domain.ErrRoomNotFound
	}

	state, err := m.Load(ctx, code)
	if err != nil {
		return "", err
	}

	if state.Has(participantID) {
		m.log.Info("participant re-joined", "room", code, "participant", participantID)
		return code, nil
	}
	if state.IsFull() {
		return "", domain.ErrRoomFull
	}

	state.Players[participantID] = domain.PlayerState{Name: domain.SeatPlayer2, Score: 0}
	state.PlayerOrder = append(state.PlayerOrder, participantID)
	state.Status = domain.StatusPlaying

	if err := m.Save(ctx, code, state); err != nil {
		return "", err
	}
	m.log.Info("participant joined", "room", code, "participant", participantID)
	return code, nil
}

// Load reads and validates the record of a room.
func (m *Manager) Load(ctx context.Context, roomID string) (domain.GameState, error) {
	data, err := m.store.Get(ctx, Key(roomID))
	if errors.Is(err, store.ErrNotFound) {
		return domain.GameState{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.GameState{}, fmt.Errorf("load room %s: %w", roomID, err)
	}

	state, err := domain.DecodeState(data)
	if err != nil {
		m.log.Warn("stored record rejected", "room", roomID, "error", err)
		return domain.GameState{}, err
	}
	return state, nil
}

// Save replaces the whole record of a room.
func (m *Manager) Save(ctx context.Context, roomID string, state domain.GameState) error {
	data, err := domain.EncodeState(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	if err := m.store.Set(ctx, Key(roomID), data); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	return nil
}
