// Command sync_smoke plays one full online game between two participants
// against a running store server (STORE_URL) and exits non-zero on failure.
package main

import (
	"context"
	"os"
	"time"

	"dice_duel/internal/config"
	"dice_duel/internal/domain"
	"dice_duel/internal/game"
	"dice_duel/internal/logger"
	"dice_duel/internal/room"
	"dice_duel/internal/session"
	"dice_duel/internal/store"
)

func waitTurn(ctx context.Context, s session.Session) error {
	for {
		v := s.View()
		if v.CanRoll || v.Winner != "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	roller := game.NewRoller(cfg.RollFrames, 0)
	hostRooms := room.NewManager(store.NewRemote(cfg.StoreURL, nil))
	guestRooms := room.NewManager(store.NewRemote(cfg.StoreURL, nil))
	hostID, guestID := room.NewParticipantID(), room.NewParticipantID()

	code, err := hostRooms.CreateRoom(ctx, hostID, cfg.DefaultTargetScore)
	if err != nil {
		logger.Fatal("create room", "error", err)
	}
	logger.Info("room created", "room", code)

	host, err := session.OpenSynced(ctx, hostRooms, code, hostID, roller)
	if err != nil {
		logger.Fatal("open host session", "error", err)
	}
	defer host.Close()

	if _, err := guestRooms.JoinRoom(ctx, code, guestID); err != nil {
		logger.Fatal("join room", "error", err)
	}
	guest, err := session.OpenSynced(ctx, guestRooms, code, guestID, roller)
	if err != nil {
		logger.Fatal("open guest session", "error", err)
	}
	defer guest.Close()

	if err := host.AwaitStart(ctx); err != nil {
		logger.Fatal("host never saw the guest", "error", err)
	}

	turns := 0
	for host.State().Status != domain.StatusFinished {
		for _, s := range []*session.SyncedSession{host, guest} {
			if err := waitTurn(ctx, s); err != nil {
				logger.Fatal("waiting for turn", "error", err)
			}
			if s.View().Winner != "" {
				break
			}
			out, err := s.Roll(ctx)
			if err != nil {
				logger.Fatal("roll", "participant", s.ParticipantID(), "error", err)
			}
			turns++
			logger.Debug("rolled", "participant", s.ParticipantID(), "face", out.Final)
		}
	}

	final := host.State()
	winner, _ := final.Winner()
	logger.Info("game finished", "room", code, "turns", turns, "winner", winner.Name,
		"scores", map[string]int{
			domain.SeatPlayer1: final.Players[hostID].Score,
			domain.SeatPlayer2: final.Players[guestID].Score,
		})
	if final.WinnerID == nil {
		os.Exit(1)
	}
}
