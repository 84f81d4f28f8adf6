package main

import (
	"context"
	"errors"
	"fmt"

	"dice_duel/internal/config"
	"dice_duel/internal/db"
	"dice_duel/internal/domain"
	"dice_duel/internal/logger"
	"dice_duel/internal/room"
	"dice_duel/internal/session"
	"dice_duel/internal/store"
)

var errNeedsSharedStore = errors.New("online play needs STORE_BACKEND=remote, redis or postgres")

// openStore connects to the shared Room Store named by the config.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRemote:
		return store.NewRemote(cfg.StoreURL, nil), nil
	case config.BackendRedis:
		return store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.BackendPostgres:
		return store.NewPostgres(db.Connect(cfg.DatabaseURL, 4)), nil
	default:
		return nil, errNeedsSharedStore
	}
}

// playOnline creates a room when code is empty, otherwise joins it.
func playOnline(ctx context.Context, code string) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	s = store.Instrument(s, cfg.StoreBackend)
	defer s.Close()

	rooms := room.NewManager(s)
	me := room.NewParticipantID()
	log := logger.With("participant", me)

	if code == "" {
		code, err = rooms.CreateRoom(ctx, me, targetScore)
		if err != nil {
			return err
		}
		fmt.Printf("Room code: %s\nShare it with your opponent.\n", code)
	} else {
		code, err = rooms.JoinRoom(ctx, code, me)
		if err != nil {
			return err
		}
	}
	log.Info("entering room", "room", code)

	sess, err := session.OpenSynced(ctx, rooms, code, me, roller())
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.View().Status == domain.StatusWaiting {
		fmt.Println(sess.View().Message)
		if err := sess.AwaitStart(ctx); err != nil {
			return err
		}
	}
	return runLoop(ctx, sess, code)
}
