package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"dice_duel/internal/domain"
	"dice_duel/internal/room"
	"dice_duel/internal/session"
)

const help = "[enter] roll   [a] play again   [q] quit"

var sessionErrors = []error{
	session.ErrNotYourTurn, session.ErrRolling, session.ErrGameOver,
	session.ErrNotFinished, session.ErrNotHost, session.ErrNotReady,
	session.ErrNotSeated, session.ErrClosed,
}

// describe turns err into a line for the player.
func describe(err error) string {
	if errors.Is(err, room.ErrEmptyCode) {
		return "Please enter a room code."
	}
	for _, target := range sessionErrors {
		if errors.Is(err, target) {
			msg := target.Error()
			return strings.ToUpper(msg[:1]) + msg[1:] + "."
		}
	}
	for _, target := range []error{domain.ErrRoomNotFound, domain.ErrRoomFull, domain.ErrMalformedRecord} {
		if errors.Is(err, target) {
			return domain.UserMessage(err)
		}
	}
	return err.Error()
}

func render(v session.View, roomID string) {
	if v.Rolling {
		fmt.Printf("\r  rolling... %d ", v.DiceValue)
		return
	}
	fmt.Println()
	if roomID != "" {
		fmt.Printf("Room %s\n", roomID)
	}
	if v.Err != nil {
		fmt.Printf("! %s\n", describe(v.Err))
		return
	}
	for _, p := range v.Players {
		marker := " "
		if p.Active {
			marker = ">"
		}
		fmt.Printf("%s %-10s %4d\n", marker, p.Name, p.Score)
	}
	fmt.Printf("  dice: %d\n  %s\n", v.DiceValue, v.Message)
	if v.ResetLabel != "" {
		fmt.Printf("  %s\n", v.ResetLabel)
	}
}

// runLoop renders every view change and turns stdin lines into actions
// until the player quits, stdin ends or ctx is cancelled.
func runLoop(ctx context.Context, s session.Session, roomID string) error {
	unsubscribe := s.Subscribe(func(v session.View) { render(v, roomID) })
	defer unsubscribe()

	render(s.View(), roomID)
	fmt.Println(help)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(strings.ToLower(sc.Text()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			var err error
			switch line {
			case "", "r":
				_, err = s.Roll(ctx)
			case "a":
				err = s.Reset(ctx)
			case "q":
				return nil
			default:
				fmt.Println(help)
				continue
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				fmt.Printf("  %s\n", describe(err))
			}
		}
	}
}
