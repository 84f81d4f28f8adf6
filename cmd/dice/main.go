package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dice_duel/internal/config"
	"dice_duel/internal/domain"
	"dice_duel/internal/game"
	"dice_duel/internal/logger"
	"dice_duel/internal/room"
	"dice_duel/internal/session"

	"github.com/spf13/cobra"
)

var (
	cfg         *config.Config
	targetScore int
)

var rootCmd = &cobra.Command{
	Use:   "dice",
	Short: "Dice duel: first to the target score wins",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Use(logger.Discard())
		cfg = config.Load()
		initLogging(cfg)
		if targetScore == 0 {
			targetScore = cfg.DefaultTargetScore
		}
		return validateTarget(targetScore)
	},
}

// initLogging keeps stdout for the game screen. Logs are dropped unless
// LOG_LEVEL=debug, which sends them to stderr.
func initLogging(cfg *config.Config) {
	if strings.EqualFold(cfg.LogLevel, "debug") {
		logger.Use(logger.New(os.Stderr, cfg.LogLevel, cfg.LogJSON))
		return
	}
	logger.Use(logger.Discard())
}

func validateTarget(n int) error {
	if !domain.ValidTargetScore(n) {
		return fmt.Errorf("%w: %d, choose one of %v", room.ErrInvalidTarget, n, room.TargetScoreOptions)
	}
	return nil
}

var soloCmd = &cobra.Command{
	Use:   "solo",
	Short: "Play against the computer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return playLocal(cmd.Context(), domain.ModeVsComputer)
	},
}

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Two players taking turns on this terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return playLocal(cmd.Context(), domain.ModeVsPlayerLocal)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an online room and wait for an opponent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return playOnline(cmd.Context(), "")
	},
}

var joinCmd = &cobra.Command{
	Use:   "join CODE",
	Short: "Join an online room by its code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := ""
		if len(args) == 1 {
			code = args[0]
		}
		if room.NormalizeCode(code) == "" {
			return room.ErrEmptyCode
		}
		return playOnline(cmd.Context(), code)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&targetScore, "target", 0,
		fmt.Sprintf("points to win, one of %v (default DEFAULT_TARGET_SCORE)", room.TargetScoreOptions))
	rootCmd.AddCommand(soloCmd, localCmd, createCmd, joinCmd)
}

func roller() *game.Roller {
	return game.NewRoller(cfg.RollFrames, cfg.RollInterval)
}

func playLocal(ctx context.Context, mode domain.LocalMode) error {
	s := session.NewLocalSession(mode, targetScore, roller(), cfg.ComputerDelay)
	defer s.Close()
	return runLoop(ctx, s, "")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}
