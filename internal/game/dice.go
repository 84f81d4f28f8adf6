package game

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"dice_duel/internal/domain"
)

const (
	DefaultRollFrames   = 11
	DefaultRollInterval = 100 * time.Millisecond
)

// FaceSource returns one uniformly distributed face in [1,6].
type FaceSource func() int

// CryptoFace samples a face from crypto/rand.
func CryptoFace() int {
	n, err := rand.Int(rand.Reader, big.NewInt(domain.DiceMax))
	if err != nil {
		// Fallback - should never happen
		n = big.NewInt(0)
	}
	return int(n.Int64()) + domain.DiceMin
}

// DiceOutcome is a finished roll. Frames are cosmetic; only Final is passed
// to ApplyRoll.
type DiceOutcome struct {
	Frames []int `json:"frames"`
	Final  int   `json:"final"`
}

// Roller runs the two-phase roll: a fixed number of cosmetic frames, then one
// independent authoritative sample.
type Roller struct {
	Frames   int
	Interval time.Duration
	Source   FaceSource
}

func NewRoller(frames int, interval time.Duration) *Roller {
	if frames < 0 {
		frames = DefaultRollFrames
	}
	return &Roller{
		Frames:   frames,
		Interval: interval,
		Source:   CryptoFace,
	}
}

// Roll emits every cosmetic frame to onFrame (may be nil) at Interval, then
// samples the final face. Cancelling ctx aborts the roll with no outcome;
// players have no cancel action, ctx only ends with the client.
func (r *Roller) Roll(ctx context.Context, onFrame func(face int)) (DiceOutcome, error) {
	src := r.Source
	if src == nil {
		src = CryptoFace
	}

	out := DiceOutcome{Frames: make([]int, 0, r.Frames)}

	var tick <-chan time.Time
	if r.Interval > 0 && r.Frames > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; i < r.Frames; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return DiceOutcome{}, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return DiceOutcome{}, err
		}

		face := src()
		out.Frames = append(out.Frames, face)
		if onFrame != nil {
			onFrame(face)
		}
	}

	out.Final = src()
	return out, nil
}
