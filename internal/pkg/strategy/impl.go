package strategy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/vreid/janken/internal/pkg/game"
)

const (
	MaxCycleLength = 20

	// WeightTolerance bounds |rock+paper+scissors - 1.0| at the wire
	// boundary.
	WeightTolerance = 0.001
)

var (
	ErrUnknownType     = errors.New("unknown strategy type")
	ErrInvalidMove     = errors.New("invalid move")
	ErrInvalidSequence = errors.New("cycle sequence must have 1 to 20 moves")
	ErrInvalidWeights  = errors.New("weights must be non-negative and sum to 1.0")
)

// Validate checks a strategy config against the wire contract. No state
// change on failure; the returned error is safe to show to the caller.
func Validate(cfg Config) error {
	switch cfg.Type {
	case TypeRandom, TypeCounterLastLoss:
		return nil
	case TypeAlways:
		if !game.Valid(cfg.Move) {
			return fmt.Errorf("%w: %q", ErrInvalidMove, cfg.Move)
		}

		return nil
	case TypeCycle:
		if len(cfg.Sequence) < 1 || len(cfg.Sequence) > MaxCycleLength {
			return fmt.Errorf("%w: got %d", ErrInvalidSequence, len(cfg.Sequence))
		}

		for _, m := range cfg.Sequence {
			if !game.Valid(m) {
				return fmt.Errorf("%w: %q", ErrInvalidMove, m)
			}
		}

		return nil
	case TypeWeighted:
		if cfg.Rock < 0 || cfg.Paper < 0 || cfg.Scissors < 0 {
			return ErrInvalidWeights
		}

		sum := cfg.Rock + cfg.Paper + cfg.Scissors
		if math.Abs(sum-1.0) > WeightTolerance {
			return fmt.Errorf("%w: sum is %f", ErrInvalidWeights, sum)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

// Executor turns a strategy config plus per-agent state into a move. Rand
// is the single source of randomness so tests can pin the draw.
type Executor struct {
	Rand func() float64
}

func NewExecutor() *Executor {
	return &Executor{
		Rand: cryptoFloat64,
	}
}

// cryptoFloat64 draws a uniform value in [0,1) from crypto/rand.
func cryptoFloat64() float64 {
	maxVal := big.NewInt(1 << 53)

	n, err := rand.Int(rand.Reader, maxVal)
	if err != nil {
		// crypto/rand failing means the platform entropy source is
		// broken; nothing sensible to fall back to.
		panic(fmt.Sprintf("failed to draw random value: %v", err))
	}

	return float64(n.Int64()) / (1 << 53)
}

// ComputeMove produces the fallback move for cfg in state st and the state
// that follows it. lossCounter is the pre-computed counter to the
// opponent's winning move in the agent's most recent lost match, or empty
// when no qualifying loss exists (counter_last_loss then degrades to
// random). The executor is pure apart from Rand.
func (e *Executor) ComputeMove(cfg Config, st State, lossCounter game.Move) (game.Move, State) {
	switch cfg.Type {
	case TypeRandom:
		return e.uniform(), st
	case TypeAlways:
		return cfg.Move, st
	case TypeCycle:
		idx := st.Index % len(cfg.Sequence)

		return cfg.Sequence[idx], State{Index: (idx + 1) % len(cfg.Sequence)}
	case TypeWeighted:
		r := e.Rand()

		switch {
		case r < cfg.Rock:
			return game.Rock, st
		case r < cfg.Rock+cfg.Paper:
			return game.Paper, st
		default:
			return game.Scissors, st
		}
	case TypeCounterLastLoss:
		if game.Valid(lossCounter) {
			return lossCounter, st
		}

		return e.uniform(), st
	default:
		return e.uniform(), st
	}
}

// AdvanceState is ComputeMove with the move discarded. It keeps cycle
// indices in lock-step when the agent supplied its own live move instead
// of the fallback.
func (e *Executor) AdvanceState(cfg Config, st State) State {
	if cfg.Type != TypeCycle {
		return st
	}

	_, next := e.ComputeMove(cfg, st, "")

	return next
}

func (e *Executor) uniform() game.Move {
	idx := int(e.Rand() * float64(len(game.Moves)))
	if idx >= len(game.Moves) {
		idx = len(game.Moves) - 1
	}

	return game.Moves[idx]
}
