package strategy

import "github.com/vreid/janken/internal/pkg/game"

type Type string

const (
	TypeRandom          Type = "random"
	TypeAlways          Type = "always"
	TypeCycle           Type = "cycle"
	TypeWeighted        Type = "weighted"
	TypeCounterLastLoss Type = "counter_last_loss"
)

// Config is the wire shape of a strategy. Only the fields belonging to
// Type are meaningful; Validate rejects anything else.
type Config struct {
	Type Type `json:"type"`

	Move game.Move `json:"move,omitempty"`

	Sequence []game.Move `json:"sequence,omitempty"`

	Rock     float64 `json:"rock,omitempty"`
	Paper    float64 `json:"paper,omitempty"`
	Scissors float64 `json:"scissors,omitempty"`
}

// State is the per-agent mutable payload paired with a Config. Only cycle
// uses it; the zero value is the correct starting state for every variant.
type State struct {
	Index int `json:"index"`
}
