package arena

import (
	"time"

	"github.com/vreid/janken/internal/pkg/game"
	"github.com/vreid/janken/internal/pkg/strategy"
)

type ChallengeStatus string

const (
	ChallengeOpen      ChallengeStatus = "open"
	ChallengeMatched   ChallengeStatus = "matched"
	ChallengeCancelled ChallengeStatus = "cancelled"
)

// Challenge is an open invitation. The wager is escrowed at creation and
// either refunded (cancel) or carried into a match's pool (accept), never
// both, never neither.
type Challenge struct {
	ID string `json:"id"`

	ChallengerID string `json:"challenger_id"`

	Wager int64 `json:"wager"`

	Status ChallengeStatus `json:"status"`

	MatchID string `json:"match_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Phase is the coarse externally visible lifecycle. It becomes finished
// exactly when Status becomes complete and never reverts.
type Phase string

const (
	PhaseStrategy Phase = "strategy"
	PhaseFinished Phase = "finished"
)

// Status is the fine-grained protocol state.
type Status string

const (
	StatusPending        Status = "pending"
	StatusWaitingReveals Status = "waiting_reveals"
	StatusComplete       Status = "complete"
)

// Match is one wagered contest. Strategy configs are snapshotted at
// creation so later edits never retroactively change a match in flight.
// Once Status is complete, moves, winner and ledger effects are immutable.
type Match struct {
	ID          string `json:"id"`
	ChallengeID string `json:"challenge_id"`

	Agent1ID string `json:"agent1_id"`
	Agent2ID string `json:"agent2_id"`

	Wager int64 `json:"wager"`

	Phase  Phase  `json:"phase"`
	Status Status `json:"status"`

	Agent1Hash string `json:"agent1_hash,omitempty"`
	Agent2Hash string `json:"agent2_hash,omitempty"`

	Agent1Move game.Move `json:"agent1_move,omitempty"`
	Agent2Move game.Move `json:"agent2_move,omitempty"`

	Agent1UsedFallback bool `json:"agent1_used_fallback"`
	Agent2UsedFallback bool `json:"agent2_used_fallback"`

	Agent1Strategy strategy.Config `json:"agent1_strategy"`
	Agent2Strategy strategy.Config `json:"agent2_strategy"`

	// WinnerID is nil until resolution and stays nil for draws.
	WinnerID *string `json:"winner_id,omitempty"`

	StrategyDeadline time.Time  `json:"strategy_deadline"`
	CommitDeadline   time.Time  `json:"commit_deadline"`
	RevealDeadline   *time.Time `json:"reveal_deadline,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (m *Match) participant(agentID string) bool {
	return agentID == m.Agent1ID || agentID == m.Agent2ID
}

// side returns pointers to the per-agent slots for agentID so guard and
// resolution code reads the same way for both seats.
func (m *Match) side(agentID string) (hash *string, move *game.Move) {
	if agentID == m.Agent1ID {
		return &m.Agent1Hash, &m.Agent1Move
	}

	return &m.Agent2Hash, &m.Agent2Move
}
