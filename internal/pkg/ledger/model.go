package ledger

import (
	"time"

	"github.com/vreid/janken/internal/pkg/strategy"
)

// Agent is the ledger-owned record of one arena participant. Balances and
// counters are mutated only through escrow operations, match resolution
// and explicit strategy updates.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Balance int64 `json:"balance"`

	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
	Draws  int64 `json:"draws"`

	Strategy      strategy.Config `json:"strategy"`
	StrategyState strategy.State  `json:"strategy_state"`

	CreatedAt time.Time `json:"created_at"`
}

// Transaction is the immutable audit record of one chip transfer. From is
// absent for grants, refunds and pot payouts.
type Transaction struct {
	ID string `json:"id"`

	From *string `json:"from,omitempty"`
	To   string  `json:"to"`

	Amount int64  `json:"amount"`
	Note   string `json:"note"`

	MatchID string `json:"match_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
