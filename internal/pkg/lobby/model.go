package lobby

import (
	"time"

	"github.com/vreid/janken/internal/pkg/game"
)

// MatchSummary is the spectator projection of one completed match.
type MatchSummary struct {
	ID string `json:"id"`

	Agent1Name string `json:"agent1_name"`
	Agent2Name string `json:"agent2_name"`

	Agent1Move game.Move `json:"agent1_move"`
	Agent2Move game.Move `json:"agent2_move"`

	Agent1UsedFallback bool `json:"agent1_used_fallback"`
	Agent2UsedFallback bool `json:"agent2_used_fallback"`

	WinnerID *string `json:"winner_id,omitempty"`

	Wager int64 `json:"wager"`

	CompletedAt time.Time `json:"completed_at"`
}

type RankingEntry struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`

	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
	Draws  int64 `json:"draws"`

	Balance int64 `json:"balance"`
}

// HistoryEntry is one completed match from a single agent's perspective,
// handed to live agents during the strategy window.
type HistoryEntry struct {
	MatchID string `json:"match_id"`

	Opponent string `json:"opponent"`

	OwnMove      game.Move `json:"own_move"`
	OpponentMove game.Move `json:"opponent_move"`

	Result string `json:"result"`

	Wager int64 `json:"wager"`

	CompletedAt time.Time `json:"completed_at"`
}
