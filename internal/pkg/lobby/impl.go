package lobby

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/vreid/janken/internal/pkg/arena"
	"github.com/vreid/janken/internal/pkg/common"
	"github.com/vreid/janken/internal/pkg/ledger"
	bolt "go.etcd.io/bbolt"
)

// HistoryLimit caps the opponent-history feed at the last 20 completed
// matches.
const HistoryLimit = 20

const recentMatchesLimit = 50

// LobbyService serves the read-only projections: open challenges, recent
// completed matches, rankings and the per-agent history feed. It never
// mutates arena state.
type LobbyService struct {
	DatabaseService *common.DatabaseService
	LedgerService   *ledger.LedgerService
}

func NewLobbyService(i do.Injector) (*LobbyService, error) {
	databaseService, err := do.Invoke[*common.DatabaseService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get database service: %w", err)
	}

	ledgerService, err := do.Invoke[*ledger.LedgerService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger service: %w", err)
	}

	result := &LobbyService{
		DatabaseService: databaseService,
		LedgerService:   ledgerService,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		lobbyGroup := apiGroup.Group("/lobby")

		lobbyGroup.GET("/challenges", result.GetOpenChallenges)
		lobbyGroup.GET("/matches", result.GetRecentMatches)
		lobbyGroup.GET("/rankings", result.GetRankings)

		apiGroup.GET("/agents/:id/history", result.GetHistory)
	})

	return result, nil
}

// OpenChallenges lists challenges still waiting for an accepter.
func (s *LobbyService) OpenChallenges() ([]arena.Challenge, error) {
	challenges := []arena.Challenge{}

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(common.ChallengesBucket)).ForEach(func(_, v []byte) error {
			var challenge arena.Challenge

			err := json.Unmarshal(v, &challenge)
			if err != nil {
				return fmt.Errorf("failed to unmarshal challenge: %w", err)
			}

			if challenge.Status == arena.ChallengeOpen {
				challenges = append(challenges, challenge)
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list open challenges: %w", err)
	}

	return challenges, nil
}

func (s *LobbyService) completedMatches() ([]arena.Match, map[string]string, error) {
	matches := []arena.Match{}
	names := map[string]string{}

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(common.MatchesBucket)).ForEach(func(_, v []byte) error {
			var match arena.Match

			err := json.Unmarshal(v, &match)
			if err != nil {
				return fmt.Errorf("failed to unmarshal match: %w", err)
			}

			if match.Status == arena.StatusComplete {
				matches = append(matches, match)
			}

			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket([]byte(common.AgentsBucket)).ForEach(func(k, v []byte) error {
			var agent ledger.Agent

			err := json.Unmarshal(v, &agent)
			if err != nil {
				return fmt.Errorf("failed to unmarshal agent: %w", err)
			}

			names[string(k)] = agent.Name

			return nil
		})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list completed matches: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CompletedAt.After(*matches[j].CompletedAt)
	})

	return matches, names, nil
}

// RecentMatches returns spectator summaries of completed matches, newest
// first.
func (s *LobbyService) RecentMatches(limit int) ([]MatchSummary, error) {
	matches, names, err := s.completedMatches()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	summaries := make([]MatchSummary, 0, len(matches))

	for _, match := range matches {
		summaries = append(summaries, MatchSummary{
			ID: match.ID,

			Agent1Name: names[match.Agent1ID],
			Agent2Name: names[match.Agent2ID],

			Agent1Move: match.Agent1Move,
			Agent2Move: match.Agent2Move,

			Agent1UsedFallback: match.Agent1UsedFallback,
			Agent2UsedFallback: match.Agent2UsedFallback,

			WinnerID: match.WinnerID,

			Wager: match.Wager,

			CompletedAt: *match.CompletedAt,
		})
	}

	return summaries, nil
}

// Rankings orders agents by wins, then chip balance.
func (s *LobbyService) Rankings() ([]RankingEntry, error) {
	agents, err := s.LedgerService.ListAgents()
	if err != nil {
		return nil, err
	}

	entries := make([]RankingEntry, 0, len(agents))

	for _, agent := range agents {
		entries = append(entries, RankingEntry{
			AgentID: agent.ID,
			Name:    agent.Name,

			Wins:   agent.Wins,
			Losses: agent.Losses,
			Draws:  agent.Draws,

			Balance: agent.Balance,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}

		return entries[i].Balance > entries[j].Balance
	})

	return entries, nil
}

// History returns the agent's last completed matches from their own
// perspective. It feeds live strategy decisions only; resolution never
// consults it.
func (s *LobbyService) History(agentID string) ([]HistoryEntry, error) {
	matches, names, err := s.completedMatches()
	if err != nil {
		return nil, err
	}

	entries := []HistoryEntry{}

	for _, match := range matches {
		if len(entries) == HistoryLimit {
			break
		}

		var ownMove, opponentMove, opponentID = match.Agent1Move, match.Agent2Move, match.Agent2ID

		switch agentID {
		case match.Agent1ID:
		case match.Agent2ID:
			ownMove, opponentMove, opponentID = match.Agent2Move, match.Agent1Move, match.Agent1ID
		default:
			continue
		}

		result := "draw"

		if match.WinnerID != nil {
			if *match.WinnerID == agentID {
				result = "win"
			} else {
				result = "loss"
			}
		}

		entries = append(entries, HistoryEntry{
			MatchID: match.ID,

			Opponent: names[opponentID],

			OwnMove:      ownMove,
			OpponentMove: opponentMove,

			Result: result,

			Wager: match.Wager,

			CompletedAt: *match.CompletedAt,
		})
	}

	return entries, nil
}

func (s *LobbyService) GetOpenChallenges(c echo.Context) error {
	challenges, err := s.OpenChallenges()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list challenges")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, challenges)
}

func (s *LobbyService) GetRecentMatches(c echo.Context) error {
	summaries, err := s.RecentMatches(recentMatchesLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list matches")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, summaries)
}

func (s *LobbyService) GetRankings(c echo.Context) error {
	rankings, err := s.Rankings()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list rankings")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, rankings)
}

func (s *LobbyService) GetHistory(c echo.Context) error {
	history, err := s.History(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load history")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, history)
}
