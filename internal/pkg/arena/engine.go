package arena

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vreid/janken/internal/pkg/commitment"
	"github.com/vreid/janken/internal/pkg/game"
	"github.com/vreid/janken/internal/pkg/ledger"
	"github.com/vreid/janken/internal/pkg/strategy"
	bolt "go.etcd.io/bbolt"
)

const (
	// MinWindow and MaxWindow clamp caller-requested strategy, commit
	// and reveal windows so absurd values cannot stall or rush a match.
	MinWindow = 10 * time.Second
	MaxWindow = 120 * time.Second
)

func clampWindow(seconds int64) time.Duration {
	d := time.Duration(seconds) * time.Second

	if d < MinWindow {
		return MinWindow
	}

	if d > MaxWindow {
		return MaxWindow
	}

	return d
}

func isHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}

	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

// wrapLedgerErr converts ledger sentinels into the caller-facing error
// taxonomy.
func wrapLedgerErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ledger.ErrInsufficientFunds) {
		return newError(KindInsufficientFunds, "%v", err)
	}

	if errors.Is(err, ledger.ErrAgentNotFound) {
		return newError(KindValidation, "%v", err)
	}

	return err
}

// CreateChallenge escrows the wager and stores the open challenge in one
// atomic unit. A failure after the escrow aborts the whole transaction,
// so no funds are ever stranded.
func (s *ArenaService) CreateChallenge(agentID string, wager int64) (*Challenge, error) {
	if wager <= 0 {
		return nil, newError(KindValidation, "wager must be a positive integer, got %d", wager)
	}

	challengeID, err := uuid.NewV7()
	if err != nil {
		return nil, newError(KindInternal, "failed to generate challenge ID: %v", err)
	}

	challenge := &Challenge{
		ID:           challengeID.String(),
		ChallengerID: agentID,
		Wager:        wager,
		Status:       ChallengeOpen,
		CreatedAt:    s.Now().UTC(),
	}

	err = s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		err := ledger.EscrowTx(tx, agentID, wager, "", "challenge wager")
		if err != nil {
			return err
		}

		return putChallengeTx(tx, challenge)
	})
	if err != nil {
		return nil, wrapLedgerErr(err)
	}

	return challenge, nil
}

// CancelChallenge refunds the escrowed wager and closes the challenge.
// Only the challenger may cancel, and only while the challenge is open.
func (s *ArenaService) CancelChallenge(challengeID, agentID string) (*Challenge, error) {
	var challenge *Challenge

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		var err error

		challenge, err = getChallengeTx(tx, challengeID)
		if err != nil {
			return newError(KindValidation, "%v", err)
		}

		if challenge.Status != ChallengeOpen {
			return newError(KindConflict, "challenge is %s, not open", challenge.Status)
		}

		if challenge.ChallengerID != agentID {
			return newError(KindConflict, "only the challenger may cancel")
		}

		challenge.Status = ChallengeCancelled

		err = putChallengeTx(tx, challenge)
		if err != nil {
			return err
		}

		return ledger.RefundTx(tx, agentID, challenge.Wager, "", "challenge cancelled")
	})
	if err != nil {
		return nil, wrapLedgerErr(err)
	}

	return challenge, nil
}

// AcceptChallenge escrows the accepter's wager, snapshots both strategy
// configs and creates the match. The challenge row is locked for the
// whole transaction, so double-acceptance loses the race and sees a
// conflict.
func (s *ArenaService) AcceptChallenge(
	challengeID, accepterID string,
	strategySeconds, commitSeconds int64,
) (*Match, error) {
	matchID, err := uuid.NewV7()
	if err != nil {
		return nil, newError(KindInternal, "failed to generate match ID: %v", err)
	}

	var match *Match

	err = s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		challenge, err := getChallengeTx(tx, challengeID)
		if err != nil {
			return newError(KindValidation, "%v", err)
		}

		if challenge.Status != ChallengeOpen {
			return newError(KindConflict, "challenge is %s, not open", challenge.Status)
		}

		if challenge.ChallengerID == accepterID {
			return newError(KindValidation, "cannot accept own challenge")
		}

		err = ledger.EscrowTx(tx, accepterID, challenge.Wager, matchID.String(), "accept wager")
		if err != nil {
			return err
		}

		challenger, err := ledger.GetAgentTx(tx, challenge.ChallengerID)
		if err != nil {
			return err
		}

		accepter, err := ledger.GetAgentTx(tx, accepterID)
		if err != nil {
			return err
		}

		now := s.Now().UTC()
		strategyDeadline := now.Add(clampWindow(strategySeconds))
		commitDeadline := strategyDeadline.Add(clampWindow(commitSeconds))

		match = &Match{
			ID:          matchID.String(),
			ChallengeID: challenge.ID,

			Agent1ID: challenger.ID,
			Agent2ID: accepter.ID,

			Wager: challenge.Wager,

			Phase:  PhaseStrategy,
			Status: StatusPending,

			Agent1Strategy: challenger.Strategy,
			Agent2Strategy: accepter.Strategy,

			StrategyDeadline: strategyDeadline,
			CommitDeadline:   commitDeadline,

			CreatedAt: now,
		}

		challenge.Status = ChallengeMatched
		challenge.MatchID = match.ID

		err = putChallengeTx(tx, challenge)
		if err != nil {
			return err
		}

		return putMatchTx(tx, match)
	})
	if err != nil {
		return nil, wrapLedgerErr(err)
	}

	return match, nil
}

// SubmitCommit records a move hash. The commit window is the span between
// the strategy deadline and the commit deadline; both commits recorded
// opens the reveal window.
func (s *ArenaService) SubmitCommit(matchID, agentID, moveHash string) (*Match, error) {
	if !isHexHash(moveHash) {
		return nil, newError(KindValidation, "move_hash must be 64 lowercase hex characters")
	}

	var match *Match

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		var err error

		match, err = getMatchTx(tx, matchID)
		if err != nil {
			return newError(KindValidation, "%v", err)
		}

		if !match.participant(agentID) {
			return newError(KindConflict, "agent %s is not a participant", agentID)
		}

		if match.Status != StatusPending {
			return newError(KindConflict, "match is %s, commit window closed", match.Status)
		}

		now := s.Now()

		if !now.After(match.StrategyDeadline) {
			return newError(KindConflict, "strategy window still open until %s",
				match.StrategyDeadline.Format(time.RFC3339))
		}

		if now.After(match.CommitDeadline) {
			return newError(KindConflict, "commit deadline passed at %s",
				match.CommitDeadline.Format(time.RFC3339))
		}

		hash, _ := match.side(agentID)
		if *hash != "" {
			return newError(KindConflict, "agent %s already committed", agentID)
		}

		*hash = moveHash

		if match.Agent1Hash != "" && match.Agent2Hash != "" {
			match.Status = StatusWaitingReveals
			revealDeadline := now.Add(s.RevealWindow).UTC()
			match.RevealDeadline = &revealDeadline
		}

		return putMatchTx(tx, match)
	})
	if err != nil {
		return nil, err
	}

	return match, nil
}

// SubmitReveal verifies a plaintext move against the stored commitment
// and records it. A hash mismatch is an integrity violation, never a
// silent fallback. The reveal that completes both sides resolves the
// match synchronously in the same transaction.
func (s *ArenaService) SubmitReveal(matchID, agentID string, move game.Move, salt string) (*Match, error) {
	if !game.Valid(move) {
		return nil, newError(KindValidation, "move must be one of rock, paper, scissors")
	}

	if len(salt) < commitment.MinSaltLen {
		return nil, newError(KindValidation, "salt must be at least %d characters", commitment.MinSaltLen)
	}

	var match *Match

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		var err error

		match, err = getMatchTx(tx, matchID)
		if err != nil {
			return newError(KindValidation, "%v", err)
		}

		if !match.participant(agentID) {
			return newError(KindConflict, "agent %s is not a participant", agentID)
		}

		if match.Status != StatusWaitingReveals {
			return newError(KindConflict, "match is %s, not waiting for reveals", match.Status)
		}

		now := s.Now()

		if match.RevealDeadline != nil && now.After(*match.RevealDeadline) {
			return newError(KindConflict, "reveal deadline passed at %s",
				match.RevealDeadline.Format(time.RFC3339))
		}

		hash, revealed := match.side(agentID)
		if *revealed != "" {
			return newError(KindConflict, "agent %s already revealed", agentID)
		}

		if !commitment.Verify(move, salt, *hash) {
			return newError(KindIntegrity, "reveal does not match stored commitment")
		}

		*revealed = move

		if match.Agent1Move != "" && match.Agent2Move != "" {
			return s.resolveLockedTx(tx, match, now)
		}

		return putMatchTx(tx, match)
	})
	if err != nil {
		return nil, err
	}

	return match, nil
}

// Resolve drives a match to its terminal state. It is the single entry
// point shared by the live-reveal path and the reaper; the status
// re-check under the same transaction that writes the terminal state
// makes it idempotent against concurrent double-invocation.
func (s *ArenaService) Resolve(matchID string) (*Match, error) {
	var match *Match

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		var err error

		match, err = getMatchTx(tx, matchID)
		if err != nil {
			return newError(KindValidation, "%v", err)
		}

		if match.Status == StatusComplete {
			return newError(KindConflict, "match already complete")
		}

		now := s.Now()

		bothRevealed := match.Agent1Move != "" && match.Agent2Move != ""

		if !bothRevealed && !expired(match, now) {
			return newError(KindConflict, "match is %s and its deadline has not passed", match.Status)
		}

		return s.resolveLockedTx(tx, match, now)
	})
	if err != nil {
		return nil, err
	}

	return match, nil
}

// resolveLockedTx performs the one authoritative resolution. The caller
// holds the write transaction and has verified the match is not complete.
//
// A pending timeout reaches here with no recorded moves, so both sides
// fall back even when one posted a commit hash: a hash alone, with no
// completed reveal phase, cannot be verified, and trusting it would let
// an agent grief by going silent after seeing the opponent commit.
func (s *ArenaService) resolveLockedTx(tx *bolt.Tx, match *Match, now time.Time) error {
	type seat struct {
		agentID  string
		snapshot strategy.Config
		move     *game.Move
		fallback *bool
	}

	seats := []seat{
		{match.Agent1ID, match.Agent1Strategy, &match.Agent1Move, &match.Agent1UsedFallback},
		{match.Agent2ID, match.Agent2Strategy, &match.Agent2Move, &match.Agent2UsedFallback},
	}

	nextStates := make([]strategy.State, len(seats))

	for i, st := range seats {
		agent, err := ledger.GetAgentTx(tx, st.agentID)
		if err != nil {
			return err
		}

		if *st.move == "" {
			var lossCounter game.Move

			if st.snapshot.Type == strategy.TypeCounterLastLoss {
				lossCounter, err = lastLossCounterTx(tx, st.agentID)
				if err != nil {
					return err
				}
			}

			move, next := s.Executor.ComputeMove(st.snapshot, agent.StrategyState, lossCounter)

			*st.move = move
			*st.fallback = true
			nextStates[i] = next
		} else {
			nextStates[i] = s.Executor.AdvanceState(st.snapshot, agent.StrategyState)
		}
	}

	var err error

	switch {
	case game.Beats(match.Agent1Move, match.Agent2Move):
		match.WinnerID = &match.Agent1ID
		err = ledger.SettleTx(tx, match.Agent1ID, match.Agent2ID, match.Wager, match.ID)
	case game.Beats(match.Agent2Move, match.Agent1Move):
		match.WinnerID = &match.Agent2ID
		err = ledger.SettleTx(tx, match.Agent2ID, match.Agent1ID, match.Wager, match.ID)
	default:
		err = ledger.SettleDrawTx(tx, match.Agent1ID, match.Agent2ID, match.Wager, match.ID)
	}

	if err != nil {
		return err
	}

	// Settlement rewrote both agent records; reload before advancing the
	// strategy state so neither write is lost.
	for i, st := range seats {
		agent, err := ledger.GetAgentTx(tx, st.agentID)
		if err != nil {
			return err
		}

		agent.StrategyState = nextStates[i]

		err = ledger.PutAgentTx(tx, agent)
		if err != nil {
			return err
		}
	}

	completedAt := now.UTC()
	match.Status = StatusComplete
	match.Phase = PhaseFinished
	match.CompletedAt = &completedAt

	return putMatchTx(tx, match)
}

// lastLossCounterTx finds the agent's most recent completed, non-drawn
// match they lost and returns the move that beats the opponent's winning
// move. Empty when no qualifying loss exists.
func lastLossCounterTx(tx *bolt.Tx, agentID string) (game.Move, error) {
	var (
		latest      time.Time
		winningMove game.Move
	)

	err := forEachMatchTx(tx, func(match *Match) error {
		if match.Status != StatusComplete || match.WinnerID == nil {
			return nil
		}

		if !match.participant(agentID) || *match.WinnerID == agentID {
			return nil
		}

		if match.CompletedAt == nil || !match.CompletedAt.After(latest) {
			return nil
		}

		latest = *match.CompletedAt

		if *match.WinnerID == match.Agent1ID {
			winningMove = match.Agent1Move
		} else {
			winningMove = match.Agent2Move
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	if winningMove == "" {
		return "", nil
	}

	return game.Counter(winningMove), nil
}

// GetMatch returns a match by id.
func (s *ArenaService) GetMatch(matchID string) (*Match, error) {
	var match *Match

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		match, err = getMatchTx(tx, matchID)

		return err
	})
	if err != nil {
		return nil, newError(KindValidation, "%v", err)
	}

	return match, nil
}

// GetChallenge returns a challenge by id.
func (s *ArenaService) GetChallenge(challengeID string) (*Challenge, error) {
	var challenge *Challenge

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		challenge, err = getChallengeTx(tx, challengeID)

		return err
	})
	if err != nil {
		return nil, newError(KindValidation, "%v", err)
	}

	return challenge, nil
}
