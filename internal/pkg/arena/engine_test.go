package arena_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/janken/internal/pkg/arena"
	"github.com/vreid/janken/internal/pkg/commitment"
	"github.com/vreid/janken/internal/pkg/common"
	"github.com/vreid/janken/internal/pkg/game"
	"github.com/vreid/janken/internal/pkg/ledger"
	"github.com/vreid/janken/internal/pkg/strategy"
	bolt "go.etcd.io/bbolt"
)

type fixture struct {
	svc *arena.ArenaService
	led *ledger.LedgerService

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "janken.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, common.InitBuckets(db))

	databaseService := &common.DatabaseService{DB: db}

	f := &fixture{
		led: &ledger.LedgerService{DatabaseService: databaseService},
		now: time.Now().UTC(),
	}

	f.svc = &arena.ArenaService{
		DatabaseService: databaseService,

		Executor: strategy.NewExecutor(),

		Now: func() time.Time {
			f.mu.Lock()
			defer f.mu.Unlock()

			return f.now
		},

		RevealWindow: 30 * time.Second,
	}

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

func (f *fixture) agent(t *testing.T, id string, balance int64, cfg strategy.Config) {
	t.Helper()

	require.NoError(t, f.led.CreateAgent(&ledger.Agent{
		ID:        id,
		Name:      "agent-" + id,
		Strategy:  cfg,
		CreatedAt: f.now,
	}, balance))
}

// openMatch creates a challenge by a-1 for wager, accepted by a-2, and
// moves the clock into the commit window.
func (f *fixture) openMatch(t *testing.T, wager int64) *arena.Match {
	t.Helper()

	challenge, err := f.svc.CreateChallenge("a-1", wager)
	require.NoError(t, err)

	match, err := f.svc.AcceptChallenge(challenge.ID, "a-2", 10, 10)
	require.NoError(t, err)

	f.advance(11 * time.Second)

	return match
}

func (f *fixture) commit(t *testing.T, matchID, agentID string, move game.Move) (string, string) {
	t.Helper()

	hash, salt, err := commitment.Commit(move)
	require.NoError(t, err)

	_, err = f.svc.SubmitCommit(matchID, agentID, hash)
	require.NoError(t, err)

	return hash, salt
}

func kindOf(t *testing.T, err error) arena.Kind {
	t.Helper()

	e, ok := arena.AsError(err)
	require.True(t, ok, "expected an arena error, got %v", err)

	return e.Kind
}

func TestCreateChallenge(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 100, strategy.Config{Type: strategy.TypeRandom})

	challenge, err := f.svc.CreateChallenge("a-1", 40)
	require.NoError(t, err)

	assert.Equal(t, arena.ChallengeOpen, challenge.Status)

	agent, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), agent.Balance)
}

func TestCreateChallengeValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 100, strategy.Config{Type: strategy.TypeRandom})

	_, err := f.svc.CreateChallenge("a-1", 0)
	assert.Equal(t, arena.KindValidation, kindOf(t, err))

	_, err = f.svc.CreateChallenge("a-1", -5)
	assert.Equal(t, arena.KindValidation, kindOf(t, err))

	_, err = f.svc.CreateChallenge("a-1", 500)
	assert.Equal(t, arena.KindInsufficientFunds, kindOf(t, err))

	// Rejections left the balance alone.
	agent, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), agent.Balance)
}

func TestCancelChallenge(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 100, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 100, strategy.Config{Type: strategy.TypeRandom})

	challenge, err := f.svc.CreateChallenge("a-1", 40)
	require.NoError(t, err)

	_, err = f.svc.CancelChallenge(challenge.ID, "a-2")
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	cancelled, err := f.svc.CancelChallenge(challenge.ID, "a-1")
	require.NoError(t, err)
	assert.Equal(t, arena.ChallengeCancelled, cancelled.Status)

	agent, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), agent.Balance)

	// Terminal: no second cancel, no acceptance.
	_, err = f.svc.CancelChallenge(challenge.ID, "a-1")
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	_, err = f.svc.AcceptChallenge(challenge.ID, "a-2", 10, 10)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))
}

func TestAcceptChallenge(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Rock})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-3", 10, strategy.Config{Type: strategy.TypeRandom})

	challenge, err := f.svc.CreateChallenge("a-1", 50)
	require.NoError(t, err)

	_, err = f.svc.AcceptChallenge(challenge.ID, "a-1", 10, 10)
	assert.Equal(t, arena.KindValidation, kindOf(t, err))

	// Not enough chips: the challenge stays open.
	_, err = f.svc.AcceptChallenge(challenge.ID, "a-3", 10, 10)
	assert.Equal(t, arena.KindInsufficientFunds, kindOf(t, err))

	stillOpen, err := f.svc.GetChallenge(challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, arena.ChallengeOpen, stillOpen.Status)

	match, err := f.svc.AcceptChallenge(challenge.ID, "a-2", 10, 10)
	require.NoError(t, err)

	assert.Equal(t, arena.PhaseStrategy, match.Phase)
	assert.Equal(t, arena.StatusPending, match.Status)
	assert.Equal(t, "a-1", match.Agent1ID)
	assert.Equal(t, "a-2", match.Agent2ID)
	assert.Equal(t, strategy.TypeAlways, match.Agent1Strategy.Type)

	accepter, err := f.led.GetAgent("a-2")
	require.NoError(t, err)
	assert.Equal(t, int64(950), accepter.Balance)

	// Double acceptance loses the row race.
	_, err = f.svc.AcceptChallenge(challenge.ID, "a-2", 10, 10)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))
}

func TestAcceptChallengeClampsWindows(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})

	challenge, err := f.svc.CreateChallenge("a-1", 50)
	require.NoError(t, err)

	now := f.svc.Now()

	match, err := f.svc.AcceptChallenge(challenge.ID, "a-2", 1, 100000)
	require.NoError(t, err)

	assert.Equal(t, now.Add(arena.MinWindow), match.StrategyDeadline)
	assert.Equal(t, match.StrategyDeadline.Add(arena.MaxWindow), match.CommitDeadline)
}

func TestSubmitCommitGuards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-3", 1000, strategy.Config{Type: strategy.TypeRandom})

	challenge, err := f.svc.CreateChallenge("a-1", 50)
	require.NoError(t, err)

	match, err := f.svc.AcceptChallenge(challenge.ID, "a-2", 10, 10)
	require.NoError(t, err)

	hash, _, err := commitment.Commit(game.Rock)
	require.NoError(t, err)

	_, err = f.svc.SubmitCommit(match.ID, "a-1", "not-a-hash")
	assert.Equal(t, arena.KindValidation, kindOf(t, err))

	// Commit window has not opened yet.
	_, err = f.svc.SubmitCommit(match.ID, "a-1", hash)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	f.advance(11 * time.Second)

	_, err = f.svc.SubmitCommit(match.ID, "a-3", hash)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	updated, err := f.svc.SubmitCommit(match.ID, "a-1", hash)
	require.NoError(t, err)
	assert.Equal(t, arena.StatusPending, updated.Status)

	_, err = f.svc.SubmitCommit(match.ID, "a-1", hash)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	// Second commit opens the reveal window.
	hash2, _, err := commitment.Commit(game.Paper)
	require.NoError(t, err)

	updated, err = f.svc.SubmitCommit(match.ID, "a-2", hash2)
	require.NoError(t, err)
	assert.Equal(t, arena.StatusWaitingReveals, updated.Status)
	require.NotNil(t, updated.RevealDeadline)
	assert.Equal(t, f.svc.Now().Add(30*time.Second), *updated.RevealDeadline)
}

func TestSubmitCommitDeadlinePassed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})

	match := f.openMatch(t, 50)

	f.advance(time.Hour)

	hash, _, err := commitment.Commit(game.Rock)
	require.NoError(t, err)

	_, err = f.svc.SubmitCommit(match.ID, "a-1", hash)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))
}

func TestLiveMatchResolvesOnSecondReveal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})

	match := f.openMatch(t, 50)

	_, salt1 := f.commit(t, match.ID, "a-1", game.Rock)
	_, salt2 := f.commit(t, match.ID, "a-2", game.Scissors)

	updated, err := f.svc.SubmitReveal(match.ID, "a-1", game.Rock, salt1)
	require.NoError(t, err)
	assert.Equal(t, arena.StatusWaitingReveals, updated.Status)

	updated, err = f.svc.SubmitReveal(match.ID, "a-2", game.Scissors, salt2)
	require.NoError(t, err)

	assert.Equal(t, arena.StatusComplete, updated.Status)
	assert.Equal(t, arena.PhaseFinished, updated.Phase)
	require.NotNil(t, updated.WinnerID)
	assert.Equal(t, "a-1", *updated.WinnerID)
	assert.False(t, updated.Agent1UsedFallback)
	assert.False(t, updated.Agent2UsedFallback)
	require.NotNil(t, updated.CompletedAt)

	winner, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	loser, err := f.led.GetAgent("a-2")
	require.NoError(t, err)

	assert.Equal(t, int64(1050), winner.Balance)
	assert.Equal(t, int64(950), loser.Balance)
	assert.Equal(t, int64(1), winner.Wins)
	assert.Equal(t, int64(1), loser.Losses)
}

func TestDrawRestoresBalances(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})

	match := f.openMatch(t, 75)

	_, salt1 := f.commit(t, match.ID, "a-1", game.Paper)
	_, salt2 := f.commit(t, match.ID, "a-2", game.Paper)

	_, err := f.svc.SubmitReveal(match.ID, "a-1", game.Paper, salt1)
	require.NoError(t, err)

	updated, err := f.svc.SubmitReveal(match.ID, "a-2", game.Paper, salt2)
	require.NoError(t, err)

	assert.Equal(t, arena.StatusComplete, updated.Status)
	assert.Nil(t, updated.WinnerID)

	for _, id := range []string{"a-1", "a-2"} {
		agent, err := f.led.GetAgent(id)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), agent.Balance)
		assert.Equal(t, int64(1), agent.Draws)
	}
}

func TestRevealHashMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})

	match := f.openMatch(t, 50)

	f.commit(t, match.ID, "a-1", game.Rock)
	_, salt2 := f.commit(t, match.ID, "a-2", game.Scissors)

	// Paper does not hash to the stored rock commitment.
	_, err := f.svc.SubmitReveal(match.ID, "a-1", game.Paper, "0123456789abcdef")
	assert.Equal(t, arena.KindIntegrity, kindOf(t, err))

	current, err := f.svc.GetMatch(match.ID)
	require.NoError(t, err)
	assert.Equal(t, arena.StatusWaitingReveals, current.Status)
	assert.Empty(t, current.Agent1Move)

	// No ledger change either.
	agent, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(950), agent.Balance)

	// The honest salt still verifies afterwards.
	_, err = f.svc.SubmitReveal(match.ID, "a-2", game.Scissors, salt2)
	require.NoError(t, err)
}

func TestRevealGuards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-3", 1000, strategy.Config{Type: strategy.TypeRandom})

	match := f.openMatch(t, 50)

	_, err := f.svc.SubmitReveal(match.ID, "a-1", game.Move("dynamite"), "0123456789abcdef")
	assert.Equal(t, arena.KindValidation, kindOf(t, err))

	_, err = f.svc.SubmitReveal(match.ID, "a-1", game.Rock, "short")
	assert.Equal(t, arena.KindValidation, kindOf(t, err))

	// Still pending: reveals are premature.
	_, err = f.svc.SubmitReveal(match.ID, "a-1", game.Rock, "0123456789abcdef")
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	_, salt1 := f.commit(t, match.ID, "a-1", game.Rock)
	f.commit(t, match.ID, "a-2", game.Scissors)

	_, err = f.svc.SubmitReveal(match.ID, "a-3", game.Rock, salt1)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	_, err = f.svc.SubmitReveal(match.ID, "a-1", game.Rock, salt1)
	require.NoError(t, err)

	_, err = f.svc.SubmitReveal(match.ID, "a-1", game.Rock, salt1)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	f.advance(time.Hour)

	_, err = f.svc.SubmitReveal(match.ID, "a-2", game.Scissors, salt1)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))
}

func TestPendingTimeoutDiscardsLoneCommit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Rock})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Scissors})

	match := f.openMatch(t, 50)

	// Agent 1 commits, then both go silent.
	f.commit(t, match.ID, "a-1", game.Paper)

	// Resolution before the deadline is premature.
	_, err := f.svc.Resolve(match.ID)
	assert.Equal(t, arena.KindConflict, kindOf(t, err))

	f.advance(time.Hour)

	resolved, err := f.svc.Resolve(match.ID)
	require.NoError(t, err)

	// The unverifiable hash bought agent 1 nothing: both sides play
	// their strategy.
	assert.True(t, resolved.Agent1UsedFallback)
	assert.True(t, resolved.Agent2UsedFallback)
	assert.Equal(t, game.Rock, resolved.Agent1Move)
	assert.Equal(t, game.Scissors, resolved.Agent2Move)
	require.NotNil(t, resolved.WinnerID)
	assert.Equal(t, "a-1", *resolved.WinnerID)
}

func TestRevealTimeoutKeepsVerifiedMove(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Scissors})

	match := f.openMatch(t, 50)

	_, salt1 := f.commit(t, match.ID, "a-1", game.Rock)
	f.commit(t, match.ID, "a-2", game.Rock)

	_, err := f.svc.SubmitReveal(match.ID, "a-1", game.Rock, salt1)
	require.NoError(t, err)

	f.advance(time.Hour)

	resolved, err := f.svc.Resolve(match.ID)
	require.NoError(t, err)

	// Agent 1's verified reveal stands; agent 2's lone hash is
	// discarded in favor of its strategy.
	assert.False(t, resolved.Agent1UsedFallback)
	assert.True(t, resolved.Agent2UsedFallback)
	assert.Equal(t, game.Rock, resolved.Agent1Move)
	assert.Equal(t, game.Scissors, resolved.Agent2Move)
	require.NotNil(t, resolved.WinnerID)
	assert.Equal(t, "a-1", *resolved.WinnerID)
}

func TestRevealTimeoutBothSilent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Rock})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Scissors})

	match := f.openMatch(t, 50)

	f.commit(t, match.ID, "a-1", game.Paper)
	f.commit(t, match.ID, "a-2", game.Paper)

	f.advance(time.Hour)

	resolved, err := f.svc.Resolve(match.ID)
	require.NoError(t, err)

	assert.True(t, resolved.Agent1UsedFallback)
	assert.True(t, resolved.Agent2UsedFallback)
	assert.Equal(t, game.Rock, resolved.Agent1Move)
	assert.Equal(t, game.Scissors, resolved.Agent2Move)
	require.NotNil(t, resolved.WinnerID)
	assert.Equal(t, "a-1", *resolved.WinnerID)
}

func TestResolveExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Rock})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeAlways, Move: game.Scissors})

	match := f.openMatch(t, 50)

	f.advance(time.Hour)

	var wg sync.WaitGroup

	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = f.svc.Resolve(match.ID)
		}()
	}

	wg.Wait()

	succeeded := 0

	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, arena.KindConflict, kindOf(t, err))
		}
	}

	assert.Equal(t, 1, succeeded)

	// One settlement only: the pot moved exactly once.
	winner, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), winner.Balance)
	assert.Equal(t, int64(1), winner.Wins)
}

func TestCycleStateLockStep(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 10000, strategy.Config{
		Type:     strategy.TypeCycle,
		Sequence: []game.Move{game.Rock, game.Paper, game.Scissors},
	})
	f.agent(t, "a-2", 10000, strategy.Config{Type: strategy.TypeAlways, Move: game.Rock})

	expected := []game.Move{game.Rock, game.Paper, game.Scissors, game.Rock}

	for round, want := range expected {
		match := f.openMatch(t, 10)

		if round == 1 {
			// Round two is played live; the cycle cursor must advance
			// all the same.
			_, salt1 := f.commit(t, match.ID, "a-1", want)
			_, salt2 := f.commit(t, match.ID, "a-2", game.Rock)

			_, err := f.svc.SubmitReveal(match.ID, "a-1", want, salt1)
			require.NoError(t, err)

			resolved, err := f.svc.SubmitReveal(match.ID, "a-2", game.Rock, salt2)
			require.NoError(t, err)
			assert.Equal(t, want, resolved.Agent1Move)

			continue
		}

		f.advance(time.Hour)

		resolved, err := f.svc.Resolve(match.ID)
		require.NoError(t, err)
		assert.Equal(t, want, resolved.Agent1Move, "round %d", round)
		assert.True(t, resolved.Agent1UsedFallback)
	}

	agent, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	assert.Equal(t, 1, agent.StrategyState.Index)
}

func TestCounterLastLossFallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 10000, strategy.Config{Type: strategy.TypeCounterLastLoss})
	f.agent(t, "a-2", 10000, strategy.Config{Type: strategy.TypeAlways, Move: game.Rock})

	// Match one: a-1 plays scissors live and loses to rock.
	match := f.openMatch(t, 10)

	_, salt1 := f.commit(t, match.ID, "a-1", game.Scissors)
	_, salt2 := f.commit(t, match.ID, "a-2", game.Rock)

	_, err := f.svc.SubmitReveal(match.ID, "a-1", game.Scissors, salt1)
	require.NoError(t, err)

	resolved, err := f.svc.SubmitReveal(match.ID, "a-2", game.Rock, salt2)
	require.NoError(t, err)
	require.NotNil(t, resolved.WinnerID)
	require.Equal(t, "a-2", *resolved.WinnerID)

	f.advance(time.Minute)

	// Match two: a-1 goes silent; the fallback counters the rock that
	// beat it with paper.
	match = f.openMatch(t, 10)

	f.advance(time.Hour)

	resolved, err = f.svc.Resolve(match.ID)
	require.NoError(t, err)

	assert.True(t, resolved.Agent1UsedFallback)
	assert.Equal(t, game.Paper, resolved.Agent1Move)
	require.NotNil(t, resolved.WinnerID)
	assert.Equal(t, "a-1", *resolved.WinnerID)
}

func TestConservationAcrossMatches(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.agent(t, "a-1", 1000, strategy.Config{Type: strategy.TypeRandom})
	f.agent(t, "a-2", 1000, strategy.Config{Type: strategy.TypeRandom})

	for range 5 {
		match := f.openMatch(t, 100)

		f.advance(time.Hour)

		_, err := f.svc.Resolve(match.ID)
		require.NoError(t, err)
	}

	agent1, err := f.led.GetAgent("a-1")
	require.NoError(t, err)
	agent2, err := f.led.GetAgent("a-2")
	require.NoError(t, err)

	assert.Equal(t, int64(2000), agent1.Balance+agent2.Balance)
	assert.GreaterOrEqual(t, agent1.Balance, int64(0))
	assert.GreaterOrEqual(t, agent2.Balance, int64(0))
}
