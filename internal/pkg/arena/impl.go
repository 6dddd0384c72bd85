package arena

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/vreid/janken/internal/pkg/auth"
	"github.com/vreid/janken/internal/pkg/common"
	"github.com/vreid/janken/internal/pkg/game"
	"github.com/vreid/janken/internal/pkg/ratelimit"
	"github.com/vreid/janken/internal/pkg/strategy"
)

// ArenaService owns the match lifecycle: challenges, the commit-reveal
// protocol and resolution. Now is injectable so deadline tests don't
// sleep.
type ArenaService struct {
	DatabaseService *common.DatabaseService
	LimiterService  *ratelimit.LimiterService

	Executor *strategy.Executor

	Now func() time.Time

	RevealWindow time.Duration
}

func NewArenaService(i do.Injector) (*ArenaService, error) {
	databaseService, err := do.Invoke[*common.DatabaseService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get database service: %w", err)
	}

	limiterService, err := do.Invoke[*ratelimit.LimiterService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get limiter service: %w", err)
	}

	revealSeconds := do.MustInvokeNamed[int64](i, "reveal-seconds")

	result := &ArenaService{
		DatabaseService: databaseService,
		LimiterService:  limiterService,

		Executor: strategy.NewExecutor(),

		Now: time.Now,

		RevealWindow: clampWindow(revealSeconds),
	}

	authService, err := do.Invoke[*auth.AuthService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth service: %w", err)
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		challengesGroup := apiGroup.Group("/challenges", authService.Middleware())

		challengesGroup.POST("", result.PostChallenge)
		challengesGroup.POST("/:id/cancel", result.PostCancel)
		challengesGroup.POST("/:id/accept", result.PostAccept)

		matchesGroup := apiGroup.Group("/matches")

		matchesGroup.GET("/:id", result.GetMatchByID)
		matchesGroup.POST("/:id/commit", result.PostCommit, authService.Middleware())
		matchesGroup.POST("/:id/reveal", result.PostReveal, authService.Middleware())
	})

	return result, nil
}

func (s *ArenaService) admit(c echo.Context, action string) error {
	if !s.LimiterService.Allow(action, auth.AgentID(c)) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}

	return nil
}

// writeError maps the engine error taxonomy onto HTTP statuses. Every
// rejection body carries the stable kind plus the human-readable reason.
func writeError(c echo.Context, err error) error {
	if e, ok := AsError(err); ok {
		//nolint:wrapcheck
		return c.JSON(HTTPStatus(e.Kind), e)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusInternalServerError, &Error{
		Kind:   KindInternal,
		Reason: "internal error",
	})
}

type postChallengeRequest struct {
	Wager int64 `json:"wager"`
}

func (s *ArenaService) PostChallenge(c echo.Context) error {
	if err := s.admit(c, "create_challenge"); err != nil {
		return err
	}

	var req postChallengeRequest

	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	challenge, err := s.CreateChallenge(auth.AgentID(c), req.Wager)
	if err != nil {
		return writeError(c, err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusCreated, challenge)
}

func (s *ArenaService) PostCancel(c echo.Context) error {
	if err := s.admit(c, "cancel_challenge"); err != nil {
		return err
	}

	challenge, err := s.CancelChallenge(c.Param("id"), auth.AgentID(c))
	if err != nil {
		return writeError(c, err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, challenge)
}

type postAcceptRequest struct {
	StrategySeconds int64 `json:"strategy_seconds"`
	CommitSeconds   int64 `json:"commit_seconds"`
}

func (s *ArenaService) PostAccept(c echo.Context) error {
	if err := s.admit(c, "accept_challenge"); err != nil {
		return err
	}

	var req postAcceptRequest

	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	match, err := s.AcceptChallenge(c.Param("id"), auth.AgentID(c), req.StrategySeconds, req.CommitSeconds)
	if err != nil {
		return writeError(c, err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusCreated, match)
}

func (s *ArenaService) GetMatchByID(c echo.Context) error {
	match, err := s.GetMatch(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "match not found")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, match)
}

type postCommitRequest struct {
	MoveHash string `json:"move_hash"`
}

func (s *ArenaService) PostCommit(c echo.Context) error {
	if err := s.admit(c, "commit"); err != nil {
		return err
	}

	var req postCommitRequest

	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	match, err := s.SubmitCommit(c.Param("id"), auth.AgentID(c), req.MoveHash)
	if err != nil {
		return writeError(c, err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, match)
}

type postRevealRequest struct {
	Move game.Move `json:"move"`
	Salt string    `json:"salt"`
}

func (s *ArenaService) PostReveal(c echo.Context) error {
	if err := s.admit(c, "reveal"); err != nil {
		return err
	}

	var req postRevealRequest

	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	match, err := s.SubmitReveal(c.Param("id"), auth.AgentID(c), req.Move, req.Salt)
	if err != nil {
		return writeError(c, err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, match)
}
