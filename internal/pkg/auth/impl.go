package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/vreid/janken/internal/pkg/common"
	"github.com/vreid/janken/internal/pkg/ledger"
	"github.com/vreid/janken/internal/pkg/strategy"
	bolt "go.etcd.io/bbolt"
)

// AgentIDKey is the echo context key the middleware stores the resolved
// agent id under.
const AgentIDKey = "agent_id"

const apiKeyHeader = "X-Api-Key"

type AuthService struct {
	DatabaseService *common.DatabaseService
	LedgerService   *ledger.LedgerService

	SignupGrant int64
}

func NewAuthService(i do.Injector) (*AuthService, error) {
	databaseService, err := do.Invoke[*common.DatabaseService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get database service: %w", err)
	}

	ledgerService, err := do.Invoke[*ledger.LedgerService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger service: %w", err)
	}

	signupGrant := do.MustInvokeNamed[int64](i, "signup-grant")

	result := &AuthService{
		DatabaseService: databaseService,
		LedgerService:   ledgerService,

		SignupGrant: signupGrant,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		agentsGroup := apiGroup.Group("/agents")

		agentsGroup.POST("", result.Register)
		agentsGroup.GET("/:id", result.GetAgent)
		agentsGroup.PUT("/:id/strategy", result.UpdateStrategy, result.Middleware())
	})

	return result, nil
}

// Lookup resolves an opaque api key to the acting agent's id.
func (s *AuthService) Lookup(apiKey string) (string, error) {
	var agentID string

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(common.APIKeysBucket)).Get([]byte(apiKey))
		if data == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown api key")
		}

		agentID = string(data)

		return nil
	})
	if err != nil {
		return "", err
	}

	return agentID, nil
}

// Middleware resolves X-Api-Key into an agent id, the precondition for
// every mutating call.
func (s *AuthService) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(apiKeyHeader)
			if apiKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing api key")
			}

			agentID, err := s.Lookup(apiKey)
			if err != nil {
				return err
			}

			c.Set(AgentIDKey, agentID)

			return next(c)
		}
	}
}

// AgentID returns the authenticated agent id set by Middleware.
func AgentID(c echo.Context) string {
	agentID, _ := c.Get(AgentIDKey).(string)

	return agentID
}

func (s *AuthService) Register(c echo.Context) error {
	var req RegisterRequest

	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	err = strategy.Validate(req.Strategy)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agentID, err := uuid.NewV7()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate agent ID")
	}

	apiKey := uuid.NewString()

	agent := &ledger.Agent{
		ID:        agentID.String(),
		Name:      req.Name,
		Strategy:  req.Strategy,
		CreatedAt: time.Now().UTC(),
	}

	err = s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		err := ledger.PutAgentTx(tx, agent)
		if err != nil {
			return err
		}

		if s.SignupGrant > 0 {
			err = ledger.GrantTx(tx, agent.ID, s.SignupGrant, "signup grant")
			if err != nil {
				return err
			}
		}

		//nolint:wrapcheck
		return tx.Bucket([]byte(common.APIKeysBucket)).Put([]byte(apiKey), []byte(agent.ID))
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register agent")
	}

	agent.Balance = s.SignupGrant

	return c.JSON(http.StatusCreated, RegisterResponse{
		Agent:  *agent,
		APIKey: apiKey,
	})
}

func (s *AuthService) GetAgent(c echo.Context) error {
	agent, err := s.LedgerService.GetAgent(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "agent not found")
	}

	return c.JSON(http.StatusOK, agent)
}

// UpdateStrategy replaces an agent's strategy config and resets its
// state. Matches already in flight keep their creation-time snapshot.
func (s *AuthService) UpdateStrategy(c echo.Context) error {
	agentID := c.Param("id")

	if AgentID(c) != agentID {
		return echo.NewHTTPError(http.StatusForbidden, "cannot update another agent's strategy")
	}

	var req UpdateStrategyRequest

	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err = strategy.Validate(req.Strategy)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		agent, err := ledger.GetAgentTx(tx, agentID)
		if err != nil {
			return err
		}

		agent.Strategy = req.Strategy
		agent.StrategyState = strategy.State{}

		return ledger.PutAgentTx(tx, agent)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update strategy")
	}

	return c.NoContent(http.StatusNoContent)
}
