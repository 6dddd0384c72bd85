package auth

import (
	"github.com/vreid/janken/internal/pkg/ledger"
	"github.com/vreid/janken/internal/pkg/strategy"
)

type RegisterRequest struct {
	Name     string          `json:"name"`
	Strategy strategy.Config `json:"strategy"`
}

// RegisterResponse carries the api key exactly once; it is never
// retrievable afterwards.
type RegisterResponse struct {
	Agent  ledger.Agent `json:"agent"`
	APIKey string       `json:"api_key"`
}

type UpdateStrategyRequest struct {
	Strategy strategy.Config `json:"strategy"`
}
