package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"github.com/vreid/janken/internal/pkg/common"
	"go.etcd.io/bbolt"
)

// EscrowAccount is the destination recorded for escrow debits. It is a
// ledger pool, not an agent; funds held there are redistributed at match
// resolution.
const EscrowAccount = "escrow"

var (
	ErrAgentNotFound     = errors.New("agent not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

type LedgerService struct {
	DatabaseService *common.DatabaseService
}

func NewLedgerService(i do.Injector) (*LedgerService, error) {
	databaseService, err := do.Invoke[*common.DatabaseService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get database service: %w", err)
	}

	return &LedgerService{
		DatabaseService: databaseService,
	}, nil
}

// GetAgentTx loads an agent inside an open transaction. Within a
// db.Update this read is the row lock: nothing else can commit between it
// and the matching PutAgentTx.
func GetAgentTx(tx *bbolt.Tx, agentID string) (*Agent, error) {
	data := tx.Bucket([]byte(common.AgentsBucket)).Get([]byte(agentID))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	var agent Agent

	err := json.Unmarshal(data, &agent)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent: %w", err)
	}

	return &agent, nil
}

func PutAgentTx(tx *bbolt.Tx, agent *Agent) error {
	data, err := json.Marshal(agent)
	if err != nil {
		return fmt.Errorf("failed to marshal agent: %w", err)
	}

	err = tx.Bucket([]byte(common.AgentsBucket)).Put([]byte(agent.ID), data)
	if err != nil {
		return fmt.Errorf("failed to put agent: %w", err)
	}

	return nil
}

func appendTransactionTx(tx *bbolt.Tx, record Transaction) error {
	bucket := tx.Bucket([]byte(common.TransactionsBucket))

	seq, err := bucket.NextSequence()
	if err != nil {
		return fmt.Errorf("failed to get transaction sequence: %w", err)
	}

	txID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate transaction ID: %w", err)
	}

	record.ID = txID.String()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	err = bucket.Put(common.Uint64ToKey(seq), data)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// GrantTx credits a balance with no source agent, used for signup grants.
func GrantTx(tx *bbolt.Tx, agentID string, amount int64, note string) error {
	agent, err := GetAgentTx(tx, agentID)
	if err != nil {
		return err
	}

	agent.Balance += amount

	err = PutAgentTx(tx, agent)
	if err != nil {
		return err
	}

	return appendTransactionTx(tx, Transaction{
		To:        agentID,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	})
}

// EscrowTx atomically checks balance >= amount and debits it. On
// ErrInsufficientFunds nothing is written.
func EscrowTx(tx *bbolt.Tx, agentID string, amount int64, matchID string, note string) error {
	agent, err := GetAgentTx(tx, agentID)
	if err != nil {
		return err
	}

	if agent.Balance < amount {
		return fmt.Errorf("%w: agent %s has %d, needs %d",
			ErrInsufficientFunds, agentID, agent.Balance, amount)
	}

	agent.Balance -= amount

	err = PutAgentTx(tx, agent)
	if err != nil {
		return err
	}

	return appendTransactionTx(tx, Transaction{
		From:      &agent.ID,
		To:        EscrowAccount,
		Amount:    amount,
		Note:      note,
		MatchID:   matchID,
		CreatedAt: time.Now().UTC(),
	})
}

// RefundTx is a pure additive credit, used for cancellations and
// rollback-on-failure paths.
func RefundTx(tx *bbolt.Tx, agentID string, amount int64, matchID string, note string) error {
	agent, err := GetAgentTx(tx, agentID)
	if err != nil {
		return err
	}

	agent.Balance += amount

	err = PutAgentTx(tx, agent)
	if err != nil {
		return err
	}

	return appendTransactionTx(tx, Transaction{
		To:        agentID,
		Amount:    amount,
		Note:      note,
		MatchID:   matchID,
		CreatedAt: time.Now().UTC(),
	})
}

// SettleTx credits the winner both escrowed wagers in one step and bumps
// the win/loss counters. Must be invoked exactly once per match; the
// engine guarantees that by resolving under the same transaction that
// stamps the match complete.
func SettleTx(tx *bbolt.Tx, winnerID, loserID string, amount int64, matchID string) error {
	winner, err := GetAgentTx(tx, winnerID)
	if err != nil {
		return err
	}

	loser, err := GetAgentTx(tx, loserID)
	if err != nil {
		return err
	}

	winner.Balance += 2 * amount
	winner.Wins++
	loser.Losses++

	err = PutAgentTx(tx, winner)
	if err != nil {
		return err
	}

	err = PutAgentTx(tx, loser)
	if err != nil {
		return err
	}

	return appendTransactionTx(tx, Transaction{
		To:        winnerID,
		Amount:    2 * amount,
		Note:      "match pot",
		MatchID:   matchID,
		CreatedAt: time.Now().UTC(),
	})
}

// SettleDrawTx returns each participant their own wager and bumps the draw
// counters.
func SettleDrawTx(tx *bbolt.Tx, agent1ID, agent2ID string, amount int64, matchID string) error {
	for _, agentID := range []string{agent1ID, agent2ID} {
		agent, err := GetAgentTx(tx, agentID)
		if err != nil {
			return err
		}

		agent.Balance += amount
		agent.Draws++

		err = PutAgentTx(tx, agent)
		if err != nil {
			return err
		}

		err = appendTransactionTx(tx, Transaction{
			To:        agentID,
			Amount:    amount,
			Note:      "draw refund",
			MatchID:   matchID,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateAgent stores a fresh agent and its signup grant in one atomic
// unit.
func (s *LedgerService) CreateAgent(agent *Agent, grant int64) error {
	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		err := PutAgentTx(tx, agent)
		if err != nil {
			return err
		}

		if grant > 0 {
			return GrantTx(tx, agent.ID, grant, "signup grant")
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

func (s *LedgerService) GetAgent(agentID string) (*Agent, error) {
	var agent *Agent

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		var err error

		agent, err = GetAgentTx(tx, agentID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return agent, nil
}

func (s *LedgerService) ListAgents() ([]Agent, error) {
	var agents []Agent

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(common.AgentsBucket)).ForEach(func(_, v []byte) error {
			var agent Agent

			err := json.Unmarshal(v, &agent)
			if err != nil {
				return fmt.Errorf("failed to unmarshal agent: %w", err)
			}

			agents = append(agents, agent)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return agents, nil
}

// Transactions returns up to limit audit records, newest first.
func (s *LedgerService) Transactions(limit int) ([]Transaction, error) {
	var records []Transaction

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(common.TransactionsBucket)).Cursor()

		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var record Transaction

			err := json.Unmarshal(v, &record)
			if err != nil {
				return fmt.Errorf("failed to unmarshal transaction: %w", err)
			}

			records = append(records, record)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return records, nil
}
