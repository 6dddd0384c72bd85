package arena

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vreid/janken/internal/pkg/common"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrMatchNotFound     = errors.New("match not found")
)

func getChallengeTx(tx *bolt.Tx, challengeID string) (*Challenge, error) {
	data := tx.Bucket([]byte(common.ChallengesBucket)).Get([]byte(challengeID))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrChallengeNotFound, challengeID)
	}

	var challenge Challenge

	err := json.Unmarshal(data, &challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	return &challenge, nil
}

func putChallengeTx(tx *bolt.Tx, challenge *Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	err = tx.Bucket([]byte(common.ChallengesBucket)).Put([]byte(challenge.ID), data)
	if err != nil {
		return fmt.Errorf("failed to put challenge: %w", err)
	}

	return nil
}

func getMatchTx(tx *bolt.Tx, matchID string) (*Match, error) {
	data := tx.Bucket([]byte(common.MatchesBucket)).Get([]byte(matchID))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	var match Match

	err := json.Unmarshal(data, &match)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

func putMatchTx(tx *bolt.Tx, match *Match) error {
	data, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	err = tx.Bucket([]byte(common.MatchesBucket)).Put([]byte(match.ID), data)
	if err != nil {
		return fmt.Errorf("failed to put match: %w", err)
	}

	return nil
}

func forEachMatchTx(tx *bolt.Tx, fn func(*Match) error) error {
	return tx.Bucket([]byte(common.MatchesBucket)).ForEach(func(_, v []byte) error {
		var match Match

		err := json.Unmarshal(v, &match)
		if err != nil {
			return fmt.Errorf("failed to unmarshal match: %w", err)
		}

		return fn(&match)
	})
}

// expired reports whether the match is past the deadline that gates its
// current status.
func expired(match *Match, now time.Time) bool {
	switch match.Status {
	case StatusPending:
		return now.After(match.CommitDeadline)
	case StatusWaitingReveals:
		return match.RevealDeadline != nil && now.After(*match.RevealDeadline)
	default:
		return false
	}
}

// ExpiredMatchIDs lists matches whose commit or reveal deadline has
// passed, for the reaper sweep.
func (s *ArenaService) ExpiredMatchIDs() ([]string, error) {
	now := s.Now()

	var ids []string

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		return forEachMatchTx(tx, func(match *Match) error {
			if expired(match, now) {
				ids = append(ids, match.ID)
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for expired matches: %w", err)
	}

	return ids, nil
}
