package arena

import (
	"fmt"
	"log"
	"time"

	"github.com/samber/do/v2"
)

// ReaperService is the forward-progress guarantee: a recurring sweep that
// drives every deadline-expired match through the same Resolve entry
// point the live-reveal path uses. If no live party ever calls in, the
// sweep eventually forces resolution.
type ReaperService struct {
	ArenaService *ArenaService

	Interval time.Duration

	stop chan struct{}
}

func NewReaperService(i do.Injector) (*ReaperService, error) {
	arenaService, err := do.Invoke[*ArenaService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get arena service: %w", err)
	}

	intervalSeconds := do.MustInvokeNamed[int64](i, "reaper-interval-seconds")

	return &ReaperService{
		ArenaService: arenaService,

		Interval: time.Duration(intervalSeconds) * time.Second,

		stop: make(chan struct{}),
	}, nil
}

func (s *ReaperService) Start() {
	go s.run()
}

func (s *ReaperService) Shutdown() error {
	close(s.stop)

	return nil
}

func (s *ReaperService) run() {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := s.Sweep()
			if err != nil {
				log.Printf("reaper sweep failed: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// Sweep resolves every match past its commit or reveal deadline. A match
// resolved concurrently by a live reveal surfaces as a conflict and is
// skipped; a transient store failure delays but does not prevent eventual
// resolution, since the next tick retries.
func (s *ReaperService) Sweep() error {
	ids, err := s.ArenaService.ExpiredMatchIDs()
	if err != nil {
		return err
	}

	for _, id := range ids {
		_, err := s.ArenaService.Resolve(id)
		if err != nil {
			if _, ok := AsError(err); ok {
				// Lost the race to a live reveal; nothing to do.
				continue
			}

			log.Printf("reaper failed to resolve match %s: %v", id, err)
		}
	}

	return nil
}
