package services

import (
	"context"

	"github.com/jobmate/dedup-service/internal/domain"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type userLister interface {
	DistinctUserIDs(ctx context.Context) ([]int64, error)
}

// Sweeper reconciles every user's job set on a schedule, catching postings
// that arrived outside a scrape cycle (manual entry, backfills).
type Sweeper struct {
	users        userLister
	deduplicator *Deduplicator
	cron         *cron.Cron
}

func NewSweeper(users userLister, deduplicator *Deduplicator, cronSpec string) (*Sweeper, error) {

	s := &Sweeper{
		users:        users,
		deduplicator: deduplicator,
		cron:         cron.New(),
	}

	_, err := s.cron.AddFunc(cronSpec, s.sweep)
	if err != nil {
		return nil, err
	}

	s.cron.Start()
	log.Infof("dedup sweeper started with schedule %q", cronSpec)
	return s, nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {

	userIDs, err := s.users.DistinctUserIDs(context.Background())
	if err != nil {
		log.Errorf("sweep failed to list users: %v", err)
		return
	}

	swept := 0
	for _, userID := range userIDs {
		if _, err := s.deduplicator.Run(context.Background(), userID); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue // a run is already in flight for this user
			}
			log.Errorf("sweep failed for user %d: %v", userID, err)
			continue
		}
		swept++
	}
	log.Infof("dedup sweep completed for %d users", swept)
}
