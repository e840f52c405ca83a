package sync

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/pkg/logger"
)

// ResyncScheduler periodically replays Process across every tracked pull
// request, so drift from a missed or out-of-order webhook delivery heals
// itself without manual intervention. Real-time correctness still comes
// from the webhook dispatcher; this is a safety net, not the primary path.
type ResyncScheduler struct {
	orchestrator *Orchestrator
	store        store.Store
	cron         *cron.Cron
	entryID      cron.EntryID
	mu           sync.RWMutex
}

// NewResyncScheduler builds a scheduler around an already-wired Orchestrator.
func NewResyncScheduler(orchestrator *Orchestrator, st store.Store) *ResyncScheduler {
	return &ResyncScheduler{orchestrator: orchestrator, store: st, cron: cron.New()}
}

// Start registers the resync job on the given schedule and starts the
// underlying cron scheduler. It does not run an initial pass immediately;
// callers that want one should invoke ResyncAll directly first.
func (s *ResyncScheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(schedule, func() { s.ResyncAll(context.Background()) })
	if err != nil {
		logger.Error("failed to schedule pull request resync", zap.Error(err))
		return err
	}
	s.entryID = entryID
	s.cron.Start()

	logger.Info("pull request resync scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the cron scheduler, blocking until the in-flight job (if any)
// has returned.
func (s *ResyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	logger.Info("stopping pull request resync scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ResyncAll walks every tracked pull request and runs a non-forced Process
// pass over it, logging and continuing past individual failures so one
// broken repository doesn't stop the rest of the sweep.
func (s *ResyncScheduler) ResyncAll(ctx context.Context) {
	prs, err := s.store.PullRequest().ListAllWithRepository()
	if err != nil {
		logger.Error("failed to list pull requests for resync", zap.Error(err))
		return
	}

	logger.Info("starting periodic pull request resync", zap.Int("count", len(prs)))
	var failed int
	for _, pr := range prs {
		_, err := s.orchestrator.Process(ctx, pr.Repository.Owner, pr.Repository.Name, int(pr.Number), false)
		if err != nil {
			failed++
			logger.Warn("resync failed for pull request",
				zap.String("owner", pr.Repository.Owner),
				zap.String("name", pr.Repository.Name),
				zap.Uint("number", pr.Number),
				zap.Error(err),
			)
		}
	}
	logger.Info("periodic pull request resync complete", zap.Int("count", len(prs)), zap.Int("failed", failed))
}
