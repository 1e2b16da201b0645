// Package schedule runs each CONFIRMED source's collection job on its own
// interval and triggers the daily digest, guarding every job against
// overlapping with its own previous firing.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/source"
	"github.com/constraintwatch/constraintwatch/pkg/fetch"
)

// DigestFunc runs the daily digest composition and delivery.
type DigestFunc func(ctx context.Context) error

// Scheduler wires a fetch.Dispatcher and a digest job into a cron
// schedule. Unlike APScheduler's max_instances=1, cron/v3 has no
// built-in non-reentrancy, so Scheduler tracks in-flight job IDs itself
// (collect:<source_id>, digest:daily) and drops an overlapping firing.
type Scheduler struct {
	db         *ent.Client
	dispatcher *fetch.Dispatcher
	digest     DigestFunc
	digestSpec string

	cron *cron.Cron

	mu      sync.Mutex
	running map[string]bool
}

// NewScheduler constructs a Scheduler. digestSpec is a standard 5-field
// cron expression (e.g. "0 13 * * *" for 13:00 UTC daily).
func NewScheduler(db *ent.Client, dispatcher *fetch.Dispatcher, digest DigestFunc, digestSpec string) *Scheduler {
	return &Scheduler{
		db:         db,
		dispatcher: dispatcher,
		digest:     digest,
		digestSpec: digestSpec,
		cron:       cron.New(),
		running:    make(map[string]bool),
	}
}

// Start registers one job per CONFIRMED source at its schedule_minutes
// interval plus the daily digest job, then starts the cron scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	sources, err := s.confirmedSources(ctx)
	if err != nil {
		return err
	}

	for _, src := range sources {
		src := src
		spec := fmt.Sprintf("@every %dm", src.ScheduleMinutes)
		if _, err := s.cron.AddFunc(spec, func() { s.runSource(ctx, src) }); err != nil {
			return fmt.Errorf("scheduling source %s: %w", src.ID, err)
		}
	}
	slog.Info("scheduler registered source jobs", "count", len(sources))

	if s.digest != nil && s.digestSpec != "" {
		if _, err := s.cron.AddFunc(s.digestSpec, func() { s.runDigest(ctx) }); err != nil {
			return fmt.Errorf("registering digest job: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for any in-flight job to finish and stops future firings.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunAllSourcesOnce iterates every CONFIRMED source serially, feed-method
// sources first, to prime a fresh deployment before its first scheduled
// firing. It does not participate in the non-reentrancy guard: it is
// meant to run once, before Start.
func (s *Scheduler) RunAllSourcesOnce(ctx context.Context) error {
	sources, err := s.confirmedSources(ctx)
	if err != nil {
		return err
	}

	for _, src := range orderFeedFirst(sources) {
		count, err := s.dispatcher.Dispatch(ctx, src)
		if err != nil {
			slog.Error("initial source collection failed", "source", src.ID, "error", err)
			continue
		}
		slog.Info("initial source collection complete", "source", src.ID, "items", count)
	}
	return nil
}

func (s *Scheduler) confirmedSources(ctx context.Context) ([]*ent.Source, error) {
	sources, err := s.db.Source.Query().Where(source.StatusEQ(source.StatusCONFIRMED)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading confirmed sources: %w", err)
	}
	return sources, nil
}

// orderFeedFirst stable-sorts sources so feed-method ones run first,
// mirroring run_all_sources_once's bias toward the cheapest, most
// reliable strategy on a cold start.
func orderFeedFirst(sources []*ent.Source) []*ent.Source {
	ordered := make([]*ent.Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		iFeed := ordered[i].FetchMethod == source.FetchMethodFeed
		jFeed := ordered[j].FetchMethod == source.FetchMethodFeed
		return iFeed && !jFeed
	})
	return ordered
}

func (s *Scheduler) runSource(ctx context.Context, src *ent.Source) {
	jobID := "collect:" + src.ID
	if !s.tryAcquire(jobID) {
		slog.Warn("skipping source collection, previous run still in flight", "source", src.ID)
		return
	}
	defer s.release(jobID)

	count, err := s.dispatcher.Dispatch(ctx, src)
	if err != nil {
		slog.Error("source collection failed", "source", src.ID, "error", err)
		return
	}
	if count > 0 {
		slog.Info("source collection complete", "source", src.ID, "items", count)
	}
}

func (s *Scheduler) runDigest(ctx context.Context) {
	const jobID = "digest:daily"
	if !s.tryAcquire(jobID) {
		slog.Warn("skipping daily digest, previous run still in flight")
		return
	}
	defer s.release(jobID)

	if err := s.digest(ctx); err != nil {
		slog.Error("daily digest failed", "error", err)
	}
}

func (s *Scheduler) tryAcquire(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[jobID] {
		return false
	}
	s.running[jobID] = true
	return true
}

func (s *Scheduler) release(jobID string) {
	s.mu.Lock()
	delete(s.running, jobID)
	s.mu.Unlock()
}
