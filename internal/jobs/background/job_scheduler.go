package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Sweeper is a cache that needs expired entries removed periodically.
type Sweeper interface {
	Sweep() int
}

// StatsSource reports store-wide record counts.
type StatsSource interface {
	Stats() repositories.Stats
}

type Config struct {
	CacheSweepInterval time.Duration
	StatsInterval      time.Duration
}

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	sweeper    Sweeper
	stats      StatsSource
	tenantRepo repositories.TenantRepository
	noteRepo   repositories.NoteRepository
	log        *zap.Logger
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers its jobs. sweeper may
// be nil when the cache expires entries on its own (Redis).
func NewJobScheduler(
	cfg Config,
	sweeper Sweeper,
	stats StatsSource,
	tenantRepo repositories.TenantRepository,
	noteRepo repositories.NoteRepository,
	log *zap.Logger,
) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		sweeper:    sweeper,
		stats:      stats,
		tenantRepo: tenantRepo,
		noteRepo:   noteRepo,
		log:        log,
		jobs:       make(map[string]gocron.Job),
	}

	if err := js.registerJobs(cfg); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.log.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(cfg Config) error {
	if js.sweeper != nil && cfg.CacheSweepInterval > 0 {
		if err := js.AddJob("cache-sweep", cfg.CacheSweepInterval, js.sweepCache); err != nil {
			return fmt.Errorf("failed to create cache sweep job: %w", err)
		}
	}

	if cfg.StatsInterval > 0 {
		if err := js.AddJob("store-stats", cfg.StatsInterval, js.reportStoreStats, context.Background()); err != nil {
			return fmt.Errorf("failed to create store stats job: %w", err)
		}
	}

	return nil
}

func (js *JobScheduler) sweepCache() int {
	removed := js.sweeper.Sweep()
	if removed > 0 {
		js.log.Debug("cache sweep completed", zap.Int("removed", removed))
	}
	return removed
}

// StoreReport is a snapshot of what the store holds.
type StoreReport struct {
	repositories.Stats
	ProTenants int
	// FreeTenantsAtLimit counts free tenants whose members can no longer create notes.
	FreeTenantsAtLimit int
}

func (js *JobScheduler) reportStoreStats(ctx context.Context) (StoreReport, error) {
	report := StoreReport{Stats: js.stats.Stats()}

	tenants, err := js.tenantRepo.List(ctx)
	if err != nil {
		js.log.Warn("failed to list tenants for stats", zap.Error(err))
		return report, err
	}
	for _, t := range tenants {
		if !t.IsFreePlanLimited() {
			report.ProTenants++
			continue
		}
		count, err := js.noteRepo.CountByTenant(ctx, t.ID)
		if err != nil {
			js.log.Warn("failed to count tenant notes", zap.String("tenant", t.Slug), zap.Error(err))
			return report, err
		}
		if count >= models.FreePlanMemberNoteLimit {
			report.FreeTenantsAtLimit++
		}
	}

	js.log.Info("store stats",
		zap.Int("tenants", report.Tenants),
		zap.Int("pro_tenants", report.ProTenants),
		zap.Int("free_tenants_at_limit", report.FreeTenantsAtLimit),
		zap.Int("users", report.Users),
		zap.Int("notes", report.Notes),
	)
	return report, nil
}

// AddJob adds a job running taskFn every interval. A job already registered
// under name is replaced.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if existing, ok := js.jobs[name]; ok {
		if err := js.scheduler.RemoveJob(existing.ID()); err != nil {
			return err
		}
		delete(js.jobs, name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// JobNames returns the registered job names, sorted.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
