package workers

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"tradematch_backend/internal/logger"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/searchindex"
	"tradematch_backend/internal/services"
)

// ReindexWorker pushes open jobs and alert-enabled tradespeople into the
// search index on a fixed interval, and once at startup so a cold index is
// populated immediately.
type ReindexWorker struct {
	cron              *cron.Cron
	jobRepo           repositories.JobRepository
	userRepo          repositories.UserRepository
	index             searchindex.Index
	jobsIndex         string
	tradespeopleIndex string
	spec              string
}

func NewReindexWorker(
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	index searchindex.Index,
	jobsIndex, tradespeopleIndex string,
	intervalHours int,
) *ReindexWorker {
	if intervalHours < 1 {
		intervalHours = 6
	}
	return &ReindexWorker{
		cron:              cron.New(),
		jobRepo:           jobRepo,
		userRepo:          userRepo,
		index:             index,
		jobsIndex:         jobsIndex,
		tradespeopleIndex: tradespeopleIndex,
		spec:              fmt.Sprintf("@every %dh", intervalHours),
	}
}

func (w *ReindexWorker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	w.cron.Start()
	logger.Info("reindex worker started", "spec", w.spec)

	// Run once immediately so searches work before the first tick.
	go w.Run(ctx)

	return nil
}

func (w *ReindexWorker) Stop() {
	w.cron.Stop()
	logger.Info("reindex worker stopped")
}

// Run performs one full reindex cycle. Individual document failures are
// logged and skipped; the cycle keeps going.
func (w *ReindexWorker) Run(ctx context.Context) {
	w.reindexJobs(ctx)
	w.reindexTradespeople(ctx)
}

func (w *ReindexWorker) reindexJobs(ctx context.Context) {
	jobs, err := w.jobRepo.FindOpen()
	if err != nil {
		logger.WorkerLog("reindex", "load open jobs", err)
		return
	}

	var failed int
	for i := range jobs {
		doc := services.JobIndexObject(&jobs[i])
		if err := w.index.SaveObject(ctx, w.jobsIndex, doc); err != nil {
			failed++
			logger.WithError(err).Warn("job reindex failed", "job_id", jobs[i].ID)
		}
	}
	logger.Info("job reindex cycle complete", "indexed", len(jobs)-failed, "failed", failed)
}

func (w *ReindexWorker) reindexTradespeople(ctx context.Context) {
	users, err := w.userRepo.FindAlertableTradespeople()
	if err != nil {
		logger.WorkerLog("reindex", "load tradespeople", err)
		return
	}

	var failed int
	for i := range users {
		doc := services.TradespersonIndexObject(&users[i])
		if err := w.index.SaveObject(ctx, w.tradespeopleIndex, doc); err != nil {
			failed++
			logger.WithError(err).Warn("tradesperson reindex failed", "user_id", users[i].ID)
		}
	}
	logger.Info("tradespeople reindex cycle complete", "indexed", len(users)-failed, "failed", failed)
}
