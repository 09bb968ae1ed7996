package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules background jobs sharing one base context.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New creates a Runner. Specs accept an optional leading seconds field and
// descriptors such as @daily.
func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Runner{
		cron:    cron.New(cron.WithParser(parser)),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}

// PendingSweeper removes accounts that never confirmed their email.
type PendingSweeper interface {
	SweepPending(ctx context.Context, cutoff time.Time) (int, error)
}

// PendingSweepJob deletes unconfirmed accounts older than maxAge on every run.
func PendingSweepJob(sweeper PendingSweeper, maxAge time.Duration, logger *zap.Logger, now func() time.Time) func(context.Context) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context) {
		cutoff := now().Add(-maxAge)
		removed, err := sweeper.SweepPending(ctx, cutoff)
		if err != nil {
			logger.Error("pending sweep failed", zap.Error(err))
			return
		}
		logger.Debug("pending sweep finished", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	}
}
