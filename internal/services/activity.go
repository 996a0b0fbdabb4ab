package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskwave/backend/internal/infrastructure/activity"
	"github.com/taskwave/backend/usecase"
)

// RecorderConfig controls the activity log retention policy.
type RecorderConfig struct {
	Retention     time.Duration
	PruneInterval time.Duration
}

// ActivityRecorder writes audit entries to the local activity store and
// prunes old ones on a cron schedule.
type ActivityRecorder struct {
	store  *activity.Store
	logger *zap.Logger
	cron   *cron.Cron
	cfg    RecorderConfig
}

func NewActivityRecorder(store *activity.Store, logger *zap.Logger, cfg RecorderConfig) *ActivityRecorder {
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ar := &ActivityRecorder{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.PruneInterval.Seconds()))
	_, _ = ar.cron.AddFunc(schedule, ar.prune)

	return ar
}

// Start launches the pruning scheduler.
func (ar *ActivityRecorder) Start() {
	if ar == nil || ar.cron == nil {
		return
	}
	ar.cron.Start()
	ar.logger.Info("activity recorder started")
}

// Stop gracefully stops the scheduler.
func (ar *ActivityRecorder) Stop(ctx context.Context) {
	if ar == nil || ar.cron == nil {
		return
	}
	stopCtx := ar.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ar.logger.Info("activity recorder stopped")
}

// Record appends an audit entry. Best-effort by contract: callers log the
// returned error but never fail their operation on it.
func (ar *ActivityRecorder) Record(ctx context.Context, userID, entity, action, detail string) error {
	if ar == nil || ar.store == nil {
		return fmt.Errorf("activity store not configured")
	}
	return ar.store.Append(activity.Entry{
		UserID: userID,
		Entity: entity,
		Action: action,
		Detail: detail,
	})
}

// Size returns the number of stored entries.
func (ar *ActivityRecorder) Size() int {
	if ar == nil || ar.store == nil {
		return 0
	}
	size, err := ar.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (ar *ActivityRecorder) prune() {
	cutoff := time.Now().Add(-ar.cfg.Retention)
	dropped, err := ar.store.Prune(cutoff)
	if err != nil {
		ar.logger.Error("activity prune failed", zap.Error(err))
		return
	}
	if dropped > 0 {
		ar.logger.Info("activity entries pruned", zap.Int("dropped", dropped))
	}
}

var _ usecase.ActivityRecorder = (*ActivityRecorder)(nil)
