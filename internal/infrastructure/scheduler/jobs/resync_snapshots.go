// Package jobs contains the periodic jobs run by the scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/application/eventhandler"
	"github.com/alem-hub/wellness-hub/internal/application/store"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/pkg/logger"
	"github.com/alem-hub/wellness-hub/pkg/retry"
)

// ProfileSource lists the live profiles.
type ProfileSource interface {
	IDs() []string
	Get(id string) (*store.Store, error)
}

// ResyncSnapshotsJob writes the current snapshot of every profile to the
// snapshot cache. Entries lost to an outage, an eviction or an open breaker
// are restored on the next run; entries that are already current are left
// alone by the cache's version guard.
type ResyncSnapshotsJob struct {
	profiles  ProfileSource
	snapshots eventhandler.SnapshotStore
	policy    retry.Policy
	logger    *zap.Logger
}

// NewResyncSnapshotsJob creates the job.
func NewResyncSnapshotsJob(profiles ProfileSource, snapshots eventhandler.SnapshotStore, policy retry.Policy, log *zap.Logger) *ResyncSnapshotsJob {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResyncSnapshotsJob{
		profiles:  profiles,
		snapshots: snapshots,
		policy:    policy,
		logger:    log.With(logger.Component("resync_snapshots")),
	}
}

// Name implements scheduler.Job.
func (j *ResyncSnapshotsJob) Name() string {
	return "resync_snapshots"
}

// Run implements scheduler.Job. A failing profile does not stop the run;
// all failures are joined into the returned error.
func (j *ResyncSnapshotsJob) Run(ctx context.Context) error {
	var (
		errs    []error
		written int
		current int
	)

	for _, id := range j.profiles.IDs() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		s, err := j.profiles.Get(id)
		if err != nil {
			// Deleted between IDs and Get.
			if shared.IsNotFound(err) {
				continue
			}
			errs = append(errs, err)
			continue
		}

		snapshot := s.Profile()
		var ok bool
		err = j.policy.Do(ctx, func(ctx context.Context) error {
			var err error
			ok, err = j.snapshots.Store(ctx, snapshot)
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s v%d: %w", shared.ErrSnapshotCacheFailed, snapshot.ID, snapshot.Version, err))
			continue
		}
		if ok {
			written++
		} else {
			current++
		}
	}

	j.logger.Info("snapshot resync finished",
		zap.Int("written", written),
		zap.Int("current", current),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}
