// jobs.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// jobTimeout bounds a single run of any maintenance job
const jobTimeout = 2 * time.Minute

// ExpiredLinkRetention is how long an expired download link is kept so redeeming it
// still reports the link as expired rather than unknown
const ExpiredLinkRetention = 30 * 24 * time.Hour

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	db    *gorm.DB
	store storage.BlobStore
	sched *cron.Cron
}

// New registers the maintenance jobs. cleanupSchedule drives the blob cleanup sweep;
// expired download links and upload tokens are purged hourly.
func New(db *gorm.DB, store storage.BlobStore, cleanupSchedule string) (*Scheduler, error) {
	s := &Scheduler{
		db:    db,
		store: store,
		sched: cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	if _, err := s.sched.AddFunc(cleanupSchedule, func() { s.run("blob_cleanup", s.SweepBlobs) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cleanupSchedule, err)
	}
	if _, err := s.sched.AddFunc("@hourly", func() { s.run("download_link_purge", s.PurgeDownloadLinks) }); err != nil {
		return nil, err
	}
	if _, err := s.sched.AddFunc("@hourly", func() { s.run("upload_token_purge", s.PurgeUploadTokens) }); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.sched.Stop().Done():
	case <-ctx.Done():
		zap.S().Warn("Scheduled jobs still running at shutdown")
	}
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) {
	defer func() {
		if err := recover(); err != nil {
			metrics.JobRuns.WithLabelValues(name, "panic").Inc()
			zap.S().Errorf("Job %s panicked: %v", name, err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := job(ctx); err != nil {
		metrics.JobRuns.WithLabelValues(name, "error").Inc()
		zap.S().Errorf("Job %s failed: %v", name, err)
		return
	}
	metrics.JobRuns.WithLabelValues(name, "ok").Inc()
}

// SweepBlobs retries queued blob deletions
func (s *Scheduler) SweepBlobs(ctx context.Context) error {
	result, err := services.SweepBlobCleanups(ctx, s.db, s.store)
	if err != nil {
		return err
	}
	if result.Deleted > 0 || result.Failed > 0 {
		zap.S().Infof("Blob cleanup: deleted=%d failed=%d pending=%d", result.Deleted, result.Failed, result.Pending)
	}
	return nil
}

// PurgeDownloadLinks deletes download links that expired more than ExpiredLinkRetention ago
func (s *Scheduler) PurgeDownloadLinks(ctx context.Context) error {
	n, err := services.PurgeExpiredDownloadLinks(ctx, s.db, time.Now().UTC().Add(-ExpiredLinkRetention))
	if err != nil {
		return err
	}
	if n > 0 {
		zap.S().Infof("Purged %d expired download links", n)
	}
	return nil
}

// PurgeUploadTokens drops unused upload tokens past their TTL
func (s *Scheduler) PurgeUploadTokens(ctx context.Context) error {
	n, err := s.store.PurgeExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		zap.S().Infof("Purged %d expired upload tokens", n)
	}
	return nil
}
