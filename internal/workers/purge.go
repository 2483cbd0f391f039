package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"authbase/internal/platform/queue"
	"authbase/internal/platform/repositories"
)

// JobSource yields purge jobs whose run-at time has passed.
type JobSource interface {
	Due(ctx context.Context, now time.Time) ([]queue.PurgeJob, error)
}

// Purger finishes off soft-deleted developers once their retention window
// has passed. It drains the delayed queue and, as a safety net, also scans
// the table directly so a lost queue entry cannot leave a row behind forever.
type Purger struct {
	queue       JobSource
	devRepo     *repositories.DeveloperRepository
	profileRepo *repositories.ProfileRepository
	tokenRepo   *repositories.TokenRepository
	retention   time.Duration
}

func NewPurger(q JobSource, devRepo *repositories.DeveloperRepository,
	profileRepo *repositories.ProfileRepository, tokenRepo *repositories.TokenRepository,
	retention time.Duration) *Purger {
	return &Purger{
		queue:       q,
		devRepo:     devRepo,
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
		retention:   retention,
	}
}

func (p *Purger) Run(ctx context.Context) {
	jobs, err := p.queue.Due(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("purger: failed to poll queue")
	} else {
		for _, job := range jobs {
			p.purge(job.DeveloperID)
		}
	}

	// Safety net: anything soft-deleted past the retention window gets purged
	// even if its queue entry was lost.
	cutoff := time.Now().Add(-p.retention).Unix()
	stale, err := p.devRepo.ListSoftDeletedBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("purger: failed to list soft-deleted developers")
		return
	}
	for _, dev := range stale {
		p.purge(dev.ID)
	}
}

// purge hard-deletes everything the developer left behind. Idempotent: every
// statement is a no-op when the rows are already gone.
func (p *Purger) purge(developerID string) {
	if err := p.profileRepo.DeleteDeveloperProfile(developerID); err != nil {
		log.Error().Err(err).Str("developer_id", developerID).Msg("purger: failed to delete profile")
		return
	}
	if err := p.tokenRepo.DeleteForDeveloper(developerID); err != nil {
		log.Error().Err(err).Str("developer_id", developerID).Msg("purger: failed to delete tokens")
		return
	}
	if err := p.devRepo.HardDelete(developerID); err != nil {
		log.Error().Err(err).Str("developer_id", developerID).Msg("purger: failed to delete developer")
		return
	}
	log.Info().Str("developer_id", developerID).Msg("purger: developer permanently removed")
}
