// Package jobs schedules the background work of the server.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/cabin-booking/internal/logger"
	"github.com/iliyamo/cabin-booking/internal/service"
)

// Syncer imports the external channel calendars.
// *service.CalendarService implements it.
type Syncer interface {
	SyncAll(ctx context.Context) []service.SyncResult
}

// SyncTimeout bounds one scheduled sync of all units.
const SyncTimeout = 2 * time.Minute

// InitCronJobs registers the calendar sync on schedule and starts c.  An
// empty schedule leaves the sync to the manual endpoint and starts nothing.
func InitCronJobs(c *cron.Cron, schedule string, s Syncer, log logger.Logger) error {
	if schedule == "" {
		log.Info("calendar sync schedule not set, cron disabled")
		return nil
	}
	_, err := c.AddFunc(schedule, func() { RunSync(context.Background(), s, log) })
	if err != nil {
		return err
	}
	c.Start()
	log.Info("cron jobs initialized (calendar sync %q)", schedule)
	return nil
}

// RunSync runs one sync of every unit and logs a summary line per unit.
func RunSync(ctx context.Context, s Syncer, log logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, SyncTimeout)
	defer cancel()

	started := time.Now()
	results := s.SyncAll(ctx)
	for _, r := range results {
		log.Info("sync unit %d: %d events, %d imported, %d duplicates, %d conflicts, %d skipped",
			r.UnitID, r.EventsFound, r.Imported, r.Duplicates, r.Conflicts, r.Skipped)
	}
	log.Debug("calendar sync of %d units took %s", len(results), time.Since(started))
}
