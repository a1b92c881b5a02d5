package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"verbmaster/internal/service"
)

// Scheduler runs the midnight daily-stats rollover so stale daily counters
// never leak into a new calendar day's read views.
type Scheduler struct {
	cron            *gocron.Scheduler
	progressService service.ProgressService
	loc             *time.Location
}

func New(progressService service.ProgressService, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:            gocron.NewScheduler(loc),
		progressService: progressService,
		loc:             loc,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.Every(1).Day().At("00:00").Do(func() {
		if err := s.progressService.RolloverDailyStats(time.Now()); err != nil {
			log.Error().Err(err).Msg("Daily stats rollover failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.StartAsync()
	log.Info().Str("timezone", s.loc.String()).Msg("Daily rollover scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
