package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartUpdateScheduler runs the ingestion on a fixed interval. The update
// service's running flag keeps an overlong run from overlapping the next
// tick.
func (s *UpdateService) StartUpdateScheduler(intervalHours int) {
	if intervalHours <= 0 {
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(time.Duration(intervalHours)*time.Hour),
		gocron.NewTask(func() {
			processed, err := s.RunUpdate(context.Background())
			if err != nil {
				log.Printf("[Scheduler] Update run failed: %v", err)
				return
			}
			log.Printf("[Scheduler] ✅ Scheduled update processed %d matches", processed)
		}),
	)
}
