package internal

import (
	"context"
	"fmt"
	"log"

	"github.com/go-co-op/gocron/v2"
	"github.com/rm-hull/alphablend/internal/codec"
)

// NewScheduler runs the manifest once immediately, then on every tick of the cron schedule.
// The manifest is re-read on each run so edits are picked up without a restart.
func NewScheduler(manifestPath, rootDir, schedule string, poolSize int, fetcher codec.Fetcher) (gocron.Scheduler, error) {

	if err := runScheduled(manifestPath, rootDir, poolSize, fetcher); err != nil {
		return nil, fmt.Errorf("initial run of job failed: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() {
			_ = runScheduled(manifestPath, rootDir, poolSize, fetcher)
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Printf("Scheduled batch processing of %s (schedule=%s)", manifestPath, schedule)
	scheduler.Start()
	return scheduler, nil
}

func runScheduled(manifestPath, rootDir string, poolSize int, fetcher codec.Fetcher) error {
	err := RunBatch(context.Background(), manifestPath, rootDir, poolSize, fetcher)
	if err != nil {
		log.Printf("Errors occurred: %v", err)
	}
	return err
}
