package service

import (
	"context"
	"log"

	"github.com/go-co-op/gocron/v2"
)

func NewScheduler() gocron.Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}
	return scheduler
}

// ScheduleWorkspaceCleanup runs cleanup every day at hour:00.
func ScheduleWorkspaceCleanup(
	s gocron.Scheduler,
	hour uint,
	cleanup func(context.Context) ([]string, error),
) (gocron.Job, error) {
	return s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, 0, 0))),
		gocron.NewTask(func() {
			removed, err := cleanup(context.Background())
			if err != nil {
				log.Println("err cleaning up workspaces:", err)
				return
			}
			if len(removed) > 0 {
				log.Printf("removed %d stale workspaces\n", len(removed))
			}
		}),
		gocron.WithName("workspace-cleanup"),
	)
}
