package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of background work with an optional cron schedule.
// Jobs without a schedule can still be run on demand.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context)
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)

	if job.Schedule == "" {
		log.Printf("[%s] registered as on-demand job", job.Name)
		return
	}

	_, err := s.cron.AddFunc(job.Schedule, func() {
		log.Printf("[%s] starting scheduled run", job.Name)
		job.Run(context.Background())
		log.Printf("[%s] run finished", job.Name)
	})
	if err != nil {
		log.Printf("failed to schedule job %s: %v", job.Name, err)
		return
	}

	log.Printf("[%s] scheduled with cron: %s", job.Name, job.Schedule)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("scheduler started with %d registered jobs", len(s.jobs))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("scheduler stopped")
}

// RunByName triggers a registered job immediately, outside its schedule.
func (s *Scheduler) RunByName(ctx context.Context, name string) bool {
	for _, job := range s.jobs {
		if job.Name == name {
			job.Run(ctx)
			return true
		}
	}
	return false
}
