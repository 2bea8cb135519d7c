package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Schedule() gocron.JobDefinition
	Options() []gocron.JobOption
	Execute()
}

// Manager owns the gocron scheduler.
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

func NewManager(jobs ...Job) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Manager{scheduler: s, jobs: jobs}, nil
}

// RegisterJobs adds every job in singleton mode so a slow run delays the
// next one instead of overlapping it.
func (m *Manager) RegisterJobs() error {
	for _, job := range m.jobs {
		opts := append([]gocron.JobOption{
			gocron.WithName(job.Name()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}, job.Options()...)

		if _, err := m.scheduler.NewJob(job.Schedule(), gocron.NewTask(job.Execute), opts...); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name(), err)
		}
		slog.Info("job registered", "job", job.Name())
	}
	return nil
}

func (m *Manager) Start() {
	m.scheduler.Start()
	slog.Info("task manager started", "jobs", len(m.jobs))
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		slog.Error("failed to shutdown scheduler", "error", err)
	}
	slog.Info("task manager stopped")
}
