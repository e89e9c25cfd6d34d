package service

import (
	"log"
	"sync"
	"time"

	"classquest/internal/repository"
)

// SchedulerService drives the cadence engine. A tick reads the due states
// from their schedule pointers and pushes each through its transition. Ticks
// are serialized; every transition is individually idempotent, so a missed,
// late or repeated tick converges to the same state.
type SchedulerService struct {
	worldRepo *repository.WorldRepository
	daily     *DailyService
	weekly    *WeeklyService
	batchSize int
	mu        sync.Mutex
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(worldRepo *repository.WorldRepository, daily *DailyService, weekly *WeeklyService, batchSize int) *SchedulerService {
	return &SchedulerService{
		worldRepo: worldRepo,
		daily:     daily,
		weekly:    weekly,
		batchSize: batchSize,
	}
}

// TickReport summarizes what one tick changed
type TickReport struct {
	DailySpawned    int `json:"daily_spawned"`
	Expired         int `json:"expired"`
	WeeklyEvaluated int `json:"weekly_evaluated"`
}

// Tick runs one pass of the cadence engine at the given instant. A failing
// state is logged and skipped so one bad row cannot stall the rest of the
// batch.
func (s *SchedulerService) Tick(now time.Time) (*TickReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &TickReport{}

	dueDaily, err := s.worldRepo.DueDaily(now, s.batchSize)
	if err != nil {
		return nil, err
	}
	for i := range dueDaily {
		spawned, err := s.daily.SpawnIfMissing(&dueDaily[i], now)
		if err != nil {
			log.Printf("tick: daily spawn failed for state %d: %v", dueDaily[i].ID, err)
			continue
		}
		if spawned {
			report.DailySpawned++
		}
	}

	expired, err := s.daily.ExpireStale(now)
	if err != nil {
		log.Printf("tick: expiry sweep failed: %v", err)
	} else {
		report.Expired = int(expired)
	}

	dueWeekly, err := s.worldRepo.DueWeekly(now, s.batchSize)
	if err != nil {
		return nil, err
	}
	for i := range dueWeekly {
		evaluated, err := s.weekly.Evaluate(&dueWeekly[i], now)
		if err != nil {
			log.Printf("tick: weekly evaluation failed for state %d: %v", dueWeekly[i].ID, err)
			continue
		}
		if evaluated {
			report.WeeklyEvaluated++
		}
	}

	return report, nil
}

// Run ticks on the given interval until the stop channel closes
func (s *SchedulerService) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Scheduler running every %v", interval)
	for {
		select {
		case <-stop:
			log.Println("Scheduler stopped")
			return
		case now := <-ticker.C:
			report, err := s.Tick(now)
			if err != nil {
				log.Printf("tick failed: %v", err)
				continue
			}
			if report.DailySpawned > 0 || report.Expired > 0 || report.WeeklyEvaluated > 0 {
				log.Printf("tick: spawned %d daily events, expired %d, evaluated %d weeks",
					report.DailySpawned, report.Expired, report.WeeklyEvaluated)
			}
		}
	}
}
