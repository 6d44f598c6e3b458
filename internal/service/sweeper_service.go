package service

import (
	"context"
	"fmt"
	"time"

	"haskify-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type SweepStats struct {
	Materials int
	Sessions  int64
	Duration  time.Duration
}

// Sweepable is a store that drops expired entries on demand.
type Sweepable interface {
	Sweep()
}

type ISweeperService interface {
	Start() error
	Stop()
	RunNow(ctx context.Context) (*SweepStats, error)
}

// sweeperService removes expired session materials and sessions on a cron
// schedule.
type sweeperService struct {
	materialService IMaterialService
	sessionService  ISessionService
	stores          []Sweepable
	cron            *cron.Cron
	interval        time.Duration
	logger          logger.ILogger
}

func NewSweeperService(
	materialService IMaterialService,
	sessionService ISessionService,
	interval time.Duration,
	logger logger.ILogger,
	stores ...Sweepable,
) ISweeperService {
	return &sweeperService{
		materialService: materialService,
		sessionService:  sessionService,
		stores:          stores,
		cron:            cron.New(),
		interval:        interval,
		logger:          logger,
	}
}

func (s *sweeperService) Start() error {
	schedule := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule expiry sweep: %w", err)
	}
	s.cron.Start()

	s.logger.Info("SWEEPER", "Expiry sweep scheduled", map[string]interface{}{
		"schedule": schedule,
	})
	return nil
}

func (s *sweeperService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *sweeperService) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := s.RunNow(ctx)
	if err != nil {
		s.logger.Error("SWEEPER", "Expiry sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if stats.Materials > 0 || stats.Sessions > 0 {
		s.logger.Info("SWEEPER", "Expired data removed", map[string]interface{}{
			"materials":   stats.Materials,
			"sessions":    stats.Sessions,
			"duration_ms": stats.Duration.Milliseconds(),
		})
	}
}

func (s *sweeperService) RunNow(ctx context.Context) (*SweepStats, error) {
	start := time.Now()

	materials, err := s.materialService.SweepExpired(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("sweep materials: %w", err)
	}
	sessions, err := s.sessionService.SweepExpired(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("sweep sessions: %w", err)
	}
	for _, store := range s.stores {
		store.Sweep()
	}

	return &SweepStats{
		Materials: materials,
		Sessions:  sessions,
		Duration:  time.Since(start),
	}, nil
}
