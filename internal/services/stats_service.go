package services

import (
	"context"
	"fmt"
	"time"

	"stayharbor/channelsync/internal/common"
	"stayharbor/channelsync/internal/db/repositories"
	"stayharbor/channelsync/internal/models/dtos"
)

const statsCacheKey = "sync_stats:dashboard"
const statsCacheTTL = 30 * time.Second

// StatsService aggregates dashboard counters over connections and sync
// logs. Results are cached briefly since the dashboard polls.
type StatsService struct {
	statsRepo *repositories.StatsRepository
	cache     common.CacheInterface
}

func NewStatsService(statsRepo *repositories.StatsRepository, cache common.CacheInterface) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		cache:     cache,
	}
}

func (s *StatsService) GetStats(ctx context.Context) (*dtos.SyncStats, error) {
	if cached, found := s.cache.Get(statsCacheKey); found {
		if stats, ok := cached.(*dtos.SyncStats); ok {
			return stats, nil
		}
	}

	stats, err := s.statsRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sync stats: %w", err)
	}

	s.cache.Set(statsCacheKey, stats, statsCacheTTL)
	return stats, nil
}

// Invalidate drops the cached snapshot, used after mutations so the
// dashboard reflects them immediately.
func (s *StatsService) Invalidate() {
	s.cache.Delete(statsCacheKey)
}
