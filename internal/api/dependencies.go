package api

import (
	"os"

	"stayharbor/channelsync/internal/common"
	"stayharbor/channelsync/internal/constants"
	"stayharbor/channelsync/internal/db"
	"stayharbor/channelsync/internal/db/repositories"
	"stayharbor/channelsync/internal/logging"
	"stayharbor/channelsync/internal/metrics"
	"stayharbor/channelsync/internal/providers"
	"stayharbor/channelsync/internal/services"
	"stayharbor/channelsync/internal/syncengine"
)

type Repositories struct {
	Connections *repositories.ConnectionRepository
	Bookings    *repositories.BookingRepository
	SyncLogs    *repositories.SyncLogRepository
	Stats       *repositories.StatsRepository
}

type Services struct {
	Cache       common.CacheInterface
	Connections *services.ConnectionService
	Stats       *services.StatsService
}

type Engine struct {
	Ical        *providers.IcalProvider
	Lodgify     *providers.LodgifyProvider
	Coordinator *syncengine.Coordinator
	Scheduler   *syncengine.Scheduler
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Engine   *Engine
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Connections: repositories.NewConnectionRepository(db.PgDB),
		Bookings:    repositories.NewBookingRepository(db.PgDB),
		SyncLogs:    repositories.NewSyncLogRepository(db.PgDB),
		Stats:       repositories.NewStatsRepository(db.DB),
	}

	// Redis when configured, in-process cache otherwise
	var cacheSvc common.CacheInterface
	if os.Getenv("REDIS_HOST") != "" {
		redisCache, err := common.NewRedisCacheService()
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-process cache", "error", err.Error())
			cacheSvc = common.NewCacheService(60, 600)
		} else {
			cacheSvc = redisCache
		}
	} else {
		cacheSvc = common.NewCacheService(60, 600)
	}

	icalProvider := providers.NewIcalProvider()
	lodgifyProvider := providers.NewLodgifyProvider()

	providerMap := map[string]providers.ChannelProvider{
		constants.ConnectionTypeIcal: icalProvider,
		constants.ConnectionTypeAPI:  lodgifyProvider,
	}

	coordinator := syncengine.NewCoordinator(
		repos.Connections,
		repos.Bookings,
		repos.SyncLogs,
		providerMap,
		metricsReg,
	)
	scheduler := syncengine.NewScheduler(coordinator, repos.Connections, 0, 0)

	svcs := &Services{
		Cache:       cacheSvc,
		Connections: services.NewConnectionService(repos.Connections, repos.SyncLogs),
		Stats:       services.NewStatsService(repos.Stats, cacheSvc),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Engine: &Engine{
			Ical:        icalProvider,
			Lodgify:     lodgifyProvider,
			Coordinator: coordinator,
			Scheduler:   scheduler,
		},
	}, nil
}
