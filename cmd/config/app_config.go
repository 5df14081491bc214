package config

import (
	"fmt"

	"pantrysync/internal/utils"
	"pantrysync/pkg/cache"
	"pantrysync/pkg/community"
	"pantrysync/pkg/gateway"
	"pantrysync/pkg/inventory"
	"pantrysync/pkg/session"
	"pantrysync/pkg/waste"
)

// App is the assembled synchronization layer. Stores are constructed exactly
// once here and handed to consumers; nothing in the library is a package
// singleton.
type App struct {
	Gateway   *gateway.Client
	Cache     cache.Store
	Session   session.SessionService
	Inventory inventory.InventoryService
	Waste     waste.WasteService
	Community community.CommunityService
}

func NewApp() (*App, error) {
	utils.LoadConfig()
	utils.InitValidator()
	validate := utils.Validate

	// snapshot cache
	snapshots, err := newCacheStore()
	if err != nil {
		return nil, err
	}

	// gateway
	client := gateway.NewClient(
		utils.GetConfig("GATEWAY_URL"),
		utils.GetConfig("GATEWAY_ANON_KEY"),
		gateway.WithSessionStore(snapshots),
	)

	// Repository
	sessionRepository := session.NewSessionRepository(client)
	foodRepository := inventory.NewFoodRepository(client)
	wasteRepository := waste.NewWasteRepository(client)
	shareRepository := community.NewShareRepository(client)

	// Service
	sessionService := session.NewSessionService(sessionRepository, validate)
	inventoryService := inventory.NewInventoryService(foodRepository, snapshots, validate)
	wasteService := waste.NewWasteService(wasteRepository, validate)
	communityService := community.NewCommunityService(shareRepository, validate)

	return &App{
		Gateway:   client,
		Cache:     snapshots,
		Session:   sessionService,
		Inventory: inventoryService,
		Waste:     wasteService,
		Community: communityService,
	}, nil
}

func newCacheStore() (cache.Store, error) {
	switch driver := utils.GetConfig("CACHE_DRIVER"); driver {
	case "sqlite":
		return cache.NewSqliteStore(utils.GetConfig("CACHE_PATH"))
	case "redis":
		return cache.NewRedisStore(utils.GetConfig("REDIS_ADDR"), "pantrysync")
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}

// Close releases the auth subscription and the cache handle.
func (a *App) Close() error {
	a.Session.Close()
	return a.Cache.Close()
}
