package bootstrap

import (
	"bosfinder_backend/internal/adapters"
	"bosfinder_backend/internal/adapters/storage"
	"bosfinder_backend/internal/bos"
	bossvc "bosfinder_backend/internal/bos/service"
	"bosfinder_backend/internal/catalog"
	"bosfinder_backend/internal/events"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/internal/identity"
	"bosfinder_backend/internal/jobrequests"
	"bosfinder_backend/internal/leads"
	"bosfinder_backend/internal/notification"
	"bosfinder_backend/internal/reviews"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"
)

// PhotoConfig names the bucket profile photos are stored in.
type PhotoConfig interface {
	GetMinioBucketProfilePhotos() string
}

// AppConfig is everything the composed application reads from configuration.
type AppConfig interface {
	apphttp.RouterConfig
	PhotoConfig
}

// NewApp composes every domain module on store. photos may be nil when object
// storage is not configured.
func NewApp(cfg AppConfig, store docstore.Store, photos storage.StorageService, log *logger.Logger) (*apphttp.App, error) {
	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	catalogModule, err := catalog.NewModule(val)
	if err != nil {
		return nil, err
	}
	catalogLookup := adapters.NewCatalogLookup(catalogModule.Service())

	identityModule := identity.NewModule(store, val, log)
	leadsModule := leads.NewModule(store, eventBus, val, log)

	bosModule := bos.NewModule(
		store,
		adapters.NewBosOwnerReader(identityModule.Service()),
		catalogLookup,
		photos,
		bossvc.Config{
			InitialLeadCredits: cfg.GetInitialLeadCredits(),
			PhotoBucket:        cfg.GetMinioBucketProfilePhotos(),
		},
		val,
		log,
	)

	jobRequestsModule := jobrequests.NewModule(store, jobrequests.Dependencies{
		Clients:     adapters.NewJobClientReader(identityModule.Service()),
		Catalog:     catalogLookup,
		Leads:       adapters.NewLeadGate(leadsModule.Service()),
		Preferences: bosModule.Service(),
	}, eventBus, val, log)

	reviewsModule := reviews.NewModule(store, eventBus, val, log)

	notificationModule := notification.New(store, bosModule.Service(), log)
	notificationModule.RegisterHandlers(eventBus)

	return &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   store,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			identityModule,
			bosModule,
			jobRequestsModule,
			leadsModule,
			reviewsModule,
			notificationModule,
		},
	}, nil
}
