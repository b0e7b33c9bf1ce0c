package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resident-portal/internal/core/auth"
	"resident-portal/internal/core/cache"
	"resident-portal/internal/core/config"
	"resident-portal/internal/core/database"
	"resident-portal/internal/ratelimit"
	"resident-portal/internal/realtime"
	"resident-portal/internal/repo"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/handler"
	mdw "resident-portal/internal/transport/http/middleware"
	"resident-portal/internal/transport/http/router"
)

// App is the wired process: stores, services, realtime hub and HTTP engine.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Engine   *gin.Engine
	Hub      *realtime.Hub
	Stores   *repo.Stores
	Auth     *service.AuthService
	Profiles *service.ProfileService

	db      *gorm.DB
	rdb     *redis.Client
	sweeper *cron.Cron
}

// Open connects the configured stores. It is shared by the API server and the
// admin CLI.
func Open(cfg *config.Config, l *zap.Logger) (*repo.Stores, *gorm.DB, error) {
	db, err := database.Open(cfg.DB, l)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.InMemory() {
		l.Warn("using in-memory sqlite; data is lost on exit")
	}
	// an in-memory database starts empty, so it always needs the schema
	if cfg.DB.AutoMigrate || cfg.DB.InMemory() {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}
	return repo.NewGormStores(db), db, nil
}

func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	stores, db, err := Open(cfg, l)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: l, Stores: stores, db: db}

	if cfg.Redis.Enabled() {
		a.rdb = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := a.rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			if cfg.RateLimit.Store == "redis" {
				a.Close()
				return nil, err
			}
			l.Warn("redis unavailable, cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = a.rdb.Close()
			a.rdb = nil
		}
	}

	general, authLimit, err := a.limiters()
	if err != nil {
		a.Close()
		return nil, err
	}

	jwter := &auth.JWTer{
		Secret:       []byte(cfg.JWT.Secret),
		Issuer:       cfg.JWT.Issuer,
		TTL:          time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		RefreshGrace: time.Duration(cfg.JWT.RefreshGraceMin) * time.Minute,
		Leeway:       time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}
	a.Hub = realtime.NewHub(l, realtime.Options{
		MessagesPerSecond: cfg.Realtime.MessagesPerSecond,
		Burst:             cfg.Realtime.Burst,
	})

	var c *cache.Cache
	if a.rdb != nil {
		c = cache.New(a.rdb, cfg.App.Name+":cache:")
	}

	a.Auth = service.NewAuthService(stores.Accounts, stores.Profiles, jwter, cfg.Signup.AutoApprove, l)
	a.Profiles = service.NewProfileService(stores.Accounts, stores.Profiles, a.Hub, l)
	storage, err := service.NewStorageService(cfg.Upload.Dir, cfg.Upload.PublicPrefix, cfg.Upload.MaxSizeMB<<20, l)
	if err != nil {
		a.Close()
		return nil, err
	}

	reg := router.NewRegistry(
		handler.NewAuthHandler(a.Auth, mdw.RateLimit(authLimit, "auth", l)),
		handler.NewProfileHandler(a.Profiles),
		handler.NewAdminHandler(a.Profiles, service.NewStatsService(stores.Profiles, stores.Messages, stores.LeisureEvents, stores.Contributions)),
		handler.NewMessageHandler(service.NewMessageService(stores.Messages, a.Hub, l)),
		handler.NewResourceHandler(resources(stores, c, a.Hub, l)),
		handler.NewLeisureHandler(service.NewLeisureService(stores.LeisureEvents, stores.LeisureParticipants, a.Hub, l)),
		handler.NewStorageHandler(storage),
		handler.NewSearchHandler(service.NewSearchService(service.SearchRepos{
			Profiles: stores.Profiles,
			Messages: stores.Messages,
			Sites:    stores.Sites,
			Modules:  stores.Modules,
			Subjects: stores.Subjects,
			Files:    stores.Files,
			Events:   stores.LeisureEvents,
		}, l)),
	)

	h := cfg.App.HTTP
	maxBody := h.MaxBodyMB << 20
	if up := (cfg.Upload.MaxSizeMB + 1) << 20; up > maxBody {
		maxBody = up
	}
	a.Engine = router.NewAPIEngine(router.Deps{
		Log:            l,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Resolver:       a.Auth,
		General:        general,
		RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
		MaxConcurrent:  h.MaxConcurrent,
		MaxBodyBytes:   maxBody,
		Health:         handler.NewHealthHandler(stores.Pinger, a.Hub.Count).Serve,
		Realtime:       handler.NewWSHandler(a.Hub, a.Auth, cfg.CORS.AllowedOrigins, l).Serve,
		WSPath:         cfg.Realtime.Path,
		UploadDir:      cfg.Upload.Dir,
		UploadPrefix:   storage.Prefix(),
		Modules:        reg,
	})
	return a, nil
}

// limiters builds the general and auth limiters over one shared store. The
// in-memory store gets a periodic sweep.
func (a *App) limiters() (general, authLimit *ratelimit.Limiter, err error) {
	rl := a.Config.RateLimit
	var store ratelimit.Store
	if rl.Store == "redis" && a.rdb != nil {
		store = ratelimit.NewRedisStore(a.rdb, a.Config.App.Name+":rl:")
	} else {
		mem := ratelimit.NewMemoryStore()
		a.sweeper, err = ratelimit.StartSweeper(rl.SweepSpec, mem, a.Log)
		if err != nil {
			return nil, nil, err
		}
		store = mem
	}
	general = ratelimit.New(store, "general:", rl.General.Max, time.Duration(rl.General.WindowSec)*time.Second)
	authLimit = ratelimit.New(store, "auth:", rl.Auth.Max, time.Duration(rl.Auth.WindowSec)*time.Second)
	return general, authLimit, nil
}

func resources(st *repo.Stores, c *cache.Cache, n service.Notifier, l *zap.Logger) handler.Resources {
	return handler.Resources{
		Sites: service.NewResource(st.Sites, service.ResourceOptions{
			Name: "Site", Order: "name ASC",
			Filters: map[string]string{"city": "city", "specialty": "specialty"},
		}, c, n, l),
		Modules: service.NewResource(st.Modules, service.ResourceOptions{
			Name: "Module", Order: "position ASC",
			Filters: map[string]string{"year": "year"},
		}, c, n, l),
		Subjects: service.NewResource(st.Subjects, service.ResourceOptions{
			Name: "Subject", Order: "name ASC",
			Filters: map[string]string{"moduleId": "module_id"},
		}, c, n, l),
		Files: service.NewResource(st.Files, service.ResourceOptions{
			Name: "File", Order: "name ASC",
			Filters: map[string]string{"subjectId": "subject_id", "uploadedBy": "uploaded_by"},
		}, c, n, l),
		Contributions: service.NewResource(st.Contributions, service.ResourceOptions{
			Name: "Contribution", Order: "date DESC", Event: "contribution:updated",
			Filters: map[string]string{"profileId": "profile_id", "status": "status"},
		}, c, n, l),
		LeisureEvents: service.NewResource(st.LeisureEvents, service.ResourceOptions{
			Name: "Event", Order: "date DESC", Event: "event:updated",
			Filters: map[string]string{"status": "status"},
		}, c, n, l),
		LeisureParticipants: service.NewResource(st.LeisureParticipants, service.ResourceOptions{
			Name: "Participant", Event: "event:updated",
			Filters: map[string]string{"eventId": "event_id", "profileId": "profile_id", "status": "status"},
		}, c, n, l),
		LeisureContributions: service.NewResource(st.LeisureContributions, service.ResourceOptions{
			Name: "Event contribution", Event: "contribution:updated",
			Filters: map[string]string{"eventId": "event_id", "profileId": "profile_id"},
		}, c, n, l),
		Attendance: service.NewResource(st.Attendance, service.ResourceOptions{
			Name: "Attendance", Order: "date DESC",
			Filters: map[string]string{"profileId": "profile_id", "status": "status"},
		}, c, n, l),
		Settings: service.NewResource(st.Settings, service.ResourceOptions{
			Name: "Setting", Order: "key ASC", CacheKey: "settings",
			Filters: map[string]string{"key": "key"},
		}, c, n, l),
	}
}

// Close releases everything New opened, in reverse order. Safe to call twice.
func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.sweeper != nil {
		<-a.sweeper.Stop().Done()
		a.sweeper = nil
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
		a.rdb = nil
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.Log.Warn("db close", zap.Error(err))
		}
		a.db = nil
	}
}
