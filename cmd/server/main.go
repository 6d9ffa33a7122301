package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"rental-ops-service/internal/adapters/cache"
	"rental-ops-service/internal/adapters/directions"
	"rental-ops-service/internal/adapters/notify"
	"rental-ops-service/internal/adapters/repositories"
	"rental-ops-service/internal/adapters/weather"
	"rental-ops-service/internal/api"
	"rental-ops-service/internal/config"
	"rental-ops-service/internal/platform/db"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/ports"
	"rental-ops-service/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, ORS, Open-Meteo, webhooks) behind ports and starts the HTTP
// server, plus the optional in-process recurrence tick runner.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		zl.Fatalw("DATABASE_URL is required")
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		zl.Fatalw("invalid business timezone", "tz", cfg.BusinessTimezone, "err", err)
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatalw("open database", "err", err)
	}
	defer pool.Close()

	if err := repositories.InitSchema(ctx, pool); err != nil {
		zl.Fatalw("init schema", "err", err)
	}

	// Distance cache backend is selectable; Redis adds TTL-based expiry,
	// Postgres keeps everything in the primary store.
	var distanceCache directions.DistanceCache
	switch cfg.DistanceCache {
	case "redis":
		if cfg.RedisAddr == "" {
			zl.Fatalw("REDIS_ADDR is required when DISTANCE_CACHE=redis")
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		distanceCache = cache.NewRedisDistanceCache(rdb, 24*time.Hour)
	default:
		distanceCache = cache.NewPGDistanceCache(pool)
	}

	// Without an ORS key every leg degrades to a straight-line estimate;
	// useful for local runs, logged so it is not mistaken for real data.
	var provider ports.DirectionsProvider
	var geocoder ports.Geocoder
	if strings.TrimSpace(cfg.ORSAPIKey) != "" {
		ors, err := directions.NewORSProvider(cfg.ORSAPIKey, cfg.ORSBaseURL, distanceCache)
		if err != nil {
			zl.Fatalw("build directions provider", "err", err)
		}
		provider = ors

		geo, err := directions.NewORSGeocoder(cfg.ORSAPIKey, cfg.ORSBaseURL, cache.NewPGGeocodeCache(pool))
		if err != nil {
			zl.Fatalw("build geocoder", "err", err)
		}
		geocoder = geo
	} else {
		zl.Warnw("ORS_API_KEY not set; addresses stay ungeocoded and route legs use straight-line estimates")
	}

	var notifier ports.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier, err = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
		if err != nil {
			zl.Fatalw("build notifier", "err", err)
		}
	}

	var calendar ports.CalendarSync
	if cfg.CalendarSyncURL != "" {
		calendar, err = notify.NewHTTPCalendarSync(cfg.CalendarSyncURL)
		if err != nil {
			zl.Fatalw("build calendar sync", "err", err)
		}
	}

	orderRepo := repositories.NewPGOrderRepository(pool)
	recurrenceRepo := repositories.NewPGRecurrenceRepository(pool)
	fleetRepo := repositories.NewPGFleetRepository(pool)

	events := services.NewOrderEvents(notifier, calendar, zl)
	engine := services.NewRecurrenceEngine(recurrenceRepo, orderRepo, events, loc, zl)
	annotator := services.NewAnnotator(weather.NewOpenMeteo(cfg.WeatherBaseURL), zl)
	planner := services.NewRoutePlanner(orderRepo, fleetRepo, provider, annotator, zl)

	// The HTTP tick endpoint stays available either way; the cron runner
	// just removes the need for an external scheduler.
	if cfg.TickCron != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.TickCron, func() {
			tickCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			report, err := engine.Tick(tickCtx, nil, time.Now())
			if err != nil {
				zl.Errorw("scheduled tick failed", "err", err)
				return
			}
			zl.Infow("scheduled tick done",
				"generated", len(report.Generated),
				"expired", report.Expired,
				"failed", report.Failed,
				"overdue", report.OverdueFlagged,
			)
		})
		if err != nil {
			zl.Fatalw("invalid TICK_CRON expression", "cron", cfg.TickCron, "err", err)
		}
		c.Start()
		defer c.Stop()
	}

	router := api.NewRouter(orderRepo, fleetRepo, geocoder, events, engine, planner)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	zl.Infow("server listening", "addr", ":"+cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		zl.Fatalw("server stopped", "err", err)
	}
}
