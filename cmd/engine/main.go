package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/config"
	"fleetwatch/internal/detector"
	"fleetwatch/internal/engine"
	"fleetwatch/internal/handler"
	"fleetwatch/internal/metrics"
	"fleetwatch/internal/model"
	"fleetwatch/internal/notify"
	"fleetwatch/internal/server"
	"fleetwatch/internal/store"
)

func main() {
	log.Println("[Main] Starting fleetwatch detection engine...")

	if err := godotenv.Load(); err == nil {
		log.Println("[Main] Loaded .env")
	}
	cfg := config.Load()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("[Main] Failed to connect to database: %v", err)
	}
	log.Println("[Main] Connected to database")

	if err := autoMigrate(db); err != nil {
		log.Fatalf("[Main] Failed to migrate database: %v", err)
	}
	log.Println("[Main] Database migrated")

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
		DB:   0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("[Main] Failed to connect to Redis: %v", err)
	}
	log.Println("[Main] Connected to Redis")
	defer redisClient.Close()

	// Connect to NATS
	natsConn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("[Main] Failed to connect to NATS: %v", err)
	}
	log.Println("[Main] Connected to NATS")
	defer natsConn.Close()

	// Stores
	telemetry := store.NewTelemetryStore(db)
	configs := store.NewAlarmConfigStore(db)
	alerts := store.NewAlertStore(db)
	shipments := store.NewShipmentStore(db)
	cache := store.NewAlertCache(redisClient)

	// Notification channels
	metricSet := metrics.New()
	wsHub := handler.NewWSHub()
	channels := []alert.Notifier{
		notify.NewNATSChannel(natsConn),
		notify.NewWSChannel(wsHub),
		notify.NewMetricsHook(metricSet),
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel(cfg.WebhookURL, cfg.WebhookSecret))
	}
	notifier := notify.NewFanout(channels...)

	manager := alert.NewManager(alerts, shipments, notifier, cache)

	detectors := []detector.Detector{
		detector.NewStoppage(configs, telemetry, manager),
		detector.NewOverspeed(configs, telemetry, manager),
		detector.NewContinuousDriving(configs, telemetry, manager),
		detector.NewNoGpsFeed(configs, telemetry, manager),
		detector.NewGeofence(configs, telemetry, manager, shipments),
		detector.NewReachedStop(configs, telemetry, manager, shipments),
	}

	eng := engine.New(detectors, natsConn, metricSet, engine.Options{
		Enabled:        cfg.EngineEnabled,
		MinInterval:    cfg.EngineMinInterval,
		TickInterval:   cfg.EngineTick,
		TriggerSubject: cfg.TriggerSubject,
	})
	if err := eng.Start(context.Background()); err != nil {
		log.Fatalf("[Main] Failed to start engine: %v", err)
	}

	srv := server.NewServer(cfg, db, redisClient, manager, eng, metricSet, wsHub)
	srv.Setup()
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("[Main] Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("[Main] Shutting down...")

	eng.Stop()
	srv.Shutdown()
	log.Println("[Main] Stopped")
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Vehicle{},
		&model.VehicleGroup{},
		&model.Position{},
		&model.Geofence{},
		&model.GeofenceVertex{},
		&model.GeofenceGroup{},
		&model.AlarmConfig{},
		&model.Alert{},
		&model.Shipment{},
		&model.Stop{},
	)
}
