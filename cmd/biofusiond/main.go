// BioFusion Core - Biometric Demo Station Daemon
//
// This is the main entry point for the BioFusion Core application.
// BioFusion Core drives a self-contained security demo station:
//   - Single-profile enrollment and verification over simulated capture devices
//   - Stepped capture flow (face, voice, gesture, body pattern)
//   - VIP monitoring records and mock quantum security dashboards
//   - HTTP API with a WebSocket live feed for the kiosk UI
//
// Every biometric decision and threat reading it produces is simulated.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/biofusionhq/biofusion-core/migrations"

	"github.com/biofusionhq/biofusion-core/internal/api"
	"github.com/biofusionhq/biofusion-core/internal/audit"
	"github.com/biofusionhq/biofusion-core/internal/capture"
	"github.com/biofusionhq/biofusion-core/internal/flow"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/config"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/database"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/influxdb"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/logging"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/mqtt"
	"github.com/biofusionhq/biofusion-core/internal/judge"
	"github.com/biofusionhq/biofusion-core/internal/profile"
	"github.com/biofusionhq/biofusion-core/internal/threatsim"
	"github.com/biofusionhq/biofusion-core/internal/vip"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence: each component wired in turn
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting BioFusion Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise the session store and reload any persisted profile
	store := profile.NewStore(profile.NewSQLiteRepository(db.DB), judge.New())
	if rehydrateErr := store.Rehydrate(ctx); rehydrateErr != nil {
		return fmt.Errorf("loading profile: %w", rehydrateErr)
	}
	if p := store.Current(); p != nil {
		log.Info("profile loaded", "profile_id", p.ID, "username", p.Username,
			"enrollment_complete", p.EnrollmentComplete)
	} else {
		log.Info("no profile registered yet")
	}

	// Capture station with simulated devices
	station := capture.NewStation(cfg.Capture, rand.NewSource(time.Now().UnixNano()))
	log.Info("capture station initialised",
		"speech_recognition", station.Capabilities().SpeechRecognition,
		"speech_synthesis", station.Capabilities().SpeechSynthesis,
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		// Set up MQTT logging callbacks
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// WebSocket hub is created here so the simulation engine and the API
	// server share it.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Start the mock dashboard engine
	var sim *threatsim.Engine
	if cfg.Simulation.Enabled {
		opts := []threatsim.Option{threatsim.WithBroadcaster(hub)}
		if mqttClient != nil {
			opts = append(opts, threatsim.WithPublisher(mqttClient))
		}
		if influxClient != nil {
			opts = append(opts, threatsim.WithMetrics(influxClient))
		}
		sim = threatsim.New(cfg.Simulation, cfg.Capture.StallTimeout(), log, opts...)
		go sim.Run(ctx)
		log.Info("simulation engine started",
			"tick_interval", cfg.Simulation.TickInterval(),
			"initial_risk", cfg.Simulation.InitialRisk,
		)
	} else {
		log.Info("simulation engine disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log,
		Store:       store,
		Flow:        flow.NewController(store),
		Station:     station,
		AuditRepo:   audit.NewSQLiteRepository(db.DB),
		VIPRepo:     vip.NewSQLiteRepository(db.DB),
		Sim:         sim,
		MQTT:        mqttClient,
		Influx:      influxClient,
		DB:          db,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("BioFusion Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BIOFUSION_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BIOFUSION_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
