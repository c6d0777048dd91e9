// gpio2mqtt bridges GPIO pins, analog sensors and serial streams to an
// MQTT broker.
//
// Digital inputs are polled, debounced and published; digital outputs are
// commanded over set/set_on_ms/set_off_ms topics and confirmed on a
// retained state topic; sensors are sampled on a fixed schedule; streams
// are relayed bidirectionally. Broker outages are absorbed locally and
// state reconverges on reconnect.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gpio2mqtt/internal/engine"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/database"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/influxdb"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/logging"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/mqtt"
	"github.com/nerrad567/gpio2mqtt/internal/module"

	// Hardware backends register themselves from package init.
	_ "github.com/nerrad567/gpio2mqtt/internal/hardware/mcp23017"
	_ "github.com/nerrad567/gpio2mqtt/internal/hardware/mcp3008"
	_ "github.com/nerrad567/gpio2mqtt/internal/hardware/mock"
	_ "github.com/nerrad567/gpio2mqtt/internal/hardware/raspberrypi"
	_ "github.com/nerrad567/gpio2mqtt/internal/hardware/serialport"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting gpio2mqtt",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

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

	// Open the state store (optional)
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.Open(database.Config{
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
	} else {
		log.Info("state store disabled")
	}

	// Open hardware backends and bind modules
	registry, err := module.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("binding modules: %w", err)
	}
	defer func() {
		log.Info("releasing hardware")
		if closeErr := registry.Close(); closeErr != nil {
			log.Error("error releasing hardware", "error", closeErr)
		}
	}()

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Verify all connections are healthy before starting the engine
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Interface-typed nils must stay nil, hence the indirection.
	var store engine.Store
	if db != nil {
		store = db
	}
	var telem engine.Telemetry
	if influxClient != nil {
		telem = influxClient
	}

	eng := engine.New(engine.Deps{
		Config:    cfg.Engine,
		QoS:       byte(cfg.MQTT.QoS),
		Broker:    mqttClient,
		Registry:  registry,
		Store:     store,
		Telemetry: telem,
		Logger:    log,
	})

	// Run blocks until the shutdown signal cancels ctx
	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	log.Info("gpio2mqtt stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GPIO2MQTT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GPIO2MQTT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: State store (may be nil if disabled)
//   - mqttClient: MQTT client (required)
//   - influxClient: InfluxDB client (may be nil if disabled)
//
// Returns:
//   - error: First failing check, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return err
		}
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return err
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}
