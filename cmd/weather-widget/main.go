package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-widget/internal/api/http"
	"github.com/i474232898/weather-widget/internal/config"
	"github.com/i474232898/weather-widget/internal/geolocation"
	"github.com/i474232898/weather-widget/internal/history"
	"github.com/i474232898/weather-widget/internal/render"
	"github.com/i474232898/weather-widget/internal/scheduler"
	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/weather/providers"
	"github.com/i474232898/weather-widget/internal/widget"
)

func main() {
	os.Exit(run())
}

// run wires and starts the service. It returns the process exit code so that
// deferred cleanup (tracer flush, logger sync, db close) always runs.
func run() int {
	city := flag.String("city", "", "print the weather for a city and exit")
	here := flag.Bool("here", false, "print the weather for the configured location and exit")
	fahrenheit := flag.Bool("f", false, "show temperatures in Fahrenheit (with -city or -here)")
	details := flag.Bool("details", false, "show the details panel (with -city or -here)")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	zl, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Printf("failed to build logger: %v", err)
		return 1
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	shutdownTracing, err := setTracing(cfg.ZipkinEndpoint)
	if err != nil {
		log.Printf("failed to set up tracing: %v", err)
		return 1
	}
	defer shutdownTracing()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Search history store: sqlite when a path is configured, memory otherwise.
	var kv store.KV
	if cfg.HistoryDBPath != "" {
		db, err := store.NewSQLite(cfg.HistoryDBPath, sugar.Named("store"))
		if err != nil {
			log.Printf("failed to open history db: %v", err)
			return 1
		}
		defer db.Close()
		kv = db
	} else {
		kv = store.NewMemoryStore()
	}

	var geo *geolocation.GoogleGeocoder
	if cfg.GeocoderAPIKey != "" {
		geo = geolocation.NewGoogleGeocoder(cfg.GeocoderAPIKey, cfg.GeocoderBaseURL)
	}

	var provider weather.Provider
	switch cfg.Provider {
	case config.ProviderOpenMeteo:
		var resolver providers.CityResolver
		if geo != nil {
			resolver = geo
		}
		provider = providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL, resolver)
	default:
		provider = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	}

	var locator geolocation.Locator
	switch {
	case cfg.Location != nil:
		locator = geolocation.NewStaticLocator(cfg.Location)
	case cfg.LocationAddress != "" && geo != nil:
		locator = geolocation.NewAddressLocator(geo, cfg.LocationAddress)
	default:
		locator = geolocation.NewStaticLocator(nil)
	}

	service := weather.NewService(provider, sugar.Named("weather"))
	w := widget.New(service, locator,
		history.New(kv, sugar.Named("history")),
		widget.WithLogger(sugar.Named("widget")),
		widget.WithDiscardStale(cfg.DiscardStaleResults),
	)

	if *city != "" || *here {
		return runOnce(w, cfg, *city, *fahrenheit, *details)
	}

	// Scheduler that periodically refreshes the shown location.
	sched := scheduler.New(scheduler.RefresherFunc(func(ctx context.Context) {
		w.Refresh(ctx)
	}), cfg.RefreshInterval, cfg.FetchTimeout, sugar.Named("scheduler"))
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
		return 1
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-widget",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.FetchTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-widget",
			"provider": provider.Name(),
		})
	})

	// Widget routes.
	httpapi.RegisterRoutes(app, w, httpapi.Options{
		TimeZone:         cfg.TimeZone,
		OperationTimeout: cfg.FetchTimeout,
	})

	go func() {
		sugar.Infow("listening", "port", cfg.Port, "provider", provider.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return 0
}

// runOnce performs a single lookup and prints the text view. The exit code
// is 1 when the lookup failed.
func runOnce(w *widget.Widget, cfg *config.AppConfig, city string, fahrenheit, details bool) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	if fahrenheit {
		w.ToggleUnits()
	}
	if details {
		w.ToggleDetails()
	}

	var v widget.View
	if city != "" {
		v = w.Search(ctx, city)
	} else {
		v = w.UseLocation(ctx)
	}

	fmt.Print(render.Text(v, time.Now(), cfg.TimeZone))
	if v.Error != "" {
		return 1
	}
	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}
