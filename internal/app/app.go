package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"franchise-crm/internal/config"
	authmw "franchise-crm/internal/middleware"
	"franchise-crm/internal/migrations"
	"franchise-crm/internal/models"
	"franchise-crm/internal/modules/distance"
	"franchise-crm/internal/modules/pincode"
	"franchise-crm/internal/modules/pricing"
	"franchise-crm/internal/validation"
	"franchise-crm/pkg/geocode"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// DBError represents a database-related startup error.
type DBError struct {
	Op  string
	Err error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("db error during %q: %v", e.Op, e.Err)
}

func (e *DBError) Unwrap() error { return e.Err }

// App holds the application-level dependencies.
type App struct {
	DB   *pgxpool.Pool // nil without DATABASE_URL
	Echo *echo.Echo
	cfg  *config.Config
}

// New wires the service. Without DATABASE_URL it runs on the in-process
// cache alone and the rule routes answer 503.
func New(cfg *config.Config) (*App, error) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(parseLevel(cfg.LogLevel))

	a := &App{Echo: e, cfg: cfg}

	var (
		distRepo distance.RepositoryInterface
		ruleRepo pricing.RepositoryInterface
	)
	if cfg.DatabaseURL != "" {
		pool, err := connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		e.Logger.Info("database connection pool established")

		if err := migrations.Run(context.Background(), pool, e.Logger.Infof); err != nil {
			pool.Close()
			return nil, fmt.Errorf("app: run migrations: %w", err)
		}
		distRepo = distance.NewRepository(pool)
		ruleRepo = pricing.NewRepository(pool)
	} else {
		e.Logger.Warn("DATABASE_URL not set: distances are not persisted and pricing rules are unavailable")
	}

	validate, err := validation.New(cfg.PostalCodePattern)
	if err != nil {
		return nil, err
	}

	// --- Providers ---
	httpClient := &http.Client{Timeout: 2 * cfg.GeocodeTimeout}
	indiaPost := geocode.NewIndiaPostClient(cfg.IndiaPostBaseURL, httpClient, cfg.GeocodeTimeout)
	nominatim := geocode.NewNominatimClient(cfg.NominatimBaseURL, cfg.GeocodeUserAgent, httpClient, cfg.GeocodeTimeout, cfg.NominatimRPS)
	geocoder := geocode.NewGeocoder(indiaPost, nominatim, cfg.GeocodeCountry, e.Logger.Warnf)

	// --- Services ---
	distanceSvc := distance.NewService(geocoder, distRepo, distance.NewCache(cfg.DistanceCacheTTL), e.Logger, cfg.BatchConcurrency)
	pincodeSvc := pincode.NewService(indiaPost, pincode.NewCache(cfg.PincodeCacheSize, cfg.PincodeCacheTTL), e.Logger)
	pricingSvc := pricing.NewService(ruleRepo, distanceSvc, e.Logger)

	// --- HTTP engine ---
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(cfg.ClientOrigin),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: 30 * time.Second}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "database": a.DB != nil})
	})

	api := e.Group("/api/v1")
	distance.NewHandler(distanceSvc, validate).RegisterRoutes(api)
	pincode.NewHandler(pincodeSvc, validate).RegisterRoutes(api)
	pricing.NewHandler(pricingSvc, validate).RegisterRoutes(api, authMiddleware(cfg.JWTSecret, e.Logger))

	return a, nil
}

// Shutdown closes the database pool.
func (a *App) Shutdown() {
	if a.DB != nil {
		a.DB.Close()
		a.Echo.Logger.Info("database connection pool closed")
	}
}

func connect(dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &DBError{Op: "parse_dsn", Err: err}
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &DBError{Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &DBError{Op: "ping", Err: err}
	}
	return pool, nil
}

// authMiddleware refuses every protected request when no JWT secret is set.
func authMiddleware(secret string, logger echo.Logger) echo.MiddlewareFunc {
	if secret != "" {
		return authmw.JWTAuth(secret)
	}
	logger.Warn("JWT_SECRET not set: pricing rule routes are disabled")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Message: "authentication is not configured"})
		}
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
