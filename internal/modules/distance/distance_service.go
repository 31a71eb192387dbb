package distance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"franchise-crm/internal/cache"
	"franchise-crm/internal/models"
	"franchise-crm/pkg/geocode"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ServiceInterface is what handlers and the pricing module need.
// None of the methods return an error: a failed lookup degrades into an
// estimated (Success=false) result instead.
type ServiceInterface interface {
	Calculate(ctx context.Context, from, to string) models.DistanceResult
	DistanceKm(ctx context.Context, from, to string) int
	CalculateBatch(ctx context.Context, from string, to []string) map[string]models.DistanceResult
	ClearCache()
}

// Cache is the in-process memo of measured distances keyed by "from-to".
type Cache = cache.TTL[string, int]

// NewCache returns a distance cache with the given TTL.
func NewCache(ttl time.Duration, opts ...cache.Option[string, int]) *Cache {
	return cache.NewTTL[string, int](ttl, opts...)
}

type service struct {
	resolver    geocode.Resolver
	repo        RepositoryInterface // optional
	cache       *Cache
	flight      singleflight.Group
	log         echo.Logger
	concurrency int
}

// NewService wires the pipeline. repo may be nil when no database is configured.
// batchConcurrency bounds the parallel lookups of CalculateBatch.
func NewService(resolver geocode.Resolver, repo RepositoryInterface, c *Cache, logger echo.Logger, batchConcurrency int) ServiceInterface {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	return &service{
		resolver:    resolver,
		repo:        repo,
		cache:       c,
		log:         logger,
		concurrency: batchConcurrency,
	}
}

// Calculate resolves the distance between two pincodes:
//  1. identical pincodes → 0 km, method "exact", no network;
//  2. cache hit within TTL → cached measurement;
//  3. durable store hit younger than the cache TTL → stored measurement, re-cached;
//  4. both pincodes geocoded → Haversine distance, cached and stored;
//  5. otherwise → pincode-proximity estimate, never cached.
func (s *service) Calculate(ctx context.Context, from, to string) models.DistanceResult {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return models.DistanceResult{Success: false, Error: "invalid pincodes"}
	}
	if from == to {
		return models.DistanceResult{DistanceKm: 0, Success: true, Method: models.MethodExact}
	}

	key := cacheKey(from, to)
	if km, ok := s.cache.Get(key); ok {
		return models.DistanceResult{DistanceKm: km, Success: true, Method: models.MethodGeolocation, Cached: true}
	}

	// Concurrent misses for the same pair share one resolution. It runs
	// detached from any single caller; provider and store timeouts bound it.
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		return s.resolve(shared, from, to), nil
	})
	select {
	case r := <-ch:
		return r.Val.(models.DistanceResult)
	case <-ctx.Done():
		return estimate(from, to)
	}
}

// DistanceKm is Calculate reduced to the kilometre figure.
func (s *service) DistanceKm(ctx context.Context, from, to string) int {
	return s.Calculate(ctx, from, to).DistanceKm
}

// CalculateBatch computes distances from one origin to many destinations,
// at most s.concurrency at a time.
func (s *service) CalculateBatch(ctx context.Context, from string, to []string) map[string]models.DistanceResult {
	results := make(map[string]models.DistanceResult, len(to))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, dest := range to {
		dest := dest // per-iteration copy; go directive is 1.21 (pre-1.22 loop semantics)
		g.Go(func() error {
			r := s.Calculate(ctx, from, dest)
			mu.Lock()
			results[dest] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return results
}

func (s *service) ClearCache() {
	s.cache.Clear()
}

func (s *service) resolve(ctx context.Context, from, to string) models.DistanceResult {
	key := cacheKey(from, to)

	if s.repo != nil {
		stored, err := s.repo.FindDistance(ctx, from, to)
		switch {
		case err == nil && s.cache.Fresh(stored.UpdatedAt):
			s.cache.Set(key, stored.DistanceKm)
			return models.DistanceResult{DistanceKm: stored.DistanceKm, Success: true, Method: stored.Method, Cached: true}
		case err == nil:
			s.log.Debugf("distance: stored %s is stale, re-measuring", key)
		case !errors.Is(err, models.ErrNotFound):
			s.log.Errorf("distance: read stored %s: %v", key, err)
		}
	}

	var fromLoc, toLoc models.Location
	var fromOK, toOK bool
	var g errgroup.Group
	g.Go(func() error {
		fromLoc, fromOK = s.resolver.Resolve(ctx, from)
		return nil
	})
	g.Go(func() error {
		toLoc, toOK = s.resolver.Resolve(ctx, to)
		return nil
	})
	_ = g.Wait()

	if fromOK && toOK {
		km := HaversineKm(fromLoc.Lat, fromLoc.Lon, toLoc.Lat, toLoc.Lon)
		s.cache.Set(key, km)
		s.store(ctx, from, to, km)
		return models.DistanceResult{
			DistanceKm:  km,
			Success:     true,
			Method:      models.MethodGeolocation,
			From:        fromLoc.Label,
			To:          toLoc.Label,
			Coordinates: &models.RouteCoordinates{From: fromLoc.Coordinates, To: toLoc.Coordinates},
		}
	}

	s.log.Warnf("distance: geolocation unavailable for %s (from=%v to=%v), estimating", key, fromOK, toOK)
	return estimate(from, to)
}

func estimate(from, to string) models.DistanceResult {
	km, err := EstimateKm(from, to)
	if err != nil {
		return models.DistanceResult{DistanceKm: 0, Success: false, Method: models.MethodEstimation, Error: models.ErrInvalidPostalCode.Error()}
	}
	return models.DistanceResult{DistanceKm: km, Success: false, Method: models.MethodEstimation, Error: "using fallback estimation"}
}

func (s *service) store(ctx context.Context, from, to string, km int) {
	if s.repo == nil {
		return
	}
	err := s.repo.SaveDistance(ctx, &models.StoredDistance{
		FromPincode: from,
		ToPincode:   to,
		DistanceKm:  km,
		Method:      models.MethodGeolocation,
	})
	if err != nil {
		s.log.Errorf("distance: store %s-%s: %v", from, to, err)
	}
}

// cacheKey is ordered: "A-B" and "B-A" are separate entries.
func cacheKey(from, to string) string {
	return from + "-" + to
}
