package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is returned by a Cache that holds no entry for a key.
var ErrCacheMiss = errors.New("forecast cache miss")

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetForecast fetches current, hourly and minutely conditions for a
	// location, expressed in the requested unit system.
	GetForecast(ctx context.Context, lat, lon float64, units UnitSystem) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// Cache is a forecast cache shared between service instances.
type Cache interface {
	Get(ctx context.Context, key string) (*Forecast, error)
	Set(ctx context.Context, key string, forecast *Forecast, ttl time.Duration) error
}

// Recorder receives provider fetch and cache lookup outcomes.
type Recorder interface {
	RecordFetch(provider string, units UnitSystem, duration time.Duration, outcome FetchOutcome)
	RecordCacheLookup(tier CacheTier, units UnitSystem, hit bool)
}

// FetchOutcome is how a provider fetch was resolved.
type FetchOutcome string

const (
	FetchOK     FetchOutcome = "ok"
	FetchStale  FetchOutcome = "stale"
	FetchFailed FetchOutcome = "error"
)

// CacheTier names the cache level a lookup was served from.
type CacheTier string

const (
	TierMemory CacheTier = "memory"
	TierShared CacheTier = "shared"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Shared is an optional second-level cache consulted before the provider.
	Shared Cache

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache forecasts (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.1).
	// Points within the same grid cell share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 1 hour).
	StaleIfErrorTTL time.Duration

	// Metrics, when set, records provider latency and cache outcomes.
	Metrics Recorder

	// Now overrides the clock.
	Now func() time.Time
}

// Service provides forecasts with caching.
type Service struct {
	provider        Provider
	shared          Cache
	logger          zerolog.Logger
	metrics         Recorder
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	now             func() time.Time

	group           singleflight.Group
	mu              sync.RWMutex
	forecastCache   map[string]*cachedForecast
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

type cachedForecast struct {
	forecast  *Forecast
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.1 // ~11km at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 1 * time.Hour
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:        cfg.Provider,
		shared:          cfg.Shared,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		now:             now,
		forecastCache:   make(map[string]*cachedForecast),
		cleanupInterval: 5 * time.Minute,
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetForecast returns the forecast for a location in the given unit system.
// Concurrent requests for the same grid cell share one provider call.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64, units UnitSystem) (*Forecast, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	key := s.cacheKey(lat, lon, units)

	cached, ok := s.fresh(key)
	s.recordLookup(TierMemory, units, ok)
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, ok := s.fresh(key); ok {
			return cached, nil
		}
		return s.fetchForecast(ctx, lat, lon, units, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Forecast), nil
}

func (s *Service) fresh(key string) (*Forecast, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cached, ok := s.forecastCache[key]; ok && s.now().Before(cached.expiresAt) {
		return cached.forecast, true
	}
	return nil, false
}

// fetchForecast consults the shared cache, then the provider, and updates both caches.
func (s *Service) fetchForecast(ctx context.Context, lat, lon float64, units UnitSystem, key string) (*Forecast, error) {
	if s.shared != nil {
		forecast, err := s.shared.Get(ctx, key)
		s.recordLookup(TierShared, units, err == nil)
		switch {
		case err == nil:
			s.store(key, forecast, forecast.FetchedAt)
			return forecast, nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn().Err(err).Str("key", key).Msg("shared forecast cache read failed")
		}
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("units", string(units)).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast from provider")

	start := time.Now()
	forecast, err := s.provider.GetForecast(ctx, lat, lon, units)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch forecast")

		s.mu.RLock()
		cached, ok := s.forecastCache[key]
		s.mu.RUnlock()
		if ok && s.now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale forecast data due to provider error")
			s.recordFetch(units, elapsed, FetchStale)
			return cached.forecast, nil
		}

		s.recordFetch(units, elapsed, FetchFailed)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	s.recordFetch(units, elapsed, FetchOK)

	now := s.now()
	if forecast.FetchedAt.IsZero() {
		forecast.FetchedAt = now
	}
	s.store(key, forecast, now)

	if s.shared != nil {
		if err := s.shared.Set(ctx, key, forecast, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("shared forecast cache write failed")
		}
	}

	return forecast, nil
}

func (s *Service) recordLookup(tier CacheTier, units UnitSystem, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(tier, units, hit)
	}
}

func (s *Service) recordFetch(units UnitSystem, d time.Duration, outcome FetchOutcome) {
	if s.metrics != nil {
		s.metrics.RecordFetch(s.provider.Name(), units, d, outcome)
	}
}

func (s *Service) store(key string, forecast *Forecast, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.forecastCache[key] = &cachedForecast{
		forecast:  forecast,
		fetchedAt: fetchedAt,
		expiresAt: now.Add(s.cacheTTL),
	}
	s.cleanupIfNeeded(now)
}

// cacheKey groups nearby points into grid cells to reduce API calls.
func (s *Service) cacheKey(lat, lon float64, units UnitSystem) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.2f:%.2f:%s", gridLat, gridLon, units)
}

// cleanupIfNeeded removes entries past the stale window. Callers hold s.mu.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.forecastCache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.forecastCache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired forecast cache entries")
	}
}

// InvalidateCache clears all locally cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecastCache = make(map[string]*cachedForecast)
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	fresh := 0
	for _, c := range s.forecastCache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		ForecastEntries:      len(s.forecastCache),
		ForecastFreshEntries: fresh,
		Provider:             s.provider.Name(),
		Shared:               s.shared != nil,
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	ForecastEntries      int
	ForecastFreshEntries int
	Provider             string
	Shared               bool
}

// ValidateCoordinates checks if coordinates are valid.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
