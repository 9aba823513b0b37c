package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/pkg/geo"
)

const distanceCachePrefix = "geo:distance:"

type distanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DistanceService resolves leg distances on a best-effort basis. It never returns an error:
// an unresolved leg yields nil.
type DistanceService struct {
	locator geo.Locator
	cache   distanceCache
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDistanceService wires a locator with an optional cache.
func NewDistanceService(locator geo.Locator, cache distanceCache, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *DistanceService {
	if locator == nil {
		locator = geo.NoopLocator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistanceService{locator: locator, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// DistanceKm returns the distance between two locations in kilometres, or nil when unknown.
func (s *DistanceService) DistanceKm(ctx context.Context, from, to string) *float64 {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil
	}
	key := distanceCacheKey(from, to)

	if s.cache != nil {
		var cached float64
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			s.metrics.DistanceLookup(DistanceOutcomeCached)
			return &cached
		}
	}

	km, err := s.locator.DistanceKm(ctx, from, to)
	if err != nil {
		outcome := DistanceOutcomeError
		if errors.Is(err, geo.ErrUnavailable) {
			outcome = DistanceOutcomeUnavailable
		}
		s.metrics.DistanceLookup(outcome)
		s.logger.Warn("distance lookup degraded",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return nil
	}

	km = math.Round(km*100) / 100
	s.metrics.DistanceLookup(DistanceOutcomeResolved)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, km, s.ttl)
	}
	return &km
}

func distanceCacheKey(from, to string) string {
	return distanceCachePrefix + strings.ToLower(from) + "|" + strings.ToLower(to)
}
