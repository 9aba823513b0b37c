package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/claims-api/internal/repository"
	"github.com/noah-isme/claims-api/pkg/geo"
)

type locatorStub struct {
	mu    sync.Mutex
	km    float64
	err   error
	calls int
}

func (l *locatorStub) DistanceKm(ctx context.Context, from, to string) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.km, l.err
}

func newRedisCache(t *testing.T, metrics *MetricsService) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(repository.NewCacheRepository(client), metrics, time.Hour, nil, true), mr
}

func TestDistanceServiceCachesResolvedLegs(t *testing.T) {
	metrics := NewMetricsService()
	cache, mr := newRedisCache(t, metrics)
	locator := &locatorStub{km: 42.126}
	svc := NewDistanceService(locator, cache, time.Hour, metrics, nil)

	first := svc.DistanceKm(context.Background(), "Campus", "Town")
	require.NotNil(t, first)
	assert.Equal(t, 42.13, *first)
	assert.True(t, mr.Exists(distanceCacheKey("Campus", "Town")))

	second := svc.DistanceKm(context.Background(), "campus", "TOWN")
	require.NotNil(t, second)
	assert.Equal(t, 42.13, *second)
	assert.Equal(t, 1, locator.calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.distanceLookups.WithLabelValues(DistanceOutcomeResolved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.distanceLookups.WithLabelValues(DistanceOutcomeCached)))

	mr.FastForward(2 * time.Hour)
	_ = svc.DistanceKm(context.Background(), "Campus", "Town")
	assert.Equal(t, 2, locator.calls)
}

func TestDistanceServiceDegradesToNil(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewDistanceService(&locatorStub{err: geo.ErrUnavailable}, nil, 0, metrics, nil)
	assert.Nil(t, svc.DistanceKm(context.Background(), "A", "B"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.distanceLookups.WithLabelValues(DistanceOutcomeUnavailable)))

	svc = NewDistanceService(&locatorStub{err: errors.New("dial tcp: timeout")}, nil, 0, metrics, nil)
	assert.Nil(t, svc.DistanceKm(context.Background(), "A", "B"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.distanceLookups.WithLabelValues(DistanceOutcomeError)))
}

func TestDistanceServiceIgnoresBrokenCache(t *testing.T) {
	cache, mr := newRedisCache(t, nil)
	mr.Close()
	locator := &locatorStub{km: 5}
	svc := NewDistanceService(locator, cache, time.Hour, nil, nil)

	km := svc.DistanceKm(context.Background(), "A", "B")
	require.NotNil(t, km)
	assert.Equal(t, 5.0, *km)
}

func TestDistanceServiceBlankEndpoint(t *testing.T) {
	locator := &locatorStub{km: 5}
	svc := NewDistanceService(locator, nil, 0, nil, nil)
	assert.Nil(t, svc.DistanceKm(context.Background(), " ", "B"))
	assert.Zero(t, locator.calls)
}

func TestDistanceServiceDefaultsToNoop(t *testing.T) {
	svc := NewDistanceService(nil, nil, 0, nil, nil)
	assert.Nil(t, svc.DistanceKm(context.Background(), "A", "B"))
}

func TestDistanceServiceEvictsCorruptEntry(t *testing.T) {
	cache, mr := newRedisCache(t, NewMetricsService())
	key := distanceCacheKey("Campus", "Depot")
	require.NoError(t, mr.Set(key, "{broken"))

	locator := &locatorStub{km: 7.5}
	svc := NewDistanceService(locator, cache, time.Hour, nil, nil)

	km := svc.DistanceKm(context.Background(), "Campus", "Depot")
	require.NotNil(t, km)
	assert.Equal(t, 7.5, *km)
	assert.Equal(t, 1, locator.calls)
	mr.CheckGet(t, key, "7.5")
}
