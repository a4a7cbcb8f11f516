package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgiffonirs/gomarketplace/internal/cart"
	"github.com/tgiffonirs/gomarketplace/internal/config"
	"github.com/tgiffonirs/gomarketplace/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTPPort:        8003,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: time.Second,
		StorageDriver:   config.DriverMemory,
		StorageKey:      cart.DefaultKey,
		WriteTimeout:    time.Second,
		OTELSampleRate:  1,
	}
}

func TestNewApp_MemoryDriver(t *testing.T) {
	a, err := NewApp(testConfig(), logger.Discard())
	require.NoError(t, err)
	defer func() { _ = a.Shutdown() }()

	select {
	case <-a.store.Ready():
	default:
		t.Fatal("store not restored by NewApp")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"id":"1","title":"Shoe","price":10}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, a.store.Items(), 1)
}

func TestNewApp_RedisDriverRestoresPersistedCart(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("cart:"+cart.DefaultKey, `[{"id":"1","title":"Shoe","image_url":"","price":10,"quantity":3}]`))

	cfg := testConfig()
	cfg.StorageDriver = config.DriverRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RedisPrefix = "cart:"

	a, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	defer func() { _ = a.Shutdown() }()

	items := a.store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = config.DriverRedis
	cfg.RedisAddr = "127.0.0.1:1"

	a, err := NewApp(cfg, logger.Discard())

	assert.Nil(t, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "sqlite"

	_, _, err := openStorage(context.Background(), cfg, logger.Discard())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func TestShutdown_ClosesStore(t *testing.T) {
	a, err := NewApp(testConfig(), logger.Discard())
	require.NoError(t, err)

	require.NoError(t, a.Shutdown())

	_, err = a.store.Increment(context.Background(), "1")
	assert.Error(t, err)
}
