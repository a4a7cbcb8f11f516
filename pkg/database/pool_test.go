package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectBackoff_ExponentialWithJitter(t *testing.T) {
	for attempt := 0; attempt < connectAttempts; attempt++ {
		base := connectBaseWait << attempt
		lo := time.Duration(float64(base) * (1 - connectJitterPct))
		hi := time.Duration(float64(base) * (1 + connectJitterPct))

		for i := 0; i < 20; i++ {
			d := connectBackoff(attempt)
			assert.GreaterOrEqual(t, d, lo, "attempt %d: %v < %v", attempt, d, lo)
			assert.LessOrEqual(t, d, hi, "attempt %d: %v > %v", attempt, d, hi)
		}
	}
}

func TestConnectBackoff_NegativeAttemptUsesBase(t *testing.T) {
	d := connectBackoff(-3)
	assert.GreaterOrEqual(t, d, time.Duration(float64(connectBaseWait)*(1-connectJitterPct)))
	assert.LessOrEqual(t, d, time.Duration(float64(connectBaseWait)*(1+connectJitterPct)))
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"dial tcp 127.0.0.1:5432: connection refused", true},
		{"connection reset by peer", true},
		{"write: broken pipe", true},
		{"i/o timeout", true},
		{"unexpected EOF", true},
		{"could not connect to server", true},
		{"syntax error at or near", false},
		{"duplicate key value violates unique constraint", false},
		{"relation \"kv_store\" does not exist", false},
	}
	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			assert.Equal(t, tc.want, isConnectionError(errStr(tc.msg)))
		})
	}
	assert.False(t, isConnectionError(nil))
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig("postgres://localhost/cart")
	assert.Equal(t, "postgres://localhost/cart", cfg.DSN)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, int32(1), cfg.MinConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
}

type errStr string

func (e errStr) Error() string { return string(e) }
