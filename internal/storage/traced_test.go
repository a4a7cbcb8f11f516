package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeStorage struct {
	data   map[string]string
	setErr error
	delay  time.Duration
}

func (f *fakeStorage) Get(_ context.Context, key string) (string, bool, error) {
	time.Sleep(f.delay)
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStorage) Set(_ context.Context, key, value string) error {
	time.Sleep(f.delay)
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTraced_GetRecordsSpan(t *testing.T) {
	rec := withRecorder(t)
	inner := &fakeStorage{data: map[string]string{"k": "v"}}
	st := NewTraced(inner, "memory", nil, 0)

	v, found, err := st.Get(context.Background(), "k")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "storage.get", spans[0].Name())
	sys, ok := attrValue(spans[0].Attributes(), "storage.system")
	require.True(t, ok)
	assert.Equal(t, "memory", sys.AsString())
	fnd, ok := attrValue(spans[0].Attributes(), "storage.found")
	require.True(t, ok)
	assert.True(t, fnd.AsBool())
}

func TestTraced_SetErrorMarksSpan(t *testing.T) {
	rec := withRecorder(t)
	boom := errors.New("boom")
	st := NewTraced(&fakeStorage{data: map[string]string{}, setErr: boom}, "redis", nil, 0)

	err := st.Set(context.Background(), "k", "v")

	assert.ErrorIs(t, err, boom)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTraced_LogsSlowOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	st := NewTraced(&fakeStorage{data: map[string]string{}, delay: 5 * time.Millisecond}, "postgres", logger, time.Millisecond)

	require.NoError(t, st.Set(context.Background(), "k", "v"))

	assert.Contains(t, buf.String(), "slow storage operation")
	assert.Contains(t, buf.String(), `"operation":"set"`)
}

func TestTraced_FastOperationsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	st := NewTraced(&fakeStorage{data: map[string]string{}}, "memory", logger, time.Hour)

	require.NoError(t, st.Set(context.Background(), "k", "v"))
	assert.Empty(t, buf.String())
}

func TestPing_NonPingerIsHealthy(t *testing.T) {
	assert.NoError(t, Ping(context.Background(), &fakeStorage{}))
}

func TestTraced_Unwrap(t *testing.T) {
	inner := &fakeStorage{}
	assert.Same(t, inner, NewTraced(inner, "memory", nil, 0).Unwrap())
}
