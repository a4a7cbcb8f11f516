package storage

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tgiffonirs/gomarketplace/internal/storage"

// Traced wraps a Storage with OpenTelemetry spans and slow-operation logging.
type Traced struct {
	next      Storage
	system    string
	tracer    trace.Tracer
	logger    *slog.Logger
	threshold time.Duration
}

// NewTraced decorates next. system names the backend ("redis", "postgres",
// "memory"). Operations slower than slowThreshold are logged as warnings; a
// zero threshold disables that.
func NewTraced(next Storage, system string, logger *slog.Logger, slowThreshold time.Duration) *Traced {
	return &Traced{
		next:      next,
		system:    system,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
		threshold: slowThreshold,
	}
}

// Get implements Storage.
func (t *Traced) Get(ctx context.Context, key string) (value string, found bool, err error) {
	ctx, end := t.start(ctx, "get", key)
	defer func() { end(err) }()

	value, found, err = t.next.Get(ctx, key)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("storage.found", found))
	return value, found, err
}

// Set implements Storage.
func (t *Traced) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := t.start(ctx, "set", key)
	defer func() { end(err) }()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("storage.value_bytes", len(value)))
	return t.next.Set(ctx, key, value)
}

// Ping forwards to the wrapped backend.
func (t *Traced) Ping(ctx context.Context) error {
	return Ping(ctx, t.next)
}

// Unwrap returns the decorated backend.
func (t *Traced) Unwrap() Storage {
	return t.next
}

func (t *Traced) start(ctx context.Context, op, key string) (context.Context, func(error)) {
	begin := time.Now()
	ctx, span := t.tracer.Start(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.system", t.system),
			attribute.String("storage.operation", op),
			attribute.String("storage.key", key),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if t.threshold <= 0 || t.logger == nil {
			return
		}
		if elapsed := time.Since(begin); elapsed >= t.threshold {
			attrs := []any{
				slog.String("system", t.system),
				slog.String("operation", op),
				slog.String("key", key),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			t.logger.WarnContext(ctx, "slow storage operation", attrs...)
		}
	}
}
