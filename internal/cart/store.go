// Package cart holds the shopping cart state store. A Store keeps the ordered
// line items in memory and mirrors the whole collection to a key-value
// storage on every mutation. The persisted copy is written before the
// in-memory one is replaced, so a failed write leaves the cart as it was.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tgiffonirs/gomarketplace/internal/domain"
	"github.com/tgiffonirs/gomarketplace/internal/storage"
	apperrors "github.com/tgiffonirs/gomarketplace/pkg/errors"
	"github.com/tgiffonirs/gomarketplace/pkg/logger"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "@GoMarketplace:products"

// DefaultWriteTimeout bounds a single storage write.
const DefaultWriteTimeout = 5 * time.Second

// Operation names used in logs and metrics.
const (
	OpAddToCart = "add_to_cart"
	OpIncrement = "increment"
	OpDecrement = "decrement"
)

type state int

const (
	stateNew state = iota
	stateReady
	stateClosed
)

// Update is delivered to subscribers after every successful mutation.
type Update struct {
	Items     domain.Items
	Operation string
	// CorrelationID is the id of the request that caused the mutation, if any.
	CorrelationID string
}

// Option configures a Store.
type Option func(*Store)

// WithWriteTimeout sets how long a storage write may take. A canceled caller
// does not abort a write in flight.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// Store is the cart state store. Mutations are serialized: each one holds
// the lock across read, persist and replace.
type Store struct {
	storage      storage.Storage
	key          string
	logger       *slog.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	state  state
	items  domain.Items
	ready  chan struct{}
	subs   map[uint64]chan Update
	nextID uint64
}

// New creates an empty, unrestored store persisting under key. An empty key
// falls back to DefaultKey.
func New(st storage.Storage, key string, log *slog.Logger, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.Discard()
	}
	s := &Store{
		storage:      st,
		key:          key,
		logger:       log,
		writeTimeout: DefaultWriteTimeout,
		items:        domain.Items{},
		ready:        make(chan struct{}),
		subs:         make(map[uint64]chan Update),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and restores it before returning.
func Open(ctx context.Context, st storage.Storage, key string, log *slog.Logger, opts ...Option) (*Store, error) {
	s := New(st, key, log, opts...)
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the storage key the store persists under.
func (s *Store) Key() string {
	return s.key
}

// Restore loads the persisted collection once. A missing key yields an empty
// cart. Unreadable or malformed data is logged and also yields an empty cart;
// the only error returned is a canceled or expired ctx. Calling Restore on a
// restored store is a no-op.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateReady:
		return nil
	case stateClosed:
		return apperrors.Usage("cart store is closed")
	}

	items, outcome, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.items = items
	s.state = stateReady
	close(s.ready)

	restoresTotal.WithLabelValues(outcome).Inc()
	s.observe(items)

	s.logger.InfoContext(ctx, "cart restored",
		slog.String("key", s.key),
		slog.String("outcome", outcome),
		slog.Int("line_items", len(items)),
	)
	return nil
}

func (s *Store) load(ctx context.Context) (domain.Items, string, error) {
	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", fmt.Errorf("restore cart: %w", ctxErr)
		}
		s.logger.WarnContext(ctx, "cart storage unreadable, starting empty",
			slog.String("key", s.key),
			slog.String("error", apperrors.StorageRead(s.key, err).Error()),
		)
		return domain.Items{}, restoreRecovered, nil
	}
	if !found {
		return domain.Items{}, restoreEmpty, nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "persisted cart is malformed, starting empty",
			slog.String("key", s.key),
			slog.String("error", apperrors.StorageRead(s.key, err).Error()),
		)
		return domain.Items{}, restoreRecovered, nil
	}

	items, fixed := items.Normalize()
	if fixed > 0 {
		s.logger.WarnContext(ctx, "persisted cart normalized",
			slog.String("key", s.key),
			slog.Int("fixed", fixed),
		)
		return items, restoreRecovered, nil
	}
	return items, restoreLoaded, nil
}

// Ready returns a channel that is closed once Restore has completed or the
// store has been closed.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Items returns a copy of the current collection in insertion order. It
// never fails; before Restore the collection is empty.
func (s *Store) Items() domain.Items {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone()
}

// AddToCart appends p with quantity 1 unless a line item with the same id is
// already present. The collection is persisted either way.
func (s *Store) AddToCart(ctx context.Context, p domain.Product) (domain.Items, error) {
	return s.mutate(ctx, OpAddToCart, p.ID, func(it domain.Items) domain.Items {
		next, _ := it.WithProduct(p)
		return next
	})
}

// Increment raises the quantity of the line item with the given id by one.
// An unknown id leaves the collection unchanged.
func (s *Store) Increment(ctx context.Context, id string) (domain.Items, error) {
	return s.mutate(ctx, OpIncrement, id, func(it domain.Items) domain.Items {
		return it.Incremented(id)
	})
}

// Decrement lowers the quantity of the line item with the given id by one,
// stopping at zero. An unknown id leaves the collection unchanged.
func (s *Store) Decrement(ctx context.Context, id string) (domain.Items, error) {
	return s.mutate(ctx, OpDecrement, id, func(it domain.Items) domain.Items {
		return it.Decremented(id)
	})
}

func (s *Store) mutate(ctx context.Context, op, id string, apply func(domain.Items) domain.Items) (domain.Items, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsable(); err != nil {
		mutationsTotal.WithLabelValues(op, outcomeRejected).Inc()
		return nil, err
	}

	next := apply(s.items)

	payload, err := encodeItems(next)
	if err != nil {
		mutationsTotal.WithLabelValues(op, outcomeRejected).Inc()
		return nil, apperrors.Internal(err)
	}

	err = s.write(ctx, payload)
	if err != nil {
		mutationsTotal.WithLabelValues(op, outcomeWriteFailed).Inc()
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "cart write-through failed",
			slog.String("operation", op),
			slog.String("product_id", id),
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.StorageWrite(s.key, err)
	}

	s.items = next
	mutationsTotal.WithLabelValues(op, outcomeOK).Inc()
	s.observe(next)
	s.broadcast(Update{
		Items:         next,
		Operation:     op,
		CorrelationID: logger.CorrelationIDFromContext(ctx),
	})

	logger.WithContext(ctx, s.logger).DebugContext(ctx, "cart updated",
		slog.String("operation", op),
		slog.String("product_id", id),
		slog.Int("line_items", len(next)),
	)

	return next.Clone(), nil
}

// write persists payload. It ignores the caller's cancellation and is bounded
// by the store's write timeout only.
func (s *Store) write(ctx context.Context, payload string) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	start := time.Now()
	err := s.storage.Set(wctx, s.key, payload)
	storageWriteDuration.Observe(time.Since(start).Seconds())
	return err
}

func (s *Store) checkUsable() error {
	switch s.state {
	case stateNew:
		return apperrors.Usage("cart store has not been restored")
	case stateClosed:
		return apperrors.Usage("cart store is closed")
	}
	return nil
}

func (s *Store) observe(items domain.Items) {
	lineItems.Set(float64(len(items)))
	units.Set(float64(items.ItemCount()))
}

// Subscribe registers for collection updates. After every successful
// mutation the channel receives the new collection with the operation that
// produced it. The channel holds one
// snapshot; a subscriber that falls behind only sees the latest one and never
// blocks a mutation. cancel unregisters and closes the channel. On a closed
// store the returned channel is already closed.
func (s *Store) Subscribe() (updates <-chan Update, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Update, 1)
	if s.state == stateClosed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// broadcast must be called with s.mu held for writing.
func (s *Store) broadcast(u Update) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		snapshot := u
		snapshot.Items = u.Items.Clone()
		ch <- snapshot
	}
}

// Close ends the store scope. Later mutations and restores return a usage
// error, subscriber channels are closed and Ready is released. Items keeps
// returning the last collection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return nil
	}
	if s.state == stateNew {
		close(s.ready)
	}
	s.state = stateClosed

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	return nil
}

// Ping reports whether the underlying storage is reachable. It is meant for
// readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()

	if st != stateReady {
		return errors.New("cart store not ready")
	}
	return storage.Ping(ctx, s.storage)
}
